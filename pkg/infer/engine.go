// Package infer is the structural query engine behind annotation conversion:
// member projection against the signature arena, loose compatibility checks
// and generic instantiation. Conversion reduces through it when operands are
// concrete and defers behind an EvalType otherwise.
package infer

import (
	"fmt"
	"strings"

	"brook/pkg/types"
)

const inferDebug = false

func debugPrintf(format string, args ...interface{}) {
	if inferDebug {
		fmt.Printf(format, args...)
	}
}

// Allocator hands out fresh identities for type variables and deferred
// operations. The typing context implements it.
type Allocator interface {
	FreshTypeVarID() uint64
	FreshEvalID() uint64
}

// Engine answers structural queries for one elaboration pass. It shares the
// pass's signature arena and identity allocator with the converter.
type Engine struct {
	arena *types.SigArena
	alloc Allocator
}

// NewEngine wires an engine to the arena and allocator of one pass.
func NewEngine(arena *types.SigArena, alloc Allocator) *Engine {
	return &Engine{arena: arena, alloc: alloc}
}

// ProjectProperty resolves the type of property key on t. The boolean is
// false only when t is concrete and provably lacks the property. When t is
// not decided yet (a deferred operation, an open variable, an unsealed
// signature) the lookup itself is deferred and reported as found, because
// the obligation may still be met once the solver runs.
func (e *Engine) ProjectProperty(t types.Type, key string) (types.Type, bool) {
	if t == nil {
		return nil, false
	}
	debugPrintf("// [Infer] Projecting %q from %s\n", key, t.String())

	switch src := t.(type) {
	case *types.AnyType:
		// Projection out of any is any of the same flavor.
		return src, true

	case *types.ObjectType:
		if prop := src.Field(key); prop != nil {
			return prop.ReadType(), true
		}
		if src.Proto != nil {
			return e.ProjectProperty(src.Proto, key)
		}
		return nil, false

	case *types.SelfType:
		sig := e.arena.Get(src.ID)
		if sig == nil || !sig.Sealed() {
			return e.deferProjection(t, key), true
		}
		return e.projectSignature(sig, key)

	case *types.InstanceType:
		return e.projectInstance(src, key)

	case *types.TypeofType:
		return e.ProjectProperty(src.Underlying, key)

	case *types.ClassType:
		return e.projectStatics(src, key)

	case *types.UnionType:
		results := make([]types.Type, 0, len(src.Members))
		for _, m := range src.Members {
			r, ok := e.ProjectProperty(m, key)
			if !ok {
				return nil, false
			}
			results = append(results, r)
		}
		if len(results) == 1 {
			return results[0], true
		}
		reason := types.Builtin(fmt.Sprintf("property %q of %s", key, src.String()))
		return types.NewUnionType(reason, results...), true

	case *types.IntersectionType:
		// The first member carrying the property wins.
		for _, m := range src.Members {
			if r, ok := e.ProjectProperty(m, key); ok {
				return r, true
			}
		}
		return nil, false

	case *types.ExactType:
		return e.ProjectProperty(src.Inner, key)

	case *types.EvalType, *types.BoundTypeVar, *types.TypeVariable, *types.ExistsType:
		return e.deferProjection(t, key), true

	default:
		// Primitives, literals, maybes and the rest have no named members
		// the elaborator can hand out.
		return nil, false
	}
}

// deferProjection wraps the lookup as a pending operation for the solver.
func (e *Engine) deferProjection(src types.Type, key string) types.Type {
	reason := types.Builtin(fmt.Sprintf("property %q of %s", key, src.String()))
	op := &types.PropertyProjection{Source: src, Key: key}
	return types.NewEvalType(e.alloc.FreshEvalID(), op, reason)
}

// projectSignature looks up an instance member, walking declared supers
// before concluding the member is missing.
func (e *Engine) projectSignature(sig *types.Signature, key string) (types.Type, bool) {
	if prop := sig.Member(key); prop != nil {
		return prop.ReadType(), true
	}
	switch super := sig.Super.(type) {
	case *types.InterfaceSuper:
		for _, ext := range super.Extends {
			if t, ok := e.ProjectProperty(ext, key); ok {
				return t, true
			}
		}
	case *types.ClassSuper:
		if super.Extends != nil {
			if t, ok := e.ProjectProperty(super.Extends, key); ok {
				return t, true
			}
		}
	}
	return nil, false
}

// projectInstance projects through a nominal application. When the base is a
// sealed polymorphic signature the member may mention the declared type
// parameters, so the applied arguments are substituted in.
func (e *Engine) projectInstance(inst *types.InstanceType, key string) (types.Type, bool) {
	result, ok := e.ProjectProperty(inst.Base, key)
	if !ok || len(inst.Args) == 0 {
		return result, ok
	}
	if self, isSelf := inst.Base.(*types.SelfType); isSelf {
		if sig := e.arena.Get(self.ID); sig != nil && sig.Sealed() && len(sig.TypeParams) > 0 {
			return e.substitute(result, paramSubstitution(sig.TypeParams, inst.Args)), true
		}
	}
	return result, ok
}

// projectStatics resolves a member on the class object itself.
func (e *Engine) projectStatics(ct *types.ClassType, key string) (types.Type, bool) {
	self, ok := ct.Instance.(*types.SelfType)
	if !ok {
		return e.deferProjection(ct, key), true
	}
	sig := e.arena.Get(self.ID)
	if sig == nil || !sig.Sealed() {
		return e.deferProjection(ct, key), true
	}
	if prop := sig.Static(key); prop != nil {
		return prop.ReadType(), true
	}
	return nil, false
}

// Unify reports whether source is loosely compatible with target. This is
// the optimistic elaboration-stage check used for implements clauses and
// bound validation: deferred and unresolved types never fail, and `any`
// absorbs everything. Precise subtyping belongs to the downstream solver.
func (e *Engine) Unify(source, target types.Type) bool {
	if source == nil || target == nil {
		return false
	}

	if _, ok := source.(*types.AnyType); ok {
		return true
	}
	if _, ok := target.(*types.AnyType); ok {
		return true
	}
	if types.IsMixed(target) || types.IsEmpty(source) {
		return true
	}
	if source.Equals(target) {
		return true
	}
	if !concrete(source) || !concrete(target) {
		return true
	}

	sourceUnion, sourceIsUnion := source.(*types.UnionType)
	targetUnion, targetIsUnion := target.(*types.UnionType)
	if targetIsUnion {
		if sourceIsUnion {
			// Every source member must land in some target member.
			for _, s := range sourceUnion.Members {
				ok := false
				for _, t := range targetUnion.Members {
					if e.Unify(s, t) {
						ok = true
						break
					}
				}
				if !ok {
					return false
				}
			}
			return true
		}
		for _, t := range targetUnion.Members {
			if e.Unify(source, t) {
				return true
			}
		}
		return false
	}
	if sourceIsUnion {
		for _, s := range sourceUnion.Members {
			if !e.Unify(s, target) {
				return false
			}
		}
		return true
	}

	sourceInter, sourceIsInter := source.(*types.IntersectionType)
	targetInter, targetIsInter := target.(*types.IntersectionType)
	if targetIsInter {
		for _, t := range targetInter.Members {
			if !e.Unify(source, t) {
				return false
			}
		}
		return true
	}
	if sourceIsInter {
		for _, s := range sourceInter.Members {
			if e.Unify(s, target) {
				return true
			}
		}
		return false
	}

	if tm, ok := target.(*types.MaybeType); ok {
		if isNullish(source) {
			return true
		}
		return e.Unify(source, tm.Inner)
	}
	if sm, ok := source.(*types.MaybeType); ok {
		return e.Unify(sm.Inner, target)
	}

	if se, ok := source.(*types.ExactType); ok {
		return e.Unify(se.Inner, target)
	}
	if te, ok := target.(*types.ExactType); ok {
		return e.Unify(source, te.Inner)
	}

	if st, ok := source.(*types.TypeofType); ok {
		return e.Unify(st.Underlying, target)
	}
	if tt, ok := target.(*types.TypeofType); ok {
		return e.Unify(source, tt.Underlying)
	}

	// A literal flows wherever its general type flows. The reverse never
	// holds: a general type does not narrow back into a singleton.
	switch lit := source.(type) {
	case *types.StringLiteralType:
		return e.Unify(lit.General(), target)
	case *types.NumberLiteralType:
		return e.Unify(lit.General(), target)
	case *types.BooleanLiteralType:
		return e.Unify(lit.General(), target)
	}

	if sa, ok := source.(*types.ArrayType); ok {
		if ta, ok := target.(*types.ArrayType); ok {
			return e.Unify(sa.Element, ta.Element)
		}
		return false
	}
	if stup, ok := source.(*types.TupleType); ok {
		if ta, ok := target.(*types.ArrayType); ok {
			// The covariant array view of a tuple reads its element union.
			return e.Unify(stup.ElemUnion, ta.Element)
		}
		if ttup, ok := target.(*types.TupleType); ok {
			if len(stup.Elements) != len(ttup.Elements) {
				return false
			}
			for i := range stup.Elements {
				if !e.Unify(stup.Elements[i], ttup.Elements[i]) {
					return false
				}
			}
			return true
		}
		return false
	}

	if si, ok := source.(*types.InstanceType); ok {
		if ti, ok := target.(*types.InstanceType); ok {
			if !e.Unify(si.Base, ti.Base) {
				return false
			}
			if len(si.Args) == len(ti.Args) {
				for i := range si.Args {
					if !e.Unify(si.Args[i], ti.Args[i]) {
						return false
					}
				}
			}
			return true
		}
		return e.Unify(si.Base, target)
	}
	if ti, ok := target.(*types.InstanceType); ok {
		return e.Unify(source, ti.Base)
	}

	if ss, ok := source.(*types.SelfType); ok {
		return e.unifySelf(ss, target)
	}

	if sf, ok := source.(*types.FunctionType); ok {
		if tf, ok := target.(*types.FunctionType); ok {
			return e.unifySignature(sf, tf)
		}
		return false
	}

	if so, ok := source.(*types.ObjectType); ok {
		if to, ok := target.(*types.ObjectType); ok {
			return e.unifyObjects(so, to)
		}
		return false
	}

	return false
}

// unifySelf checks a nominal instance against a target by walking the
// declared extends/implements chain of its signature.
func (e *Engine) unifySelf(self *types.SelfType, target types.Type) bool {
	sig := e.arena.Get(self.ID)
	if sig == nil || !sig.Sealed() {
		return true
	}
	switch super := sig.Super.(type) {
	case *types.InterfaceSuper:
		for _, ext := range super.Extends {
			if e.Unify(ext, target) {
				return true
			}
		}
	case *types.ClassSuper:
		if super.Extends != nil && e.Unify(super.Extends, target) {
			return true
		}
		for _, impl := range super.Implements {
			if e.Unify(impl, target) {
				return true
			}
		}
	}
	return false
}

// unifySignature checks callable compatibility: parameters contravariantly,
// the return type covariantly. The source must accept every call shape the
// target admits, so extra required parameters on the source are a mismatch.
func (e *Engine) unifySignature(source, target *types.FunctionType) bool {
	if requiredParamCount(source) > len(target.Params) {
		return false
	}
	if len(target.Params) > len(source.Params) && source.Rest == nil {
		return false
	}
	for i, tp := range target.Params {
		if i >= len(source.Params) {
			break
		}
		if !e.Unify(tp.Type, source.Params[i].Type) {
			return false
		}
	}
	return e.Unify(source.Return, target.Return)
}

func requiredParamCount(ft *types.FunctionType) int {
	n := 0
	for _, p := range ft.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// unifyObjects checks width subtyping: every field the target requires must
// be present and compatible on the source.
func (e *Engine) unifyObjects(source, target *types.ObjectType) bool {
	for name, tprop := range target.Fields {
		sprop := source.Field(name)
		if sprop == nil {
			if tprop.Optional {
				continue
			}
			return false
		}
		if !e.Unify(sprop.ReadType(), tprop.ReadType()) {
			return false
		}
	}
	if len(target.Calls) > 0 && len(source.Calls) == 0 {
		return false
	}
	return true
}

// isNullish reports whether t is the null or void primitive.
func isNullish(t types.Type) bool {
	p, ok := t.(*types.Primitive)
	return ok && (p.Kind == types.NullKind || p.Kind == types.VoidKind)
}

// concrete reports whether t is decided enough to compare structurally.
func concrete(t types.Type) bool {
	switch t.(type) {
	case *types.EvalType, *types.TypeVariable, *types.BoundTypeVar, *types.ExistsType:
		return false
	}
	return true
}

// Instantiate applies a generic alias to the given arguments: every use of a
// declared parameter inside the body is replaced by the matching argument.
// Missing trailing arguments fall back to the parameter's default, then to
// `any`. A bound violation is reported through the error and the result
// degrades to `any` so elaboration can continue.
func (e *Engine) Instantiate(g *types.GenericType, args []types.Type) (types.Type, error) {
	if inferDebug {
		strs := make([]string, len(args))
		for i, a := range args {
			strs[i] = a.String()
		}
		debugPrintf("// [Infer] Instantiating '%s' with [%s]\n", g.Name, strings.Join(strs, ", "))
	}

	for i, param := range g.TypeParams {
		if i >= len(args) {
			break
		}
		if param.Bound == nil || types.IsMixed(param.Bound) {
			continue
		}
		if !e.Unify(args[i], param.Bound) {
			return types.Any, fmt.Errorf("type '%s' does not satisfy the bound '%s' of type parameter '%s'",
				args[i].String(), param.Bound.String(), param.Name)
		}
	}

	return e.substitute(g.Body, paramSubstitution(g.TypeParams, args)), nil
}

// paramSubstitution maps parameter names to the supplied arguments, falling
// back to declared defaults when the argument list is short.
func paramSubstitution(params []*types.TypeParameter, args []types.Type) map[string]types.Type {
	sub := make(map[string]types.Type, len(params))
	for i, p := range params {
		switch {
		case i < len(args):
			sub[p.Name] = args[i]
		case p.Default != nil:
			sub[p.Name] = p.Default
		default:
			sub[p.Name] = types.Any
		}
	}
	return sub
}

// substitute rewrites t with every bound parameter reference replaced per
// the substitution map. Nodes that cannot contain parameter references come
// back unchanged.
func (e *Engine) substitute(t types.Type, sub map[string]types.Type) types.Type {
	if t == nil || len(sub) == 0 {
		return t
	}

	switch typ := t.(type) {
	case *types.BoundTypeVar:
		if replacement, ok := sub[typ.Param.Name]; ok {
			debugPrintf("// [Infer] Substituting %s -> %s\n", typ.Param.Name, replacement.String())
			return replacement
		}
		return typ

	case *types.ArrayType:
		return types.NewArrayType(e.substitute(typ.Element, sub), typ.Reason)

	case *types.TupleType:
		return types.NewTupleType(e.substituteList(typ.Elements, sub), typ.Reason)

	case *types.UnionType:
		return types.NewUnionType(typ.Reason, e.substituteList(typ.Members, sub)...)

	case *types.IntersectionType:
		return types.NewIntersectionType(typ.Reason, e.substituteList(typ.Members, sub)...)

	case *types.MaybeType:
		return types.NewMaybeType(e.substitute(typ.Inner, sub), typ.Reason)

	case *types.ExactType:
		return types.NewExactType(e.substitute(typ.Inner, sub), typ.Reason)

	case *types.ObjectType:
		return e.substituteObject(typ, sub)

	case *types.FunctionType:
		return e.substituteFunction(typ, sub)

	case *types.InstanceType:
		base := e.substitute(typ.Base, sub)
		if !typ.Applied {
			return types.NewBareInstance(base, typ.Reason)
		}
		return types.NewAppliedInstance(base, e.substituteList(typ.Args, sub), typ.Reason)

	case *types.TypeofType:
		return types.NewTypeofType(e.substitute(typ.Underlying, sub), typ.RefName, typ.Reason)

	case *types.ClassType:
		return types.NewClassType(e.substitute(typ.Instance, sub), typ.Reason)

	case *types.EvalType:
		return e.substituteEval(typ, sub)

	default:
		// Primitives, literals, self types and the other leaves carry no
		// parameter references.
		return typ
	}
}

func (e *Engine) substituteList(list []types.Type, sub map[string]types.Type) []types.Type {
	out := make([]types.Type, len(list))
	for i, t := range list {
		out[i] = e.substitute(t, sub)
	}
	return out
}

func (e *Engine) substituteObject(obj *types.ObjectType, sub map[string]types.Type) *types.ObjectType {
	out := types.NewObjectType(obj.Reason)
	out.Exact = obj.Exact
	out.Inexact = obj.Inexact
	for name, prop := range obj.Fields {
		out.Fields[name] = e.substituteProperty(prop, sub)
	}
	if obj.Indexer != nil {
		out.Indexer = &types.Indexer{
			Name:     obj.Indexer.Name,
			KeyType:  e.substitute(obj.Indexer.KeyType, sub),
			Value:    e.substitute(obj.Indexer.Value, sub),
			Polarity: obj.Indexer.Polarity,
		}
	}
	if len(obj.Calls) > 0 {
		out.Calls = e.substituteList(obj.Calls, sub)
	}
	if obj.Proto != nil {
		out.Proto = e.substitute(obj.Proto, sub)
	}
	return out
}

func (e *Engine) substituteProperty(prop *types.Property, sub map[string]types.Type) *types.Property {
	out := &types.Property{
		Name:     prop.Name,
		Polarity: prop.Polarity,
		Optional: prop.Optional,
		Method:   prop.Method,
	}
	if prop.Type != nil {
		out.Type = e.substitute(prop.Type, sub)
	}
	if prop.Get != nil {
		out.Get = e.substitute(prop.Get, sub)
	}
	if prop.Set != nil {
		out.Set = e.substitute(prop.Set, sub)
	}
	return out
}

// substituteFunction handles a nested polymorphic signature: its own type
// parameters shadow outer ones with the same name inside its body, while the
// parameter bounds and defaults still see the outer scope.
func (e *Engine) substituteFunction(fn *types.FunctionType, sub map[string]types.Type) *types.FunctionType {
	inner := sub
	out := &types.FunctionType{Reason: fn.Reason}
	if len(fn.TypeParams) > 0 {
		out.TypeParams = make([]*types.TypeParameter, len(fn.TypeParams))
		for i, tp := range fn.TypeParams {
			out.TypeParams[i] = &types.TypeParameter{
				Name:     tp.Name,
				Polarity: tp.Polarity,
				Bound:    e.substitute(tp.Bound, sub),
				Default:  e.substitute(tp.Default, sub),
				Reason:   tp.Reason,
			}
		}
		inner = make(map[string]types.Type, len(sub))
		for name, t := range sub {
			inner[name] = t
		}
		for _, tp := range fn.TypeParams {
			delete(inner, tp.Name)
		}
	}
	out.Params = make([]*types.Param, len(fn.Params))
	for i, p := range fn.Params {
		out.Params[i] = &types.Param{Name: p.Name, Type: e.substitute(p.Type, inner), Optional: p.Optional}
	}
	if fn.Rest != nil {
		out.Rest = &types.Param{Name: fn.Rest.Name, Type: e.substitute(fn.Rest.Type, inner), Optional: fn.Rest.Optional}
	}
	out.Return = e.substitute(fn.Return, inner)
	return out
}

// substituteEval rebuilds a deferred operation with substituted operands.
// The result is a new obligation, so it gets a fresh identity.
func (e *Engine) substituteEval(et *types.EvalType, sub map[string]types.Type) types.Type {
	op := e.substituteOp(et.Op, sub)
	if op == nil {
		return et
	}
	return types.NewEvalType(e.alloc.FreshEvalID(), op, et.Reason)
}

func (e *Engine) substituteOp(op types.TypeOperation, sub map[string]types.Type) types.TypeOperation {
	switch o := op.(type) {
	case *types.PropertyProjection:
		return &types.PropertyProjection{Source: e.substitute(o.Source, sub), Key: o.Key}
	case *types.ElementProjection:
		return &types.ElementProjection{Source: e.substitute(o.Source, sub), Key: e.substitute(o.Key, sub)}
	case *types.KeysOp:
		return &types.KeysOp{Source: e.substitute(o.Source, sub)}
	case *types.ValuesOp:
		return &types.ValuesOp{Source: e.substitute(o.Source, sub)}
	case *types.ReadOnlyOp:
		return &types.ReadOnlyOp{Source: e.substitute(o.Source, sub)}
	case *types.NonMaybeOp:
		return &types.NonMaybeOp{Source: e.substitute(o.Source, sub)}
	case *types.ShapeOp:
		return &types.ShapeOp{Source: e.substitute(o.Source, sub)}
	case *types.DiffOp:
		return &types.DiffOp{Source: e.substitute(o.Source, sub), Subtrahend: e.substitute(o.Subtrahend, sub)}
	case *types.RestOp:
		return &types.RestOp{Source: e.substitute(o.Source, sub), Subtrahend: e.substitute(o.Subtrahend, sub)}
	case *types.CallOp:
		return &types.CallOp{Fn: e.substitute(o.Fn, sub), Args: e.substituteList(o.Args, sub)}
	case *types.TupleMapOp:
		return &types.TupleMapOp{Source: e.substitute(o.Source, sub), Fn: e.substitute(o.Fn, sub)}
	case *types.ObjMapOp:
		return &types.ObjMapOp{Source: e.substitute(o.Source, sub), Fn: e.substitute(o.Fn, sub), WithKey: o.WithKey}
	case *types.SpreadMergeOp:
		return &types.SpreadMergeOp{Sources: e.substituteList(o.Sources, sub), Exact: o.Exact}
	case *types.MixinOp:
		return &types.MixinOp{Source: e.substitute(o.Source, sub)}
	case *types.RefineOp:
		return &types.RefineOp{Base: e.substitute(o.Base, sub), Pred: e.substitute(o.Pred, sub), Index: o.Index}
	case *types.BoundOp:
		return &types.BoundOp{Source: e.substitute(o.Source, sub), Super: o.Super}
	case *types.ReactOp:
		return &types.ReactOp{Projection: o.Projection, Args: e.substituteList(o.Args, sub)}
	default:
		return nil
	}
}
