package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// ConvertAnnotation elaborates one surface annotation and returns the
// internal type together with the annotated node. Callers that only need the
// type discard the node; callers building a fully-typed tree keep both.
// Conversion never fails outright: semantic problems record a diagnostic on
// the context and substitute an error-tagged `any`, so sibling annotations
// still elaborate.
func (c *Checker) ConvertAnnotation(node ast.TypeNode) (types.Type, ast.TypeNode) {
	return c.convertType(node), node
}

// record stamps the resolved type onto the node and into the context's
// position table, then hands the type back. Every conversion result passes
// through here.
func (c *Checker) record(node ast.TypeNode, t types.Type) types.Type {
	node.SetResolvedType(t)
	c.ctx.RecordType(c.nodePosition(node), t)
	return t
}

// convertType is the recursive core of the elaborator: one case per
// annotation production, dispatching on syntactic shape.
func (c *Checker) convertType(node ast.TypeNode) types.Type {
	if node == nil {
		return types.Any
	}

	switch n := node.(type) {
	case *ast.TypeReference:
		return c.record(n, c.convertTypeReference(n))

	case *ast.NullableType:
		inner := c.convertType(n.Inner)
		reason := types.MakeReason("nullable type", c.nodePosition(n))
		return c.record(n, types.NewMaybeType(inner, reason))

	case *ast.UnionType:
		// Members keep written order; no flattening or deduplication here.
		members := make([]types.Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = c.convertType(m)
		}
		reason := types.MakeReason("union type", c.nodePosition(n))
		return c.record(n, types.NewUnionType(reason, members...))

	case *ast.IntersectionType:
		members := make([]types.Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = c.convertType(m)
		}
		reason := types.MakeReason("intersection type", c.nodePosition(n))
		return c.record(n, types.NewIntersectionType(reason, members...))

	case *ast.TypeofType:
		return c.record(n, c.convertTypeof(n))

	case *ast.TupleType:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.convertType(e)
		}
		reason := types.MakeReason("tuple type", c.nodePosition(n))
		return c.record(n, types.NewTupleType(elems, reason))

	case *ast.ArrayType:
		elem := c.convertType(n.Element)
		reason := types.MakeReason("array type", c.nodePosition(n))
		return c.record(n, types.NewArrayType(elem, reason))

	case *ast.ExistsType:
		return c.record(n, c.convertExists(n))

	case *ast.StringLiteralType:
		reason := types.MakeReason(fmt.Sprintf("string literal '%s'", n.Value), c.nodePosition(n))
		return c.record(n, types.NewStringLiteral(n.Value, reason))

	case *ast.NumberLiteralType:
		reason := types.MakeReason(fmt.Sprintf("number literal %s", n.Raw), c.nodePosition(n))
		return c.record(n, types.NewNumberLiteral(n.Value, reason))

	case *ast.BooleanLiteralType:
		reason := types.MakeReason(fmt.Sprintf("boolean literal %t", n.Value), c.nodePosition(n))
		return c.record(n, types.NewBooleanLiteral(n.Value, reason))

	case *ast.NullLiteralType:
		return c.record(n, types.NewPrimitive(types.NullKind, types.MakeReason("null", c.nodePosition(n))))

	case *ast.FunctionType:
		return c.record(n, c.convertFunctionType(n))

	case *ast.ObjectType:
		return c.record(n, c.convertObjectType(n))

	case *ast.InterfaceType:
		return c.record(n, c.convertInterfaceType(n))

	default:
		c.addUnsupported(node, fmt.Sprintf("unhandled annotation %T", node))
		return c.record(node, types.NewAnyError(types.MakeReason("error", c.nodePosition(node))))
	}
}

// convertTypeof elaborates `typeof X`. The target must be a bare reference,
// resolved through the value namespace; any other shape is a hard error for
// this subexpression only, never for the enclosing pass.
func (c *Checker) convertTypeof(node *ast.TypeofType) types.Type {
	ref, ok := node.Target.(*ast.TypeReference)
	if !ok || ref.HasArgs {
		c.addElabError(node, "the target of 'typeof' must be an identifier or qualified name")
		return types.NewAnyError(types.MakeReason("typeof", c.nodePosition(node)))
	}

	reason := types.MakeReason(fmt.Sprintf("typeof %s", ref.FullName()), c.nodePosition(node))
	underlying, ok := c.resolveValueRef(ref)
	if !ok {
		return c.record(ref, types.NewAnyError(reason))
	}
	c.record(ref, underlying)
	return types.NewTypeofType(underlying, ref.FullName(), reason)
}

// convertExists elaborates the `*` placeholder. Inside a polymorphic scope
// the decision is deferred so an enclosing application can pin it later;
// outside one, a fresh unresolved variable is forced immediately.
func (c *Checker) convertExists(node *ast.ExistsType) types.Type {
	reason := types.MakeReason("existential placeholder", c.nodePosition(node))
	if c.env.InPolymorphicScope() {
		return types.NewExistsType(reason)
	}
	return types.NewTypeVariable(c.ctx.FreshTypeVarID(), reason)
}

// primitiveKinds are the reserved names in type position. They shadow every
// user binding of the same name.
var primitiveKinds = map[string]types.PrimitiveKind{
	"number":  types.NumberKind,
	"string":  types.StringKind,
	"boolean": types.BooleanKind,
	"void":    types.VoidKind,
	"mixed":   types.MixedKind,
	"empty":   types.EmptyKind,
}

// convertTypeReference elaborates a possibly qualified, possibly applied
// name. Unqualified names resolve in a fixed order: reserved primitives,
// the utility table, bound type parameters, the suppress set, then the
// ambient type and value namespaces.
func (c *Checker) convertTypeReference(ref *ast.TypeReference) types.Type {
	if ref.IsQualified() {
		base, ok := c.resolveQualified(ref)
		if !ok {
			return types.NewAnyError(c.refReason(ref))
		}
		return c.applyNominal(ref, base)
	}

	name := ref.Name.Value
	debugPrintf("// [Checker Ref] Converting reference '%s' (hasArgs=%v)\n", name, ref.HasArgs)

	if kind, ok := primitiveKinds[name]; ok {
		if len(ref.TypeArgs) > 0 {
			c.addArityError(ref, name, 0, len(ref.TypeArgs), false)
		}
		return types.NewPrimitive(kind, c.refReason(ref))
	}
	if name == "any" {
		if len(ref.TypeArgs) > 0 {
			c.addArityError(ref, name, 0, len(ref.TypeArgs), false)
		}
		return types.NewAny(c.refReason(ref))
	}

	if t, ok := c.applyUtility(ref); ok {
		return t
	}

	if param, ok := c.env.ResolveTypeParameter(name); ok {
		if len(ref.TypeArgs) > 0 {
			c.addArityError(ref, name, 0, len(ref.TypeArgs), false)
		}
		return types.NewBoundTypeVar(param, c.refReason(ref))
	}

	if c.ctx.IsSuppressed(name) {
		// Arguments were parsed but are deliberately not elaborated.
		return types.NewAnySuppressed(c.refReason(ref))
	}

	if t, ok := c.env.ResolveType(name); ok {
		return c.applyAliasOrNominal(ref, t)
	}
	if t, ok := c.env.Resolve(name); ok {
		return c.applyNominal(ref, t)
	}

	c.addUnresolved(ref, name, "type")
	return types.NewAnyError(c.refReason(ref))
}

// applyAliasOrNominal applies a type-namespace resolution. Aliases are
// transparent: a parameterized alias instantiates eagerly, a plain alias
// passes through unchanged. Class and interface names take the nominal
// instance path.
func (c *Checker) applyAliasOrNominal(ref *ast.TypeReference, t types.Type) types.Type {
	switch typ := t.(type) {
	case *types.GenericType:
		if !ref.HasArgs {
			return typ
		}
		inst, err := c.eng.Instantiate(typ, c.convertArgs(ref))
		if err != nil {
			c.addElabError(ref, err.Error())
		}
		return inst

	case *types.SelfType:
		return c.applyNominal(ref, typ)

	default:
		// Non-generic alias. Arguments still elaborate for the side table,
		// but the alias body is what the reference means.
		if ref.HasArgs {
			c.convertArgs(ref)
		}
		return t
	}
}

// applyNominal is the shared application path for nominal references: no
// argument list produces a bare instance, an explicit list produces an
// applied instance with each argument converted left to right. Argument
// count is never checked here; the referenced signature may not be
// elaborated yet, so arity belongs to the constraint engine.
func (c *Checker) applyNominal(ref *ast.TypeReference, base types.Type) types.Type {
	reason := c.refReason(ref)
	if !ref.HasArgs {
		return types.NewBareInstance(base, reason)
	}
	return types.NewAppliedInstance(base, c.convertArgs(ref), reason)
}

func (c *Checker) convertArgs(ref *ast.TypeReference) []types.Type {
	args := make([]types.Type, len(ref.TypeArgs))
	for i, a := range ref.TypeArgs {
		args[i] = c.convertType(a)
	}
	return args
}
