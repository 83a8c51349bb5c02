package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// utilityEntry is one row of the utility-type table: the exact argument
// count (minimum, when variadic) and the constructor run once arity holds.
type utilityEntry struct {
	arity    int
	variadic bool
	build    func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type
}

// refReason builds the provenance for a reference use site.
func (c *Checker) refReason(ref *ast.TypeReference) types.Reason {
	return types.MakeReason(fmt.Sprintf("'%s'", ref.FullName()), c.nodePosition(ref))
}

// applyUtility dispatches an unqualified reference against the utility
// table. The boolean reports whether the name was a table entry at all; on
// false the caller keeps resolving the name through the ordinary namespaces.
//
// Arity is checked before any argument is converted. A failure
// short-circuits with a parameter-count diagnostic and no partial
// conversion of the arguments.
func (c *Checker) applyUtility(ref *ast.TypeReference) (types.Type, bool) {
	if ref.IsQualified() {
		return nil, false
	}
	entry, ok := utilityTable[ref.Name.Value]
	if !ok {
		return nil, false
	}

	actual := len(ref.TypeArgs)
	if (entry.variadic && actual < entry.arity) || (!entry.variadic && actual != entry.arity) {
		c.addArityError(ref, ref.Name.Value, entry.arity, actual, entry.variadic)
		return types.NewAnyError(c.refReason(ref)), true
	}

	args := make([]types.Type, actual)
	for i, a := range ref.TypeArgs {
		args[i] = c.convertType(a)
	}
	return entry.build(c, ref, args, c.refReason(ref)), true
}

// opEntry wraps a single deferred operation over the converted arguments.
func opEntry(arity int, op func(args []types.Type) types.TypeOperation) utilityEntry {
	return utilityEntry{arity: arity, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		return types.NewEvalType(c.ctx.FreshEvalID(), op(args), reason)
	}}
}

// intrinsicEntry covers the zero-arity names that elaborate to a compiler
// intrinsic identified only by the written name.
func intrinsicEntry() utilityEntry {
	return utilityEntry{arity: 0, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		return types.NewIntrinsicType(ref.FullName(), reason)
	}}
}

// reactEntry covers the framework-interop projections.
func reactEntry(arity int, projection types.ReactProjection) utilityEntry {
	return opEntry(arity, func(args []types.Type) types.TypeOperation {
		return &types.ReactOp{Projection: projection, Args: args}
	})
}

// temporaryLiteralEntry recognizes the literal-reconstruction triple. The
// argument must already be a literal singleton of the matching primitive;
// these names are synthesized by the upstream expression checker rather than
// written by hand, so a mismatch is an internal consistency problem.
func temporaryLiteralEntry(kind types.PrimitiveKind) utilityEntry {
	return utilityEntry{arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		switch lit := args[0].(type) {
		case *types.NumberLiteralType:
			if kind == types.NumberKind {
				return types.NewNumberLiteral(lit.Value, reason)
			}
		case *types.StringLiteralType:
			if kind == types.StringKind {
				return types.NewStringLiteral(lit.Value, reason)
			}
		case *types.BooleanLiteralType:
			if kind == types.BooleanKind {
				return types.NewBooleanLiteral(lit.Value, reason)
			}
		}
		c.addElabError(ref, fmt.Sprintf("the type argument of '%s' must be a %s literal", ref.Name.Value, kind.Name()))
		return types.NewAnyError(reason)
	}}
}

// exactObject returns a copy of obj with the exactness flag forced on.
func exactObject(obj *types.ObjectType, reason types.Reason) *types.ObjectType {
	exact := *obj
	exact.Exact = true
	exact.Reason = reason
	return &exact
}

// integerLiteral extracts a non-negative integer from a numeric singleton.
func integerLiteral(t types.Type) (int, bool) {
	lit, ok := t.(*types.NumberLiteralType)
	if !ok {
		return 0, false
	}
	n := int(lit.Value)
	if float64(n) != lit.Value || n < 0 {
		return 0, false
	}
	return n, true
}

// utilityTable maps every built-in utility name to its entry. Entries are
// independent and order-insensitive; nothing here consults the environment,
// so none of these names can be shadowed by declarations.
var utilityTable = map[string]utilityEntry{
	"$TEMPORARY$number":  temporaryLiteralEntry(types.NumberKind),
	"$TEMPORARY$string":  temporaryLiteralEntry(types.StringKind),
	"$TEMPORARY$boolean": temporaryLiteralEntry(types.BooleanKind),

	"$TEMPORARY$object": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		obj, ok := args[0].(*types.ObjectType)
		if !ok {
			c.addElabError(ref, "the type argument of '$TEMPORARY$object' must be an object type")
			return types.NewAnyError(reason)
		}
		return exactObject(obj, reason)
	}},

	"$TEMPORARY$array": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		return types.NewArrayType(args[0], reason)
	}},

	"$PropertyType": {arity: 2, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		key, ok := args[1].(*types.StringLiteralType)
		if !ok {
			c.addElabError(ref, "the second type argument of '$PropertyType' must be a string literal")
			return types.NewAnyError(reason)
		}
		op := &types.PropertyProjection{Source: args[0], Key: key.Value}
		return types.NewEvalType(c.ctx.FreshEvalID(), op, reason)
	}},

	"$ElementType": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.ElementProjection{Source: args[0], Key: args[1]}
	}),

	"$Keys": opEntry(1, func(args []types.Type) types.TypeOperation {
		return &types.KeysOp{Source: args[0]}
	}),

	"$Enum": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		c.addDeprecation(ref, "'$Enum' is deprecated, use '$Keys' instead")
		return types.NewEvalType(c.ctx.FreshEvalID(), &types.KeysOp{Source: args[0]}, reason)
	}},

	"$Values": opEntry(1, func(args []types.Type) types.TypeOperation {
		return &types.ValuesOp{Source: args[0]}
	}),

	"$NonMaybeType": opEntry(1, func(args []types.Type) types.TypeOperation {
		return &types.NonMaybeOp{Source: args[0]}
	}),

	"$ReadOnly": opEntry(1, func(args []types.Type) types.TypeOperation {
		return &types.ReadOnlyOp{Source: args[0]}
	}),

	"$Shape": opEntry(1, func(args []types.Type) types.TypeOperation {
		return &types.ShapeOp{Source: args[0]}
	}),

	"$Diff": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.DiffOp{Source: args[0], Subtrahend: args[1]}
	}),

	"$Rest": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.RestOp{Source: args[0], Subtrahend: args[1]}
	}),

	"$Exact": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		if obj, ok := args[0].(*types.ObjectType); ok {
			return exactObject(obj, reason)
		}
		return types.NewExactType(args[0], reason)
	}},

	"$Call": {arity: 1, variadic: true, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		op := &types.CallOp{Fn: args[0], Args: args[1:]}
		return types.NewEvalType(c.ctx.FreshEvalID(), op, reason)
	}},

	"$TupleMap": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.TupleMapOp{Source: args[0], Fn: args[1]}
	}),

	"$ObjMap": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.ObjMapOp{Source: args[0], Fn: args[1]}
	}),

	"$ObjMapi": opEntry(2, func(args []types.Type) types.TypeOperation {
		return &types.ObjMapOp{Source: args[0], Fn: args[1], WithKey: true}
	}),

	"$Compose":        intrinsicEntry(),
	"$ComposeReverse": intrinsicEntry(),

	"$CharSet": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		lit, ok := args[0].(*types.StringLiteralType)
		if !ok {
			c.addElabError(ref, "the type argument of '$CharSet' must be a string literal")
			return types.NewAnyError(reason)
		}
		return types.NewCharSetType(lit.Value, reason)
	}},

	"$Supertype": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		c.addDeprecation(ref, "'$Supertype' is deprecated and unsound, use a bounded type parameter instead")
		return types.NewEvalType(c.ctx.FreshEvalID(), &types.BoundOp{Source: args[0], Super: true}, reason)
	}},

	"$Subtype": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		c.addDeprecation(ref, "'$Subtype' is deprecated and unsound, use a bounded type parameter instead")
		return types.NewEvalType(c.ctx.FreshEvalID(), &types.BoundOp{Source: args[0]}, reason)
	}},

	"$Pred": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		n, ok := integerLiteral(args[0])
		if !ok {
			c.addElabError(ref, "the type argument of '$Pred' must be an integer literal")
			return types.NewAnyError(reason)
		}
		return &types.PredicateFunctionType{ParamCount: n, Reason: reason}
	}},

	"$Refine": {arity: 3, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		index, ok := integerLiteral(args[2])
		if !ok {
			c.addElabError(ref, "the third type argument of '$Refine' must be an integer literal")
			return types.NewAnyError(reason)
		}
		op := &types.RefineOp{Base: args[0], Pred: args[1], Index: index}
		return types.NewEvalType(c.ctx.FreshEvalID(), op, reason)
	}},

	"this": {arity: 0, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		self := c.currentSelf()
		if self == nil {
			c.addElabError(ref, "cannot resolve 'this' outside of a class body")
			return types.NewAnyError(reason)
		}
		return &types.SelfType{ID: self.ID, Name: self.Name, Reason: reason}
	}},

	"Function": intrinsicEntry(),
	"Object":   intrinsicEntry(),

	"Class": {arity: 1, build: func(c *Checker, ref *ast.TypeReference, args []types.Type, reason types.Reason) types.Type {
		return types.NewClassType(args[0], reason)
	}},

	"Function$Prototype$Apply": intrinsicEntry(),
	"Function$Prototype$Bind":  intrinsicEntry(),
	"Function$Prototype$Call":  intrinsicEntry(),
	"Object$Assign":            intrinsicEntry(),
	"Object$GetPrototypeOf":    intrinsicEntry(),
	"Object$SetPrototypeOf":    intrinsicEntry(),
	"$Facebookism$Idx":         intrinsicEntry(),
	"React$CreateElement":      intrinsicEntry(),
	"React$CloneElement":       intrinsicEntry(),

	"React$AbstractComponent": reactEntry(2, types.ReactAbstractComponent),
	"React$Config":            reactEntry(2, types.ReactConfig),
	"React$ElementProps":      reactEntry(1, types.ReactElementProps),
	"React$ElementConfig":     reactEntry(1, types.ReactElementConfig),
	"React$ElementRef":        reactEntry(1, types.ReactElementRef),
	"React$ElementFactory":    reactEntry(1, types.ReactElementFactory),
}
