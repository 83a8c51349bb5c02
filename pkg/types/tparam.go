package types

import (
	"fmt"
	"strings"
)

// --- Type Parameters ---

// TypeParameter represents one declared generic parameter (e.g. T in
// Pair<T, U>). Created once per declaration site and never mutated after;
// the binder looks it up by name for the remainder of that declaration.
type TypeParameter struct {
	Name     string
	Polarity Polarity // declared variance sigil (+T / -T), Neutral when absent
	Bound    Type     // upper bound; defaults to mixed when unannotated
	Default  Type     // optional default type, nil when absent
	Reason   Reason
}

func (tp *TypeParameter) String() string {
	var sb strings.Builder
	sb.WriteString(tp.Polarity.String())
	sb.WriteString(tp.Name)
	if tp.Bound != nil && !IsMixed(tp.Bound) {
		fmt.Fprintf(&sb, ": %s", tp.Bound.String())
	}
	if tp.Default != nil {
		fmt.Fprintf(&sb, " = %s", tp.Default.String())
	}
	return sb.String()
}

func (tp *TypeParameter) Equals(other *TypeParameter) bool {
	if tp == nil || other == nil {
		return tp == other
	}
	return tp.Name == other.Name &&
		tp.Polarity == other.Polarity &&
		typesEqual(tp.Bound, other.Bound) &&
		typesEqual(tp.Default, other.Default)
}

// BoundTypeVar is a use of an enclosing type parameter inside its scope
// (the T in `(x: T) => T`). It references the parameter it was bound to.
type BoundTypeVar struct {
	Param  *TypeParameter
	Reason Reason
}

func NewBoundTypeVar(param *TypeParameter, reason Reason) *BoundTypeVar {
	return &BoundTypeVar{Param: param, Reason: reason}
}

func (bt *BoundTypeVar) String() string { return bt.Param.Name }
func (bt *BoundTypeVar) typeNode()      {}

// Equals compares by parameter name. Scoping guarantees a single name maps to
// a single parameter within one declaration, which is the only place two
// bound variables ever meet.
func (bt *BoundTypeVar) Equals(other Type) bool {
	o, ok := other.(*BoundTypeVar)
	return ok && bt.Param.Name == o.Param.Name
}

// --- Generic Aliases ---

// GenericType is a parameterized type alias before instantiation: the
// template registered by `type Pair<A, B> = [A, B]`. The body may contain
// BoundTypeVar references to the parameters; instantiation substitutes them.
type GenericType struct {
	Name       string
	TypeParams []*TypeParameter
	Body       Type
	Reason     Reason
}

func (g *GenericType) String() string {
	params := make([]string, len(g.TypeParams))
	for i, p := range g.TypeParams {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s<%s>", g.Name, strings.Join(params, ", "))
}
func (g *GenericType) typeNode() {}

func (g *GenericType) Equals(other Type) bool {
	o, ok := other.(*GenericType)
	if !ok {
		return false
	}
	if g.Name != o.Name || len(g.TypeParams) != len(o.TypeParams) {
		return false
	}
	for i, p := range g.TypeParams {
		if !p.Equals(o.TypeParams[i]) {
			return false
		}
	}
	return typesEqual(g.Body, o.Body)
}
