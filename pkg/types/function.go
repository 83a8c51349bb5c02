package types

import (
	"fmt"
	"strings"
)

// --- Function Types ---

// Param is one declared parameter: the surface name is kept for display and
// for the annotated tree, but equality is structural and ignores it.
type Param struct {
	Name     string
	Type     Type
	Optional bool
}

func (p *Param) String() string {
	opt := ""
	if p.Optional {
		opt = "?"
	}
	if p.Name == "" {
		return opt + p.Type.String()
	}
	return fmt.Sprintf("%s%s: %s", p.Name, opt, p.Type.String())
}

// FunctionType is a callable signature: ordered parameters, an optional rest
// parameter, a return type and the type parameters that make it polymorphic
// (empty for monomorphic signatures).
type FunctionType struct {
	TypeParams []*TypeParameter
	Params     []*Param
	Rest       *Param
	Return     Type
	Reason     Reason
}

func (ft *FunctionType) String() string {
	var sb strings.Builder
	if len(ft.TypeParams) > 0 {
		names := make([]string, len(ft.TypeParams))
		for i, tp := range ft.TypeParams {
			names[i] = tp.String()
		}
		sb.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	sb.WriteString("(")
	for i, p := range ft.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	if ft.Rest != nil {
		if len(ft.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("..." + ft.Rest.String())
	}
	sb.WriteString(") => ")
	sb.WriteString(ft.Return.String())
	return sb.String()
}
func (ft *FunctionType) typeNode() {}

func (ft *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok {
		return false
	}
	if len(ft.TypeParams) != len(o.TypeParams) || len(ft.Params) != len(o.Params) {
		return false
	}
	for i, tp := range ft.TypeParams {
		if !tp.Equals(o.TypeParams[i]) {
			return false
		}
	}
	for i, p := range ft.Params {
		op := o.Params[i]
		if p.Optional != op.Optional || !p.Type.Equals(op.Type) {
			return false
		}
	}
	if (ft.Rest == nil) != (o.Rest == nil) {
		return false
	}
	if ft.Rest != nil && !ft.Rest.Type.Equals(o.Rest.Type) {
		return false
	}
	return ft.Return.Equals(o.Return)
}

// --- Predicate Function Types ---

// PredicateFunctionType is the $Pred<N> form: an abstract latent-predicate
// function over N parameters, consumed by the refinement machinery.
type PredicateFunctionType struct {
	ParamCount int
	Reason     Reason
}

func (pt *PredicateFunctionType) String() string {
	return fmt.Sprintf("$Pred<%d>", pt.ParamCount)
}
func (pt *PredicateFunctionType) typeNode() {}
func (pt *PredicateFunctionType) Equals(other Type) bool {
	o, ok := other.(*PredicateFunctionType)
	return ok && o.ParamCount == pt.ParamCount
}
