package types

import (
	"fmt"
	"strings"
)

// --- Array Types ---

// ArrayType represents a resizable array of a single element type.
type ArrayType struct {
	Element Type
	Reason  Reason
}

// NewArrayType wraps the converted element type.
func NewArrayType(element Type, reason Reason) *ArrayType {
	return &ArrayType{Element: element, Reason: reason}
}

func (at *ArrayType) String() string {
	return fmt.Sprintf("Array<%s>", at.Element.String())
}
func (at *ArrayType) typeNode() {}
func (at *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && at.Element.Equals(o.Element)
}

// --- Tuple Types ---

// TupleType represents a fixed-length, ordered element list. ElemUnion is the
// element type used when the tuple is read covariantly as an array: the union
// of all element types, the single element type for one-tuples, `empty` for
// zero-tuples. That union is a documented unsound approximation (writes
// through the array view are not restricted to the per-slot types), kept
// deliberately because downstream relies on the exact shape.
type TupleType struct {
	Elements  []Type
	ElemUnion Type
	Reason    Reason
}

// NewTupleType wraps the converted element types and synthesizes ElemUnion.
func NewTupleType(elements []Type, reason Reason) *TupleType {
	t := &TupleType{Elements: elements, Reason: reason}
	switch len(elements) {
	case 0:
		t.ElemUnion = NewPrimitive(EmptyKind, Builtin("empty tuple element"))
	case 1:
		t.ElemUnion = elements[0]
	default:
		members := make([]Type, len(elements))
		copy(members, elements)
		t.ElemUnion = NewUnionType(Builtin("tuple elements"), members...)
	}
	return t
}

func (tt *TupleType) String() string {
	parts := make([]string, len(tt.Elements))
	for i, e := range tt.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (tt *TupleType) typeNode() {}
func (tt *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok {
		return false
	}
	return typeListsEqual(tt.Elements, o.Elements)
}
