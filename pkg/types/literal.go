package types

import (
	"strconv"
)

// --- Literal Singleton Types ---
//
// A literal singleton is inhabited by exactly one value. Each carries a
// back-reference to its general type through General(), used when a literal
// must be widened (e.g. by the $TEMPORARY$ reconstruction intrinsics).

// StringLiteralType is the type of one specific string value.
type StringLiteralType struct {
	Value  string
	Reason Reason
}

func NewStringLiteral(value string, reason Reason) *StringLiteralType {
	return &StringLiteralType{Value: value, Reason: reason}
}

func (s *StringLiteralType) String() string { return strconv.Quote(s.Value) }
func (s *StringLiteralType) typeNode()      {}
func (s *StringLiteralType) Equals(other Type) bool {
	o, ok := other.(*StringLiteralType)
	return ok && o.Value == s.Value
}

// General returns the primitive this literal narrows.
func (s *StringLiteralType) General() Type { return String }

// NumberLiteralType is the type of one specific numeric value.
type NumberLiteralType struct {
	Value  float64
	Reason Reason
}

func NewNumberLiteral(value float64, reason Reason) *NumberLiteralType {
	return &NumberLiteralType{Value: value, Reason: reason}
}

func (n *NumberLiteralType) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}
func (n *NumberLiteralType) typeNode() {}
func (n *NumberLiteralType) Equals(other Type) bool {
	o, ok := other.(*NumberLiteralType)
	return ok && o.Value == n.Value
}

// General returns the primitive this literal narrows.
func (n *NumberLiteralType) General() Type { return Number }

// BooleanLiteralType is the type of `true` or of `false`.
type BooleanLiteralType struct {
	Value  bool
	Reason Reason
}

func NewBooleanLiteral(value bool, reason Reason) *BooleanLiteralType {
	return &BooleanLiteralType{Value: value, Reason: reason}
}

func (b *BooleanLiteralType) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *BooleanLiteralType) typeNode() {}
func (b *BooleanLiteralType) Equals(other Type) bool {
	o, ok := other.(*BooleanLiteralType)
	return ok && o.Value == b.Value
}

// General returns the primitive this literal narrows.
func (b *BooleanLiteralType) General() Type { return Boolean }
