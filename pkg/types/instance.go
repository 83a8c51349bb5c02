package types

import (
	"strings"
)

// --- Nominal Instances ---

// InstanceType is a nominal type application: a base (usually a SelfType or
// a value-derived class type) plus instantiated type arguments. Applied
// distinguishes `Foo<>` (explicit empty argument list) from bare `Foo`; the
// two are different values because only the bare form takes the
// argument-free instantiation path. Argument count is NOT validated here —
// the base's own signature may not be elaborated yet, so arity checking is
// the constraint engine's job.
type InstanceType struct {
	Base    Type
	Args    []Type
	Applied bool // true when an explicit <...> list was written, even if empty
	Reason  Reason
}

// NewBareInstance produces an instance with no argument list written.
func NewBareInstance(base Type, reason Reason) *InstanceType {
	return &InstanceType{Base: base, Reason: reason}
}

// NewAppliedInstance produces an instance with an explicit argument list,
// converted left to right by the caller. Empty args are legal.
func NewAppliedInstance(base Type, args []Type, reason Reason) *InstanceType {
	return &InstanceType{Base: base, Args: args, Applied: true, Reason: reason}
}

func (it *InstanceType) String() string {
	if !it.Applied {
		return it.Base.String()
	}
	parts := make([]string, len(it.Args))
	for i, a := range it.Args {
		parts[i] = a.String()
	}
	return it.Base.String() + "<" + strings.Join(parts, ", ") + ">"
}
func (it *InstanceType) typeNode() {}

func (it *InstanceType) Equals(other Type) bool {
	o, ok := other.(*InstanceType)
	if !ok {
		return false
	}
	if it.Applied != o.Applied {
		return false
	}
	if !it.Base.Equals(o.Base) {
		return false
	}
	return typeListsEqual(it.Args, o.Args)
}

// --- Value-Derived Types ---

// TypeofType marks a type obtained from a value (`typeof X`): the underlying
// value type is carried as-is but the node remembers it was value-derived,
// which matters for display and for downstream nominal reasoning.
type TypeofType struct {
	Underlying Type
	RefName    string // the dotted name as written, for display
	Reason     Reason
}

func NewTypeofType(underlying Type, refName string, reason Reason) *TypeofType {
	return &TypeofType{Underlying: underlying, RefName: refName, Reason: reason}
}

func (tt *TypeofType) String() string {
	if tt.RefName != "" {
		return "typeof " + tt.RefName
	}
	return "typeof " + tt.Underlying.String()
}
func (tt *TypeofType) typeNode() {}
func (tt *TypeofType) Equals(other Type) bool {
	o, ok := other.(*TypeofType)
	return ok && tt.Underlying.Equals(o.Underlying)
}

// --- Class Types ---

// ClassType is `Class<T>`: the type of the class object whose instances are
// T (the term-level constructor value, statics included).
type ClassType struct {
	Instance Type
	Reason   Reason
}

func NewClassType(instance Type, reason Reason) *ClassType {
	return &ClassType{Instance: instance, Reason: reason}
}

func (ct *ClassType) String() string { return "Class<" + ct.Instance.String() + ">" }
func (ct *ClassType) typeNode()      {}
func (ct *ClassType) Equals(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && ct.Instance.Equals(o.Instance)
}
