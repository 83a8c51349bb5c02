package types

// --- Intrinsic Types ---

// IntrinsicType is a compiler-provided type identified only by name: the
// top-level escape hatches (`Function`, `Object`) and the synthesized
// callable helper values (Function$Prototype$Apply, Object$Assign,
// $Facebookism$Idx, $Compose, ...). The checker treats each by name; they
// carry no structure of their own.
type IntrinsicType struct {
	Name   string
	Reason Reason
}

func NewIntrinsicType(name string, reason Reason) *IntrinsicType {
	return &IntrinsicType{Name: name, Reason: reason}
}

func (it *IntrinsicType) String() string { return it.Name }
func (it *IntrinsicType) typeNode()      {}
func (it *IntrinsicType) Equals(other Type) bool {
	o, ok := other.(*IntrinsicType)
	return ok && it.Name == o.Name
}
