package types

// MaybeType is the `?T` form: T, implicitly widened with null and void.
// It stays a distinct node rather than desugaring to a union so that the
// display form round-trips and downstream error messages can say "maybe".
type MaybeType struct {
	Inner  Type
	Reason Reason
}

// NewMaybeType wraps the converted inner type.
func NewMaybeType(inner Type, reason Reason) *MaybeType {
	return &MaybeType{Inner: inner, Reason: reason}
}

func (m *MaybeType) String() string { return "?" + memberString(m.Inner) }
func (m *MaybeType) typeNode()      {}
func (m *MaybeType) Equals(other Type) bool {
	o, ok := other.(*MaybeType)
	return ok && m.Inner.Equals(o.Inner)
}
