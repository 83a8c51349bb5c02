package types

import (
	"brook/pkg/errors"
)

// Type is the interface implemented by all type representations.
type Type interface {
	// String returns the canonical display form of the type.
	String() string
	// Equals checks if this type is structurally equivalent to another type.
	// Provenance (Reason) never participates in equality.
	Equals(other Type) bool

	// typeNode() is a marker method to ensure only types defined in this package
	// can be assigned to the Type interface. This keeps the type sum closed.
	typeNode()
}

// Reason records where and why a type node came into existence. It is carried
// by every type for diagnostics and never consulted for semantic comparison.
type Reason struct {
	Desc string          // human-readable description, e.g. `string literal "ab"`
	Pos  errors.Position // source location the type was derived from
}

// MakeReason builds a reason from a description and position.
func MakeReason(desc string, pos errors.Position) Reason {
	return Reason{Desc: desc, Pos: pos}
}

// Builtin builds a reason for types with no source location (predefined
// singletons, synthesized members).
func Builtin(desc string) Reason {
	return Reason{Desc: desc}
}

func (r Reason) String() string {
	if r.Pos.Line > 0 {
		return r.Desc
	}
	return r.Desc
}

// Polarity is the variance tag attached to fields and type parameters.
// It governs the safe substitution direction during constraint solving.
type Polarity int

const (
	Neutral  Polarity = iota // invariant (read-write)
	Positive                 // covariant (read-only positions)
	Negative                 // contravariant (write-only positions)
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "+"
	case Negative:
		return "-"
	default:
		return ""
	}
}

// typesEqual compares two optional types, treating two nils as equal.
func typesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// typeListsEqual compares two slices pairwise, in order.
func typeListsEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
