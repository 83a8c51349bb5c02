package types

import (
	"fmt"
)

// --- Unresolved Type Variables ---

// TypeVariable is an open placeholder later unified by the constraint engine.
// Identity is the allocation ID handed out by the typing context.
type TypeVariable struct {
	ID     uint64
	Reason Reason
}

// NewTypeVariable wraps a context-allocated ID.
func NewTypeVariable(id uint64, reason Reason) *TypeVariable {
	return &TypeVariable{ID: id, Reason: reason}
}

func (tv *TypeVariable) String() string { return fmt.Sprintf("t%d", tv.ID) }
func (tv *TypeVariable) typeNode()      {}
func (tv *TypeVariable) Equals(other Type) bool {
	o, ok := other.(*TypeVariable)
	return ok && tv.ID == o.ID
}

// --- Existential Markers ---

// ExistsType is the `*` annotation inside a polymorphic body: a deferred
// existential that must not commit to one instantiation until the enclosing
// polymorphic type is applied. Outside any polymorphic body the converter
// forces a fresh TypeVariable instead of creating one of these.
type ExistsType struct {
	Reason Reason
}

func NewExistsType(reason Reason) *ExistsType {
	return &ExistsType{Reason: reason}
}

func (et *ExistsType) String() string { return "*" }
func (et *ExistsType) typeNode()      {}
func (et *ExistsType) Equals(other Type) bool {
	_, ok := other.(*ExistsType)
	return ok
}
