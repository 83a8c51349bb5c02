package types

import (
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// --- Structural Object Types ---

// ObjectType is a structurally-described object: a polarity-tagged field map,
// at most one indexer, zero or more call signatures, an optional prototype
// link and the exactness flags. Assembly (folding surface entries into one of
// these) lives in the checker; this type only holds the finished shape.
type ObjectType struct {
	Fields  map[string]*Property
	Indexer *Indexer
	Calls   []Type // call property signatures, first declared first
	Proto   Type   // prototype link, set by a plain `__proto__` field
	Exact   bool   // {| ... |} or top-level exact assertion
	Inexact bool   // explicit trailing `...`
	Reason  Reason
}

// NewObjectType allocates an empty, open object type.
func NewObjectType(reason Reason) *ObjectType {
	return &ObjectType{Fields: make(map[string]*Property), Reason: reason}
}

// Field returns the named property, or nil.
func (ot *ObjectType) Field(name string) *Property {
	return ot.Fields[name]
}

// FieldNames returns the field names in sorted order for canonical display.
func (ot *ObjectType) FieldNames() []string {
	names := maps.Keys(ot.Fields)
	sort.Strings(names)
	return names
}

func (ot *ObjectType) String() string {
	open, close := "{ ", " }"
	if ot.Exact {
		open, close = "{| ", " |}"
	}

	var parts []string
	for _, c := range ot.Calls {
		parts = append(parts, c.String())
	}
	for _, name := range ot.FieldNames() {
		parts = append(parts, ot.Fields[name].String())
	}
	if ot.Indexer != nil {
		parts = append(parts, ot.Indexer.String())
	}
	if ot.Proto != nil {
		parts = append(parts, "__proto__: "+ot.Proto.String())
	}
	if ot.Inexact {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		if ot.Exact {
			return "{||}"
		}
		return "{}"
	}
	return open + strings.Join(parts, ", ") + close
}
func (ot *ObjectType) typeNode() {}

func (ot *ObjectType) Equals(other Type) bool {
	o, ok := other.(*ObjectType)
	if !ok {
		return false
	}
	if ot.Exact != o.Exact || ot.Inexact != o.Inexact {
		return false
	}
	if len(ot.Fields) != len(o.Fields) {
		return false
	}
	for name, prop := range ot.Fields {
		if !prop.Equals(o.Fields[name]) {
			return false
		}
	}
	if !ot.Indexer.Equals(o.Indexer) {
		return false
	}
	if !typeListsEqual(ot.Calls, o.Calls) {
		return false
	}
	return typesEqual(ot.Proto, o.Proto)
}

// --- Exactness Assertion ---

// ExactType wraps an arbitrary type in an explicit exactness assertion
// ($Exact<T>, or the {| |} form applied to a type that is not yet a concrete
// object, e.g. a bound type variable). For concrete object types the Exact
// flag is set directly instead.
type ExactType struct {
	Inner  Type
	Reason Reason
}

func NewExactType(inner Type, reason Reason) *ExactType {
	return &ExactType{Inner: inner, Reason: reason}
}

func (et *ExactType) String() string { return "$Exact<" + et.Inner.String() + ">" }
func (et *ExactType) typeNode()      {}
func (et *ExactType) Equals(other Type) bool {
	o, ok := other.(*ExactType)
	return ok && et.Inner.Equals(o.Inner)
}
