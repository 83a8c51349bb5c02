package types

import (
	"fmt"
	"strings"
)

// --- Properties and Indexers ---
//
// Property is the shared member representation for structural object types and
// for class/interface signatures. A property is exactly one of: a plain field
// (Type set), a method (Type set, Method true), or an accessor (Get and/or Set
// set, Type nil). Getter and setter under one name occupy a single Property.

type Property struct {
	Name     string
	Polarity Polarity
	Optional bool
	Method   bool
	Type     Type // field or method type; nil for pure accessors
	Get      Type // getter result type, when declared
	Set      Type // setter parameter type, when declared
}

// IsAccessor reports whether the property was declared with accessor syntax.
func (p *Property) IsAccessor() bool {
	return p.Get != nil || p.Set != nil
}

// ReadType is the type seen when reading the property.
func (p *Property) ReadType() Type {
	if p.Get != nil {
		return p.Get
	}
	return p.Type
}

// WriteType is the type required when writing the property.
func (p *Property) WriteType() Type {
	if p.Set != nil {
		return p.Set
	}
	return p.Type
}

func (p *Property) Equals(other *Property) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name &&
		p.Polarity == other.Polarity &&
		p.Optional == other.Optional &&
		p.Method == other.Method &&
		typesEqual(p.Type, other.Type) &&
		typesEqual(p.Get, other.Get) &&
		typesEqual(p.Set, other.Set)
}

func (p *Property) String() string {
	var sb strings.Builder
	sb.WriteString(p.Polarity.String())
	sb.WriteString(p.Name)
	if p.Optional {
		sb.WriteString("?")
	}
	if p.IsAccessor() {
		if p.Get != nil {
			fmt.Fprintf(&sb, ": get %s", p.Get.String())
		}
		if p.Set != nil {
			if p.Get != nil {
				sb.WriteString(" /")
			}
			fmt.Fprintf(&sb, " set %s", p.Set.String())
		}
		return sb.String()
	}
	fmt.Fprintf(&sb, ": %s", p.Type.String())
	return sb.String()
}

// Indexer is a dictionary entry `[name: KeyType]: ValueType`. An object type
// or signature carries at most one; the assembler rejects a second.
type Indexer struct {
	Name     string // display-only label for the key binder, may be empty
	KeyType  Type
	Value    Type
	Polarity Polarity
}

func (ix *Indexer) Equals(other *Indexer) bool {
	if ix == nil || other == nil {
		return ix == other
	}
	return ix.Polarity == other.Polarity &&
		ix.KeyType.Equals(other.KeyType) &&
		ix.Value.Equals(other.Value)
}

func (ix *Indexer) String() string {
	key := ix.KeyType.String()
	if ix.Name != "" {
		key = ix.Name + ": " + key
	}
	return fmt.Sprintf("%s[%s]: %s", ix.Polarity.String(), key, ix.Value.String())
}
