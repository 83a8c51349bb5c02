package types

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// --- Class / Interface Signatures ---
//
// A signature is the nominal description of a declared class or interface.
// Bodies may reference their own self-type before the body is fully built
// (recursive methods, `this`), so signatures live in an arena and every
// internal self-reference goes through a SigID, never a structural pointer.
// The builder allocates the placeholder first, populates members into the
// arena slot, then seals it; a sealed signature is never mutated again.

// SigID is the arena identity of one signature.
type SigID uint32

// SigKind distinguishes class signatures from interface signatures.
type SigKind int

const (
	ClassSig SigKind = iota
	InterfaceSig
)

func (k SigKind) String() string {
	if k == ClassSig {
		return "class"
	}
	return "interface"
}

// Super describes a signature's super-type relationship.
type Super interface {
	superNode()
	String() string
}

// InterfaceSuper is the extends clause of an interface, plus whether any own
// call property makes the interface callable (affects prototype defaulting).
type InterfaceSuper struct {
	Extends  []Type
	Callable bool
}

func (s *InterfaceSuper) superNode() {}
func (s *InterfaceSuper) String() string {
	if len(s.Extends) == 0 {
		return ""
	}
	parts := make([]string, len(s.Extends))
	for i, e := range s.Extends {
		parts[i] = e.String()
	}
	return "extends " + strings.Join(parts, ", ")
}

// ClassSuper is the extends/mixins/implements description of a declared
// class. Implicit is set when no extends clause was written; ImplicitNull
// additionally marks the recognized builtin root class, whose implicit
// parent is `null` rather than the default object prototype.
type ClassSuper struct {
	Extends      Type // nil when implicit
	Implicit     bool
	ImplicitNull bool
	Mixins       []Type
	Implements   []Type
}

func (s *ClassSuper) superNode() {}
func (s *ClassSuper) String() string {
	var parts []string
	if s.Extends != nil {
		parts = append(parts, "extends "+s.Extends.String())
	} else if s.ImplicitNull {
		parts = append(parts, "extends null")
	}
	if len(s.Mixins) > 0 {
		names := make([]string, len(s.Mixins))
		for i, m := range s.Mixins {
			names[i] = m.String()
		}
		parts = append(parts, "mixins "+strings.Join(names, ", "))
	}
	if len(s.Implements) > 0 {
		names := make([]string, len(s.Implements))
		for i, m := range s.Implements {
			names[i] = m.String()
		}
		parts = append(parts, "implements "+strings.Join(names, ", "))
	}
	return strings.Join(parts, " ")
}

// Signature is one arena slot: identity, provenance, type parameters, super
// description and the own-member tables. Mutable until sealed.
type Signature struct {
	ID         SigID
	Kind       SigKind
	Name       string
	TypeParams []*TypeParameter
	Super      Super
	Members    map[string]*Property // instance members
	Statics    map[string]*Property // static members
	Indexer    *Indexer
	Calls      []Type // call property signatures, first declared first
	Ctor       Type   // constructor signature; classes only
	Reason     Reason

	sealed bool
}

// Seal freezes the signature. The builder calls this once the body fold and
// the well-formedness pass are done.
func (s *Signature) Seal() { s.sealed = true }

// Sealed reports whether construction has completed.
func (s *Signature) Sealed() bool { return s.sealed }

// Member returns the named instance member, or nil.
func (s *Signature) Member(name string) *Property { return s.Members[name] }

// Static returns the named static member, or nil.
func (s *Signature) Static(name string) *Property { return s.Statics[name] }

// MemberNames returns instance member names in sorted order.
func (s *Signature) MemberNames() []string {
	names := maps.Keys(s.Members)
	sort.Strings(names)
	return names
}

func (s *Signature) String() string {
	var sb strings.Builder
	sb.WriteString(s.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		params := make([]string, len(s.TypeParams))
		for i, p := range s.TypeParams {
			params[i] = p.String()
		}
		sb.WriteString("<" + strings.Join(params, ", ") + ">")
	}
	if s.Super != nil {
		if super := s.Super.String(); super != "" {
			sb.WriteString(" " + super)
		}
	}
	return sb.String()
}

// SigArena owns every signature built during one elaboration pass. IDs are
// dense indices into the slot slice.
type SigArena struct {
	sigs []*Signature
}

// NewSigArena creates an empty arena.
func NewSigArena() *SigArena {
	return &SigArena{}
}

// Allocate reserves a slot and returns the unsealed signature so the builder
// can populate it. The matching self-type is valid immediately, before any
// member exists.
func (a *SigArena) Allocate(kind SigKind, name string, reason Reason) *Signature {
	sig := &Signature{
		ID:      SigID(len(a.sigs)),
		Kind:    kind,
		Name:    name,
		Members: make(map[string]*Property),
		Statics: make(map[string]*Property),
		Reason:  reason,
	}
	a.sigs = append(a.sigs, sig)
	return sig
}

// Get returns the signature for an ID, or nil for a foreign ID.
func (a *SigArena) Get(id SigID) *Signature {
	if int(id) >= len(a.sigs) {
		return nil
	}
	return a.sigs[id]
}

// Len returns the number of allocated signatures.
func (a *SigArena) Len() int { return len(a.sigs) }

// --- Self Types ---

// SelfType is the type of instances of a signature, usable inside the body
// while the signature is still being populated. Resolution of members goes
// through the arena at constraint time.
type SelfType struct {
	ID     SigID
	Name   string // display name, duplicated from the signature for printing
	Reason Reason
}

// NewSelfType builds the placeholder self-type for an arena slot.
func NewSelfType(sig *Signature, reason Reason) *SelfType {
	return &SelfType{ID: sig.ID, Name: sig.Name, Reason: reason}
}

func (st *SelfType) String() string {
	if st.Name == "" {
		return fmt.Sprintf("<sig %d>", st.ID)
	}
	return st.Name
}
func (st *SelfType) typeNode() {}

// Equals is identity: two self-types are the same type exactly when they
// point at the same arena slot.
func (st *SelfType) Equals(other Type) bool {
	o, ok := other.(*SelfType)
	return ok && st.ID == o.ID
}
