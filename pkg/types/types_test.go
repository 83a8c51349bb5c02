package types

import (
	"testing"
)

func TestPrimitiveEqualityIgnoresProvenance(t *testing.T) {
	a := NewPrimitive(NumberKind, Builtin("first"))
	b := NewPrimitive(NumberKind, Builtin("second"))
	if !a.Equals(b) {
		t.Errorf("same-kind primitives with different reasons must be equal")
	}
	if a.Equals(String) {
		t.Errorf("number must not equal string")
	}
	if !Number.Equals(a) {
		t.Errorf("canonical Number must equal a fresh number primitive")
	}
}

func TestAnySourcesAreEqual(t *testing.T) {
	explicit := NewAny(Builtin("written any"))
	errTagged := NewAnyError(Builtin("recovered"))
	if !explicit.Equals(errTagged) {
		t.Errorf("any equality must ignore the source tag")
	}
	if !IsAnyError(errTagged) {
		t.Errorf("IsAnyError must see the error tag")
	}
	if IsAnyError(explicit) {
		t.Errorf("IsAnyError must reject the explicit any")
	}
}

func TestUnionKeepsOrderAndDuplicates(t *testing.T) {
	r := Builtin("test")

	ab := NewUnionType(r, Number, String)
	ba := NewUnionType(r, String, Number)
	if ab.Equals(ba) {
		t.Errorf("member order is significant: %s vs %s", ab, ba)
	}

	dup := NewUnionType(r, Number, Number)
	if len(dup.Members) != 2 {
		t.Errorf("duplicates must be preserved, got %d members", len(dup.Members))
	}

	nested := NewUnionType(r, Number, NewUnionType(r, String, Boolean))
	if len(nested.Members) != 2 {
		t.Errorf("nested unions must not be flattened, got %d members", len(nested.Members))
	}
	if nested.String() != "number | (string | boolean)" {
		t.Errorf("wrong display form: %s", nested.String())
	}
}

func TestTupleElementSynthesis(t *testing.T) {
	r := Builtin("test")

	tests := []struct {
		name     string
		elements []Type
		want     Type
	}{
		{"two elements", []Type{Number, String}, NewUnionType(r, Number, String)},
		{"one element", []Type{Number}, Number},
		{"empty", nil, Empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tup := NewTupleType(tt.elements, r)
			if !tup.ElemUnion.Equals(tt.want) {
				t.Errorf("element synthesis wrong: got %s, want %s", tup.ElemUnion, tt.want)
			}
		})
	}

	// The single-element case must be the element type itself, not a
	// one-armed union wrapper.
	single := NewTupleType([]Type{Number}, r)
	if _, isUnion := single.ElemUnion.(*UnionType); isUnion {
		t.Errorf("one-tuple element type must not be wrapped in a union")
	}
}

func TestCharSetCanonicalization(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"bab", "ab"},
		{"cba", "abc"},
		{"", ""},
		{"zzz", "z"},
	}

	for _, tt := range tests {
		got := CanonicalCharSet(tt.raw)
		if got != tt.want {
			t.Errorf("CanonicalCharSet(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	// Round-trip: building from the canonical form yields an equal type.
	first := NewCharSetType("bab", Builtin("test"))
	second := NewCharSetType(first.Chars, Builtin("test"))
	if !first.Equals(second) {
		t.Errorf("canonical round-trip must be equal: %s vs %s", first, second)
	}
	if first.String() != `$CharSet<"ab">` {
		t.Errorf("wrong display form: %s", first.String())
	}
}

func TestInstanceAppliedDistinction(t *testing.T) {
	arena := NewSigArena()
	sig := arena.Allocate(ClassSig, "Foo", Builtin("test"))
	self := NewSelfType(sig, Builtin("test"))

	bare := NewBareInstance(self, Builtin("test"))
	empty := NewAppliedInstance(self, nil, Builtin("test"))

	if bare.Equals(empty) {
		t.Errorf("Foo and Foo<> must be distinct values")
	}
	if bare.String() != "Foo" {
		t.Errorf("bare instance display wrong: %s", bare.String())
	}
	if empty.String() != "Foo<>" {
		t.Errorf("empty-applied instance display wrong: %s", empty.String())
	}
}

func TestSelfTypeIdentity(t *testing.T) {
	arena := NewSigArena()
	a := arena.Allocate(InterfaceSig, "Same", Builtin("test"))
	b := arena.Allocate(InterfaceSig, "Same", Builtin("test"))

	selfA1 := NewSelfType(a, Builtin("test"))
	selfA2 := NewSelfType(a, Builtin("elsewhere"))
	selfB := NewSelfType(b, Builtin("test"))

	if !selfA1.Equals(selfA2) {
		t.Errorf("self-types of one slot must be equal")
	}
	if selfA1.Equals(selfB) {
		t.Errorf("same-named signatures in different slots must stay distinct")
	}
}

func TestObjectTypeEquality(t *testing.T) {
	r := Builtin("test")

	mk := func() *ObjectType {
		o := NewObjectType(r)
		o.Fields["x"] = &Property{Name: "x", Type: Number}
		o.Fields["y"] = &Property{Name: "y", Type: String, Optional: true}
		return o
	}

	a, b := mk(), mk()
	if !a.Equals(b) {
		t.Errorf("structurally identical objects must be equal")
	}

	b.Exact = true
	if a.Equals(b) {
		t.Errorf("exactness must participate in equality")
	}

	c := mk()
	c.Fields["x"].Polarity = Positive
	if a.Equals(c) {
		t.Errorf("field polarity must participate in equality")
	}
}

func TestFunctionTypeEqualityIgnoresParamNames(t *testing.T) {
	r := Builtin("test")

	f1 := &FunctionType{
		Params: []*Param{{Name: "a", Type: Number}},
		Return: String,
		Reason: r,
	}
	f2 := &FunctionType{
		Params: []*Param{{Name: "b", Type: Number}},
		Return: String,
		Reason: r,
	}
	if !f1.Equals(f2) {
		t.Errorf("parameter names are display-only; types must be equal")
	}

	f3 := &FunctionType{
		Params: []*Param{{Name: "a", Type: Number, Optional: true}},
		Return: String,
		Reason: r,
	}
	if f1.Equals(f3) {
		t.Errorf("optionality must participate in equality")
	}
}

func TestMaybeDisplay(t *testing.T) {
	m := NewMaybeType(Number, Builtin("test"))
	if m.String() != "?number" {
		t.Errorf("wrong display: %s", m.String())
	}

	fn := &FunctionType{Params: nil, Return: Void, Reason: Builtin("test")}
	mf := NewMaybeType(fn, Builtin("test"))
	if mf.String() != "?(() => void)" {
		t.Errorf("function inside maybe needs parens: %s", mf.String())
	}
}

func TestEvalIdentity(t *testing.T) {
	r := Builtin("test")
	op := &KeysOp{Source: Number}

	e1 := NewEvalType(1, op, r)
	e2 := NewEvalType(2, op, r)
	e1b := NewEvalType(1, op, r)

	if e1.Equals(e2) {
		t.Errorf("distinct identities must not be equal even for one operation")
	}
	if !e1.Equals(e1b) {
		t.Errorf("same identity must be equal")
	}
	if e1.String() != "$Keys<number>" {
		t.Errorf("wrong display: %s", e1.String())
	}
}

func TestSignatureArena(t *testing.T) {
	arena := NewSigArena()
	sig := arena.Allocate(ClassSig, "Node", Builtin("test"))
	self := NewSelfType(sig, Builtin("test"))

	// Self-referential member added after the self-type exists.
	sig.Members["next"] = &Property{Name: "next", Type: NewMaybeType(self, Builtin("test"))}
	sig.Seal()

	got := arena.Get(sig.ID)
	if got == nil || !got.Sealed() {
		t.Fatalf("arena lookup failed or signature not sealed")
	}
	next := got.Member("next")
	if next == nil {
		t.Fatalf("member lookup failed")
	}
	if next.Type.String() != "?Node" {
		t.Errorf("self-referential member display wrong: %s", next.Type.String())
	}
	if arena.Get(SigID(99)) != nil {
		t.Errorf("foreign ID must return nil")
	}
}
