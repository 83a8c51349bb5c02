package types

import (
	"fmt"
	"strconv"
	"strings"
)

// --- Deferred Type Operations ---
//
// An EvalType is a type-level operation that conversion cannot reduce: it is
// handed to the constraint engine later. The unique ID exists for memoization
// and for cyclic-reference safety (the engine evaluates each identity once);
// it is also the basis of equality, since two textually identical deferred
// operations written in two places are separate evaluation obligations.

// TypeOperation is the closed set of deferred operations.
type TypeOperation interface {
	String() string
	opNode()
}

// EvalType pairs a deferred operation with its unique identity.
type EvalType struct {
	ID     uint64
	Op     TypeOperation
	Reason Reason
}

// NewEvalType wraps an operation under a fresh identity. The ID comes from
// the typing context's allocator.
func NewEvalType(id uint64, op TypeOperation, reason Reason) *EvalType {
	return &EvalType{ID: id, Op: op, Reason: reason}
}

func (et *EvalType) String() string { return et.Op.String() }
func (et *EvalType) typeNode()      {}
func (et *EvalType) Equals(other Type) bool {
	o, ok := other.(*EvalType)
	return ok && et.ID == o.ID
}

// PropertyProjection is "the type of property Key in Source": produced by
// $PropertyType and by qualified-name resolution steps.
type PropertyProjection struct {
	Source Type
	Key    string
}

func (op *PropertyProjection) opNode() {}
func (op *PropertyProjection) String() string {
	return fmt.Sprintf("$PropertyType<%s, %s>", op.Source.String(), strconv.Quote(op.Key))
}

// ElementProjection is "the type of a computed-key access on Source", the
// $ElementType form. Unlike PropertyProjection the key is an arbitrary type.
type ElementProjection struct {
	Source Type
	Key    Type
}

func (op *ElementProjection) opNode() {}
func (op *ElementProjection) String() string {
	return fmt.Sprintf("$ElementType<%s, %s>", op.Source.String(), op.Key.String())
}

// KeysOp is $Keys<Source>: the union of Source's own property names as
// string singletons.
type KeysOp struct {
	Source Type
}

func (op *KeysOp) opNode()        {}
func (op *KeysOp) String() string { return fmt.Sprintf("$Keys<%s>", op.Source.String()) }

// ValuesOp is $Values<Source>: the union of Source's own property types.
type ValuesOp struct {
	Source Type
}

func (op *ValuesOp) opNode()        {}
func (op *ValuesOp) String() string { return fmt.Sprintf("$Values<%s>", op.Source.String()) }

// ReadOnlyOp is $ReadOnly<Source>: every field re-tagged covariant.
type ReadOnlyOp struct {
	Source Type
}

func (op *ReadOnlyOp) opNode()        {}
func (op *ReadOnlyOp) String() string { return fmt.Sprintf("$ReadOnly<%s>", op.Source.String()) }

// NonMaybeOp is $NonMaybeType<Source>: Source with null and void stripped.
type NonMaybeOp struct {
	Source Type
}

func (op *NonMaybeOp) opNode() {}
func (op *NonMaybeOp) String() string {
	return fmt.Sprintf("$NonMaybeType<%s>", op.Source.String())
}

// ShapeOp is $Shape<Source>: an object matching any subset of Source's
// fields, all optional.
type ShapeOp struct {
	Source Type
}

func (op *ShapeOp) opNode()        {}
func (op *ShapeOp) String() string { return fmt.Sprintf("$Shape<%s>", op.Source.String()) }

// DiffOp is $Diff<Source, Subtrahend>: Source minus Subtrahend's fields,
// ignoring exactness and own-ness. Not interchangeable with RestOp.
type DiffOp struct {
	Source     Type
	Subtrahend Type
}

func (op *DiffOp) opNode() {}
func (op *DiffOp) String() string {
	return fmt.Sprintf("$Diff<%s, %s>", op.Source.String(), op.Subtrahend.String())
}

// RestOp is $Rest<Source, Subtrahend>: the sound object-rest semantics,
// removing only own fields and respecting exactness.
type RestOp struct {
	Source     Type
	Subtrahend Type
}

func (op *RestOp) opNode() {}
func (op *RestOp) String() string {
	return fmt.Sprintf("$Rest<%s, %s>", op.Source.String(), op.Subtrahend.String())
}

// CallOp is $Call<Fn, Args...>: the result type of calling Fn with Args.
type CallOp struct {
	Fn   Type
	Args []Type
}

func (op *CallOp) opNode() {}
func (op *CallOp) String() string {
	parts := make([]string, 0, len(op.Args)+1)
	parts = append(parts, op.Fn.String())
	for _, a := range op.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("$Call<%s>", strings.Join(parts, ", "))
}

// TupleMapOp is $TupleMap<Source, Fn>: every element mapped through Fn.
type TupleMapOp struct {
	Source Type
	Fn     Type
}

func (op *TupleMapOp) opNode() {}
func (op *TupleMapOp) String() string {
	return fmt.Sprintf("$TupleMap<%s, %s>", op.Source.String(), op.Fn.String())
}

// ObjMapOp is $ObjMap / $ObjMapi <Source, Fn>: every property type mapped
// through Fn; WithKey additionally passes the key to Fn ($ObjMapi).
type ObjMapOp struct {
	Source  Type
	Fn      Type
	WithKey bool
}

func (op *ObjMapOp) opNode() {}
func (op *ObjMapOp) String() string {
	name := "$ObjMap"
	if op.WithKey {
		name = "$ObjMapi"
	}
	return fmt.Sprintf("%s<%s, %s>", name, op.Source.String(), op.Fn.String())
}

// SpreadMergeOp merges two or more finalized object pieces produced by the
// object assembler's spread folding. Right-biased: later sources override
// earlier field names. Exact applies the exactness flag to the merge target.
type SpreadMergeOp struct {
	Sources []Type
	Exact   bool
}

func (op *SpreadMergeOp) opNode() {}
func (op *SpreadMergeOp) String() string {
	parts := make([]string, len(op.Sources))
	for i, s := range op.Sources {
		parts[i] = "..." + s.String()
	}
	if op.Exact {
		return "{| " + strings.Join(parts, ", ") + " |}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// MixinOp projects the mixin-able member bundle out of a class value. Applied
// per `mixins` clause entry; distinct from ordinary inheritance.
type MixinOp struct {
	Source Type
}

func (op *MixinOp) opNode()        {}
func (op *MixinOp) String() string { return fmt.Sprintf("mixins %s", op.Source.String()) }

// RefineOp is $Refine<Base, Pred, Index>: Base refined by the Index-th
// parameter predicate of Pred.
type RefineOp struct {
	Base  Type
	Pred  Type
	Index int
}

func (op *RefineOp) opNode() {}
func (op *RefineOp) String() string {
	return fmt.Sprintf("$Refine<%s, %s, %d>", op.Base.String(), op.Pred.String(), op.Index)
}

// BoundOp is the deprecated $Supertype / $Subtype pair: an unsound one-sided
// bound. Super selects $Supertype. Both are processed and flagged, never
// rejected.
type BoundOp struct {
	Source Type
	Super  bool
}

func (op *BoundOp) opNode() {}
func (op *BoundOp) String() string {
	if op.Super {
		return fmt.Sprintf("$Supertype<%s>", op.Source.String())
	}
	return fmt.Sprintf("$Subtype<%s>", op.Source.String())
}

// ReactProjection enumerates the framework-interop projections.
type ReactProjection int

const (
	ReactElementProps ReactProjection = iota
	ReactElementConfig
	ReactElementRef
	ReactConfig
	ReactAbstractComponent
	ReactElementFactory
)

func (p ReactProjection) Name() string {
	switch p {
	case ReactElementProps:
		return "React$ElementProps"
	case ReactElementConfig:
		return "React$ElementConfig"
	case ReactElementRef:
		return "React$ElementRef"
	case ReactConfig:
		return "React$Config"
	case ReactAbstractComponent:
		return "React$AbstractComponent"
	case ReactElementFactory:
		return "React$ElementFactory"
	default:
		return "<unknown projection>"
	}
}

// ReactOp is one framework-interop projection over its converted arguments.
// Fixed-shape and table-driven; semantics live entirely in the engine.
type ReactOp struct {
	Projection ReactProjection
	Args       []Type
}

func (op *ReactOp) opNode() {}
func (op *ReactOp) String() string {
	parts := make([]string, len(op.Args))
	for i, a := range op.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", op.Projection.Name(), strings.Join(parts, ", "))
}
