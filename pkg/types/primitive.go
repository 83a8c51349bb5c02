package types

// --- Primitive Types ---

// PrimitiveKind identifies one of the fundamental, non-composite types.
type PrimitiveKind int

const (
	NumberKind PrimitiveKind = iota
	StringKind
	BooleanKind
	VoidKind
	NullKind
	MixedKind // top: every type flows into mixed
	EmptyKind // bottom: mixed's dual, no inhabitants
)

func (k PrimitiveKind) Name() string {
	switch k {
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case BooleanKind:
		return "boolean"
	case VoidKind:
		return "void"
	case NullKind:
		return "null"
	case MixedKind:
		return "mixed"
	case EmptyKind:
		return "empty"
	default:
		return "<unknown primitive>"
	}
}

// Primitive represents a fundamental, non-composite type. Unlike literal
// singletons it carries no value, only its kind and provenance.
type Primitive struct {
	Kind   PrimitiveKind
	Reason Reason
}

// NewPrimitive allocates a primitive carrying the provenance of its use site.
func NewPrimitive(kind PrimitiveKind, reason Reason) *Primitive {
	return &Primitive{Kind: kind, Reason: reason}
}

func (p *Primitive) String() string {
	return p.Kind.Name()
}
func (p *Primitive) typeNode() {}
func (p *Primitive) Equals(other Type) bool {
	// Primitives are allocated per use site so each one can carry its own
	// provenance; equality is by kind, never by pointer.
	o, ok := other.(*Primitive)
	return ok && o.Kind == p.Kind
}

// Pre-defined instances for contexts with no useful provenance
// (defaults, synthesized members, tests).
var (
	Number  = &Primitive{Kind: NumberKind, Reason: Builtin("number")}
	String  = &Primitive{Kind: StringKind, Reason: Builtin("string")}
	Boolean = &Primitive{Kind: BooleanKind, Reason: Builtin("boolean")}
	Void    = &Primitive{Kind: VoidKind, Reason: Builtin("void")}
	Null    = &Primitive{Kind: NullKind, Reason: Builtin("null")}
	Mixed   = &Primitive{Kind: MixedKind, Reason: Builtin("mixed")}
	Empty   = &Primitive{Kind: EmptyKind, Reason: Builtin("empty")}
)

// --- Any ---

// AnySource records how an `any` came to be. Diagnostic metadata only:
// two `any`s are equal regardless of source.
type AnySource int

const (
	AnyExplicit   AnySource = iota // written `any` in the source
	AnyError                       // substituted after a recorded elaboration error
	AnySuppressed                  // produced by a configured suppress-type name
)

// AnyType is the dynamic type. Everything flows into and out of it.
type AnyType struct {
	Source AnySource
	Reason Reason
}

// NewAny allocates an explicit `any`.
func NewAny(reason Reason) *AnyType {
	return &AnyType{Source: AnyExplicit, Reason: reason}
}

// NewAnyError allocates the error-recovery `any` substituted when an
// annotation cannot be elaborated. Conversion never unwinds; it records a
// diagnostic and returns one of these.
func NewAnyError(reason Reason) *AnyType {
	return &AnyType{Source: AnyError, Reason: reason}
}

// NewAnySuppressed allocates the `any` produced for suppress-type names.
func NewAnySuppressed(reason Reason) *AnyType {
	return &AnyType{Source: AnySuppressed, Reason: reason}
}

func (a *AnyType) String() string { return "any" }
func (a *AnyType) typeNode()      {}
func (a *AnyType) Equals(other Type) bool {
	_, ok := other.(*AnyType)
	return ok
}

// Any is the canonical explicit `any` for contexts with no provenance.
var Any = &AnyType{Source: AnyExplicit, Reason: Reason{Desc: "any"}}

// IsAnyError reports whether t is the error-recovery any.
func IsAnyError(t Type) bool {
	a, ok := t.(*AnyType)
	return ok && a.Source == AnyError
}

// IsMixed reports whether t is the mixed primitive.
func IsMixed(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == MixedKind
}

// IsEmpty reports whether t is the empty primitive.
func IsEmpty(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == EmptyKind
}
