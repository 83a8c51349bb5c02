package ast

import (
	"bytes"
	"fmt"
	"strings"

	"brook/pkg/lexer"
	"brook/pkg/types"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a string representation of the node (for debugging)
}

// TypeNode is an annotation production. Every conversion entry point hands
// back the node it was given with the resolved type attached, so callers that
// want a fully-typed tree keep the node and callers that only want the type
// read ResolvedType and discard it.
type TypeNode interface {
	Node
	typeNode()
	ResolvedType() types.Type
	SetResolvedType(t types.Type)
}

// Declaration is a top-level declaration-file statement.
type Declaration interface {
	Node
	declarationNode()
}

// BaseTypeNode carries the resolved type for every annotation node.
type BaseTypeNode struct {
	Resolved types.Type
}

func (b *BaseTypeNode) ResolvedType() types.Type     { return b.Resolved }
func (b *BaseTypeNode) SetResolvedType(t types.Type) { b.Resolved = t }
func (b *BaseTypeNode) typeNode()                    {}

// resolvedSuffix renders the `/* type: ... */` debugging tail.
func resolvedSuffix(t types.Type) string {
	if t == nil {
		return ""
	}
	return fmt.Sprintf(" /* type: %s */", t.String())
}

// --- Program ---

// Program is the root node of a parsed declaration file.
type Program struct {
	Declarations []Declaration
}

func (p *Program) TokenLiteral() string {
	if len(p.Declarations) > 0 {
		return p.Declarations[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, d := range p.Declarations {
		out.WriteString(d.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Identifiers ---

// Identifier is a bare name, used for declaration names, qualifier parts,
// parameter names and identifier keys.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// --- Variance Sigils ---

// Variance is the declared variance sigil on a property, indexer or type
// parameter: none, `+` (covariant) or `-` (contravariant).
type Variance int

const (
	VarianceNone Variance = iota
	VarianceCo
	VarianceContra
)

func (v Variance) String() string {
	switch v {
	case VarianceCo:
		return "+"
	case VarianceContra:
		return "-"
	default:
		return ""
	}
}

// --- Type Reference ---

// TypeReference is a (possibly qualified, possibly applied) name in type
// position: `Foo`, `A.B.Foo`, `Foo<T, U>`, `Foo<>`. HasArgs distinguishes an
// explicit (even empty) argument list from an absent one; the two take
// different instantiation paths.
type TypeReference struct {
	BaseTypeNode
	Token      lexer.Token // the first identifier token
	Qualifiers []*Identifier
	Name       *Identifier
	TypeArgs   []TypeNode
	HasArgs    bool
}

func (tr *TypeReference) TokenLiteral() string { return tr.Token.Literal }

// IsQualified reports whether the reference is dotted.
func (tr *TypeReference) IsQualified() bool { return len(tr.Qualifiers) > 0 }

// FullName joins the qualifiers and name as written.
func (tr *TypeReference) FullName() string {
	if len(tr.Qualifiers) == 0 {
		return tr.Name.Value
	}
	parts := make([]string, 0, len(tr.Qualifiers)+1)
	for _, q := range tr.Qualifiers {
		parts = append(parts, q.Value)
	}
	parts = append(parts, tr.Name.Value)
	return strings.Join(parts, ".")
}

func (tr *TypeReference) String() string {
	var out bytes.Buffer
	out.WriteString(tr.FullName())
	if tr.HasArgs {
		args := make([]string, len(tr.TypeArgs))
		for i, a := range tr.TypeArgs {
			args[i] = a.String()
		}
		out.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	out.WriteString(resolvedSuffix(tr.Resolved))
	return out.String()
}

// --- Simple Type Forms ---

// NullableType is the `?T` annotation.
type NullableType struct {
	BaseTypeNode
	Token lexer.Token // the '?' token
	Inner TypeNode
}

func (nt *NullableType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NullableType) String() string {
	return "?" + nt.Inner.String() + resolvedSuffix(nt.Resolved)
}

// UnionType is an n-ary `A | B | C`. Members keep their written order.
type UnionType struct {
	BaseTypeNode
	Token   lexer.Token // the first '|' token
	Members []TypeNode
}

func (ut *UnionType) TokenLiteral() string { return ut.Token.Literal }
func (ut *UnionType) String() string {
	parts := make([]string, len(ut.Members))
	for i, m := range ut.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, " | ") + ")" + resolvedSuffix(ut.Resolved)
}

// IntersectionType is an n-ary `A & B & C`.
type IntersectionType struct {
	BaseTypeNode
	Token   lexer.Token // the first '&' token
	Members []TypeNode
}

func (it *IntersectionType) TokenLiteral() string { return it.Token.Literal }
func (it *IntersectionType) String() string {
	parts := make([]string, len(it.Members))
	for i, m := range it.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, " & ") + ")" + resolvedSuffix(it.Resolved)
}

// TypeofType is `typeof X`. The target must elaborate as a bare (non-applied)
// reference; anything else is a hard error for this subexpression.
type TypeofType struct {
	BaseTypeNode
	Token  lexer.Token // the 'typeof' token
	Target TypeNode
}

func (tt *TypeofType) TokenLiteral() string { return tt.Token.Literal }
func (tt *TypeofType) String() string {
	return "typeof " + tt.Target.String() + resolvedSuffix(tt.Resolved)
}

// TupleType is `[T0, T1, ...]`.
type TupleType struct {
	BaseTypeNode
	Token    lexer.Token // the '[' token
	Elements []TypeNode
}

func (tt *TupleType) TokenLiteral() string { return tt.Token.Literal }
func (tt *TupleType) String() string {
	parts := make([]string, len(tt.Elements))
	for i, e := range tt.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]" + resolvedSuffix(tt.Resolved)
}

// ArrayType is the postfix `T[]` form.
type ArrayType struct {
	BaseTypeNode
	Token   lexer.Token // the '[' token
	Element TypeNode
}

func (at *ArrayType) TokenLiteral() string { return at.Token.Literal }
func (at *ArrayType) String() string {
	return at.Element.String() + "[]" + resolvedSuffix(at.Resolved)
}

// ExistsType is the `*` existential annotation.
type ExistsType struct {
	BaseTypeNode
	Token lexer.Token // the '*' token
}

func (et *ExistsType) TokenLiteral() string { return et.Token.Literal }
func (et *ExistsType) String() string       { return "*" + resolvedSuffix(et.Resolved) }

// --- Literal Type Forms ---

// StringLiteralType is a string singleton annotation, e.g. `"on"`.
type StringLiteralType struct {
	BaseTypeNode
	Token lexer.Token
	Value string
}

func (st *StringLiteralType) TokenLiteral() string { return st.Token.Literal }
func (st *StringLiteralType) String() string {
	return fmt.Sprintf("%q", st.Value) + resolvedSuffix(st.Resolved)
}

// NumberLiteralType is a numeric singleton annotation, e.g. `1` or `-1`.
type NumberLiteralType struct {
	BaseTypeNode
	Token lexer.Token
	Value float64
	Raw   string // as written, including sign and base prefix
}

func (nt *NumberLiteralType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NumberLiteralType) String() string       { return nt.Raw + resolvedSuffix(nt.Resolved) }

// BooleanLiteralType is `true` or `false` in type position.
type BooleanLiteralType struct {
	BaseTypeNode
	Token lexer.Token
	Value bool
}

func (bt *BooleanLiteralType) TokenLiteral() string { return bt.Token.Literal }
func (bt *BooleanLiteralType) String() string {
	if bt.Value {
		return "true" + resolvedSuffix(bt.Resolved)
	}
	return "false" + resolvedSuffix(bt.Resolved)
}

// NullLiteralType is `null` in type position.
type NullLiteralType struct {
	BaseTypeNode
	Token lexer.Token
}

func (nt *NullLiteralType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NullLiteralType) String() string       { return "null" + resolvedSuffix(nt.Resolved) }

// --- Function Types ---

// FunctionParam is one declared parameter of a function type.
type FunctionParam struct {
	Name     *Identifier // nil for unnamed parameters `(number) => string`
	Type     TypeNode
	Optional bool
}

func (fp *FunctionParam) String() string {
	var out bytes.Buffer
	if fp.Name != nil {
		out.WriteString(fp.Name.Value)
		if fp.Optional {
			out.WriteString("?")
		}
		out.WriteString(": ")
	}
	out.WriteString(fp.Type.String())
	return out.String()
}

// TypeParam is one declared type parameter with optional variance sigil,
// bound and default: `+T: Bound = Default`.
type TypeParam struct {
	Token    lexer.Token // the name token (or sigil token when present)
	Name     *Identifier
	Variance Variance
	Bound    TypeNode // nil when unannotated
	Default  TypeNode // nil when absent
}

func (tp *TypeParam) TokenLiteral() string { return tp.Token.Literal }
func (tp *TypeParam) String() string {
	var out bytes.Buffer
	out.WriteString(tp.Variance.String())
	out.WriteString(tp.Name.Value)
	if tp.Bound != nil {
		out.WriteString(": " + tp.Bound.String())
	}
	if tp.Default != nil {
		out.WriteString(" = " + tp.Default.String())
	}
	return out.String()
}

// FunctionType is `<Ts>(params, ...rest) => Return`.
type FunctionType struct {
	BaseTypeNode
	Token      lexer.Token // the '<' or '(' token
	TypeParams []*TypeParam
	Params     []*FunctionParam
	Rest       *FunctionParam
	Return     TypeNode
}

func (ft *FunctionType) TokenLiteral() string { return ft.Token.Literal }

func (ft *FunctionType) paramString() string {
	var out bytes.Buffer
	if len(ft.TypeParams) > 0 {
		parts := make([]string, len(ft.TypeParams))
		for i, tp := range ft.TypeParams {
			parts[i] = tp.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	out.WriteString("(")
	for i, p := range ft.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	if ft.Rest != nil {
		if len(ft.Params) > 0 {
			out.WriteString(", ")
		}
		out.WriteString("..." + ft.Rest.String())
	}
	out.WriteString(")")
	return out.String()
}

// signatureString renders the method form `<Ts>(params): R` used inside
// object, interface and class bodies.
func (ft *FunctionType) signatureString() string {
	return ft.paramString() + ": " + ft.Return.String()
}

func (ft *FunctionType) String() string {
	return ft.paramString() + " => " + ft.Return.String() + resolvedSuffix(ft.Resolved)
}

// --- Object Types ---

// PropertyKey is the closed set of surface key shapes. Only identifier and
// string keys elaborate; the others are recognized so the assembler can
// reject them with a precise diagnostic.
type PropertyKey interface {
	String() string
	propertyKey()
}

// IdentKey is a plain identifier key.
type IdentKey struct {
	Name *Identifier
}

func (k *IdentKey) propertyKey()   {}
func (k *IdentKey) String() string { return k.Name.Value }

// StringKey is a string-literal key.
type StringKey struct {
	Token lexer.Token
	Value string
}

func (k *StringKey) propertyKey()   {}
func (k *StringKey) String() string { return fmt.Sprintf("%q", k.Value) }

// NumberKey is a numeric-literal key (always rejected by the assembler).
type NumberKey struct {
	Token lexer.Token
	Raw   string
}

func (k *NumberKey) propertyKey()   {}
func (k *NumberKey) String() string { return k.Raw }

// ComputedKey is a `[expr]` key (always rejected by the assembler).
type ComputedKey struct {
	Token lexer.Token
	Expr  TypeNode
}

func (k *ComputedKey) propertyKey()   {}
func (k *ComputedKey) String() string { return "[" + k.Expr.String() + "]" }

// PrivateKey is a `#name` key (always rejected by the assembler).
type PrivateKey struct {
	Token lexer.Token
	Name  *Identifier
}

func (k *PrivateKey) propertyKey()   {}
func (k *PrivateKey) String() string { return "#" + k.Name.Value }

// AccessorKind marks get/set accessor syntax on a property entry.
type AccessorKind int

const (
	AccessorNone AccessorKind = iota
	AccessorGet
	AccessorSet
)

// ObjectTypeEntry is the closed set of object-body entries.
type ObjectTypeEntry interface {
	String() string
	objectTypeEntry()
}

// PropertyEntry is a named field, method or accessor.
type PropertyEntry struct {
	Key      PropertyKey
	Value    TypeNode // for accessors: the full accessor function type
	Optional bool
	Variance Variance
	Method   bool
	Accessor AccessorKind
	Static   bool
}

func (pe *PropertyEntry) objectTypeEntry() {}
func (pe *PropertyEntry) String() string {
	var out bytes.Buffer
	if pe.Static {
		out.WriteString("static ")
	}
	switch pe.Accessor {
	case AccessorGet:
		out.WriteString("get ")
	case AccessorSet:
		out.WriteString("set ")
	}
	out.WriteString(pe.Variance.String())
	out.WriteString(pe.Key.String())
	if pe.Optional {
		out.WriteString("?")
	}
	if pe.Method || pe.Accessor != AccessorNone {
		if fn, ok := pe.Value.(*FunctionType); ok {
			out.WriteString(fn.signatureString())
			return out.String()
		}
	}
	out.WriteString(": ")
	out.WriteString(pe.Value.String())
	return out.String()
}

// IndexerEntry is `[name: KeyType]: ValueType`.
type IndexerEntry struct {
	Token    lexer.Token // the '[' token
	Name     *Identifier // optional key binder label
	Key      TypeNode
	Value    TypeNode
	Variance Variance
	Static   bool
}

func (ie *IndexerEntry) objectTypeEntry() {}
func (ie *IndexerEntry) String() string {
	var out bytes.Buffer
	if ie.Static {
		out.WriteString("static ")
	}
	out.WriteString(ie.Variance.String())
	out.WriteString("[")
	if ie.Name != nil {
		out.WriteString(ie.Name.Value + ": ")
	}
	out.WriteString(ie.Key.String())
	out.WriteString("]: ")
	out.WriteString(ie.Value.String())
	return out.String()
}

// CallEntry is a call property `(params): Return` or `<Ts>(params): Return`.
type CallEntry struct {
	Token  lexer.Token
	Fn     *FunctionType
	Static bool
}

func (ce *CallEntry) objectTypeEntry() {}
func (ce *CallEntry) String() string {
	if ce.Static {
		return "static " + ce.Fn.signatureString()
	}
	return ce.Fn.signatureString()
}

// SpreadEntry is `...T` inside an object type body.
type SpreadEntry struct {
	Token lexer.Token // the '...' token
	Arg   TypeNode
}

func (se *SpreadEntry) objectTypeEntry() {}
func (se *SpreadEntry) String() string   { return "..." + se.Arg.String() }

// InternalSlotEntry is `[[name]]: T`.
type InternalSlotEntry struct {
	Token    lexer.Token // the first '[' token
	Name     *Identifier
	Value    TypeNode
	Optional bool
	Method   bool
	Static   bool
}

func (ie *InternalSlotEntry) objectTypeEntry() {}
func (ie *InternalSlotEntry) String() string {
	var out bytes.Buffer
	if ie.Static {
		out.WriteString("static ")
	}
	out.WriteString("[[" + ie.Name.Value + "]]")
	if ie.Optional {
		out.WriteString("?")
	}
	if ie.Method {
		if fn, ok := ie.Value.(*FunctionType); ok {
			out.WriteString(fn.signatureString())
			return out.String()
		}
	}
	out.WriteString(": ")
	out.WriteString(ie.Value.String())
	return out.String()
}

// ObjectType is `{ ... }` / `{| ... |}`, also reused as the body of
// interface and declare-class declarations.
type ObjectType struct {
	BaseTypeNode
	Token   lexer.Token // the '{' or '{|' token
	Exact   bool
	Inexact bool // explicit trailing `...`
	Entries []ObjectTypeEntry
}

func (ot *ObjectType) TokenLiteral() string { return ot.Token.Literal }
func (ot *ObjectType) String() string {
	opener, closer := "{ ", " }"
	if ot.Exact {
		opener, closer = "{| ", " |}"
	}
	parts := make([]string, 0, len(ot.Entries)+1)
	for _, e := range ot.Entries {
		parts = append(parts, e.String())
	}
	if ot.Inexact {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return strings.TrimSpace(opener) + strings.TrimSpace(closer) + resolvedSuffix(ot.Resolved)
	}
	return opener + strings.Join(parts, ", ") + closer + resolvedSuffix(ot.Resolved)
}

// InterfaceType is an inline `interface { ... }` annotation.
type InterfaceType struct {
	BaseTypeNode
	Token   lexer.Token // the 'interface' token
	Extends []*TypeReference
	Body    *ObjectType
}

func (it *InterfaceType) TokenLiteral() string { return it.Token.Literal }
func (it *InterfaceType) String() string {
	var out bytes.Buffer
	out.WriteString("interface ")
	if len(it.Extends) > 0 {
		parts := make([]string, len(it.Extends))
		for i, e := range it.Extends {
			parts[i] = e.String()
		}
		out.WriteString("extends " + strings.Join(parts, ", ") + " ")
	}
	out.WriteString(it.Body.String())
	out.WriteString(resolvedSuffix(it.Resolved))
	return out.String()
}

// --- Declarations ---

// TypeAliasDeclaration is `type Name<Ts> = T;`.
type TypeAliasDeclaration struct {
	Token      lexer.Token // the 'type' token
	Name       *Identifier
	TypeParams []*TypeParam
	Aliased    TypeNode
}

func (d *TypeAliasDeclaration) declarationNode()     {}
func (d *TypeAliasDeclaration) TokenLiteral() string { return d.Token.Literal }
func (d *TypeAliasDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("type " + d.Name.Value)
	if len(d.TypeParams) > 0 {
		parts := make([]string, len(d.TypeParams))
		for i, tp := range d.TypeParams {
			parts[i] = tp.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	out.WriteString(" = " + d.Aliased.String() + ";")
	return out.String()
}

// InterfaceDeclaration is `interface Name<Ts> extends A, B { ... }`.
type InterfaceDeclaration struct {
	Token      lexer.Token // the 'interface' token
	Name       *Identifier
	TypeParams []*TypeParam
	Extends    []*TypeReference
	Body       *ObjectType
}

func (d *InterfaceDeclaration) declarationNode()     {}
func (d *InterfaceDeclaration) TokenLiteral() string { return d.Token.Literal }
func (d *InterfaceDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("interface " + d.Name.Value)
	if len(d.TypeParams) > 0 {
		parts := make([]string, len(d.TypeParams))
		for i, tp := range d.TypeParams {
			parts[i] = tp.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	if len(d.Extends) > 0 {
		parts := make([]string, len(d.Extends))
		for i, e := range d.Extends {
			parts[i] = e.String()
		}
		out.WriteString(" extends " + strings.Join(parts, ", "))
	}
	out.WriteString(" " + d.Body.String())
	return out.String()
}

// DeclareClassDeclaration is
// `declare class Name<Ts> extends E mixins M1, M2 implements I1 { ... }`.
type DeclareClassDeclaration struct {
	Token      lexer.Token // the 'declare' token
	Name       *Identifier
	TypeParams []*TypeParam
	Extends    *TypeReference // nil when implicit
	Mixins     []*TypeReference
	Implements []*TypeReference
	Body       *ObjectType
}

func (d *DeclareClassDeclaration) declarationNode()     {}
func (d *DeclareClassDeclaration) TokenLiteral() string { return d.Token.Literal }
func (d *DeclareClassDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("declare class " + d.Name.Value)
	if len(d.TypeParams) > 0 {
		parts := make([]string, len(d.TypeParams))
		for i, tp := range d.TypeParams {
			parts[i] = tp.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	if d.Extends != nil {
		out.WriteString(" extends " + d.Extends.String())
	}
	if len(d.Mixins) > 0 {
		parts := make([]string, len(d.Mixins))
		for i, m := range d.Mixins {
			parts[i] = m.String()
		}
		out.WriteString(" mixins " + strings.Join(parts, ", "))
	}
	if len(d.Implements) > 0 {
		parts := make([]string, len(d.Implements))
		for i, m := range d.Implements {
			parts[i] = m.String()
		}
		out.WriteString(" implements " + strings.Join(parts, ", "))
	}
	out.WriteString(" " + d.Body.String())
	return out.String()
}

// DeclareVarDeclaration is `declare var name: T;`.
type DeclareVarDeclaration struct {
	Token lexer.Token // the 'declare' token
	Name  *Identifier
	Type  TypeNode
}

func (d *DeclareVarDeclaration) declarationNode()     {}
func (d *DeclareVarDeclaration) TokenLiteral() string { return d.Token.Literal }
func (d *DeclareVarDeclaration) String() string {
	return "declare var " + d.Name.Value + ": " + d.Type.String() + ";"
}
