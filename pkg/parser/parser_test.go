package parser

import (
	"testing"

	"brook/pkg/ast"
	"brook/pkg/lexer"
)

func TestTypeAliasDeclarations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type ID = number;", "type ID = number;"},
		{"type S = 'on';", `type S = "on";`},
		{"type N = -1;", "type N = -1;"},
		{"type Flag = true;", "type Flag = true;"},
		{"type Nil = null;", "type Nil = null;"},
		{"type MaybeNum = ?number;", "type MaybeNum = ?number;"},
		{"type Cells = string[];", "type Cells = string[];"},
		{"type Grid = string[][];", "type Grid = string[][];"},
		{"type Pair<A, B> = [A, B];", "type Pair<A, B> = [A, B];"},
		{"type Empty = [];", "type Empty = [];"},
		{"type T = typeof x;", "type T = typeof x;"},
		{"type T = typeof A.b;", "type T = typeof A.b;"},
		{"type T = Array<*>;", "type T = Array<*>;"},
		{"type T = A.B.C<number>;", "type T = A.B.C<number>;"},
		{"type T = Foo<>;", "type T = Foo<>;"},
		{"type F = (x: number, string) => void;", "type F = (x: number, string) => void;"},
		{"type F = (...args: string[]) => void;", "type F = (...args: string[]) => void;"},
		{"type F = <T: mixed>(x: T) => T;", "type F = <T: mixed>(x: T) => T;"},
		{"type G = (number);", "type G = number;"},
		{"type I = interface { m(): void };", "type I = interface { m(): void };"},
	}

	for i, tt := range tests {
		l := lexer.NewLexer(tt.input)
		p := NewParser(l)
		program, parseErrs := p.ParseProgram()

		if len(parseErrs) != 0 {
			t.Errorf("tests[%d]: parser had %d errors:", i, len(parseErrs))
			for _, err := range parseErrs {
				t.Errorf("  %s", err.Error())
			}
			continue
		}
		if len(program.Declarations) != 1 {
			t.Errorf("tests[%d]: expected 1 declaration, got %d", i, len(program.Declarations))
			continue
		}
		decl, ok := program.Declarations[0].(*ast.TypeAliasDeclaration)
		if !ok {
			t.Errorf("tests[%d]: expected TypeAliasDeclaration, got %T", i, program.Declarations[0])
			continue
		}
		if actual := decl.String(); actual != tt.expected {
			t.Errorf("tests[%d]: expected %q, got %q", i, tt.expected, actual)
		}
	}
}

func TestUnionIntersectionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type T = A | B;", "type T = (A | B);"},
		{"type T = A | B & C;", "type T = (A | (B & C));"},
		{"type T = A & B | C;", "type T = ((A & B) | C);"},
		{"type T = ?A | B;", "type T = (?A | B);"},
		{"type T = ?A[];", "type T = ?A[];"},
		{"type T = A[] | B;", "type T = (A[] | B);"},
		{"type T = (A | B)[];", "type T = (A | B)[];"},
		{"type T = | A | B;", "type T = (A | B);"},
		{"type T = & A & B;", "type T = (A & B);"},
	}

	for i, tt := range tests {
		l := lexer.NewLexer(tt.input)
		p := NewParser(l)
		program, parseErrs := p.ParseProgram()

		if len(parseErrs) != 0 {
			t.Errorf("tests[%d] (%q): parser had %d errors:", i, tt.input, len(parseErrs))
			for _, err := range parseErrs {
				t.Errorf("  %s", err.Error())
			}
			continue
		}
		if len(program.Declarations) != 1 {
			t.Errorf("tests[%d]: expected 1 declaration, got %d", i, len(program.Declarations))
			continue
		}
		if actual := program.Declarations[0].String(); actual != tt.expected {
			t.Errorf("tests[%d]: expected %q, got %q", i, tt.expected, actual)
		}
	}
}

// A | B | C must come back as one three-member node, not nested pairs.
// Parenthesized members keep their own nesting.
func TestUnionIsNAry(t *testing.T) {
	l := lexer.NewLexer("type T = A | B | C;")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}

	alias := program.Declarations[0].(*ast.TypeAliasDeclaration)
	union, ok := alias.Aliased.(*ast.UnionType)
	if !ok {
		t.Fatalf("expected UnionType, got %T", alias.Aliased)
	}
	if len(union.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(union.Members))
	}
	for j, want := range []string{"A", "B", "C"} {
		if got := union.Members[j].String(); got != want {
			t.Errorf("member %d: expected %q, got %q", j, want, got)
		}
	}

	l = lexer.NewLexer("type T = (A | B) | C;")
	p = NewParser(l)
	program, parseErrs = p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	alias = program.Declarations[0].(*ast.TypeAliasDeclaration)
	union = alias.Aliased.(*ast.UnionType)
	if len(union.Members) != 2 {
		t.Fatalf("expected 2 members for parenthesized union, got %d", len(union.Members))
	}
	if _, ok := union.Members[0].(*ast.UnionType); !ok {
		t.Errorf("expected nested UnionType first member, got %T", union.Members[0])
	}
}

func TestTypeReferenceShapes(t *testing.T) {
	tests := []struct {
		input          string
		wantQualifiers int
		wantName       string
		wantHasArgs    bool
		wantArgCount   int
	}{
		{"type T = Foo;", 0, "Foo", false, 0},
		{"type T = Foo<>;", 0, "Foo", true, 0},
		{"type T = Foo<number>;", 0, "Foo", true, 1},
		{"type T = A.B.Foo<number, string>;", 2, "Foo", true, 2},
		{"type T = $Keys<O>;", 0, "$Keys", true, 1},
		{"type T = React$ElementRef<C>;", 0, "React$ElementRef", true, 1},
	}

	for i, tt := range tests {
		l := lexer.NewLexer(tt.input)
		p := NewParser(l)
		program, parseErrs := p.ParseProgram()
		if len(parseErrs) != 0 {
			t.Errorf("tests[%d]: parser errors: %v", i, parseErrs)
			continue
		}
		alias := program.Declarations[0].(*ast.TypeAliasDeclaration)
		ref, ok := alias.Aliased.(*ast.TypeReference)
		if !ok {
			t.Errorf("tests[%d]: expected TypeReference, got %T", i, alias.Aliased)
			continue
		}
		if len(ref.Qualifiers) != tt.wantQualifiers {
			t.Errorf("tests[%d]: expected %d qualifiers, got %d", i, tt.wantQualifiers, len(ref.Qualifiers))
		}
		if ref.Name.Value != tt.wantName {
			t.Errorf("tests[%d]: expected name %q, got %q", i, tt.wantName, ref.Name.Value)
		}
		if ref.HasArgs != tt.wantHasArgs {
			t.Errorf("tests[%d]: expected HasArgs=%v, got %v", i, tt.wantHasArgs, ref.HasArgs)
		}
		if len(ref.TypeArgs) != tt.wantArgCount {
			t.Errorf("tests[%d]: expected %d type args, got %d", i, tt.wantArgCount, len(ref.TypeArgs))
		}
	}
}

func TestTypeParams(t *testing.T) {
	l := lexer.NewLexer("type T<+A: number = 1, -B, C> = A;")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}

	alias := program.Declarations[0].(*ast.TypeAliasDeclaration)
	if len(alias.TypeParams) != 3 {
		t.Fatalf("expected 3 type params, got %d", len(alias.TypeParams))
	}

	a := alias.TypeParams[0]
	if a.Name.Value != "A" || a.Variance != ast.VarianceCo {
		t.Errorf("param A: got name %q variance %v", a.Name.Value, a.Variance)
	}
	if a.Bound == nil || a.Bound.String() != "number" {
		t.Errorf("param A: expected bound number, got %v", a.Bound)
	}
	if a.Default == nil || a.Default.String() != "1" {
		t.Errorf("param A: expected default 1, got %v", a.Default)
	}

	b := alias.TypeParams[1]
	if b.Name.Value != "B" || b.Variance != ast.VarianceContra {
		t.Errorf("param B: got name %q variance %v", b.Name.Value, b.Variance)
	}
	if b.Bound != nil || b.Default != nil {
		t.Errorf("param B: expected no bound/default")
	}

	c := alias.TypeParams[2]
	if c.Name.Value != "C" || c.Variance != ast.VarianceNone {
		t.Errorf("param C: got name %q variance %v", c.Name.Value, c.Variance)
	}
}

func TestObjectTypeBodies(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type T = { x: number, y?: string };", "type T = { x: number, y?: string };"},
		{"type T = {| x: number |};", "type T = {| x: number |};"},
		{"type T = {};", "type T = {};"},
		{"type T = { x: number, ... };", "type T = { x: number, ... };"},
		{"type T = { ...Props, y: number };", "type T = { ...Props, y: number };"},
		{"type T = { [key: string]: number };", "type T = { [key: string]: number };"},
		{"type T = { [string]: number };", "type T = { [string]: number };"},
		{"type T = { +[key: string]: number };", "type T = { +[key: string]: number };"},
		{"type T = { [[call]]: F };", "type T = { [[call]]: F };"},
		{"type T = { get x(): number, set x(v: number): void };", "type T = { get x(): number, set x(v: number): void };"},
		{"type T = { m(a: A): B };", "type T = { m(a: A): B };"},
		{"type T = { (x: number): string };", "type T = { (x: number): string };"},
		{"type T = { <U>(x: U): U };", "type T = { <U>(x: U): U };"},
		{"type T = { 'quoted-key': number };", `type T = { "quoted-key": number };`},
		{"type T = { +ro: number, -wo: string };", "type T = { +ro: number, -wo: string };"},
		{"type T = { x: number; y: string };", "type T = { x: number, y: string };"},
		{"type T = { __proto__: P };", "type T = { __proto__: P };"},
	}

	for i, tt := range tests {
		l := lexer.NewLexer(tt.input)
		p := NewParser(l)
		program, parseErrs := p.ParseProgram()
		if len(parseErrs) != 0 {
			t.Errorf("tests[%d] (%q): parser errors:", i, tt.input)
			for _, err := range parseErrs {
				t.Errorf("  %s", err.Error())
			}
			continue
		}
		if actual := program.Declarations[0].String(); actual != tt.expected {
			t.Errorf("tests[%d]: expected %q, got %q", i, tt.expected, actual)
		}
	}
}

// `[K]: V` is an indexer; `[K]?: V` is a computed key. The elaborator rejects
// computed keys, so the parser has to keep the two shapes distinct.
func TestIndexerVersusComputedKey(t *testing.T) {
	l := lexer.NewLexer("type T = { [K]: V };")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	obj := program.Declarations[0].(*ast.TypeAliasDeclaration).Aliased.(*ast.ObjectType)
	if _, ok := obj.Entries[0].(*ast.IndexerEntry); !ok {
		t.Fatalf("expected IndexerEntry, got %T", obj.Entries[0])
	}

	l = lexer.NewLexer("type T = { [K]?: V };")
	p = NewParser(l)
	program, parseErrs = p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	obj = program.Declarations[0].(*ast.TypeAliasDeclaration).Aliased.(*ast.ObjectType)
	prop, ok := obj.Entries[0].(*ast.PropertyEntry)
	if !ok {
		t.Fatalf("expected PropertyEntry, got %T", obj.Entries[0])
	}
	if _, ok := prop.Key.(*ast.ComputedKey); !ok {
		t.Fatalf("expected ComputedKey, got %T", prop.Key)
	}
	if !prop.Optional {
		t.Errorf("expected optional computed property")
	}
}

func TestRejectedKeyShapesParse(t *testing.T) {
	l := lexer.NewLexer("type T = { 1: A, #priv: B };")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	obj := program.Declarations[0].(*ast.TypeAliasDeclaration).Aliased.(*ast.ObjectType)
	if len(obj.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(obj.Entries))
	}
	num := obj.Entries[0].(*ast.PropertyEntry)
	if _, ok := num.Key.(*ast.NumberKey); !ok {
		t.Errorf("expected NumberKey, got %T", num.Key)
	}
	priv := obj.Entries[1].(*ast.PropertyEntry)
	if _, ok := priv.Key.(*ast.PrivateKey); !ok {
		t.Errorf("expected PrivateKey, got %T", priv.Key)
	}
}

func TestInterfaceDeclaration(t *testing.T) {
	input := "interface Readable<T> extends Base, Closer { read(): T, +length: number }"
	l := lexer.NewLexer(input)
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}

	decl, ok := program.Declarations[0].(*ast.InterfaceDeclaration)
	if !ok {
		t.Fatalf("expected InterfaceDeclaration, got %T", program.Declarations[0])
	}
	if decl.Name.Value != "Readable" {
		t.Errorf("expected name Readable, got %q", decl.Name.Value)
	}
	if len(decl.TypeParams) != 1 || decl.TypeParams[0].Name.Value != "T" {
		t.Errorf("expected one type param T")
	}
	if len(decl.Extends) != 2 {
		t.Fatalf("expected 2 extends, got %d", len(decl.Extends))
	}
	if decl.Extends[0].Name.Value != "Base" || decl.Extends[1].Name.Value != "Closer" {
		t.Errorf("wrong extends names: %s, %s", decl.Extends[0].Name.Value, decl.Extends[1].Name.Value)
	}
	if len(decl.Body.Entries) != 2 {
		t.Fatalf("expected 2 body entries, got %d", len(decl.Body.Entries))
	}
}

func TestDeclareClassDeclaration(t *testing.T) {
	input := `declare class Box<T> extends Base mixins HasId, Taggable implements Sized {
		constructor(v: T): void;
		value: T;
		static create(v: T): Box<T>;
		get size(): number;
		#hidden: number;
	}`
	l := lexer.NewLexer(input)
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}

	decl, ok := program.Declarations[0].(*ast.DeclareClassDeclaration)
	if !ok {
		t.Fatalf("expected DeclareClassDeclaration, got %T", program.Declarations[0])
	}
	if decl.Name.Value != "Box" {
		t.Errorf("expected name Box, got %q", decl.Name.Value)
	}
	if decl.Extends == nil || decl.Extends.Name.Value != "Base" {
		t.Errorf("expected extends Base")
	}
	if len(decl.Mixins) != 2 || decl.Mixins[0].Name.Value != "HasId" || decl.Mixins[1].Name.Value != "Taggable" {
		t.Errorf("wrong mixins")
	}
	if len(decl.Implements) != 1 || decl.Implements[0].Name.Value != "Sized" {
		t.Errorf("wrong implements")
	}
	if len(decl.Body.Entries) != 5 {
		t.Fatalf("expected 5 body entries, got %d", len(decl.Body.Entries))
	}

	ctor := decl.Body.Entries[0].(*ast.PropertyEntry)
	if !ctor.Method || ctor.Key.String() != "constructor" {
		t.Errorf("expected constructor method entry, got %s", ctor.String())
	}
	static := decl.Body.Entries[2].(*ast.PropertyEntry)
	if !static.Static || !static.Method {
		t.Errorf("expected static method entry, got %s", static.String())
	}
	getter := decl.Body.Entries[3].(*ast.PropertyEntry)
	if getter.Accessor != ast.AccessorGet {
		t.Errorf("expected getter entry, got %s", getter.String())
	}
}

func TestDeclareVarDeclaration(t *testing.T) {
	l := lexer.NewLexer("declare var registry: { [name: string]: Handler };")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}

	decl, ok := program.Declarations[0].(*ast.DeclareVarDeclaration)
	if !ok {
		t.Fatalf("expected DeclareVarDeclaration, got %T", program.Declarations[0])
	}
	if decl.Name.Value != "registry" {
		t.Errorf("expected name registry, got %q", decl.Name.Value)
	}
	if _, ok := decl.Type.(*ast.ObjectType); !ok {
		t.Errorf("expected ObjectType annotation, got %T", decl.Type)
	}
}

func TestParseTypeAnnotationStandalone(t *testing.T) {
	l := lexer.NewLexer("?{ ok: boolean }")
	p := NewParser(l)
	node, errs := p.ParseTypeAnnotation()
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	if _, ok := node.(*ast.NullableType); !ok {
		t.Fatalf("expected NullableType, got %T", node)
	}

	l = lexer.NewLexer("number number")
	p = NewParser(l)
	_, errs = p.ParseTypeAnnotation()
	if len(errs) == 0 {
		t.Fatalf("expected trailing-token error")
	}
}

func TestParserRecovery(t *testing.T) {
	input := "type A = ;\ntype B = number;"
	l := lexer.NewLexer(input)
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()

	if len(parseErrs) == 0 {
		t.Fatalf("expected at least one error")
	}
	if len(program.Declarations) != 1 {
		t.Fatalf("expected recovery to keep 1 declaration, got %d", len(program.Declarations))
	}
	if program.Declarations[0].String() != "type B = number;" {
		t.Errorf("expected recovered declaration B, got %q", program.Declarations[0].String())
	}
}

func TestStaticOutsideClassBody(t *testing.T) {
	l := lexer.NewLexer("type T = { static x: number };")
	p := NewParser(l)
	_, parseErrs := p.ParseProgram()
	if len(parseErrs) == 0 {
		t.Fatalf("expected error for static member outside declare class")
	}

	// `static` as a plain field name stays legal
	l = lexer.NewLexer("type T = { static: number };")
	p = NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	obj := program.Declarations[0].(*ast.TypeAliasDeclaration).Aliased.(*ast.ObjectType)
	prop := obj.Entries[0].(*ast.PropertyEntry)
	if prop.Static || prop.Key.String() != "static" {
		t.Errorf("expected field named static, got %s", prop.String())
	}
}

func TestNestedGenericsSplitGT(t *testing.T) {
	l := lexer.NewLexer("type T = Array<Array<number>>;")
	p := NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	if got := program.Declarations[0].String(); got != "type T = Array<Array<number>>;" {
		t.Errorf("got %q", got)
	}
}
