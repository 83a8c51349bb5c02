package checker

import (
	"strings"
	"testing"

	"brook/pkg/ast"
	"brook/pkg/errors"
	"brook/pkg/lexer"
	"brook/pkg/parser"
	"brook/pkg/types"
)

// elaborate parses and checks one declaration-file source.
func elaborate(t *testing.T, src string) (*Checker, []errors.BrookError) {
	t.Helper()
	l := lexer.NewLexer(src)
	p := parser.NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	c := NewChecker(NewContext(), nil)
	return c, c.CheckProgram(program)
}

// parseAnnotation parses a standalone annotation for direct conversion.
func parseAnnotation(t *testing.T, src string) ast.TypeNode {
	t.Helper()
	l := lexer.NewLexer(src)
	p := parser.NewParser(l)
	node, parseErrs := p.ParseTypeAnnotation()
	if len(parseErrs) != 0 {
		t.Fatalf("parser errors: %v", parseErrs)
	}
	return node
}

func resolvedAlias(t *testing.T, c *Checker, name string) types.Type {
	t.Helper()
	typ, ok := c.Environment().ResolveType(name)
	if !ok {
		t.Fatalf("type %q not declared", name)
	}
	return typ
}

// sigFor digs the arena signature out of a declared class or interface name.
func sigFor(t *testing.T, c *Checker, name string) *types.Signature {
	t.Helper()
	typ, ok := c.Environment().ResolveType(name)
	if !ok {
		t.Fatalf("type %q not declared", name)
	}
	self, ok := typ.(*types.SelfType)
	if !ok {
		t.Fatalf("type %q: expected self type, got %T", name, typ)
	}
	sig := c.Context().Arena().Get(self.ID)
	if sig == nil {
		t.Fatalf("type %q: no arena slot for id %d", name, self.ID)
	}
	return sig
}

func TestPrimitiveAndLiteralAliases(t *testing.T) {
	c, errs := elaborate(t, `
		type N = number;
		type M = ?string;
		type L = 'on';
		type Nil = null;
		type B = false;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if p, ok := resolvedAlias(t, c, "N").(*types.Primitive); !ok || p.Kind != types.NumberKind {
		t.Errorf("N: expected number primitive, got %s", resolvedAlias(t, c, "N").String())
	}
	maybe, ok := resolvedAlias(t, c, "M").(*types.MaybeType)
	if !ok {
		t.Fatalf("M: expected maybe type, got %T", resolvedAlias(t, c, "M"))
	}
	if inner, ok := maybe.Inner.(*types.Primitive); !ok || inner.Kind != types.StringKind {
		t.Errorf("M: expected ?string, got ?%s", maybe.Inner.String())
	}
	if lit, ok := resolvedAlias(t, c, "L").(*types.StringLiteralType); !ok || lit.Value != "on" {
		t.Errorf("L: expected string literal 'on'")
	}
	if p, ok := resolvedAlias(t, c, "Nil").(*types.Primitive); !ok || p.Kind != types.NullKind {
		t.Errorf("Nil: expected null primitive")
	}
	if lit, ok := resolvedAlias(t, c, "B").(*types.BooleanLiteralType); !ok || lit.Value {
		t.Errorf("B: expected boolean literal false")
	}
}

// Converting the same node twice against the same environment must produce
// structurally equal types.
func TestConversionIdempotent(t *testing.T) {
	c := NewChecker(NewContext(), nil)
	node := parseAnnotation(t, "?number | 'on' | [boolean, { x: string }]")

	first, _ := c.ConvertAnnotation(node)
	second, _ := c.ConvertAnnotation(node)
	if !first.Equals(second) {
		t.Errorf("expected equal results, got %s and %s", first.String(), second.String())
	}
	if len(c.Context().Errors()) != 0 {
		t.Errorf("unexpected errors: %v", c.Context().Errors())
	}
}

func TestPrimitiveArgumentsAreArityErrors(t *testing.T) {
	c, errs := elaborate(t, "type N = number<string>;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	arity, ok := errs[0].(*errors.ArityError)
	if !ok {
		t.Fatalf("expected arity error, got %T", errs[0])
	}
	if arity.Name != "number" || arity.Expected != 0 || arity.Actual != 1 {
		t.Errorf("wrong arity error: %s", arity.Error())
	}
	// The primitive itself still comes back.
	if p, ok := resolvedAlias(t, c, "N").(*types.Primitive); !ok || p.Kind != types.NumberKind {
		t.Errorf("N: expected number primitive despite the arity error")
	}
}

// Wrong utility arity must fail before any argument elaborates: the argument
// node stays unresolved and no unresolved-reference error appears for it.
func TestUtilityArityCheckedBeforeConversion(t *testing.T) {
	c := NewChecker(NewContext(), nil)
	node := parseAnnotation(t, "$PropertyType<Unbound>")

	got, _ := c.ConvertAnnotation(node)
	if !types.IsAnyError(got) {
		t.Fatalf("expected error-tagged any, got %s", got.String())
	}

	errs := c.Context().Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	arity, ok := errs[0].(*errors.ArityError)
	if !ok {
		t.Fatalf("expected arity error, got %T", errs[0])
	}
	if arity.Name != "$PropertyType" || arity.Expected != 2 || arity.Actual != 1 {
		t.Errorf("wrong arity error: %s", arity.Error())
	}

	ref := node.(*ast.TypeReference)
	if ref.TypeArgs[0].ResolvedType() != nil {
		t.Errorf("argument was converted despite the arity failure")
	}
}

func TestPropertyTypeProjection(t *testing.T) {
	c, errs := elaborate(t, `
		type O = { k: number };
		type P = $PropertyType<O, 'k'>;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	eval, ok := resolvedAlias(t, c, "P").(*types.EvalType)
	if !ok {
		t.Fatalf("P: expected deferred operation, got %T", resolvedAlias(t, c, "P"))
	}
	proj, ok := eval.Op.(*types.PropertyProjection)
	if !ok {
		t.Fatalf("P: expected property projection, got %T", eval.Op)
	}
	if proj.Key != "k" {
		t.Errorf("P: expected key 'k', got %q", proj.Key)
	}
	if _, ok := proj.Source.(*types.ObjectType); !ok {
		t.Errorf("P: expected object source through the alias, got %T", proj.Source)
	}

	c, errs = elaborate(t, `
		type O = { k: number };
		type Q = $PropertyType<O, number>;
	`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if _, ok := errs[0].(*errors.ElabError); !ok {
		t.Fatalf("expected elaboration error, got %T", errs[0])
	}
	if !types.IsAnyError(resolvedAlias(t, c, "Q")) {
		t.Errorf("Q: expected error-tagged any")
	}
}

// A getter and setter sharing a name merge into one two-way accessor, and
// both declarations are flagged unsafe.
func TestAccessorMerge(t *testing.T) {
	c, errs := elaborate(t, "type T = { get x(): number, set x(v: string): void };")

	deprecations := 0
	for _, e := range errs {
		if _, ok := e.(*errors.DeprecationWarning); ok {
			deprecations++
		}
	}
	if deprecations != 2 || len(errs) != 2 {
		t.Fatalf("expected 2 deprecation warnings, got %v", errs)
	}

	obj, ok := resolvedAlias(t, c, "T").(*types.ObjectType)
	if !ok {
		t.Fatalf("T: expected object type, got %T", resolvedAlias(t, c, "T"))
	}
	if len(obj.Fields) != 1 {
		t.Fatalf("expected 1 merged field, got %d", len(obj.Fields))
	}
	prop := obj.Field("x")
	if prop == nil || !prop.IsAccessor() {
		t.Fatalf("expected accessor property x")
	}
	if g, ok := prop.Get.(*types.Primitive); !ok || g.Kind != types.NumberKind {
		t.Errorf("expected getter type number, got %v", prop.Get)
	}
	if s, ok := prop.Set.(*types.Primitive); !ok || s.Kind != types.StringKind {
		t.Errorf("expected setter type string, got %v", prop.Set)
	}
}

func TestMultipleIndexersKeepFirst(t *testing.T) {
	c, errs := elaborate(t, "type T = { [a: string]: number, [b: string]: boolean };")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if _, ok := errs[0].(*errors.UnsupportedSyntaxError); !ok {
		t.Fatalf("expected unsupported-syntax error, got %T", errs[0])
	}

	obj := resolvedAlias(t, c, "T").(*types.ObjectType)
	if obj.Indexer == nil {
		t.Fatalf("expected the first indexer to survive")
	}
	if obj.Indexer.Name != "a" {
		t.Errorf("expected first indexer kept, got binder %q", obj.Indexer.Name)
	}
	if v, ok := obj.Indexer.Value.(*types.Primitive); !ok || v.Kind != types.NumberKind {
		t.Errorf("expected first indexer value number, got %s", obj.Indexer.Value.String())
	}
}

func TestTupleElementSynthesis(t *testing.T) {
	c, errs := elaborate(t, `
		type T2 = [number, string];
		type T1 = [boolean];
		type T0 = [];
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	t2 := resolvedAlias(t, c, "T2").(*types.TupleType)
	union, ok := t2.ElemUnion.(*types.UnionType)
	if !ok || len(union.Members) != 2 {
		t.Fatalf("T2: expected two-member union element type, got %s", t2.ElemUnion.String())
	}

	t1 := resolvedAlias(t, c, "T1").(*types.TupleType)
	if p, ok := t1.ElemUnion.(*types.Primitive); !ok || p.Kind != types.BooleanKind {
		t.Errorf("T1: expected element type boolean exactly, got %s", t1.ElemUnion.String())
	}

	t0 := resolvedAlias(t, c, "T0").(*types.TupleType)
	if p, ok := t0.ElemUnion.(*types.Primitive); !ok || p.Kind != types.EmptyKind {
		t.Errorf("T0: expected element type empty, got %s", t0.ElemUnion.String())
	}
}

func TestCharSetCanonicalForm(t *testing.T) {
	c, errs := elaborate(t, `
		type A = $CharSet<"bab">;
		type B = $CharSet<"ab">;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	a := resolvedAlias(t, c, "A").(*types.CharSetType)
	if a.Chars != "ab" {
		t.Errorf("expected canonical chars \"ab\", got %q", a.Chars)
	}
	if a.Raw != "bab" {
		t.Errorf("expected raw spelling kept, got %q", a.Raw)
	}
	if !a.Equals(resolvedAlias(t, c, "B")) {
		t.Errorf("canonical form did not round-trip")
	}
}

// `Foo` and `Foo<>` take different application paths and are not the same
// type: only the first is a bare instance.
func TestBareVersusEmptyApplication(t *testing.T) {
	c, errs := elaborate(t, `
		declare class Foo {}
		type A = Foo;
		type B = Foo<>;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	a := resolvedAlias(t, c, "A").(*types.InstanceType)
	b := resolvedAlias(t, c, "B").(*types.InstanceType)
	if a.Applied {
		t.Errorf("A: expected bare instance")
	}
	if !b.Applied || len(b.Args) != 0 {
		t.Errorf("B: expected applied instance with zero arguments")
	}
	if a.Equals(b) {
		t.Errorf("bare and empty-applied instances must stay distinct")
	}
}

func TestDefaultConstructor(t *testing.T) {
	c, errs := elaborate(t, `
		declare class Plain { x: number }
		declare class Child extends Plain {}
		declare class Mixed mixins Plain {}
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	plain := sigFor(t, c, "Plain")
	ctor, ok := plain.Ctor.(*types.FunctionType)
	if !ok {
		t.Fatalf("Plain: expected synthetic default constructor, got %T", plain.Ctor)
	}
	if len(ctor.Params) != 0 || ctor.Rest != nil {
		t.Errorf("Plain: default constructor must take no parameters")
	}
	if r, ok := ctor.Return.(*types.Primitive); !ok || r.Kind != types.VoidKind {
		t.Errorf("Plain: default constructor must return void")
	}

	if sigFor(t, c, "Child").Ctor != nil {
		t.Errorf("Child: explicit extends suppresses the default constructor")
	}
	mixed := sigFor(t, c, "Mixed")
	if mixed.Ctor != nil {
		t.Errorf("Mixed: mixins suppress the default constructor")
	}
	super := mixed.Super.(*types.ClassSuper)
	if len(super.Mixins) != 1 {
		t.Fatalf("Mixed: expected 1 mixin, got %d", len(super.Mixins))
	}
	eval, ok := super.Mixins[0].(*types.EvalType)
	if !ok {
		t.Fatalf("Mixed: expected deferred mixin projection, got %T", super.Mixins[0])
	}
	if _, ok := eval.Op.(*types.MixinOp); !ok {
		t.Errorf("Mixed: expected mixin operation, got %T", eval.Op)
	}
}

// A name bound only as a type cannot be a mixin source (mixins resolve
// values), and the failure is distinct from using the same name as an
// extends target, which resolves but is the wrong kind.
func TestMixinResolvesValueNamespace(t *testing.T) {
	_, errs := elaborate(t, `
		interface Iface { x: number }
		declare class UsesMixin mixins Iface { x: number }
		declare class UsesExtends extends Iface { x: number }
	`)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}

	var unresolved *errors.UnresolvedReferenceError
	var elab *errors.ElabError
	for _, e := range errs {
		switch err := e.(type) {
		case *errors.UnresolvedReferenceError:
			unresolved = err
		case *errors.ElabError:
			elab = err
		}
	}
	if unresolved == nil || unresolved.Name != "Iface" || unresolved.Namespace != "value" {
		t.Errorf("expected value-namespace resolution failure for the mixin, got %v", errs)
	}
	if elab == nil || !strings.Contains(elab.Msg, "cannot extend an interface") {
		t.Errorf("expected kind error for the extends target, got %v", errs)
	}
}

func TestThisType(t *testing.T) {
	c, errs := elaborate(t, "declare class Tree { parent(): this }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sig := sigFor(t, c, "Tree")
	method := sig.Member("parent")
	if method == nil {
		t.Fatalf("missing member parent")
	}
	fn := method.Type.(*types.FunctionType)
	self, ok := fn.Return.(*types.SelfType)
	if !ok {
		t.Fatalf("expected self-typed return, got %T", fn.Return)
	}
	if self.ID != sig.ID {
		t.Errorf("`this` must point at the enclosing signature")
	}

	// Outside any class-like body `this` cannot resolve.
	c2 := NewChecker(NewContext(), nil)
	got, _ := c2.ConvertAnnotation(parseAnnotation(t, "this"))
	if !types.IsAnyError(got) {
		t.Errorf("expected error-tagged any outside a class body, got %s", got.String())
	}
	if len(c2.Context().Errors()) != 1 {
		t.Errorf("expected 1 error, got %v", c2.Context().Errors())
	}
}

func TestSuppressedNames(t *testing.T) {
	ctx := NewContext()
	ctx.SuppressTypes([]string{"$FlowFixMe"})
	c := NewChecker(ctx, nil)

	node := parseAnnotation(t, "$FlowFixMe<number>")
	got, _ := c.ConvertAnnotation(node)
	any, ok := got.(*types.AnyType)
	if !ok || any.Source != types.AnySuppressed {
		t.Fatalf("expected suppressed any, got %s", got.String())
	}
	if len(ctx.Errors()) != 0 {
		t.Errorf("suppressed names must not report: %v", ctx.Errors())
	}
	// The argument is validated by the parser but never elaborated.
	ref := node.(*ast.TypeReference)
	if ref.TypeArgs[0].ResolvedType() != nil {
		t.Errorf("suppressed application must not elaborate its arguments")
	}
}

// Type parameters shadow nominal bindings of the same name, and carrying
// arguments on a parameter reference is an arity error.
func TestTypeParameterResolution(t *testing.T) {
	c, errs := elaborate(t, `
		declare class T {}
		type Box<T> = [T];
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	generic := resolvedAlias(t, c, "Box").(*types.GenericType)
	tuple := generic.Body.(*types.TupleType)
	if _, ok := tuple.Elements[0].(*types.BoundTypeVar); !ok {
		t.Errorf("expected the parameter to shadow the class, got %T", tuple.Elements[0])
	}

	_, errs = elaborate(t, "type U<A> = A<number>;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	arity, ok := errs[0].(*errors.ArityError)
	if !ok || arity.Expected != 0 {
		t.Errorf("expected zero-arity error on the parameter reference, got %v", errs[0])
	}

	_, errs = elaborate(t, "type D<A, A> = A;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if e, ok := errs[0].(*errors.ElabError); !ok || !strings.Contains(e.Msg, "duplicate type parameter") {
		t.Errorf("expected duplicate-parameter error, got %v", errs[0])
	}
}

func TestTypeofAnnotations(t *testing.T) {
	c, errs := elaborate(t, `
		declare var count: number;
		type T = typeof count;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	tof := resolvedAlias(t, c, "T").(*types.TypeofType)
	if tof.RefName != "count" {
		t.Errorf("expected ref name count, got %q", tof.RefName)
	}
	if p, ok := tof.Underlying.(*types.Primitive); !ok || p.Kind != types.NumberKind {
		t.Errorf("expected underlying number, got %s", tof.Underlying.String())
	}

	// Applied and non-reference targets are hard errors for the
	// subexpression; the names involved are never resolved.
	c, errs = elaborate(t, `
		type U = typeof Wrong<number>;
		type V = typeof { x: number };
	`)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	for _, e := range errs {
		if _, ok := e.(*errors.ElabError); !ok {
			t.Errorf("expected elaboration error, got %T", e)
		}
	}
	if !types.IsAnyError(resolvedAlias(t, c, "U")) {
		t.Errorf("U: expected error-tagged any")
	}
}

func TestQualifiedProjection(t *testing.T) {
	c, errs := elaborate(t, `
		declare var api: { users: { find: (id: number) => boolean } };
		type T = typeof api.users;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	tof := resolvedAlias(t, c, "T").(*types.TypeofType)
	users, ok := tof.Underlying.(*types.ObjectType)
	if !ok {
		t.Fatalf("expected projected object, got %T", tof.Underlying)
	}
	if users.Field("find") == nil {
		t.Errorf("projection lost the find member")
	}

	_, errs = elaborate(t, `
		declare var api: { users: { find: (id: number) => boolean } };
		type U = typeof api.nope;
	`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	elab, ok := errs[0].(*errors.ElabError)
	if !ok || !strings.Contains(elab.Msg, "'nope' is missing in api") {
		t.Errorf("expected missing-property error, got %v", errs[0])
	}

	// A qualified name in ordinary type position projects the member and
	// then applies nominally.
	c, errs = elaborate(t, `
		declare class Widget {}
		declare var ns: { Widget: Class<Widget> };
		type W = ns.Widget<number>;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	inst := resolvedAlias(t, c, "W").(*types.InstanceType)
	if !inst.Applied || len(inst.Args) != 1 {
		t.Fatalf("W: expected applied instance, got %s", inst.String())
	}
	if _, ok := inst.Base.(*types.ClassType); !ok {
		t.Errorf("W: expected class-value base, got %T", inst.Base)
	}
}

func TestSpreadMerge(t *testing.T) {
	c, errs := elaborate(t, `
		type Base = { a: string };
		type T = { ...Base, x: number };
		type E = {| ...Base |};
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	eval := resolvedAlias(t, c, "T").(*types.EvalType)
	merge, ok := eval.Op.(*types.SpreadMergeOp)
	if !ok {
		t.Fatalf("T: expected spread merge, got %T", eval.Op)
	}
	if len(merge.Sources) != 2 || merge.Exact {
		t.Errorf("T: expected 2 inexact sources, got %s", eval.String())
	}
	if _, ok := merge.Sources[0].(*types.ObjectType); !ok {
		t.Errorf("T: expected spread source through the alias, got %T", merge.Sources[0])
	}
	if tail, ok := merge.Sources[1].(*types.ObjectType); !ok || tail.Field("x") == nil {
		t.Errorf("T: expected trailing snapshot with field x")
	}

	exact := resolvedAlias(t, c, "E").(*types.EvalType).Op.(*types.SpreadMergeOp)
	if len(exact.Sources) != 1 || !exact.Exact {
		t.Errorf("E: expected single-source exact merge")
	}

	// Interface bodies reject spread entries outright.
	_, errs = elaborate(t, `
		type Base = { a: string };
		interface I { ...Base }
	`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if u, ok := errs[0].(*errors.UnsupportedSyntaxError); !ok || !strings.Contains(u.Msg, "spread") {
		t.Errorf("expected spread rejection, got %v", errs[0])
	}
}

func TestLegacyCallProperty(t *testing.T) {
	c, errs := elaborate(t, `
		type F = () => void;
		type T = { $call: F };
		type U = { $call: F, (x: number): string };
	`)

	deprecations := 0
	for _, e := range errs {
		if _, ok := e.(*errors.DeprecationWarning); ok {
			deprecations++
		}
	}
	if deprecations != 2 || len(errs) != 2 {
		t.Fatalf("expected 2 deprecation warnings, got %v", errs)
	}

	legacy := resolvedAlias(t, c, "T").(*types.ObjectType)
	if len(legacy.Calls) != 1 || len(legacy.Fields) != 0 {
		t.Fatalf("T: expected the legacy field to become the call signature")
	}
	if _, ok := legacy.Calls[0].(*types.FunctionType); !ok {
		t.Errorf("T: expected function call signature, got %T", legacy.Calls[0])
	}

	// A real call property wins over the legacy field.
	mixed := resolvedAlias(t, c, "U").(*types.ObjectType)
	if len(mixed.Calls) != 1 {
		t.Fatalf("U: expected 1 call signature, got %d", len(mixed.Calls))
	}
	fn := mixed.Calls[0].(*types.FunctionType)
	if len(fn.Params) != 1 {
		t.Errorf("U: expected the declared call property, not the legacy field")
	}
}

func TestInterfaceSignatures(t *testing.T) {
	c, errs := elaborate(t, `
		interface Reader { read(): string }
		interface Closer { close(): void }
		interface ReadCloser extends Reader, Closer {}
		interface Callable { (x: number): boolean }
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	reader := sigFor(t, c, "Reader")
	read := reader.Member("read")
	if read == nil || !read.Method {
		t.Errorf("Reader: expected method member read")
	}
	if reader.Static("name") == nil {
		t.Errorf("Reader: expected implicit static name field")
	}

	rc := sigFor(t, c, "ReadCloser")
	super := rc.Super.(*types.InterfaceSuper)
	if len(super.Extends) != 2 {
		t.Fatalf("ReadCloser: expected 2 extends, got %d", len(super.Extends))
	}
	if super.Callable {
		t.Errorf("ReadCloser: no own call property, must not be callable")
	}
	if !rc.Sealed() {
		t.Errorf("ReadCloser: signature must seal after building")
	}

	callable := sigFor(t, c, "Callable")
	if !callable.Super.(*types.InterfaceSuper).Callable {
		t.Errorf("Callable: own call property must mark the interface callable")
	}
	if len(callable.Calls) != 1 {
		t.Errorf("Callable: expected 1 call signature, got %d", len(callable.Calls))
	}
}

func TestClassSignature(t *testing.T) {
	c, errs := elaborate(t, `
		interface Sized { size: number }
		declare class Base {}
		declare var HasId: { id: number };
		declare class Box<T> extends Base mixins HasId implements Sized {
			constructor(v: T): void;
			value: T;
			static create(v: T): Box<T>;
			get size(): number;
		}
	`)

	// The only diagnostic is the accessor-unsafety flag.
	if len(errs) != 1 {
		t.Fatalf("expected 1 warning, got %v", errs)
	}
	if _, ok := errs[0].(*errors.DeprecationWarning); !ok {
		t.Fatalf("expected deprecation warning, got %T", errs[0])
	}

	sig := sigFor(t, c, "Box")
	if len(sig.TypeParams) != 1 || sig.TypeParams[0].Name != "T" {
		t.Errorf("expected one type parameter T")
	}

	super := sig.Super.(*types.ClassSuper)
	if super.Extends == nil || super.Implicit {
		t.Errorf("expected explicit extends")
	}
	if len(super.Mixins) != 1 || len(super.Implements) != 1 {
		t.Errorf("expected 1 mixin and 1 implements entry")
	}

	ctor, ok := sig.Ctor.(*types.FunctionType)
	if !ok {
		t.Fatalf("expected declared constructor, got %T", sig.Ctor)
	}
	if len(ctor.Params) != 1 {
		t.Errorf("constructor must keep its declared parameter")
	}
	if sig.Member("constructor") != nil {
		t.Errorf("the constructor must not appear as an ordinary member")
	}

	value := sig.Member("value")
	if value == nil {
		t.Fatalf("missing instance member value")
	}
	if _, ok := value.Type.(*types.BoundTypeVar); !ok {
		t.Errorf("value: expected the bound parameter, got %T", value.Type)
	}

	size := sig.Member("size")
	if size == nil || !size.IsAccessor() {
		t.Fatalf("expected accessor member size")
	}
	if sig.Static("create") == nil {
		t.Errorf("missing static member create")
	}
	name := sig.Static("name")
	if name == nil {
		t.Fatalf("expected implicit static name field")
	}
	if p, ok := name.Type.(*types.Primitive); !ok || p.Kind != types.StringKind {
		t.Errorf("static name must be a string")
	}
}

// Implements obligations check after the whole program folds, so an
// interface declared after the class still verifies. Violations report but
// never discard the signature.
func TestImplementsChecking(t *testing.T) {
	c, errs := elaborate(t, `
		declare class Bag implements Sized {}
		declare class Cup implements Sized { size: string }
		interface Sized { size: number }
	`)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}

	var missing, incompatible bool
	for _, e := range errs {
		elab, ok := e.(*errors.ElabError)
		if !ok {
			t.Fatalf("expected elaboration error, got %T", e)
		}
		if strings.Contains(elab.Msg, "missing member 'size'") {
			missing = true
		}
		if strings.Contains(elab.Msg, "not compatible") {
			incompatible = true
		}
	}
	if !missing {
		t.Errorf("expected missing-member error for Bag")
	}
	if !incompatible {
		t.Errorf("expected incompatibility error for Cup")
	}

	// Kept as written despite the violation.
	cup := sigFor(t, c, "Cup")
	if cup.Member("size") == nil || !cup.Sealed() {
		t.Errorf("violating class must keep its signature")
	}
}

func TestGenericAliasInstantiation(t *testing.T) {
	c, errs := elaborate(t, `
		type Pair<A, B = string> = [A, B];
		type P = Pair<number>;
		type Bare = Pair;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	p := resolvedAlias(t, c, "P").(*types.TupleType)
	if len(p.Elements) != 2 {
		t.Fatalf("P: expected 2 elements, got %d", len(p.Elements))
	}
	if e, ok := p.Elements[0].(*types.Primitive); !ok || e.Kind != types.NumberKind {
		t.Errorf("P: expected first element number, got %s", p.Elements[0].String())
	}
	if e, ok := p.Elements[1].(*types.Primitive); !ok || e.Kind != types.StringKind {
		t.Errorf("P: expected defaulted second element string, got %s", p.Elements[1].String())
	}
	if _, ok := resolvedAlias(t, c, "Bare").(*types.GenericType); !ok {
		t.Errorf("Bare: an unapplied parameterized alias passes through")
	}

	c, errs = elaborate(t, `
		type Num<N: number> = [N];
		type Bad = Num<boolean>;
	`)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if e, ok := errs[0].(*errors.ElabError); !ok || !strings.Contains(e.Msg, "does not satisfy the bound") {
		t.Errorf("expected bound violation, got %v", errs[0])
	}
	if _, ok := resolvedAlias(t, c, "Bad").(*types.AnyType); !ok {
		t.Errorf("Bad: expected any after the bound violation")
	}
}

// `*` forces a fresh variable outside polymorphic scopes and defers inside
// them.
func TestExistentialPlaceholder(t *testing.T) {
	c, errs := elaborate(t, `
		declare class List<T> {}
		type Forced = List<*>;
		type Deferred<T> = (x: T) => List<*>;
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	forced := resolvedAlias(t, c, "Forced").(*types.InstanceType)
	if _, ok := forced.Args[0].(*types.TypeVariable); !ok {
		t.Errorf("Forced: expected fresh variable, got %T", forced.Args[0])
	}

	deferred := resolvedAlias(t, c, "Deferred").(*types.GenericType)
	ret := deferred.Body.(*types.FunctionType).Return.(*types.InstanceType)
	if _, ok := ret.Args[0].(*types.ExistsType); !ok {
		t.Errorf("Deferred: expected existential marker, got %T", ret.Args[0])
	}
}

func TestUnresolvedReference(t *testing.T) {
	c, errs := elaborate(t, "type T = Missing;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	unresolved, ok := errs[0].(*errors.UnresolvedReferenceError)
	if !ok {
		t.Fatalf("expected unresolved-reference error, got %T", errs[0])
	}
	if unresolved.Name != "Missing" || unresolved.Namespace != "type" {
		t.Errorf("wrong unresolved error: %s", unresolved.Error())
	}
	if !types.IsAnyError(resolvedAlias(t, c, "T")) {
		t.Errorf("expected error-tagged any")
	}
}

// Every converted node carries its type, and the context's position table
// answers the same types for tooling that never touches the tree.
func TestAnnotatedTreeAndPositionTable(t *testing.T) {
	c := NewChecker(NewContext(), nil)
	node := parseAnnotation(t, "?number")

	typ, annotated := c.ConvertAnnotation(node)
	if annotated != node {
		t.Fatalf("conversion must hand back the node it was given")
	}
	if annotated.ResolvedType() == nil || !annotated.ResolvedType().Equals(typ) {
		t.Errorf("node missing its resolved type")
	}

	inner := node.(*ast.NullableType).Inner
	if p, ok := inner.ResolvedType().(*types.Primitive); !ok || p.Kind != types.NumberKind {
		t.Fatalf("inner node missing its resolved type")
	}
	recorded, ok := c.Context().TypeAt(c.nodePosition(inner))
	if !ok {
		t.Fatalf("inner position not recorded")
	}
	if !recorded.Equals(inner.ResolvedType()) {
		t.Errorf("position table disagrees with the annotated tree")
	}
}
