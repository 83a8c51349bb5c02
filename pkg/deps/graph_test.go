package deps

import (
	"strings"
	"testing"

	"brook/pkg/lexer"
	"brook/pkg/parser"
)

func TestScanRequires(t *testing.T) {
	src := `// @requires "./core"
/* library header
 * @requires "./util"
 * @requires './extra'
 */
// @requires ./bare
// @requires "./core"
// plain comment
type T = number;
`
	lx := lexer.NewLexer(src)
	ps := parser.NewParser(lx)
	_, errs := ps.ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	got := ScanRequires(lx.Comments())
	want := []string{"./core", "./util", "./extra", "./bare"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("requires[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestScanRequiresEdgeForms(t *testing.T) {
	comments := []lexer.Comment{
		{Text: "@requires"},
		{Text: "header @requires \"./a\" trailer"},
		{Text: "@requires ''"},
		{Text: "@requires './a'"},
	}
	got := ScanRequires(comments)
	if len(got) != 1 || got[0] != "./a" {
		t.Errorf("expected [./a], got %v", got)
	}
}

func TestGraphDependents(t *testing.T) {
	g := NewGraph()
	g.Add("a", []string{"b", "c", "b"})
	g.Add("b", []string{"c"})
	g.Add("c", nil)

	if got := g.Requires("a"); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("expected a to require [b c], got %v", got)
	}
	if got := g.Dependents("c"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected dependents of c to be [a b], got %v", got)
	}

	// replacing an entry drops its stale reverse edges
	g.Add("a", []string{"c"})
	if got := g.Dependents("b"); len(got) != 0 {
		t.Errorf("expected no dependents of b after replacement, got %v", got)
	}
	if got := g.Files(); len(got) != 3 {
		t.Errorf("expected 3 files, got %v", got)
	}
}

func TestDependentsClosure(t *testing.T) {
	g := NewGraph()
	g.Add("app", []string{"model", "view"})
	g.Add("model", []string{"core"})
	g.Add("view", []string{"core"})
	g.Add("core", nil)

	got := g.DependentsClosure([]string{"core"})
	if got.Size() != 4 {
		t.Fatalf("expected closure of size 4, got %v", got.Slice())
	}
	for _, file := range []string{"core", "model", "view", "app"} {
		if !got.Contains(file) {
			t.Errorf("expected closure to contain %q", file)
		}
	}

	leaf := g.DependentsClosure([]string{"app"})
	if leaf.Size() != 1 || !leaf.Contains("app") {
		t.Errorf("expected closure of a leaf to be itself, got %v", leaf.Slice())
	}
}

func TestCheckOrder(t *testing.T) {
	g := NewGraph()
	g.Add("app", []string{"model", "view"})
	g.Add("model", []string{"core"})
	g.Add("view", []string{"core"})
	g.Add("core", nil)
	g.Add("extra", []string{"never-added"})

	order, err := g.CheckOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 files in order, got %v", order)
	}
	pos := make(map[string]int, len(order))
	for i, file := range order {
		pos[file] = i
	}
	if pos["core"] > pos["model"] || pos["core"] > pos["view"] {
		t.Errorf("expected core before model and view, got %v", order)
	}
	if pos["model"] > pos["app"] || pos["view"] > pos["app"] {
		t.Errorf("expected model and view before app, got %v", order)
	}
}

func TestCheckOrderCycle(t *testing.T) {
	g := NewGraph()
	g.Add("alpha", []string{"beta"})
	g.Add("beta", []string{"alpha"})
	g.Add("solo", nil)

	_, err := g.CheckOrder()
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if !strings.Contains(err.Error(), "circular requires chain") {
		t.Errorf("unexpected error message: %v", err)
	}
	if !strings.Contains(err.Error(), "alpha") || !strings.Contains(err.Error(), "beta") {
		t.Errorf("expected cycle members in message, got: %v", err)
	}
	if strings.Contains(err.Error(), "solo") {
		t.Errorf("acyclic file should not be reported, got: %v", err)
	}
}
