// Package driver is the front door of the elaborator: it wires lexing,
// parsing, elaboration, library scopes and suppress-comment filtering into
// one pipeline for files, strings and REPL sessions.
package driver

import (
	"fmt"
	"os"

	"brook/pkg/ast"
	"brook/pkg/checker"
	"brook/pkg/config"
	"brook/pkg/deps"
	"brook/pkg/errors"
	"brook/pkg/lexer"
	"brook/pkg/parser"
	"brook/pkg/source"
	"brook/pkg/types"
)

const driverDebug = false

func debugPrintf(format string, args ...interface{}) {
	if driverDebug {
		fmt.Printf(format, args...)
	}
}

// Outcome is the result of elaborating one source: the annotated program,
// the typing context behind it, and the diagnostics that survived comment
// suppression.
type Outcome struct {
	Source     *source.SourceFile
	Program    *ast.Program
	Ctx        *checker.Context
	Requires   []string
	Errors     []errors.BrookError
	Suppressed int
}

// Succeeded reports whether the outcome carries no errors. Warnings do not
// count against success.
func (o *Outcome) Succeeded() bool {
	for _, e := range o.Errors {
		if !errors.IsWarning(e) {
			return false
		}
	}
	return true
}

// Brook is a persistent elaboration session. It carries the project
// configuration and the loaded library files; Eval additionally keeps one
// REPL scope alive across inputs.
type Brook struct {
	cfg  *config.Config
	libs []*source.SourceFile

	replCtx  *checker.Context
	replEnv  *checker.Environment
	replMark int
}

// New creates a session with default configuration and no libraries.
func New() *Brook {
	b, _ := NewWithConfig(config.Default())
	return b
}

// NewWithConfig creates a session for cfg, reading every configured library
// file up front.
func NewWithConfig(cfg *config.Config) (*Brook, error) {
	b := &Brook{cfg: cfg}
	for _, path := range cfg.Libs {
		sf, err := source.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", path, err)
		}
		b.libs = append(b.libs, sf)
	}
	return b, nil
}

// Config returns the session configuration.
func (b *Brook) Config() *config.Config { return b.cfg }

// AddLib registers an in-memory library after the configured ones.
func (b *Brook) AddLib(sf *source.SourceFile) {
	b.libs = append(b.libs, sf)
}

// CheckLibs parses and elaborates the configured libraries into a throwaway
// scope and returns their diagnostics. Call it once at startup; per-file
// outcomes never include library problems.
func (b *Brook) CheckLibs() []errors.BrookError {
	ctx := checker.NewContext()
	ctx.SuppressTypes(b.cfg.SuppressTypes)

	var all []errors.BrookError
	env := checker.NewEnvironment()
	for _, lib := range b.libs {
		lx := lexer.NewLexerWithSource(lib)
		ps := parser.NewParser(lx)
		program, parseErrs := ps.ParseProgram()
		if len(parseErrs) > 0 {
			all = append(all, parseErrs...)
			continue
		}
		chk := checker.NewCheckerWithEnvironment(ctx, lib, env)
		chk.CheckProgram(program)
	}
	return append(all, ctx.Errors()...)
}

// CheckSource runs the full pipeline on one source: lex, parse, elaborate
// against the configured libraries, then filter the diagnostics through the
// suppress-comment patterns.
func (b *Brook) CheckSource(sf *source.SourceFile) *Outcome {
	debugPrintf("// [Driver] checking %s\n", sf.DisplayPath())
	out := &Outcome{Source: sf}

	lx := lexer.NewLexerWithSource(sf)
	ps := parser.NewParser(lx)
	program, parseErrs := ps.ParseProgram()
	out.Program = program
	out.Requires = deps.ScanRequires(lx.Comments())

	ctx := checker.NewContext()
	ctx.SuppressTypes(b.cfg.SuppressTypes)
	libEnv := deps.ElaborateLibs(ctx, b.libs)
	mark := len(ctx.Errors())

	chk := checker.NewCheckerWithEnvironment(ctx, sf, checker.NewEnclosedEnvironment(libEnv))
	all := chk.CheckProgram(program)

	raw := append(append([]errors.BrookError(nil), parseErrs...), all[mark:]...)
	out.Errors, out.Suppressed = b.filterDiagnostics(raw, lx.Comments())
	out.Ctx = ctx
	return out
}

// CheckString elaborates source text as an inline file.
func (b *Brook) CheckString(src string) *Outcome {
	return b.CheckSource(source.NewInlineSource(src))
}

// CheckFile reads and elaborates one file.
func (b *Brook) CheckFile(path string) (*Outcome, error) {
	sf, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.CheckSource(sf), nil
}

// session lazily builds the REPL scope: one context for the whole session,
// libraries in an outer environment, inputs declaring into the inner one.
func (b *Brook) session() {
	if b.replCtx != nil {
		return
	}
	b.replCtx = checker.NewContext()
	b.replCtx.SuppressTypes(b.cfg.SuppressTypes)
	libEnv := deps.ElaborateLibs(b.replCtx, b.libs)
	b.replEnv = checker.NewEnclosedEnvironment(libEnv)
	b.replMark = len(b.replCtx.Errors())
}

// Eval elaborates one REPL input against the session scope. Declarations
// persist to later inputs; the libraries sit in an enclosing scope.
func (b *Brook) Eval(input string) *Outcome {
	b.session()

	sf := source.NewReplSource(input)
	out := &Outcome{Source: sf}

	lx := lexer.NewLexerWithSource(sf)
	ps := parser.NewParser(lx)
	program, parseErrs := ps.ParseProgram()
	out.Program = program

	chk := checker.NewCheckerWithEnvironment(b.replCtx, sf, b.replEnv)
	all := chk.CheckProgram(program)

	raw := append(append([]errors.BrookError(nil), parseErrs...), all[b.replMark:]...)
	b.replMark = len(all)
	out.Errors, out.Suppressed = b.filterDiagnostics(raw, lx.Comments())
	out.Ctx = b.replCtx
	return out
}

// EvalAnnotation elaborates a bare annotation against the session scope and
// returns its resolved type. Declarations made through Eval are visible.
func (b *Brook) EvalAnnotation(input string) (types.Type, []errors.BrookError) {
	b.session()

	sf := source.NewReplSource(input)
	lx := lexer.NewLexerWithSource(sf)
	ps := parser.NewParser(lx)
	node, parseErrs := ps.ParseTypeAnnotation()
	if len(parseErrs) > 0 {
		return nil, parseErrs
	}

	chk := checker.NewCheckerWithEnvironment(b.replCtx, sf, b.replEnv)
	t, _ := chk.ConvertAnnotation(node)
	all := b.replCtx.Errors()
	errs := all[b.replMark:]
	b.replMark = len(all)
	return t, errs
}

// Reset drops the REPL scope. The next Eval starts fresh.
func (b *Brook) Reset() {
	b.replCtx = nil
	b.replEnv = nil
	b.replMark = 0
}

// DisplayOutcome prints the outcome's diagnostics to stderr and reports
// whether elaboration succeeded.
func (b *Brook) DisplayOutcome(out *Outcome) bool {
	errors.DisplayErrors(out.Source, out.Errors)
	return out.Succeeded()
}

// suppressedLines collects the lines whose diagnostics the comments
// suppress. A matching comment covers the line after its last line.
func (b *Brook) suppressedLines(comments []lexer.Comment) map[int]bool {
	if len(b.cfg.SuppressComments) == 0 {
		return nil
	}
	lines := make(map[int]bool)
	for _, c := range comments {
		if b.cfg.SuppressesComment(c.Text) {
			lines[c.EndLine+1] = true
		}
	}
	return lines
}

func (b *Brook) filterDiagnostics(errs []errors.BrookError, comments []lexer.Comment) ([]errors.BrookError, int) {
	lines := b.suppressedLines(comments)
	if len(lines) == 0 {
		return errs, 0
	}
	var kept []errors.BrookError
	suppressed := 0
	for _, e := range errs {
		if lines[e.Pos().Line] {
			suppressed++
			continue
		}
		kept = append(kept, e)
	}
	return kept, suppressed
}

// CheckFile elaborates one file with default configuration, prints its
// diagnostics and reports success. For anything beyond a one-shot check,
// build a session with NewWithConfig.
func CheckFile(path string) bool {
	b := New()
	out, err := b.CheckFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook: %v\n", err)
		return false
	}
	return b.DisplayOutcome(out)
}

// CheckString elaborates source text with default configuration, prints its
// diagnostics and reports success.
func CheckString(src string) bool {
	b := New()
	return b.DisplayOutcome(b.CheckString(src))
}
