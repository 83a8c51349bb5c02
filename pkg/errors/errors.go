package errors

import (
	"fmt"
	"os"
	"strings"

	"brook/pkg/source"
)

// BrookError is the interface implemented by all Brook diagnostics.
type BrookError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Elab", "Arity", "UnsupportedSyntax", "UnresolvedReference", "Deprecation"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing of a declaration file.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// ElabError represents a general elaboration failure: an annotation whose shape
// is understood but cannot be converted as written (bad typeof target, `this`
// outside a class body, malformed utility arguments). Conversion records the
// error and substitutes an error-tagged `any`, it never aborts the pass.
type ElabError struct {
	Position
	Msg   string
	Cause error
}

func (e *ElabError) Error() string {
	return fmt.Sprintf("Elaboration Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ElabError) Pos() Position   { return e.Position }
func (e *ElabError) Kind() string    { return "Elab" }
func (e *ElabError) Message() string { return e.Msg }
func (e *ElabError) Unwrap() error   { return e.Cause }
func (e *ElabError) CausedBy(cause error) *ElabError {
	e.Cause = cause
	return e
}

// ArityError reports a utility type or type-parameter reference applied with
// the wrong number of type arguments. Always locally detected; the argument
// list is never converted when the count is wrong.
type ArityError struct {
	Position
	Name     string // the applied name, e.g. "$PropertyType"
	Expected int
	Actual   int
	Variadic bool // true when Expected is a minimum, not an exact count
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("Arity Error at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *ArityError) Pos() Position { return e.Position }
func (e *ArityError) Kind() string  { return "Arity" }
func (e *ArityError) Message() string {
	if e.Variadic {
		return fmt.Sprintf("%s expects at least %d type argument(s), got %d", e.Name, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s expects %d type argument(s), got %d", e.Name, e.Expected, e.Actual)
}
func (e *ArityError) Unwrap() error { return nil }

// UnsupportedSyntaxError reports a shape the elaborator recognizes but does not
// accept: computed/numeric/private object keys, a second indexer, interface
// spreads. The offending entry contributes an error marker; siblings proceed.
type UnsupportedSyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *UnsupportedSyntaxError) Error() string {
	return fmt.Sprintf("Unsupported Syntax at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *UnsupportedSyntaxError) Pos() Position   { return e.Position }
func (e *UnsupportedSyntaxError) Kind() string    { return "UnsupportedSyntax" }
func (e *UnsupportedSyntaxError) Message() string { return e.Msg }
func (e *UnsupportedSyntaxError) Unwrap() error   { return e.Cause }

// UnresolvedReferenceError reports a qualified or free identifier that the
// ambient environment cannot resolve in the required namespace.
type UnresolvedReferenceError struct {
	Position
	Name      string
	Namespace string // "type" or "value"
	Cause     error
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("Unresolved Reference at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *UnresolvedReferenceError) Pos() Position { return e.Position }
func (e *UnresolvedReferenceError) Kind() string  { return "UnresolvedReference" }
func (e *UnresolvedReferenceError) Message() string {
	if e.Namespace != "" {
		return fmt.Sprintf("cannot resolve name '%s' (%s namespace)", e.Name, e.Namespace)
	}
	return fmt.Sprintf("cannot resolve name '%s'", e.Name)
}
func (e *UnresolvedReferenceError) Unwrap() error { return e.Cause }

// DeprecationWarning flags deprecated-but-processed constructs: `$Enum`,
// `$Supertype`/`$Subtype`, legacy call-property syntax, unsafe accessors.
// Conversion proceeds as if the construct were valid.
type DeprecationWarning struct {
	Position
	Msg string
}

func (e *DeprecationWarning) Error() string {
	return fmt.Sprintf("Deprecation Warning at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *DeprecationWarning) Pos() Position   { return e.Position }
func (e *DeprecationWarning) Kind() string    { return "Deprecation" }
func (e *DeprecationWarning) Message() string { return e.Msg }
func (e *DeprecationWarning) Unwrap() error   { return nil }

// IsWarning reports whether the diagnostic is advisory (conversion proceeded).
func IsWarning(err BrookError) bool {
	return err.Kind() == "Deprecation"
}

// --- Error Reporting ---

// DisplayErrors prints diagnostics to stderr in a user-friendly format,
// including the offending source line and a position marker.
func DisplayErrors(sf *source.SourceFile, errs []BrookError) {
	if len(errs) == 0 {
		return
	}

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		file := sf
		if pos.Source != nil {
			file = pos.Source
		}

		var sourceLine string
		if file != nil {
			sourceLine = file.Line(pos.Line)
		}
		if sourceLine == "" {
			// No line info available for this diagnostic
			fmt.Fprintf(os.Stderr, "%s Error: %s\n", kind, msg)
			continue
		}

		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ")

		label := "Error"
		if IsWarning(err) {
			label = "Warning"
		}
		where := fmt.Sprintf("%d:%d", pos.Line, pos.Column)
		if file != nil && file.IsFile() {
			where = fmt.Sprintf("%s:%s", file.DisplayPath(), where)
		}
		fmt.Fprintf(os.Stderr, "%s %s at %s: %s\n", kind, label, where, msg)

		// Print the source line and a marker under the start column
		fmt.Fprintf(os.Stderr, "  %s\n", trimmedLine)
		marker := strings.Repeat(" ", pos.Column) + "^"
		fmt.Fprintf(os.Stderr, "  %s\n", marker)
		fmt.Fprintln(os.Stderr)
	}
}
