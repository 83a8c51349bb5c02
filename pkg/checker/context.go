package checker

import (
	"brook/pkg/errors"
	"brook/pkg/types"
)

// Context owns the shared mutable state of one elaboration pass: the
// signature arena, fresh-identity counters, the accumulated diagnostics, the
// position→resolved-type side table and the configured suppress-type set.
// One context serves exactly one file (or REPL input) at a time; parallel
// elaboration uses one context per file.
type Context struct {
	arena    *types.SigArena
	suppress map[string]struct{}
	errs     []errors.BrookError
	typeAt   map[errors.Position]types.Type
	nextVar  uint64
	nextEval uint64
}

// NewContext creates an empty context with no suppressed names.
func NewContext() *Context {
	return &Context{
		arena:    types.NewSigArena(),
		suppress: make(map[string]struct{}),
		typeAt:   make(map[errors.Position]types.Type),
	}
}

// Arena returns the signature arena for this pass.
func (ctx *Context) Arena() *types.SigArena { return ctx.arena }

// FreshTypeVarID allocates the identity for a new unresolved type variable.
func (ctx *Context) FreshTypeVarID() uint64 {
	id := ctx.nextVar
	ctx.nextVar++
	return id
}

// FreshEvalID allocates the identity for a new deferred type operation.
func (ctx *Context) FreshEvalID() uint64 {
	id := ctx.nextEval
	ctx.nextEval++
	return id
}

// AddError appends a diagnostic. Conversion never aborts on recoverable
// problems; everything lands here and the pass continues.
func (ctx *Context) AddError(err errors.BrookError) {
	ctx.errs = append(ctx.errs, err)
}

// Errors returns all diagnostics recorded so far, warnings included.
func (ctx *Context) Errors() []errors.BrookError { return ctx.errs }

// SuppressTypes registers names whose use in type position yields a
// suppressed `any` (the project-level allowlist).
func (ctx *Context) SuppressTypes(names []string) {
	for _, n := range names {
		ctx.suppress[n] = struct{}{}
	}
}

// IsSuppressed reports whether name is in the suppress set.
func (ctx *Context) IsSuppressed(name string) bool {
	_, ok := ctx.suppress[name]
	return ok
}

// RecordType stores the resolved type for a source position. Every converted
// annotation node gets an entry; tooling reads the table without walking the
// annotated tree.
func (ctx *Context) RecordType(pos errors.Position, t types.Type) {
	ctx.typeAt[pos] = t
}

// TypeAt returns the recorded type for a position.
func (ctx *Context) TypeAt(pos errors.Position) (types.Type, bool) {
	t, ok := ctx.typeAt[pos]
	return t, ok
}

// RecordedTypes returns the full position table.
func (ctx *Context) RecordedTypes() map[errors.Position]types.Type {
	return ctx.typeAt
}
