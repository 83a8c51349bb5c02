package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/errors"
	"brook/pkg/infer"
	"brook/pkg/source"
	"brook/pkg/types"
)

const checkerDebug = false

func debugPrintf(format string, args ...interface{}) {
	if checkerDebug {
		fmt.Printf(format, args...)
	}
}

// Checker elaborates declaration files: it converts every surface type
// annotation into an internal type, records each resolution on the shared
// context, and registers declared names in the ambient environment.
type Checker struct {
	ctx    *Context
	env    *Environment
	eng    *infer.Engine
	source *source.SourceFile

	// selfStack tracks the enclosing class/interface bodies; `this`
	// resolves to the innermost entry.
	selfStack []*types.SelfType

	// pendingSigs maps hoisted declarations to their arena slots between
	// the hoist pass and the body pass.
	pendingSigs map[ast.Declaration]*types.Signature

	// wellFormed holds super-chain checks deferred until every body in the
	// program has been folded.
	wellFormed []wfEntry
}

// NewChecker creates a checker over a fresh global environment.
func NewChecker(ctx *Context, sf *source.SourceFile) *Checker {
	return NewCheckerWithEnvironment(ctx, sf, NewEnvironment())
}

// NewCheckerWithEnvironment creates a checker whose global scope encloses the
// given environment. The driver uses this to layer library declarations under
// the file being checked.
func NewCheckerWithEnvironment(ctx *Context, sf *source.SourceFile, env *Environment) *Checker {
	return &Checker{
		ctx:    ctx,
		env:    env,
		eng:    infer.NewEngine(ctx.Arena(), ctx),
		source: sf,
	}
}

// Environment returns the checker's current environment. After CheckProgram
// it holds every name the file declared.
func (c *Checker) Environment() *Environment { return c.env }

// Context returns the shared typing context.
func (c *Checker) Context() *Context { return c.ctx }

// CheckProgram elaborates every declaration in the program. Class and
// interface names are hoisted first (their arena placeholders exist before
// any body is walked), so declarations may reference classes and interfaces
// declared later in the file. Aliases and vars elaborate in written order.
// Returns all diagnostics accumulated on the context, warnings included.
func (c *Checker) CheckProgram(program *ast.Program) []errors.BrookError {
	c.pendingSigs = make(map[ast.Declaration]*types.Signature)

	for _, decl := range program.Declarations {
		c.hoistDeclaration(decl)
	}
	for _, decl := range program.Declarations {
		c.checkDeclaration(decl)
	}
	for _, wf := range c.wellFormed {
		c.checkWellFormed(wf.sig, wf.node)
	}

	c.pendingSigs = nil
	c.wellFormed = nil
	return c.ctx.Errors()
}

// hoistDeclaration allocates the placeholder signature for class and
// interface declarations and binds their names, so later declarations can
// refer to them before their bodies are built.
func (c *Checker) hoistDeclaration(decl ast.Declaration) {
	switch node := decl.(type) {
	case *ast.InterfaceDeclaration:
		reason := types.MakeReason(fmt.Sprintf("interface '%s'", node.Name.Value), c.nodePosition(node))
		sig := c.ctx.Arena().Allocate(types.InterfaceSig, node.Name.Value, reason)
		self := types.NewSelfType(sig, reason)
		if !c.env.DefineType(node.Name.Value, self) {
			c.addElabError(node, fmt.Sprintf("type '%s' is already declared", node.Name.Value))
			return
		}
		c.pendingSigs[decl] = sig

	case *ast.DeclareClassDeclaration:
		reason := types.MakeReason(fmt.Sprintf("class '%s'", node.Name.Value), c.nodePosition(node))
		sig := c.ctx.Arena().Allocate(types.ClassSig, node.Name.Value, reason)
		self := types.NewSelfType(sig, reason)
		if !c.env.DefineType(node.Name.Value, self) {
			c.addElabError(node, fmt.Sprintf("type '%s' is already declared", node.Name.Value))
			return
		}
		c.env.Define(node.Name.Value, types.NewClassType(self, reason))
		c.pendingSigs[decl] = sig
	}
}

// checkDeclaration elaborates one declaration in source order.
func (c *Checker) checkDeclaration(decl ast.Declaration) {
	switch node := decl.(type) {
	case *ast.TypeAliasDeclaration:
		c.checkTypeAlias(node)

	case *ast.InterfaceDeclaration:
		if sig, ok := c.pendingSigs[decl]; ok {
			c.buildInterfaceSignature(sig, node)
		}

	case *ast.DeclareClassDeclaration:
		if sig, ok := c.pendingSigs[decl]; ok {
			c.buildClassSignature(sig, node)
		}

	case *ast.DeclareVarDeclaration:
		t := c.convertType(node.Type)
		if !c.env.Define(node.Name.Value, t) {
			c.addElabError(node, fmt.Sprintf("variable '%s' is already declared", node.Name.Value))
		}

	default:
		c.addElabError(decl, fmt.Sprintf("unhandled declaration %T", decl))
	}
}

func (c *Checker) checkTypeAlias(node *ast.TypeAliasDeclaration) {
	name := node.Name.Value
	reason := types.MakeReason(fmt.Sprintf("type alias '%s'", name), c.nodePosition(node))

	if len(node.TypeParams) == 0 {
		t := c.convertType(node.Aliased)
		if !c.env.DefineType(name, t) {
			c.addElabError(node, fmt.Sprintf("type '%s' is already declared", name))
		}
		return
	}

	tparams, env := c.bindTypeParams(node.TypeParams)
	prev := c.env
	c.env = env
	body := c.convertType(node.Aliased)
	c.env = prev

	generic := &types.GenericType{Name: name, TypeParams: tparams, Body: body, Reason: reason}
	if !c.env.DefineType(name, generic) {
		c.addElabError(node, fmt.Sprintf("type '%s' is already declared", name))
	}
}

// pushSelf enters a class-like body; `this` resolves to self until popSelf.
func (c *Checker) pushSelf(self *types.SelfType) {
	c.selfStack = append(c.selfStack, self)
}

func (c *Checker) popSelf() {
	c.selfStack = c.selfStack[:len(c.selfStack)-1]
}

// currentSelf returns the innermost enclosing self-type, or nil outside any
// class-like body.
func (c *Checker) currentSelf() *types.SelfType {
	if len(c.selfStack) == 0 {
		return nil
	}
	return c.selfStack[len(c.selfStack)-1]
}
