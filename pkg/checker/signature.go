package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// --- Interface / Class Signature Builder ---
//
// Building a signature runs in three strict stages: bind type parameters,
// resolve the super description, fold the body members. The arena slot and
// its self placeholder already exist by the time a body is walked (the hoist
// pass made them), so recursive references inside the body land on the slot
// being built. Well-formedness of the super chain is checked only after
// every body in the program has been folded, so forward references verify
// against complete signatures.

// wfEntry is one deferred well-formedness obligation.
type wfEntry struct {
	sig  *types.Signature
	node ast.Node
}

func (c *Checker) queueWellFormed(sig *types.Signature, node ast.Node) {
	c.wellFormed = append(c.wellFormed, wfEntry{sig: sig, node: node})
}

// buildInterfaceSignature populates a hoisted interface slot from its
// declaration and seals it.
func (c *Checker) buildInterfaceSignature(sig *types.Signature, node *ast.InterfaceDeclaration) {
	debugPrintf("// [Checker Sig] Building interface '%s'\n", sig.Name)
	self := types.NewSelfType(sig, sig.Reason)

	prev := c.env
	if len(node.TypeParams) > 0 {
		tparams, env := c.bindTypeParams(node.TypeParams)
		sig.TypeParams = tparams
		c.env = env
	}

	super := &types.InterfaceSuper{Callable: hasOwnCallProperty(node.Body)}
	for _, ext := range node.Extends {
		super.Extends = append(super.Extends, c.convertType(ext))
	}
	sig.Super = super

	c.pushSelf(self)
	c.foldSignatureBody(sig, node.Body, false)
	c.popSelf()

	c.ensureStaticName(sig)
	c.queueWellFormed(sig, node)
	sig.Seal()
	c.env = prev
}

// buildClassSignature populates a hoisted class slot from its declaration
// and seals it.
func (c *Checker) buildClassSignature(sig *types.Signature, node *ast.DeclareClassDeclaration) {
	debugPrintf("// [Checker Sig] Building class '%s'\n", sig.Name)
	self := types.NewSelfType(sig, sig.Reason)

	prev := c.env
	if len(node.TypeParams) > 0 {
		tparams, env := c.bindTypeParams(node.TypeParams)
		sig.TypeParams = tparams
		c.env = env
	}

	super := &types.ClassSuper{}
	if node.Extends != nil {
		super.Extends = c.convertType(node.Extends)
	} else {
		super.Implicit = true
		// Only the builtin root class sits on a null prototype; every other
		// bare class hangs off the default object prototype.
		super.ImplicitNull = node.Name.Value == "Object"
	}
	for _, mixin := range node.Mixins {
		super.Mixins = append(super.Mixins, c.convertMixin(mixin))
	}
	for _, impl := range node.Implements {
		super.Implements = append(super.Implements, c.convertType(impl))
	}
	sig.Super = super

	c.pushSelf(self)
	c.foldSignatureBody(sig, node.Body, true)
	c.popSelf()

	if sig.Ctor == nil && super.Implicit && len(super.Mixins) == 0 {
		sig.Ctor = &types.FunctionType{Return: types.Void, Reason: types.Builtin("default constructor")}
	}
	c.ensureStaticName(sig)
	c.queueWellFormed(sig, node)
	sig.Seal()
	c.env = prev
}

// convertMixin resolves one mixins-clause entry through the value namespace
// and wraps it in the mixin projection. Mixins never consult the type
// namespace, which makes a type-only name fail here even when the same name
// would work as an extends target.
func (c *Checker) convertMixin(ref *ast.TypeReference) types.Type {
	reason := c.refReason(ref)
	base, ok := c.resolveValueRef(ref)
	if !ok {
		return c.record(ref, types.NewAnyError(reason))
	}
	if ref.HasArgs && len(ref.TypeArgs) > 0 {
		args := make([]types.Type, len(ref.TypeArgs))
		for i, a := range ref.TypeArgs {
			args[i] = c.convertType(a)
		}
		base = types.NewAppliedInstance(base, args, reason)
	}
	t := types.NewEvalType(c.ctx.FreshEvalID(), &types.MixinOp{Source: base}, reason)
	return c.record(ref, t)
}

// foldSignatureBody walks the body entries into the signature's member
// tables. Instance and static sections accumulate separately; in class
// bodies a method literally named `constructor` fills the constructor slot
// instead of becoming a member, and repeated constructor declarations
// accumulate into an overload intersection.
func (c *Checker) foldSignatureBody(sig *types.Signature, body *ast.ObjectType, isClass bool) {
	inst := c.newMemberAccum()
	static := c.newMemberAccum()

	for _, entry := range body.Entries {
		switch e := entry.(type) {
		case *ast.PropertyEntry:
			if isClass && !e.Static && e.Method && keyedName(e.Key) == "constructor" {
				c.addConstructor(sig, e)
				continue
			}
			if e.Static {
				static.addProperty(e)
			} else {
				inst.addProperty(e)
			}

		case *ast.IndexerEntry:
			if e.Static {
				c.addUnsupportedAt(c.tokenPosition(e.Token), "static indexers are not supported")
				continue
			}
			inst.addIndexer(e)

		case *ast.CallEntry:
			if e.Static {
				c.addUnsupportedAt(c.tokenPosition(e.Token), "static call properties are not supported")
				continue
			}
			inst.addCall(e)

		case *ast.InternalSlotEntry:
			if e.Static {
				c.addUnsupportedAt(c.tokenPosition(e.Token), "static internal slots are not supported")
				continue
			}
			inst.addInternalSlot(e)

		default:
			// Spreads and anything else a body cannot hold report through
			// the accumulator's rejection path.
			inst.addEntry(entry)
		}
	}

	sig.Members = inst.fields
	sig.Indexer = inst.indexer
	switch {
	case len(inst.calls) > 0:
		sig.Calls = inst.calls
	case inst.legacyCall != nil:
		sig.Calls = []types.Type{inst.legacyCall}
	}
	sig.Statics = static.fields
}

// addConstructor converts one constructor declaration. Overloads build up a
// declaration-ordered intersection.
func (c *Checker) addConstructor(sig *types.Signature, pe *ast.PropertyEntry) {
	fn, ok := pe.Value.(*ast.FunctionType)
	if !ok {
		c.addUnsupportedAt(c.keyPosition(pe.Key), "malformed constructor declaration")
		return
	}
	t := c.convertType(fn)
	switch prev := sig.Ctor.(type) {
	case nil:
		sig.Ctor = t
	case *types.IntersectionType:
		prev.Members = append(prev.Members, t)
	default:
		reason := types.MakeReason(fmt.Sprintf("constructor of '%s'", sig.Name), c.keyPosition(pe.Key))
		sig.Ctor = types.NewIntersectionType(reason, prev, t)
	}
}

// hasOwnCallProperty pre-scans a body for an own (non-static) call
// signature. The result feeds the super description before the body itself
// is folded.
func hasOwnCallProperty(body *ast.ObjectType) bool {
	for _, entry := range body.Entries {
		switch e := entry.(type) {
		case *ast.CallEntry:
			if !e.Static {
				return true
			}
		case *ast.InternalSlotEntry:
			if !e.Static && e.Name.Value == "call" {
				return true
			}
		case *ast.PropertyEntry:
			if !e.Static && !e.Method && keyedName(e.Key) == "$call" {
				return true
			}
		}
	}
	return false
}

// keyedName peeks at a property key without reporting; unsupported key
// shapes answer the empty string and are diagnosed later by the fold.
func keyedName(key ast.PropertyKey) string {
	switch k := key.(type) {
	case *ast.IdentKey:
		return k.Name.Value
	case *ast.StringKey:
		return k.Value
	}
	return ""
}

// ensureStaticName adds the implicit static `name` field every declared
// class and interface carries. Anonymous inline interfaces have no name to
// expose.
func (c *Checker) ensureStaticName(sig *types.Signature) {
	if sig.Name == "" {
		return
	}
	if _, ok := sig.Statics["name"]; ok {
		return
	}
	sig.Statics["name"] = &types.Property{
		Name:     "name",
		Polarity: types.Positive,
		Type:     types.String,
	}
}

// convertInterfaceType elaborates an inline `interface { ... }` annotation:
// an anonymous interface signature allocated on the spot, reached through
// its self-type.
func (c *Checker) convertInterfaceType(node *ast.InterfaceType) types.Type {
	reason := types.MakeReason("inline interface", c.nodePosition(node))
	sig := c.ctx.Arena().Allocate(types.InterfaceSig, "", reason)
	self := types.NewSelfType(sig, reason)

	super := &types.InterfaceSuper{Callable: hasOwnCallProperty(node.Body)}
	for _, ext := range node.Extends {
		super.Extends = append(super.Extends, c.convertType(ext))
	}
	sig.Super = super

	c.pushSelf(self)
	c.foldSignatureBody(sig, node.Body, false)
	c.popSelf()

	c.queueWellFormed(sig, node)
	sig.Seal()
	return self
}

// --- Well-Formedness ---

// checkWellFormed validates the super chain once the whole program has been
// folded: extends targets must match the declaration kind, and every
// implements entry must be an interface whose members the class satisfies.
// Violations are reported and the signature is kept as written.
func (c *Checker) checkWellFormed(sig *types.Signature, node ast.Node) {
	switch super := sig.Super.(type) {
	case *types.InterfaceSuper:
		for _, ext := range super.Extends {
			if kind, ok := c.sigKindOf(ext); ok && kind != types.InterfaceSig {
				c.addElabError(node, fmt.Sprintf("interface '%s' cannot extend a class", sig.Name))
			}
		}

	case *types.ClassSuper:
		if super.Extends != nil {
			if kind, ok := c.sigKindOf(super.Extends); ok && kind != types.ClassSig {
				c.addElabError(node, fmt.Sprintf("class '%s' cannot extend an interface", sig.Name))
			}
		}
		for _, impl := range super.Implements {
			c.checkImplementsEntry(sig, impl, node)
		}
	}
}

// sigKindOf digs the nominal kind out of a converted super reference.
// References that never reached a signature (error placeholders, deferred
// operations) answer false and are not re-diagnosed here.
func (c *Checker) sigKindOf(t types.Type) (types.SigKind, bool) {
	if sig := c.sigOf(t); sig != nil {
		return sig.Kind, true
	}
	return 0, false
}

func (c *Checker) sigOf(t types.Type) *types.Signature {
	switch typ := t.(type) {
	case *types.InstanceType:
		return c.sigOf(typ.Base)
	case *types.SelfType:
		return c.ctx.Arena().Get(typ.ID)
	}
	return nil
}

// checkImplementsEntry verifies each interface member has a compatible class
// member, through the engine's loose compatibility check. Optional interface
// members may be absent.
func (c *Checker) checkImplementsEntry(sig *types.Signature, impl types.Type, node ast.Node) {
	ifaceSig := c.sigOf(impl)
	if ifaceSig == nil || !ifaceSig.Sealed() {
		return
	}
	if ifaceSig.Kind != types.InterfaceSig {
		c.addElabError(node, fmt.Sprintf("class '%s' can only implement interfaces", sig.Name))
		return
	}
	for _, name := range ifaceSig.MemberNames() {
		want := ifaceSig.Member(name)
		have := sig.Member(name)
		if have == nil {
			if want.Optional {
				continue
			}
			c.addElabError(node, fmt.Sprintf("class '%s' is missing member '%s' of interface '%s'", sig.Name, name, ifaceSig.Name))
			continue
		}
		if !c.eng.Unify(have.ReadType(), want.ReadType()) {
			c.addElabError(node, fmt.Sprintf("member '%s' of class '%s' is not compatible with interface '%s'", name, sig.Name, ifaceSig.Name))
		}
	}
}
