package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// convertObjectType folds an object annotation left to right. Each spread
// entry snapshots the accumulated shape into a finished piece and starts a
// fresh accumulator; a body without spreads collapses to one object type
// directly, anything else becomes a deferred right-biased merge evaluated by
// the engine, with the exactness flag applied to the merge target.
func (c *Checker) convertObjectType(node *ast.ObjectType) types.Type {
	reason := types.MakeReason("object type", c.nodePosition(node))

	var pieces []types.Type
	sawSpread := false
	acc := c.newObjectAccum()

	for _, entry := range node.Entries {
		if spread, ok := entry.(*ast.SpreadEntry); ok {
			if !acc.empty() {
				pieces = append(pieces, acc.finalize(reason))
				acc = c.newObjectAccum()
			}
			pieces = append(pieces, c.convertType(spread.Arg))
			sawSpread = true
			continue
		}
		acc.addEntry(entry)
	}
	if !acc.empty() || len(pieces) == 0 {
		pieces = append(pieces, acc.finalize(reason))
	}

	if !sawSpread && len(pieces) == 1 {
		obj := pieces[0].(*types.ObjectType)
		obj.Exact = node.Exact
		obj.Inexact = node.Inexact
		return obj
	}
	op := &types.SpreadMergeOp{Sources: pieces, Exact: node.Exact}
	return types.NewEvalType(c.ctx.FreshEvalID(), op, reason)
}

// objectAccum folds object-body entries into one pending object shape. The
// signature builder reuses it for class and interface bodies, one
// accumulator per member section.
type objectAccum struct {
	c          *Checker
	allowProto bool
	fields     map[string]*types.Property
	indexer    *types.Indexer
	calls      []types.Type
	proto      types.Type
	legacyCall types.Type
}

func (c *Checker) newObjectAccum() *objectAccum {
	return &objectAccum{c: c, fields: make(map[string]*types.Property), allowProto: true}
}

// newMemberAccum folds class and interface body sections, where `__proto__`
// is an ordinary member rather than a prototype link.
func (c *Checker) newMemberAccum() *objectAccum {
	return &objectAccum{c: c, fields: make(map[string]*types.Property)}
}

func (a *objectAccum) empty() bool {
	return len(a.fields) == 0 && a.indexer == nil && len(a.calls) == 0 &&
		a.proto == nil && a.legacyCall == nil
}

func (a *objectAccum) addEntry(entry ast.ObjectTypeEntry) {
	switch e := entry.(type) {
	case *ast.PropertyEntry:
		a.addProperty(e)
	case *ast.IndexerEntry:
		a.addIndexer(e)
	case *ast.CallEntry:
		a.addCall(e)
	case *ast.InternalSlotEntry:
		a.addInternalSlot(e)
	case *ast.SpreadEntry:
		// Callers that allow spreads intercept them before the accumulator,
		// so reaching one here means a class or interface body.
		a.c.addUnsupportedAt(a.c.tokenPosition(e.Token), "spread is not allowed here")
	}
}

func (a *objectAccum) addProperty(pe *ast.PropertyEntry) {
	name, ok := a.c.propertyName(pe.Key)
	if !ok {
		return
	}
	if pe.Accessor != ast.AccessorNone {
		a.addAccessor(name, pe)
		return
	}

	t := a.c.convertType(pe.Value)

	// A plain `__proto__` field links the prototype instead of declaring a
	// member. Method, optional or varianced forms stay ordinary fields.
	if a.allowProto && name == "__proto__" && !pe.Method && !pe.Optional && pe.Variance == ast.VarianceNone {
		if a.proto != nil {
			a.c.addUnsupportedAt(a.c.keyPosition(pe.Key), "duplicate '__proto__' field")
			return
		}
		a.proto = t
		return
	}

	if name == "$call" && !pe.Method {
		a.c.addDeprecationAt(a.c.keyPosition(pe.Key), "'$call' properties are deprecated, use a call property instead")
		a.legacyCall = t
		return
	}

	polarity := polarityOf(pe.Variance)
	if pe.Method {
		polarity = types.Positive
	}
	a.fields[name] = &types.Property{
		Name:     name,
		Polarity: polarity,
		Optional: pe.Optional,
		Method:   pe.Method,
		Type:     t,
	}
}

// addAccessor merges getter and setter declarations sharing a name into one
// two-way accessor property.
func (a *objectAccum) addAccessor(name string, pe *ast.PropertyEntry) {
	fn, ok := pe.Value.(*ast.FunctionType)
	if !ok {
		a.c.addElabError(pe.Value, fmt.Sprintf("malformed accessor for property '%s'", name))
		return
	}
	a.c.addDeprecationAt(a.c.keyPosition(pe.Key), "getter and setter properties are unsafe")
	sig := a.c.convertFunctionType(fn)

	prop := a.fields[name]
	if prop == nil || !prop.IsAccessor() {
		prop = &types.Property{Name: name, Optional: pe.Optional}
		a.fields[name] = prop
	}
	switch pe.Accessor {
	case ast.AccessorGet:
		prop.Get = sig.Return
	case ast.AccessorSet:
		if len(sig.Params) == 0 {
			a.c.addElabError(pe.Value, fmt.Sprintf("the setter for '%s' must declare a parameter", name))
			return
		}
		prop.Set = sig.Params[0].Type
	}
}

func (a *objectAccum) addIndexer(ie *ast.IndexerEntry) {
	key := a.c.convertType(ie.Key)
	value := a.c.convertType(ie.Value)
	if a.indexer != nil {
		// The first indexer stands; a second is an error, not a replacement.
		a.c.addUnsupportedAt(a.c.tokenPosition(ie.Token), "multiple indexers are not supported")
		return
	}
	ix := &types.Indexer{KeyType: key, Value: value, Polarity: polarityOf(ie.Variance)}
	if ie.Name != nil {
		ix.Name = ie.Name.Value
	}
	a.indexer = ix
}

func (a *objectAccum) addCall(ce *ast.CallEntry) {
	a.calls = append(a.calls, a.c.convertFunctionType(ce.Fn))
}

func (a *objectAccum) addInternalSlot(ie *ast.InternalSlotEntry) {
	if ie.Name.Value != "call" {
		a.c.addUnsupportedAt(a.c.tokenPosition(ie.Token), fmt.Sprintf("unsupported internal slot '[[%s]]'", ie.Name.Value))
		return
	}
	a.calls = append(a.calls, a.c.convertType(ie.Value))
}

// finalize freezes the accumulated entries into one object type. Call
// signatures keep declaration order; a legacy `$call` field only becomes the
// call signature when no real call property was declared.
func (a *objectAccum) finalize(reason types.Reason) *types.ObjectType {
	obj := types.NewObjectType(reason)
	obj.Fields = a.fields
	obj.Indexer = a.indexer
	obj.Proto = a.proto
	if len(a.calls) > 0 {
		obj.Calls = a.calls
	} else if a.legacyCall != nil {
		obj.Calls = []types.Type{a.legacyCall}
	}
	return obj
}

// propertyName extracts the field name from a surface key. Only identifier
// and string keys elaborate; the other shapes report an unsupported key and
// the property contributes nothing.
func (c *Checker) propertyName(key ast.PropertyKey) (string, bool) {
	switch k := key.(type) {
	case *ast.IdentKey:
		return k.Name.Value, true
	case *ast.StringKey:
		return k.Value, true
	case *ast.NumberKey:
		c.addUnsupportedAt(c.keyPosition(key), "numeric-literal keys are not supported")
	case *ast.ComputedKey:
		c.addUnsupportedAt(c.keyPosition(key), "computed property keys are not supported")
	case *ast.PrivateKey:
		c.addUnsupportedAt(c.keyPosition(key), fmt.Sprintf("private name '#%s' is not supported", k.Name.Value))
	default:
		c.addUnsupportedAt(c.keyPosition(key), "unsupported property key")
	}
	return "", false
}
