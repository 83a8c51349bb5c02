package checker

import (
	"fmt"
	"strings"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// resolveQualified resolves a dotted name (`A.B.C`) against the ambient
// value namespace: the head is an ordinary value lookup and every further
// step is a property projection handed to the engine, which reduces it
// immediately when the source is concrete and defers it otherwise. Reports
// an unresolved reference and returns false when the head is not bound.
func (c *Checker) resolveQualified(ref *ast.TypeReference) (types.Type, bool) {
	head := ref.Qualifiers[0]
	cur, ok := c.env.Resolve(head.Value)
	if !ok {
		c.addUnresolved(head, head.Value, "value")
		return nil, false
	}

	steps := make([]string, 0, len(ref.Qualifiers))
	steps = append(steps, head.Value)
	for _, q := range ref.Qualifiers[1:] {
		cur = c.projectMember(cur, q.Value, strings.Join(steps, "."), q)
		steps = append(steps, q.Value)
	}
	cur = c.projectMember(cur, ref.Name.Value, strings.Join(steps, "."), ref.Name)
	return cur, true
}

// resolveValueRef resolves a bare or dotted reference in the value namespace.
// Used by `typeof` and by mixin clauses, which never consult the type
// namespace.
func (c *Checker) resolveValueRef(ref *ast.TypeReference) (types.Type, bool) {
	if ref.IsQualified() {
		return c.resolveQualified(ref)
	}
	t, ok := c.env.Resolve(ref.Name.Value)
	if !ok {
		c.addUnresolved(ref.Name, ref.Name.Value, "value")
		return nil, false
	}
	return t, true
}

// projectMember asks the engine for the type of one member on a qualified
// path. A missing member on a concrete source is an elaboration error; the
// projection result stands in as error recovery either way.
func (c *Checker) projectMember(src types.Type, key, path string, at *ast.Identifier) types.Type {
	reason := types.MakeReason(fmt.Sprintf("property '%s' of %s", key, path), c.nodePosition(at))
	t, ok := c.eng.ProjectProperty(src, key)
	if !ok {
		c.addElabError(at, fmt.Sprintf("property '%s' is missing in %s", key, path))
		return types.NewAnyError(reason)
	}
	return t
}
