package checker

import (
	"fmt"

	"brook/pkg/ast"
	"brook/pkg/types"
)

// polarityOf maps a declared variance sigil to the internal polarity.
func polarityOf(v ast.Variance) types.Polarity {
	switch v {
	case ast.VarianceCo:
		return types.Positive
	case ast.VarianceContra:
		return types.Negative
	default:
		return types.Neutral
	}
}

// bindTypeParams binds a declared type-parameter list into ordered internal
// parameters plus the lookup environment for the declaration body. Parameters
// bind left to right: each bound and default resolves against an environment
// that already contains the earlier parameters, so `<K, V: K>` works and
// `<V: K, K>` fails with an unresolved reference on K.
//
// An unannotated bound defaults to mixed. The returned environment encloses
// the checker's current one; the caller installs it for the body and restores
// the previous environment afterwards.
func (c *Checker) bindTypeParams(params []*ast.TypeParam) ([]*types.TypeParameter, *Environment) {
	env := NewEnclosedEnvironment(c.env)
	bound := make([]*types.TypeParameter, 0, len(params))

	prev := c.env
	c.env = env
	for _, p := range params {
		reason := types.MakeReason(fmt.Sprintf("type parameter '%s'", p.Name.Value), c.nodePosition(p.Name))

		var upper types.Type
		if p.Bound != nil {
			upper = c.convertType(p.Bound)
		} else {
			upper = types.NewPrimitive(types.MixedKind, reason)
		}

		var dflt types.Type
		if p.Default != nil {
			dflt = c.convertType(p.Default)
		}

		tp := &types.TypeParameter{
			Name:     p.Name.Value,
			Polarity: polarityOf(p.Variance),
			Bound:    upper,
			Default:  dflt,
			Reason:   reason,
		}
		if !env.DefineTypeParameter(tp) {
			c.addElabError(p.Name, fmt.Sprintf("duplicate type parameter '%s'", p.Name.Value))
			continue
		}
		bound = append(bound, tp)
	}
	c.env = prev

	return bound, env
}
