package checker

import (
	"brook/pkg/ast"
	"brook/pkg/types"
)

// convertFunctionType elaborates a function annotation. Declared type
// parameters bind first, so every parameter and return annotation resolves
// against an environment that already contains them.
func (c *Checker) convertFunctionType(node *ast.FunctionType) *types.FunctionType {
	out := &types.FunctionType{
		Reason: types.MakeReason("function type", c.nodePosition(node)),
	}

	prev := c.env
	if len(node.TypeParams) > 0 {
		tparams, env := c.bindTypeParams(node.TypeParams)
		out.TypeParams = tparams
		c.env = env
	}

	out.Params = make([]*types.Param, len(node.Params))
	for i, p := range node.Params {
		out.Params[i] = c.convertParam(p)
	}
	if node.Rest != nil {
		out.Rest = c.convertParam(node.Rest)
	}
	out.Return = c.convertType(node.Return)

	c.env = prev
	return out
}

func (c *Checker) convertParam(p *ast.FunctionParam) *types.Param {
	out := &types.Param{Type: c.convertType(p.Type), Optional: p.Optional}
	if p.Name != nil {
		out.Name = p.Name.Value
	}
	return out
}
