package checker

import (
	"brook/pkg/ast"
	"brook/pkg/errors"
	"brook/pkg/lexer"
)

// tokenPosition builds a diagnostic position from a raw token, attaching the
// checker's source file.
func (c *Checker) tokenPosition(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   c.source,
	}
}

// nodePosition builds the diagnostic position for a syntax node, best effort.
func (c *Checker) nodePosition(node ast.Node) errors.Position {
	return c.tokenPosition(nodeToken(node))
}

func (c *Checker) keyPosition(key ast.PropertyKey) errors.Position {
	return c.tokenPosition(keyToken(key))
}

func (c *Checker) addElabError(node ast.Node, msg string) {
	c.addElabErrorAt(c.nodePosition(node), msg)
}

func (c *Checker) addElabErrorAt(pos errors.Position, msg string) {
	c.ctx.AddError(&errors.ElabError{Position: pos, Msg: msg})
}

func (c *Checker) addArityError(node ast.Node, name string, expected, actual int, variadic bool) {
	c.ctx.AddError(&errors.ArityError{
		Position: c.nodePosition(node),
		Name:     name,
		Expected: expected,
		Actual:   actual,
		Variadic: variadic,
	})
}

func (c *Checker) addUnsupported(node ast.Node, msg string) {
	c.addUnsupportedAt(c.nodePosition(node), msg)
}

func (c *Checker) addUnsupportedAt(pos errors.Position, msg string) {
	c.ctx.AddError(&errors.UnsupportedSyntaxError{Position: pos, Msg: msg})
}

func (c *Checker) addUnresolved(node ast.Node, name, namespace string) {
	c.addUnresolvedAt(c.nodePosition(node), name, namespace)
}

func (c *Checker) addUnresolvedAt(pos errors.Position, name, namespace string) {
	c.ctx.AddError(&errors.UnresolvedReferenceError{
		Position:  pos,
		Name:      name,
		Namespace: namespace,
	})
}

func (c *Checker) addDeprecation(node ast.Node, msg string) {
	c.addDeprecationAt(c.nodePosition(node), msg)
}

func (c *Checker) addDeprecationAt(pos errors.Position, msg string) {
	c.ctx.AddError(&errors.DeprecationWarning{Position: pos, Msg: msg})
}

// nodeToken extracts the primary token of a syntax node, best effort. Used
// only for diagnostic positions.
func nodeToken(node ast.Node) lexer.Token {
	switch n := node.(type) {
	case *ast.Identifier:
		return n.Token
	case *ast.TypeReference:
		return n.Token
	case *ast.NullableType:
		return n.Token
	case *ast.UnionType:
		return n.Token
	case *ast.IntersectionType:
		return n.Token
	case *ast.TypeofType:
		return n.Token
	case *ast.TupleType:
		return n.Token
	case *ast.ArrayType:
		return n.Token
	case *ast.ExistsType:
		return n.Token
	case *ast.StringLiteralType:
		return n.Token
	case *ast.NumberLiteralType:
		return n.Token
	case *ast.BooleanLiteralType:
		return n.Token
	case *ast.NullLiteralType:
		return n.Token
	case *ast.FunctionType:
		return n.Token
	case *ast.ObjectType:
		return n.Token
	case *ast.InterfaceType:
		return n.Token
	case *ast.TypeAliasDeclaration:
		return n.Token
	case *ast.InterfaceDeclaration:
		return n.Token
	case *ast.DeclareClassDeclaration:
		return n.Token
	case *ast.DeclareVarDeclaration:
		return n.Token
	default:
		return lexer.Token{}
	}
}

// keyToken extracts the primary token of a property key.
func keyToken(key ast.PropertyKey) lexer.Token {
	switch k := key.(type) {
	case *ast.IdentKey:
		return k.Name.Token
	case *ast.StringKey:
		return k.Token
	case *ast.NumberKey:
		return k.Token
	case *ast.ComputedKey:
		return k.Token
	case *ast.PrivateKey:
		return k.Token
	default:
		return lexer.Token{}
	}
}
