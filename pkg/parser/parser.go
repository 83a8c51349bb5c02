package parser

import (
	"fmt"
	"strconv"
	"strings"

	"brook/pkg/ast"
	"brook/pkg/errors"
	"brook/pkg/lexer"
	"brook/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// --- End Debug Flag ---

// Parser takes a lexer and builds a declaration-file AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer
	errors []errors.BrookError

	curToken  lexer.Token
	peekToken lexer.Token

	// Pratt parser for TYPE expressions
	typePrefixParseFns map[lexer.TokenType]typePrefixParseFn // starts of types (idents, literals, '{', '[', '(', '?', ...)
	typeInfixParseFns  map[lexer.TokenType]typeInfixParseFn  // type operators ('|', '&', postfix '[]')
}

type (
	typePrefixParseFn func() ast.TypeNode
	typeInfixParseFn  func(ast.TypeNode) ast.TypeNode
)

// Precedence levels for TYPE operators. Union binds loosest, the postfix
// array suffix tightest. The '?' prefix takes an operand above intersection,
// so `?A | B` reads as `(?A) | B` and `?A[]` as `?(A[])`.
const (
	_ int = iota
	TYPE_LOWEST
	TYPE_UNION        // |
	TYPE_INTERSECTION // &
	TYPE_ARRAY        // T[]
)

var typePrecedences = map[lexer.TokenType]int{
	lexer.PIPE:      TYPE_UNION,
	lexer.AMPERSAND: TYPE_INTERSECTION,
	lexer.LBRACKET:  TYPE_ARRAY,
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(),
		errors: []errors.BrookError{},
	}

	p.typePrefixParseFns = make(map[lexer.TokenType]typePrefixParseFn)
	p.typeInfixParseFns = make(map[lexer.TokenType]typeInfixParseFn)

	// --- Register TYPE Prefix Functions ---
	p.registerTypePrefix(lexer.IDENT, p.parseTypeReferenceNode)
	// Contextual keywords double as type names
	p.registerTypePrefix(lexer.GET, p.parseTypeReferenceNode)
	p.registerTypePrefix(lexer.SET, p.parseTypeReferenceNode)
	p.registerTypePrefix(lexer.STATIC, p.parseTypeReferenceNode)
	p.registerTypePrefix(lexer.TYPE, p.parseTypeReferenceNode)
	p.registerTypePrefix(lexer.MIXINS, p.parseTypeReferenceNode)
	p.registerTypePrefix(lexer.NUMBER, p.parseNumberLiteralType)
	p.registerTypePrefix(lexer.MINUS, p.parseNegativeNumberLiteralType)
	p.registerTypePrefix(lexer.STRING, p.parseStringLiteralType)
	p.registerTypePrefix(lexer.TRUE, p.parseBooleanLiteralType)
	p.registerTypePrefix(lexer.FALSE, p.parseBooleanLiteralType)
	p.registerTypePrefix(lexer.NULL, p.parseNullLiteralType)
	p.registerTypePrefix(lexer.QUESTION, p.parseNullableType)
	p.registerTypePrefix(lexer.TYPEOF, p.parseTypeofType)
	p.registerTypePrefix(lexer.ASTERISK, p.parseExistsType)
	p.registerTypePrefix(lexer.LBRACKET, p.parseTupleType)
	p.registerTypePrefix(lexer.LPAREN, p.parseFunctionOrGroupedType)
	p.registerTypePrefix(lexer.LT, p.parseGenericFunctionType)
	p.registerTypePrefix(lexer.LBRACE, p.parseObjectTypeNode)
	p.registerTypePrefix(lexer.LBRACE_PIPE, p.parseObjectTypeNode)
	p.registerTypePrefix(lexer.INTERFACE, p.parseInterfaceType)
	// Leading separators: `type T = | A | B` and `type T = & A & B`
	p.registerTypePrefix(lexer.PIPE, p.parseLeadingPipeUnionType)
	p.registerTypePrefix(lexer.AMPERSAND, p.parseLeadingAmpersandIntersectionType)

	// --- Register TYPE Infix Functions ---
	p.registerTypeInfix(lexer.PIPE, p.parseUnionType)
	p.registerTypeInfix(lexer.AMPERSAND, p.parseIntersectionType)
	p.registerTypeInfix(lexer.LBRACKET, p.parseArrayType)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []errors.BrookError {
	return p.errors
}

// GetSource returns the source file this parser reads from, or nil.
func (p *Parser) GetSource() *source.SourceFile {
	return p.source
}

// nextToken advances the current and peek tokens.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

func (p *Parser) registerTypePrefix(tokenType lexer.TokenType, fn typePrefixParseFn) {
	p.typePrefixParseFns[tokenType] = fn
}

func (p *Parser) registerTypeInfix(tokenType lexer.TokenType, fn typeInfixParseFn) {
	p.typeInfixParseFns[tokenType] = fn
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek checks the type of the next token and advances if it matches.
// If it doesn't match, it adds an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekTypePrecedence() int {
	if prec, ok := typePrecedences[p.peekToken.Type]; ok {
		return prec
	}
	return TYPE_LOWEST
}

// canBeTypeName reports whether the token can serve as a type or parameter
// name. Contextual keywords keep working as ordinary names.
func canBeTypeName(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.GET, lexer.SET, lexer.STATIC, lexer.TYPE, lexer.MIXINS:
		return true
	default:
		return false
	}
}

// canBeKeyName reports whether the token can serve as an object property key.
// Any identifier-shaped word works, keywords included.
func canBeKeyName(t lexer.TokenType) bool {
	if canBeTypeName(t) {
		return true
	}
	switch t {
	case lexer.INTERFACE, lexer.DECLARE, lexer.CLASS, lexer.EXTENDS, lexer.IMPLEMENTS,
		lexer.VAR, lexer.TYPEOF, lexer.TRUE, lexer.FALSE, lexer.NULL:
		return true
	default:
		return false
	}
}

// expectPeekName advances onto the next token if it can be a name.
func (p *Parser) expectPeekName() bool {
	if canBeTypeName(p.peekToken.Type) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected identifier, got %s", p.peekToken.Type))
	return false
}

// --- Error Helpers ---

func (p *Parser) tokenPosition(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	// Prevent memory exhaustion from runaway error generation
	const maxErrors = 1000
	if len(p.errors) >= maxErrors {
		if len(p.errors) == maxErrors {
			p.errors = append(p.errors, &errors.SyntaxError{
				Position: p.tokenPosition(tok),
				Msg:      fmt.Sprintf("too many parse errors (limit: %d), stopping parser", maxErrors),
			})
		}
		return
	}

	p.errors = append(p.errors, &errors.SyntaxError{
		Position: p.tokenPosition(tok),
		Msg:      msg,
	})
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noTypePrefixError() {
	msg := fmt.Sprintf("unexpected token %s (%q) at start of type annotation", p.curToken.Type, p.curToken.Literal)
	p.addError(p.curToken, msg)
}

// --- Program Parsing ---

// ParseProgram parses an entire declaration file and returns the root node
// plus any syntax errors. Bad declarations are skipped to the next plausible
// declaration start so one mistake does not swallow the rest of the file.
func (p *Parser) ParseProgram() (*ast.Program, []errors.BrookError) {
	program := &ast.Program{Declarations: []ast.Declaration{}}

	for !p.curTokenIs(lexer.EOF) {
		decl := p.parseDeclaration()
		if decl != nil {
			program.Declarations = append(program.Declarations, decl)
		} else {
			p.synchronize()
		}
		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
	}

	return program, p.errors
}

// ParseTypeAnnotation parses a single standalone type annotation. Used by the
// REPL and the -e flag, where the input is one annotation rather than a file.
func (p *Parser) ParseTypeAnnotation() (ast.TypeNode, []errors.BrookError) {
	if p.curTokenIs(lexer.EOF) {
		p.addError(p.curToken, "empty type annotation")
		return nil, p.errors
	}
	node := p.parseTypeExpression()
	if node != nil && !p.peekTokenIs(lexer.EOF) {
		p.addError(p.peekToken, fmt.Sprintf("unexpected trailing token %s (%q) after type annotation", p.peekToken.Type, p.peekToken.Literal))
	}
	return node, p.errors
}

// synchronize skips tokens until the next likely declaration start, leaving
// it in peek position so the program loop's advance lands on it.
func (p *Parser) synchronize() {
	for {
		switch p.peekToken.Type {
		case lexer.EOF, lexer.TYPE, lexer.INTERFACE, lexer.DECLARE:
			return
		}
		p.nextToken()
	}
}

// --- Declaration Parsing ---

func (p *Parser) parseDeclaration() ast.Declaration {
	debugPrint("parseDeclaration: cur='%s' (%s)", p.curToken.Literal, p.curToken.Type)
	switch p.curToken.Type {
	case lexer.TYPE:
		return p.parseTypeAliasDeclaration()
	case lexer.INTERFACE:
		return p.parseInterfaceDeclaration()
	case lexer.DECLARE:
		return p.parseDeclareDeclaration()
	case lexer.SEMICOLON:
		// Stray separator between declarations
		return nil
	default:
		p.addError(p.curToken, fmt.Sprintf("unexpected token %s (%q) at start of declaration", p.curToken.Type, p.curToken.Literal))
		p.nextToken()
		return nil
	}
}

// parseTypeAliasDeclaration parses `type Name<Ts> = T;`.
func (p *Parser) parseTypeAliasDeclaration() ast.Declaration {
	decl := &ast.TypeAliasDeclaration{Token: p.curToken}

	if !p.expectPeekName() {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		decl.TypeParams = p.parseTypeParams()
		if decl.TypeParams == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken() // move onto the aliased type
	decl.Aliased = p.parseTypeExpression()
	if decl.Aliased == nil {
		return nil
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

// parseInterfaceDeclaration parses `interface Name<Ts> extends A, B { ... }`.
func (p *Parser) parseInterfaceDeclaration() ast.Declaration {
	decl := &ast.InterfaceDeclaration{Token: p.curToken}

	if !p.expectPeekName() {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		decl.TypeParams = p.parseTypeParams()
		if decl.TypeParams == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		decl.Extends = p.parseTypeReferenceList()
		if decl.Extends == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	decl.Body = p.parseObjectTypeBody(p.curToken, false, false)
	if decl.Body == nil {
		return nil
	}
	return decl
}

// parseDeclareDeclaration parses `declare class ...` or `declare var ...`.
func (p *Parser) parseDeclareDeclaration() ast.Declaration {
	declareTok := p.curToken
	switch p.peekToken.Type {
	case lexer.CLASS:
		p.nextToken()
		return p.parseDeclareClassDeclaration(declareTok)
	case lexer.VAR:
		p.nextToken()
		return p.parseDeclareVarDeclaration(declareTok)
	default:
		p.addError(p.peekToken, fmt.Sprintf("expected 'class' or 'var' after 'declare', got %s", p.peekToken.Type))
		return nil
	}
}

func (p *Parser) parseDeclareClassDeclaration(declareTok lexer.Token) ast.Declaration {
	decl := &ast.DeclareClassDeclaration{Token: declareTok}

	if !p.expectPeekName() {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		decl.TypeParams = p.parseTypeParams()
		if decl.TypeParams == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		if !p.expectPeekName() {
			return nil
		}
		decl.Extends = p.parseTypeReference()
		if decl.Extends == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.MIXINS) {
		p.nextToken()
		decl.Mixins = p.parseTypeReferenceList()
		if decl.Mixins == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.IMPLEMENTS) {
		p.nextToken()
		decl.Implements = p.parseTypeReferenceList()
		if decl.Implements == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	decl.Body = p.parseObjectTypeBody(p.curToken, false, true)
	if decl.Body == nil {
		return nil
	}
	return decl
}

func (p *Parser) parseDeclareVarDeclaration(declareTok lexer.Token) ast.Declaration {
	decl := &ast.DeclareVarDeclaration{Token: declareTok}

	if !p.expectPeekName() {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	decl.Type = p.parseTypeExpression()
	if decl.Type == nil {
		return nil
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

// parseTypeReferenceList parses `A, B<T>, C.D` after extends/mixins/implements.
// The current token is the introducing keyword on entry.
func (p *Parser) parseTypeReferenceList() []*ast.TypeReference {
	refs := []*ast.TypeReference{}

	if !p.expectPeekName() {
		return nil
	}
	ref := p.parseTypeReference()
	if ref == nil {
		return nil
	}
	refs = append(refs, ref)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		if !p.expectPeekName() {
			return nil
		}
		ref = p.parseTypeReference()
		if ref == nil {
			return nil
		}
		refs = append(refs, ref)
	}
	return refs
}

// --- Type Parameter Parsing ---

// parseTypeParams parses `<+T: Bound = Default, U>`. The current token is '<'
// on entry and '>' on successful exit.
func (p *Parser) parseTypeParams() []*ast.TypeParam {
	params := []*ast.TypeParam{}

	if p.peekTokenIs(lexer.GT) {
		p.addError(p.peekToken, "type parameter list cannot be empty")
		p.nextToken()
		return nil
	}

	for {
		p.nextToken() // move onto the sigil or name
		param := p.parseTypeParam()
		if param == nil {
			return nil
		}
		params = append(params, param)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken() // consume ','
			if p.peekTokenIs(lexer.GT) {
				// trailing comma
				p.nextToken()
				return params
			}
			continue
		}
		if !p.expectPeek(lexer.GT) {
			return nil
		}
		return params
	}
}

func (p *Parser) parseTypeParam() *ast.TypeParam {
	param := &ast.TypeParam{Token: p.curToken, Variance: ast.VarianceNone}

	switch p.curToken.Type {
	case lexer.PLUS:
		param.Variance = ast.VarianceCo
		p.nextToken()
	case lexer.MINUS:
		param.Variance = ast.VarianceContra
		p.nextToken()
	}

	if !canBeTypeName(p.curToken.Type) {
		p.addError(p.curToken, fmt.Sprintf("expected type parameter name, got %s", p.curToken.Type))
		return nil
	}
	param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken() // consume ':'
		p.nextToken() // move onto the bound
		param.Bound = p.parseTypeExpression()
		if param.Bound == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken() // consume '='
		p.nextToken() // move onto the default
		param.Default = p.parseTypeExpression()
		if param.Default == nil {
			return nil
		}
	}

	return param
}

// --- Type Expression Parsing (Pratt) ---

func (p *Parser) parseTypeExpression() ast.TypeNode {
	return p.parseTypeExpressionRecursive(TYPE_LOWEST)
}

func (p *Parser) parseTypeExpressionRecursive(precedence int) ast.TypeNode {
	debugPrint("parseTypeExpressionRecursive(prec=%d): START, cur='%s'", precedence, p.curToken.Literal)

	prefix := p.typePrefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noTypePrefixError()
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekTypePrecedence() {
		infix := p.typeInfixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken() // consume the operator token
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// --- Prefix Type Parsers ---

// parseTypeReference parses `Foo`, `A.B.Foo` and `Foo<Args>`. The current
// token is the first name part on entry and the last token of the reference
// on exit.
func (p *Parser) parseTypeReference() *ast.TypeReference {
	ref := &ast.TypeReference{Token: p.curToken}
	ref.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	for p.peekTokenIs(lexer.DOT) {
		p.nextToken() // consume '.'
		if !p.expectPeekName() {
			return nil
		}
		ref.Qualifiers = append(ref.Qualifiers, ref.Name)
		ref.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken() // consume '<'
		ref.HasArgs = true
		args, ok := p.parseTypeArguments()
		if !ok {
			return nil
		}
		ref.TypeArgs = args
	}

	return ref
}

func (p *Parser) parseTypeReferenceNode() ast.TypeNode {
	ref := p.parseTypeReference()
	if ref == nil {
		return nil
	}
	return ref
}

// parseTypeArguments parses the argument list after '<'. An empty `<>` list
// is permitted and kept distinct from an absent one. The current token is '<'
// on entry and '>' on successful exit.
func (p *Parser) parseTypeArguments() ([]ast.TypeNode, bool) {
	args := []ast.TypeNode{}

	if p.peekTokenIs(lexer.GT) {
		p.nextToken() // `Foo<>`
		return args, true
	}

	p.nextToken()
	arg := p.parseTypeExpression()
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		if p.peekTokenIs(lexer.GT) {
			// trailing comma
			p.nextToken()
			return args, true
		}
		p.nextToken()
		arg = p.parseTypeExpression()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.GT) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseNumberLiteralType() ast.TypeNode {
	lit := &ast.NumberLiteralType{Token: p.curToken, Raw: p.curToken.Literal}
	value, err := parseNumericLiteral(p.curToken.Literal)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseNegativeNumberLiteralType() ast.TypeNode {
	minusTok := p.curToken
	if !p.expectPeek(lexer.NUMBER) {
		return nil
	}
	lit := &ast.NumberLiteralType{Token: minusTok, Raw: "-" + p.curToken.Literal}
	value, err := parseNumericLiteral(p.curToken.Literal)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}
	lit.Value = -value
	return lit
}

// parseNumericLiteral converts a raw number literal (decimal, hex, binary or
// octal, possibly with '_' separators) into its float64 value.
func parseNumericLiteral(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, "_", "")
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			v, err := strconv.ParseUint(s[2:], 16, 64)
			return float64(v), err
		case 'b', 'B':
			v, err := strconv.ParseUint(s[2:], 2, 64)
			return float64(v), err
		case 'o', 'O':
			v, err := strconv.ParseUint(s[2:], 8, 64)
			return float64(v), err
		}
	}
	return strconv.ParseFloat(s, 64)
}

func (p *Parser) parseStringLiteralType() ast.TypeNode {
	return &ast.StringLiteralType{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteralType() ast.TypeNode {
	return &ast.BooleanLiteralType{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteralType() ast.TypeNode {
	return &ast.NullLiteralType{Token: p.curToken}
}

func (p *Parser) parseNullableType() ast.TypeNode {
	nt := &ast.NullableType{Token: p.curToken}
	p.nextToken()
	// The operand binds tighter than '|' and '&' but still takes a postfix []
	nt.Inner = p.parseTypeExpressionRecursive(TYPE_INTERSECTION)
	if nt.Inner == nil {
		return nil
	}
	return nt
}

func (p *Parser) parseTypeofType() ast.TypeNode {
	tt := &ast.TypeofType{Token: p.curToken}
	p.nextToken()
	// typeof takes a primary operand; `typeof x[]` is an array of typeof x
	tt.Target = p.parseTypeExpressionRecursive(TYPE_ARRAY)
	if tt.Target == nil {
		return nil
	}
	return tt
}

func (p *Parser) parseExistsType() ast.TypeNode {
	return &ast.ExistsType{Token: p.curToken}
}

// parseTupleType parses `[T0, T1, ...]`.
func (p *Parser) parseTupleType() ast.TypeNode {
	tuple := &ast.TupleType{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken() // empty tuple `[]`
		return tuple
	}

	p.nextToken()
	elem := p.parseTypeExpression()
	if elem == nil {
		return nil
	}
	tuple.Elements = append(tuple.Elements, elem)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		if p.peekTokenIs(lexer.RBRACKET) {
			// trailing comma
			p.nextToken()
			return tuple
		}
		p.nextToken()
		elem = p.parseTypeExpression()
		if elem == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, elem)
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return tuple
}

// parseFunctionOrGroupedType handles a leading '(' which opens either a
// function type `(params) => R` or a parenthesized type `(T)`. The parameter
// list is parsed first; a following '=>' decides which it was.
func (p *Parser) parseFunctionOrGroupedType() ast.TypeNode {
	startTok := p.curToken // '('

	params, rest, ok := p.parseFunctionTypeParams()
	if !ok {
		return nil
	}

	if p.peekTokenIs(lexer.ARROW) {
		fn := &ast.FunctionType{Token: startTok, Params: params, Rest: rest}
		p.nextToken() // consume '=>'
		p.nextToken() // move onto the return type
		fn.Return = p.parseTypeExpression()
		if fn.Return == nil {
			return nil
		}
		return fn
	}

	// Parenthesized type: exactly one anonymous required parameter
	if len(params) != 1 || rest != nil || params[0].Name != nil || params[0].Optional {
		p.addError(startTok, "parenthesized type must contain exactly one type, or use '=>' for a function type")
		return nil
	}
	return params[0].Type
}

// parseGenericFunctionType parses `<Ts>(params) => R`.
func (p *Parser) parseGenericFunctionType() ast.TypeNode {
	fn := &ast.FunctionType{Token: p.curToken}

	fn.TypeParams = p.parseTypeParams()
	if fn.TypeParams == nil {
		return nil
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, rest, ok := p.parseFunctionTypeParams()
	if !ok {
		return nil
	}
	fn.Params = params
	fn.Rest = rest

	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	p.nextToken()
	fn.Return = p.parseTypeExpression()
	if fn.Return == nil {
		return nil
	}
	return fn
}

// parseFunctionTypeParams parses `(name?: T, U, ...rest: R[])`. The current
// token is '(' on entry and ')' on successful exit.
func (p *Parser) parseFunctionTypeParams() ([]*ast.FunctionParam, *ast.FunctionParam, bool) {
	params := []*ast.FunctionParam{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, nil, true
	}

	for {
		p.nextToken() // move onto the parameter start

		if p.curTokenIs(lexer.SPREAD) {
			rest := p.parseRestParam()
			if rest == nil {
				return nil, nil, false
			}
			if !p.expectPeek(lexer.RPAREN) {
				return nil, nil, false
			}
			return params, rest, true
		}

		param := p.parseFunctionParam()
		if param == nil {
			return nil, nil, false
		}
		params = append(params, param)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken() // consume ','
			if p.peekTokenIs(lexer.RPAREN) {
				// trailing comma
				p.nextToken()
				return params, nil, true
			}
			continue
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil, nil, false
		}
		return params, nil, true
	}
}

// parseFunctionParam parses one `name?: T` or bare `T` parameter.
func (p *Parser) parseFunctionParam() *ast.FunctionParam {
	param := &ast.FunctionParam{}

	if canBeTypeName(p.curToken.Type) && (p.peekTokenIs(lexer.COLON) || p.peekTokenIs(lexer.QUESTION)) {
		param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if p.peekTokenIs(lexer.QUESTION) {
			p.nextToken() // consume '?'
			param.Optional = true
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken() // move onto the type
	}

	param.Type = p.parseTypeExpression()
	if param.Type == nil {
		return nil
	}
	return param
}

// parseRestParam parses `...rest: T` or `...T` after the current '...' token.
func (p *Parser) parseRestParam() *ast.FunctionParam {
	param := &ast.FunctionParam{}
	p.nextToken() // move past '...'

	if canBeTypeName(p.curToken.Type) && p.peekTokenIs(lexer.COLON) {
		param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken() // consume name, now on ':'
		p.nextToken() // move onto the type
	}

	param.Type = p.parseTypeExpression()
	if param.Type == nil {
		return nil
	}
	return param
}

func (p *Parser) parseObjectTypeNode() ast.TypeNode {
	obj := p.parseObjectTypeBody(p.curToken, p.curTokenIs(lexer.LBRACE_PIPE), false)
	if obj == nil {
		return nil
	}
	return obj
}

// parseInterfaceType parses an inline `interface extends A, B { ... }`
// annotation.
func (p *Parser) parseInterfaceType() ast.TypeNode {
	it := &ast.InterfaceType{Token: p.curToken}

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		it.Extends = p.parseTypeReferenceList()
		if it.Extends == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	it.Body = p.parseObjectTypeBody(p.curToken, false, false)
	if it.Body == nil {
		return nil
	}
	return it
}

// parseLeadingPipeUnionType parses `| A | B | C` (leading separator form).
func (p *Parser) parseLeadingPipeUnionType() ast.TypeNode {
	union := &ast.UnionType{Token: p.curToken}
	for {
		p.nextToken()
		member := p.parseTypeExpressionRecursive(TYPE_UNION)
		if member == nil {
			return nil
		}
		union.Members = append(union.Members, member)
		if !p.peekTokenIs(lexer.PIPE) {
			break
		}
		p.nextToken() // consume '|'
	}
	if len(union.Members) == 1 {
		return union.Members[0]
	}
	return union
}

// parseLeadingAmpersandIntersectionType parses `& A & B` (leading separator form).
func (p *Parser) parseLeadingAmpersandIntersectionType() ast.TypeNode {
	inter := &ast.IntersectionType{Token: p.curToken}
	for {
		p.nextToken()
		member := p.parseTypeExpressionRecursive(TYPE_INTERSECTION)
		if member == nil {
			return nil
		}
		inter.Members = append(inter.Members, member)
		if !p.peekTokenIs(lexer.AMPERSAND) {
			break
		}
		p.nextToken() // consume '&'
	}
	if len(inter.Members) == 1 {
		return inter.Members[0]
	}
	return inter
}

// --- Infix Type Parsers ---

// parseUnionType absorbs every '|' at this level into one n-ary node, so
// `A | B | C` is a single three-member union rather than nested pairs.
// Parenthesized members keep their own nesting.
func (p *Parser) parseUnionType(left ast.TypeNode) ast.TypeNode {
	union := &ast.UnionType{Token: p.curToken, Members: []ast.TypeNode{left}}
	for {
		p.nextToken()
		member := p.parseTypeExpressionRecursive(TYPE_UNION)
		if member == nil {
			return nil
		}
		union.Members = append(union.Members, member)
		if !p.peekTokenIs(lexer.PIPE) {
			break
		}
		p.nextToken() // consume '|'
	}
	return union
}

// parseIntersectionType absorbs every '&' at this level into one n-ary node.
func (p *Parser) parseIntersectionType(left ast.TypeNode) ast.TypeNode {
	inter := &ast.IntersectionType{Token: p.curToken, Members: []ast.TypeNode{left}}
	for {
		p.nextToken()
		member := p.parseTypeExpressionRecursive(TYPE_INTERSECTION)
		if member == nil {
			return nil
		}
		inter.Members = append(inter.Members, member)
		if !p.peekTokenIs(lexer.AMPERSAND) {
			break
		}
		p.nextToken() // consume '&'
	}
	return inter
}

// parseArrayType parses the postfix `T[]` suffix.
func (p *Parser) parseArrayType(element ast.TypeNode) ast.TypeNode {
	at := &ast.ArrayType{Token: p.curToken, Element: element}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return at
}

// --- Object Type Body Parsing ---

// parseObjectTypeBody parses the entries between '{'/'{|' and the matching
// close. allowStatic admits the `static` member modifier (declare class
// bodies only). The current token is the opening brace on entry and the
// closing brace on successful exit.
func (p *Parser) parseObjectTypeBody(startTok lexer.Token, exact bool, allowStatic bool) *ast.ObjectType {
	obj := &ast.ObjectType{Token: startTok, Exact: exact}

	closeType := lexer.RBRACE
	if exact {
		closeType = lexer.PIPE_RBRACE
	}

	for {
		if p.peekTokenIs(closeType) {
			p.nextToken()
			return obj
		}
		if p.peekTokenIs(lexer.EOF) {
			p.addError(p.peekToken, "unterminated object type body")
			return nil
		}

		p.nextToken() // move onto the entry start
		entry := p.parseObjectTypeEntry(obj, allowStatic, closeType)
		if entry != nil {
			obj.Entries = append(obj.Entries, entry)
		}

		// entry separator
		if p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		if p.peekTokenIs(closeType) {
			continue
		}
		if entry == nil {
			// the entry parse already reported; skip to the next separator
			p.skipToObjectSeparator(closeType)
			continue
		}
		p.addError(p.peekToken, fmt.Sprintf("expected ',' or '%s' in object type, got %s", closeType, p.peekToken.Type))
		p.skipToObjectSeparator(closeType)
	}
}

// skipToObjectSeparator advances until the next entry separator, object
// close or EOF, without consuming the close.
func (p *Parser) skipToObjectSeparator(closeType lexer.TokenType) {
	for {
		switch p.peekToken.Type {
		case closeType, lexer.EOF:
			return
		case lexer.COMMA, lexer.SEMICOLON:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// parseObjectTypeEntry parses a single object body entry. Returns nil after
// recording an error when the entry is unparseable; the caller resynchronizes.
func (p *Parser) parseObjectTypeEntry(obj *ast.ObjectType, allowStatic bool, closeType lexer.TokenType) ast.ObjectTypeEntry {
	static := false
	if p.curTokenIs(lexer.STATIC) && p.peekStartsMember() {
		if !allowStatic {
			p.addError(p.curToken, "'static' members are only allowed in declare class bodies")
		}
		static = true
		p.nextToken()
	}

	// Spread entry or explicit inexact marker
	if p.curTokenIs(lexer.SPREAD) {
		if p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(closeType) {
			obj.Inexact = true
			return nil
		}
		se := &ast.SpreadEntry{Token: p.curToken}
		p.nextToken()
		se.Arg = p.parseTypeExpression()
		if se.Arg == nil {
			return nil
		}
		return se
	}

	// Variance sigil before a key or indexer
	variance := ast.VarianceNone
	switch p.curToken.Type {
	case lexer.PLUS:
		variance = ast.VarianceCo
		p.nextToken()
	case lexer.MINUS:
		if !p.peekTokenIs(lexer.NUMBER) {
			variance = ast.VarianceContra
			p.nextToken()
		}
	}

	switch {
	case p.curTokenIs(lexer.LBRACKET):
		return p.parseBracketedEntry(variance, static)

	case p.curTokenIs(lexer.LPAREN) || p.curTokenIs(lexer.LT):
		// Call property
		callTok := p.curToken
		fn := p.parseMethodFunction()
		if fn == nil {
			return nil
		}
		return &ast.CallEntry{Token: callTok, Fn: fn, Static: static}

	case (p.curTokenIs(lexer.GET) || p.curTokenIs(lexer.SET)) && p.peekStartsKey():
		kind := ast.AccessorGet
		if p.curTokenIs(lexer.SET) {
			kind = ast.AccessorSet
		}
		p.nextToken()
		key := p.parsePropertyKey()
		if key == nil {
			return nil
		}
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		fn := p.parseMethodFunction()
		if fn == nil {
			return nil
		}
		return &ast.PropertyEntry{Key: key, Value: fn, Variance: variance, Accessor: kind, Static: static}

	default:
		key := p.parsePropertyKey()
		if key == nil {
			return nil
		}
		return p.parsePropertyTail(key, variance, static)
	}
}

// peekStartsMember reports whether the peek token can begin a class member
// after a modifier like `static`.
func (p *Parser) peekStartsMember() bool {
	if p.peekStartsKey() {
		return true
	}
	switch p.peekToken.Type {
	case lexer.LBRACKET, lexer.LPAREN, lexer.LT, lexer.PLUS, lexer.MINUS:
		return true
	default:
		return false
	}
}

// peekStartsKey reports whether the peek token can begin a property key. Used
// to tell `get foo(): T` (accessor) apart from `get: T` (field named get).
func (p *Parser) peekStartsKey() bool {
	if canBeKeyName(p.peekToken.Type) {
		return true
	}
	switch p.peekToken.Type {
	case lexer.STRING, lexer.NUMBER, lexer.HASH:
		return true
	default:
		return false
	}
}

// parsePropertyKey parses an identifier, string, number or private key. The
// current token is the key start on entry and the key's last token on exit.
func (p *Parser) parsePropertyKey() ast.PropertyKey {
	switch {
	case canBeKeyName(p.curToken.Type):
		return &ast.IdentKey{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	case p.curTokenIs(lexer.STRING):
		return &ast.StringKey{Token: p.curToken, Value: p.curToken.Literal}
	case p.curTokenIs(lexer.NUMBER):
		return &ast.NumberKey{Token: p.curToken, Raw: p.curToken.Literal}
	case p.curTokenIs(lexer.MINUS) && p.peekTokenIs(lexer.NUMBER):
		minusTok := p.curToken
		p.nextToken()
		return &ast.NumberKey{Token: minusTok, Raw: "-" + p.curToken.Literal}
	case p.curTokenIs(lexer.HASH):
		hashTok := p.curToken
		if !p.expectPeekName() {
			return nil
		}
		return &ast.PrivateKey{Token: hashTok, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	default:
		p.addError(p.curToken, fmt.Sprintf("unexpected token %s (%q) in object type", p.curToken.Type, p.curToken.Literal))
		return nil
	}
}

// parsePropertyTail finishes a property after its key: `?: T`, `: T`, or a
// method shorthand `(params): R` / `<Ts>(params): R`.
func (p *Parser) parsePropertyTail(key ast.PropertyKey, variance ast.Variance, static bool) ast.ObjectTypeEntry {
	entry := &ast.PropertyEntry{Key: key, Variance: variance, Static: static}

	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		entry.Optional = true
	}

	switch {
	case p.peekTokenIs(lexer.COLON):
		p.nextToken() // consume ':'
		p.nextToken() // move onto the value type
		entry.Value = p.parseTypeExpression()
		if entry.Value == nil {
			return nil
		}
		return entry

	case p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LT):
		p.nextToken()
		fn := p.parseMethodFunction()
		if fn == nil {
			return nil
		}
		entry.Method = true
		entry.Value = fn
		return entry

	default:
		p.addError(p.peekToken, fmt.Sprintf("expected ':' or method signature after property key, got %s", p.peekToken.Type))
		return nil
	}
}

// parseBracketedEntry parses the three '['-led entries: internal slots
// `[[name]]: T`, indexers `[K]: V` / `[name: K]: V`, and computed keys
// `[K]?: V` (recognized so elaboration can reject them precisely).
func (p *Parser) parseBracketedEntry(variance ast.Variance, static bool) ast.ObjectTypeEntry {
	openTok := p.curToken

	if p.peekTokenIs(lexer.LBRACKET) {
		return p.parseInternalSlotEntry(openTok, static)
	}

	// Indexer key, with optional binder label `[label: K]`
	var binder *ast.Identifier
	p.nextToken() // move onto the key part
	if canBeTypeName(p.curToken.Type) && p.peekTokenIs(lexer.COLON) {
		binder = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken() // consume label, now on ':'
		p.nextToken() // move onto the key type
	}
	keyType := p.parseTypeExpression()
	if keyType == nil {
		return nil
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	switch {
	case p.peekTokenIs(lexer.COLON):
		p.nextToken() // consume ':'
		p.nextToken() // move onto the value type
		value := p.parseTypeExpression()
		if value == nil {
			return nil
		}
		return &ast.IndexerEntry{Token: openTok, Name: binder, Key: keyType, Value: value, Variance: variance, Static: static}

	case p.peekTokenIs(lexer.QUESTION):
		// `[K]?: V` is a computed key, never an indexer
		if binder != nil {
			p.addError(p.peekToken, "indexer property cannot be optional")
			return nil
		}
		key := &ast.ComputedKey{Token: openTok, Expr: keyType}
		return p.parsePropertyTail(key, variance, static)

	default:
		p.addError(p.peekToken, fmt.Sprintf("expected ':' after indexer key, got %s", p.peekToken.Type))
		return nil
	}
}

// parseInternalSlotEntry parses `[[name]]: T` / `[[name]](): T` after the
// first '[' of the double bracket.
func (p *Parser) parseInternalSlotEntry(openTok lexer.Token, static bool) ast.ObjectTypeEntry {
	p.nextToken() // second '['
	if !p.expectPeekName() {
		return nil
	}
	slot := &ast.InternalSlotEntry{Token: openTok, Static: static}
	slot.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		slot.Optional = true
	}

	switch {
	case p.peekTokenIs(lexer.COLON):
		p.nextToken()
		p.nextToken()
		slot.Value = p.parseTypeExpression()
		if slot.Value == nil {
			return nil
		}
	case p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LT):
		p.nextToken()
		fn := p.parseMethodFunction()
		if fn == nil {
			return nil
		}
		slot.Method = true
		slot.Value = fn
	default:
		p.addError(p.peekToken, fmt.Sprintf("expected ':' or method signature after internal slot, got %s", p.peekToken.Type))
		return nil
	}
	return slot
}

// parseMethodFunction parses a method-shaped signature `(params): R` or
// `<Ts>(params): R`. The current token is '(' or '<' on entry.
func (p *Parser) parseMethodFunction() *ast.FunctionType {
	fn := &ast.FunctionType{Token: p.curToken}

	if p.curTokenIs(lexer.LT) {
		fn.TypeParams = p.parseTypeParams()
		if fn.TypeParams == nil {
			return nil
		}
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
	}

	params, rest, ok := p.parseFunctionTypeParams()
	if !ok {
		return nil
	}
	fn.Params = params
	fn.Rest = rest

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	fn.Return = p.parseTypeExpression()
	if fn.Return == nil {
		return nil
	}
	return fn
}
