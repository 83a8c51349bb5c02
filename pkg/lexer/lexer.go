package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"brook/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// Comment is a source comment captured during scanning. Comments never reach
// the parser; the driver inspects them when filtering suppressed diagnostics.
type Comment struct {
	Text     string // comment text without the // or /* */ markers
	Line     int    // 1-based line the comment starts on
	EndLine  int    // 1-based line the comment ends on
	StartPos int
	EndPos   int
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT  TokenType = "IDENT"  // Foo, $Keys, React$ElementRef
	NUMBER TokenType = "NUMBER" // 123, 45.67, 0x10
	STRING TokenType = "STRING" // "hello"

	// Type operators
	PIPE      TokenType = "|"
	AMPERSAND TokenType = "&"
	QUESTION  TokenType = "?"
	ASTERISK  TokenType = "*" // existential type
	PLUS      TokenType = "+" // covariance sigil
	MINUS     TokenType = "-" // contravariance sigil / negative number literal
	DOT       TokenType = "."
	SPREAD    TokenType = "..."
	ARROW     TokenType = "=>"
	ASSIGN    TokenType = "="
	LT        TokenType = "<"
	GT        TokenType = ">"

	// Delimiters
	COMMA       TokenType = ","
	SEMICOLON   TokenType = ";"
	COLON       TokenType = ":"
	HASH        TokenType = "#"
	LPAREN      TokenType = "("
	RPAREN      TokenType = ")"
	LBRACE      TokenType = "{"
	RBRACE      TokenType = "}"
	LBRACKET    TokenType = "["
	RBRACKET    TokenType = "]"
	LBRACE_PIPE TokenType = "{|" // exact object type open
	PIPE_RBRACE TokenType = "|}" // exact object type close

	// Keywords
	TYPE       TokenType = "TYPE"
	INTERFACE  TokenType = "INTERFACE"
	DECLARE    TokenType = "DECLARE"
	CLASS      TokenType = "CLASS"
	EXTENDS    TokenType = "EXTENDS"
	MIXINS     TokenType = "MIXINS"
	IMPLEMENTS TokenType = "IMPLEMENTS"
	VAR        TokenType = "VAR"
	STATIC     TokenType = "STATIC"
	GET        TokenType = "GET"
	SET        TokenType = "SET"
	TYPEOF     TokenType = "TYPEOF"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
	NULL       TokenType = "NULL"
)

var keywords = map[string]TokenType{
	"type":       TYPE,
	"interface":  INTERFACE,
	"declare":    DECLARE,
	"class":      CLASS,
	"extends":    EXTENDS,
	"mixins":     MIXINS,
	"implements": IMPLEMENTS,
	"var":        VAR,
	"static":     STATIC,
	"get":        GET,
	"set":        SET,
	"typeof":     TYPEOF,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
}

// LookupIdent checks the keywords table for an identifier.
// Primitive type names (number, string, void, mixed, ...) are NOT keywords;
// they stay IDENT and are recognized during elaboration.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	source       *source.SourceFile // nil for raw-string lexers
	position     int                // current position in input (points to current char's byte offset)
	readPosition int                // current reading position in input (byte offset after current char)
	ch           byte               // current char under examination
	line         int                // current 1-based line number
	column       int                // current 1-based column number (position of l.position on l.line)
	comments     []Comment
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 1}
	l.readChar() // Initialize l.ch, l.position, l.readPosition
	return l
}

// NewLexerWithSource creates a Lexer that carries its source file so
// downstream errors can point at it.
func NewLexerWithSource(sf *source.SourceFile) *Lexer {
	l := NewLexer(sf.Content)
	l.source = sf
	return l
}

// GetSource returns the source file this lexer reads from, or nil when the
// lexer was built from a bare string.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// Comments returns every comment seen so far, in source order.
func (l *Lexer) Comments() []Comment {
	return l.comments
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	// Before advancing, check if the current character was a newline
	if l.ch == '\n' {
		l.line++
		l.column = 0 // Reset column, it will be incremented below
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// Capture token start position *after* skipping whitespace
	startLine := l.line
	startCol := l.column
	startPos := l.position

	mk := func(t TokenType, literal string) Token {
		return Token{Type: t, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}

	switch l.ch {
	case '=':
		if l.peekChar() == '>' {
			l.readChar() // Consume '>'
			literal := l.input[startPos : l.position+1]
			l.readChar()
			return mk(ARROW, literal)
		}
		l.readChar()
		return mk(ASSIGN, "=")
	case '|':
		if l.peekChar() == '}' {
			l.readChar() // Consume '}'
			literal := l.input[startPos : l.position+1]
			l.readChar()
			return mk(PIPE_RBRACE, literal)
		}
		l.readChar()
		return mk(PIPE, "|")
	case '&':
		l.readChar()
		return mk(AMPERSAND, "&")
	case '?':
		l.readChar()
		return mk(QUESTION, "?")
	case '*':
		l.readChar()
		return mk(ASTERISK, "*")
	case '+':
		l.readChar()
		return mk(PLUS, "+")
	case '-':
		l.readChar()
		return mk(MINUS, "-")
	case '<':
		l.readChar()
		return mk(LT, "<")
	case '>':
		l.readChar()
		return mk(GT, ">")
	case ',':
		l.readChar()
		return mk(COMMA, ",")
	case ';':
		l.readChar()
		return mk(SEMICOLON, ";")
	case ':':
		l.readChar()
		return mk(COLON, ":")
	case '#':
		l.readChar()
		return mk(HASH, "#")
	case '(':
		l.readChar()
		return mk(LPAREN, "(")
	case ')':
		l.readChar()
		return mk(RPAREN, ")")
	case '[':
		l.readChar()
		return mk(LBRACKET, "[")
	case ']':
		l.readChar()
		return mk(RBRACKET, "]")
	case '{':
		if l.peekChar() == '|' {
			l.readChar() // Consume '|'
			literal := l.input[startPos : l.position+1]
			l.readChar()
			return mk(LBRACE_PIPE, literal)
		}
		l.readChar()
		return mk(LBRACE, "{")
	case '}':
		l.readChar()
		return mk(RBRACE, "}")
	case '.':
		if l.peekChar() == '.' {
			l.readChar() // Consume second '.'
			if l.peekChar() == '.' {
				l.readChar() // Consume third '.'
				literal := l.input[startPos : l.position+1]
				l.readChar()
				return mk(SPREAD, literal)
			}
			// '..' is not a token in this grammar; report the pair as illegal
			literal := l.input[startPos : l.position+1]
			l.readChar()
			return mk(ILLEGAL, literal)
		}
		l.readChar()
		return mk(DOT, ".")
	case '/':
		if l.peekChar() == '/' {
			l.collectLineComment(startLine, startPos)
			return l.NextToken()
		}
		if l.peekChar() == '*' {
			l.collectBlockComment(startLine, startPos)
			return l.NextToken()
		}
		literal := string(l.ch)
		l.readChar()
		return mk(ILLEGAL, literal)
	case '\'', '"':
		quote := l.ch
		str, ok := l.readString(quote)
		if !ok {
			// Unterminated or invalid escape; surface the raw slice
			return mk(ILLEGAL, l.input[startPos:l.position])
		}
		return mk(STRING, str)
	case 0: // EOF
		return Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isIdentStart(l.ch) || l.leadingUnicodeLetter() {
			literal := l.readIdentifier()
			tokType := LookupIdent(literal)
			return mk(tokType, literal)
		}
		if isDigit(l.ch) {
			literal := l.readNumber()
			return mk(NUMBER, literal)
		}
		literal := string(l.ch)
		l.readChar() // Consume the illegal character
		return mk(ILLEGAL, literal)
	}
}

// readIdentifier reads an identifier and advances the lexer's position.
// Identifiers are letters, digits, '_' and '$' ($ is load-bearing: the
// intrinsic utility names all start with it). Non-ASCII letters are accepted
// and the result is NFC-normalized so visually identical names compare equal.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	ascii := true
	for {
		if isIdentStart(l.ch) || isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(l.input[l.position:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				ascii = false
				for i := 0; i < size; i++ {
					l.readChar()
				}
				continue
			}
		}
		break
	}
	literal := l.input[startPos:l.position]
	if !ascii {
		literal = norm.NFC.String(literal)
	}
	return literal
}

// leadingUnicodeLetter reports whether the current char starts a non-ASCII letter.
func (l *Lexer) leadingUnicodeLetter() bool {
	if l.ch < utf8.RuneSelf {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return unicode.IsLetter(r)
}

// readNumber reads a number literal (integer or float, various bases) and
// advances the lexer's position. Handles decimal (optional exponent/fraction),
// hex (0x), binary (0b), octal (0o) and numeric separators '_'. Returns the
// raw literal string; stops early at the first invalid sequence.
func (l *Lexer) readNumber() string {
	startPos := l.position
	base := 10

	// 1. Base prefix (0x, 0b, 0o)
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
			l.readChar()
			l.readChar()
		case 'b', 'B':
			base = 2
			l.readChar()
			l.readChar()
		case 'o', 'O':
			base = 8
			l.readChar()
			l.readChar()
		}
	}

	// 2. Integer part (separators must sit between digits)
	lastWasDigit := false
	for {
		if isDigitForBase(l.ch, base) {
			l.readChar()
			lastWasDigit = true
		} else if l.ch == '_' {
			if !lastWasDigit {
				return l.input[startPos:l.position]
			}
			l.readChar()
			if !isDigitForBase(l.ch, base) {
				return l.input[startPos : l.position-1]
			}
			lastWasDigit = false
		} else {
			break
		}
	}

	// 3. Fraction part (decimal only)
	if base == 10 && l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // Consume '.'
		lastWasDigit = false
		for {
			if isDigit(l.ch) {
				l.readChar()
				lastWasDigit = true
			} else if l.ch == '_' {
				if !lastWasDigit {
					return l.input[startPos:l.position]
				}
				l.readChar()
				if !isDigit(l.ch) {
					return l.input[startPos : l.position-1]
				}
				lastWasDigit = false
			} else {
				break
			}
		}
	}

	// 4. Exponent part (decimal only)
	if base == 10 && (l.ch == 'e' || l.ch == 'E') {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		sawDigit := false
		for isDigit(l.ch) {
			l.readChar()
			sawDigit = true
		}
		if !sawDigit {
			return l.input[startPos:l.position]
		}
	}

	return l.input[startPos:l.position]
}

// readString reads a string literal enclosed in the given quote character.
// It handles the escape sequences \n, \t, \r, \\, and escaped quotes.
// Returns the unescaped content and whether the literal was well-formed;
// on success the lexer is positioned after the closing quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var builder strings.Builder
	l.readChar() // Consume the opening quote

	for {
		if l.ch == quote {
			l.readChar() // Consume the closing quote
			return builder.String(), true
		}
		if l.ch == 0 { // EOF: unterminated
			return "", false
		}

		if l.ch == '\\' {
			l.readChar() // Consume the backslash
			switch l.ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '\\':
				builder.WriteByte('\\')
			case '\'', '"':
				builder.WriteByte(l.ch)
			case 0:
				return "", false
			default:
				return "", false
			}
		} else {
			if l.ch == '\n' || l.ch == '\r' {
				// Unescaped newline terminates the literal with an error
				return "", false
			}
			builder.WriteByte(l.ch)
		}

		l.readChar()
	}
}

// collectLineComment consumes a // comment to end of line and records it.
func (l *Lexer) collectLineComment(startLine, startPos int) {
	l.readChar() // Consume first '/'
	l.readChar() // Consume second '/'
	textStart := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	l.comments = append(l.comments, Comment{
		Text:     strings.TrimSpace(l.input[textStart:l.position]),
		Line:     startLine,
		EndLine:  startLine,
		StartPos: startPos,
		EndPos:   l.position,
	})
	// The newline itself is left for skipWhitespace
}

// collectBlockComment consumes a /* */ comment and records it.
// An unterminated block comment is recorded as running to EOF.
func (l *Lexer) collectBlockComment(startLine, startPos int) {
	l.readChar() // Consume '/'
	l.readChar() // Consume '*'
	textStart := l.position

	for {
		if l.ch == 0 {
			l.comments = append(l.comments, Comment{
				Text:     strings.TrimSpace(l.input[textStart:l.position]),
				Line:     startLine,
				EndLine:  l.line,
				StartPos: startPos,
				EndPos:   l.position,
			})
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			text := l.input[textStart:l.position]
			endLine := l.line
			l.readChar() // Consume '*'
			l.readChar() // Consume '/'
			l.comments = append(l.comments, Comment{
				Text:     strings.TrimSpace(text),
				Line:     startLine,
				EndLine:  endLine,
				StartPos: startPos,
				EndPos:   l.position,
			})
			return
		}
		l.readChar()
	}
}

// isIdentStart checks if the character can begin an identifier.
func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

// isDigit checks if the character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if the character is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// isDigitForBase checks if the character is a valid digit for the given base.
func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 16:
		return isHexDigit(ch)
	case 10:
		return isDigit(ch)
	case 8:
		return '0' <= ch && ch <= '7'
	case 2:
		return ch == '0' || ch == '1'
	default:
		return false
	}
}
