package optree

import (
	"fmt"
	"strconv"
	"unicode"
)

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipComment discards everything from '#' to end-of-line.
func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects an op kind or attribute name.
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	return Token{Type: IDENTIFIER, Lexeme: string(l.src[start:l.pos]), Line: line}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumber collects an integer or floating point literal with an optional
// leading sign. The first rune (sign or digit) must still be at l.peek().
func (l *Lexer) scanNumber() (Token, error) {
	line := l.line
	start := l.pos
	if l.peek() == '-' || l.peek() == '+' {
		l.advance()
	}
	if !isDigit(l.peek()) && l.peek() != '.' {
		return Token{}, fmt.Errorf("line %d: expected digits after sign", line)
	}

	tt := INTEGER
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		tt = FLOAT
		l.advance() // .
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		tt = FLOAT
		l.advance()
		if l.peek() == '-' || l.peek() == '+' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return Token{}, fmt.Errorf("line %d: malformed exponent in %q", line, string(l.src[start:l.pos]))
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: tt, Lexeme: string(l.src[start:l.pos]), Line: line}, nil
}

// scanString collects a double-quoted string literal using Go escape rules,
// so anything Op.String prints with %q reads back unchanged.
func (l *Lexer) scanString() (Token, error) {
	line := l.line
	start := l.pos
	l.advance() // consume opening "

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '"' {
			break
		}
		if r == '\n' {
			return Token{}, fmt.Errorf("unterminated string literal on line %d", line)
		}
		if r == '\\' {
			l.advance()
		}
		l.advance()
	}

	if l.pos >= len(l.src) {
		return Token{}, fmt.Errorf("unterminated string literal on line %d", line)
	}
	l.advance() // consume closing "

	val, err := strconv.Unquote(string(l.src[start:l.pos]))
	if err != nil {
		return Token{}, fmt.Errorf("bad string literal on line %d: %v", line, err)
	}
	return Token{Type: STRING, Lexeme: val, Line: line}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
		}
		if l.peek() == '#' {
			l.skipComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if isDigit(ch) || ((ch == '-' || ch == '+') && (isDigit(l.peek2()) || l.peek2() == '.')) {
		return l.scanNumber()
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '(':
		return Token{LPAREN, "(", line}, nil
	case ')':
		return Token{RPAREN, ")", line}, nil
	case '[':
		return Token{LBRACKET, "[", line}, nil
	case ']':
		return Token{RBRACKET, "]", line}, nil
	case ',':
		return Token{COMMA, ",", line}, nil
	case '=':
		return Token{ASSIGN, "=", line}, nil
	case ';':
		return Token{SEMICOLON, ";", line}, nil
	default:
		return Token{}, fmt.Errorf("unexpected character %q on line %d", ch, line)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character or unterminated
// string.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
