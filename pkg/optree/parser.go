package optree

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds a
// tree of *Op.
//
// Grammar:
//
//	trees = tree (";" tree)* [";"] EOF
//	tree  = KIND ("[" attr ("," attr)* "]")? ("(" (tree ("," tree)*)? ")")?
//	attr  = NAME ("=" (IDENTIFIER | INTEGER | FLOAT | STRING))?
//
// Attributes: targ=N, ex=KIND (nulled ops only), intro, special, stacked,
// want=void|scalar|list, iv=N, uv=N, nv=F, pv="...".
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// ParseTrees parses every ';'-separated tree in the token stream.
func (p *Parser) ParseTrees() ([]*Op, error) {
	var trees []*Op
	for p.peek().Type != EOF {
		t, err := p.parseTree()
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)

		if p.peek().Type == SEMICOLON {
			p.advance()
			continue
		}
		if p.peek().Type != EOF {
			tok := p.peek()
			return nil, p.fmtError(tok, "expected ';' or end of input, got %q", tok.Lexeme)
		}
	}
	return trees, nil
}

func (p *Parser) parseTree() (*Op, error) {
	kindTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	kind, ok := KindByName(kindTok.Lexeme)
	if !ok {
		return nil, p.fmtError(kindTok, "unknown op kind %q", kindTok.Lexeme)
	}
	op := &Op{OpKind: kind}

	if p.peek().Type == LBRACKET {
		p.advance()
		for {
			if err := p.parseAttr(op); err != nil {
				return nil, err
			}
			if p.peek().Type == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
	}

	if p.peek().Type == LPAREN {
		p.advance()
		var kids []*Op
		for p.peek().Type != RPAREN {
			kid, err := p.parseTree()
			if err != nil {
				return nil, err
			}
			kids = append(kids, kid)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		op.SetKids(kids...)
	}
	return op, nil
}

func (p *Parser) parseAttr(op *Op) error {
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}

	switch nameTok.Lexeme {
	case "intro":
		op.OpPrivate |= LvalIntro
		return nil
	case "special":
		op.OpFlags |= Special
		return nil
	case "stacked":
		op.OpFlags |= Stacked
		return nil
	}

	if _, err := p.expect(ASSIGN); err != nil {
		return err
	}
	valTok := p.advance()

	switch nameTok.Lexeme {
	case "targ":
		n, err := strconv.ParseUint(valTok.Lexeme, 10, 32)
		if valTok.Type != INTEGER || err != nil {
			return p.fmtError(valTok, "targ wants an unsigned integer, got %q", valTok.Lexeme)
		}
		op.OpTarg = uint32(n)
	case "ex":
		if op.OpKind != KindNull {
			return p.fmtError(nameTok, "ex= is only valid on null ops, not %s", op.OpKind)
		}
		former, ok := KindByName(valTok.Lexeme)
		if valTok.Type != IDENTIFIER || !ok {
			return p.fmtError(valTok, "unknown former op kind %q", valTok.Lexeme)
		}
		op.OpTarg = uint32(former)
	case "want":
		var w Flags
		switch valTok.Lexeme {
		case "void":
			w = WantVoid
		case "scalar":
			w = WantScalar
		case "list":
			w = WantList
		default:
			return p.fmtError(valTok, "want must be void, scalar or list, got %q", valTok.Lexeme)
		}
		op.OpFlags = op.OpFlags&^WantMask | w
	case "iv":
		n, err := strconv.ParseInt(valTok.Lexeme, 10, 64)
		if valTok.Type != INTEGER || err != nil {
			return p.fmtError(valTok, "iv wants a signed integer, got %q", valTok.Lexeme)
		}
		v := op.value()
		v.IOK, v.IsUV, v.IV = true, false, n
	case "uv":
		n, err := strconv.ParseUint(valTok.Lexeme, 10, 64)
		if valTok.Type != INTEGER || err != nil {
			return p.fmtError(valTok, "uv wants an unsigned integer, got %q", valTok.Lexeme)
		}
		v := op.value()
		v.IOK, v.IsUV, v.UV = true, true, n
	case "nv":
		f, err := strconv.ParseFloat(valTok.Lexeme, 64)
		if (valTok.Type != FLOAT && valTok.Type != INTEGER) || err != nil {
			return p.fmtError(valTok, "nv wants a number, got %q", valTok.Lexeme)
		}
		v := op.value()
		v.NOK, v.NV = true, f
	case "pv":
		if valTok.Type != STRING {
			return p.fmtError(valTok, "pv wants a string, got %q", valTok.Lexeme)
		}
		v := op.value()
		v.POK, v.PV = true, valTok.Lexeme
	default:
		return p.fmtError(nameTok, "unknown attribute %q", nameTok.Lexeme)
	}
	return nil
}

func (o *Op) value() *Value {
	if o.Val == nil {
		o.Val = &Value{}
	}
	return o.Val
}

// ParseTrees lexes and parses src into one tree per ';'-separated entry.
func ParseTrees(src string) ([]*Op, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, src).ParseTrees()
}

// ParseTree parses src, which must hold exactly one tree.
func ParseTree(src string) (*Op, error) {
	trees, err := ParseTrees(src)
	if err != nil {
		return nil, err
	}
	if len(trees) != 1 {
		return nil, fmt.Errorf("expected exactly one op tree, got %d", len(trees))
	}
	return trees[0], nil
}

// MustParse is ParseTree for trees known to be valid, such as test fixtures.
func MustParse(src string) *Op {
	t, err := ParseTree(src)
	if err != nil {
		panic(err)
	}
	return t
}
