package optree

import (
	"reflect"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:  "Empty",
			input: "",
			expected: []Token{
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Punctuation",
			input: "( ) [ ] , = ;",
			expected: []Token{
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: LBRACKET, Lexeme: "[", Line: 1},
				{Type: RBRACKET, Lexeme: "]", Line: 1},
				{Type: COMMA, Lexeme: ",", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: SEMICOLON, Lexeme: ";", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Op With Attributes",
			input: "padsv[targ=3, intro]",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "padsv", Line: 1},
				{Type: LBRACKET, Lexeme: "[", Line: 1},
				{Type: IDENTIFIER, Lexeme: "targ", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: INTEGER, Lexeme: "3", Line: 1},
				{Type: COMMA, Lexeme: ",", Line: 1},
				{Type: IDENTIFIER, Lexeme: "intro", Line: 1},
				{Type: RBRACKET, Lexeme: "]", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Signed And Float Numbers",
			input: "-42 +7 1.5 -2e3",
			expected: []Token{
				{Type: INTEGER, Lexeme: "-42", Line: 1},
				{Type: INTEGER, Lexeme: "+7", Line: 1},
				{Type: FLOAT, Lexeme: "1.5", Line: 1},
				{Type: FLOAT, Lexeme: "-2e3", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "String With Escapes",
			input: `"a\"b\n"`,
			expected: []Token{
				{Type: STRING, Lexeme: "a\"b\n", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Comments And Lines",
			input: "# header\nadd # trailing\n(",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "add", Line: 2},
				{Type: LPAREN, Lexeme: "(", Line: 3},
				{Type: EOF, Lexeme: "", Line: 3},
			},
		},
		{
			name:    "Unterminated String",
			input:   `"abc`,
			wantErr: true,
		},
		{
			name:    "Illegal Character",
			input:   "add @",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex() =\n%v\nwant\n%v", got, tt.expected)
			}
		})
	}
}

func TestLexErrorMentionsLine(t *testing.T) {
	_, err := Lex("add(\n\n  @)")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}
