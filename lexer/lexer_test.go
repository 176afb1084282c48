package lexer

import (
	"testing"

	"github.com/alexisbouchez/beautygo/token"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d]: expected type %v, got %v (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d]: expected literal %q, got %q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_Empty(t *testing.T) {
	l := New("")
	tok := l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %v", tok.Type)
	}
}

func TestNextToken_Whitespace(t *testing.T) {
	l := New("   \t \r ")
	tok := l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("expected EOF after whitespace, got %v", tok.Type)
	}
}

func TestNextToken_Newlines(t *testing.T) {
	checkTokens(t, "foo\nbar", []expectedToken{
		{token.IDENT, "foo"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "bar"},
		{token.EOF, ""},
	})
}

func TestNextToken_Identifiers(t *testing.T) {
	checkTokens(t, `foo bar_baz _private has? save! @file @dir x1`, []expectedToken{
		{token.IDENT, "foo"},
		{token.IDENT, "bar_baz"},
		{token.IDENT, "_private"},
		{token.IDENT, "has?"},
		{token.IDENT, "save!"},
		{token.IDENT, "@file"},
		{token.IDENT, "@dir"},
		{token.IDENT, "x1"},
		{token.EOF, ""},
	})
}

func TestNextToken_BangBeforeEqual(t *testing.T) {
	checkTokens(t, `a!=b`, []expectedToken{
		{token.IDENT, "a"},
		{token.BANG_EQUAL, "!="},
		{token.IDENT, "b"},
	})
}

func TestNextToken_Keywords(t *testing.T) {
	input := `if else unless while until for of in try catch throw fn class new return delete true false null`
	checkTokens(t, input, []expectedToken{
		{token.KEYWORD_IF, "if"},
		{token.KEYWORD_ELSE, "else"},
		{token.KEYWORD_UNLESS, "unless"},
		{token.KEYWORD_WHILE, "while"},
		{token.KEYWORD_UNTIL, "until"},
		{token.KEYWORD_FOR, "for"},
		{token.KEYWORD_OF, "of"},
		{token.KEYWORD_IN, "in"},
		{token.KEYWORD_TRY, "try"},
		{token.KEYWORD_CATCH, "catch"},
		{token.KEYWORD_THROW, "throw"},
		{token.KEYWORD_FN, "fn"},
		{token.KEYWORD_CLASS, "class"},
		{token.KEYWORD_NEW, "new"},
		{token.KEYWORD_RETURN, "return"},
		{token.KEYWORD_DELETE, "delete"},
		{token.KEYWORD_TRUE, "true"},
		{token.KEYWORD_FALSE, "false"},
		{token.KEYWORD_NULL, "null"},
		{token.EOF, ""},
	})
}

func TestNextToken_Numbers(t *testing.T) {
	checkTokens(t, `42 3.14 1_000 2e3 1.5e-2`, []expectedToken{
		{token.NUMBER, "42"},
		{token.NUMBER, "3.14"},
		{token.NUMBER, "1_000"},
		{token.NUMBER, "2e3"},
		{token.NUMBER, "1.5e-2"},
		{token.EOF, ""},
	})
}

func TestNextToken_Ranges(t *testing.T) {
	checkTokens(t, `1..5 0...n`, []expectedToken{
		{token.NUMBER, "1"},
		{token.DOT_DOT, ".."},
		{token.NUMBER, "5"},
		{token.NUMBER, "0"},
		{token.DOT_DOT_DOT, "..."},
		{token.IDENT, "n"},
		{token.EOF, ""},
	})
}

func TestNextToken_Strings(t *testing.T) {
	checkTokens(t, `"hello" 'world' "a\nb" "say \"hi\"" 'it\'s'`, []expectedToken{
		{token.STRING, "hello"},
		{token.STRING, "world"},
		{token.STRING, "a\nb"},
		{token.STRING, `say "hi"`},
		{token.STRING, "it's"},
		{token.EOF, ""},
	})
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %v", tok.Type)
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `+ - * / % ** = == != < <= > >= && || ! += -= ++ -- . : ; ,`
	checkTokens(t, input, []expectedToken{
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.STAR, "*"},
		{token.SLASH, "/"},
		{token.PERCENT, "%"},
		{token.STAR_STAR, "**"},
		{token.EQUAL, "="},
		{token.EQUAL_EQUAL, "=="},
		{token.BANG_EQUAL, "!="},
		{token.LESS, "<"},
		{token.LESS_EQUAL, "<="},
		{token.GREATER, ">"},
		{token.GREATER_EQUAL, ">="},
		{token.AMPERSAND_AMPERSAND, "&&"},
		{token.PIPE_PIPE, "||"},
		{token.BANG, "!"},
		{token.PLUS_EQUAL, "+="},
		{token.MINUS_EQUAL, "-="},
		{token.PLUS_PLUS, "++"},
		{token.MINUS_MINUS, "--"},
		{token.DOT, "."},
		{token.COLON, ":"},
		{token.SEMICOLON, ";"},
		{token.COMMA, ","},
		{token.EOF, ""},
	})
}

func TestNextToken_Comments(t *testing.T) {
	input := "a # hash comment\nb // slash comment\nc / d"
	checkTokens(t, input, []expectedToken{
		{token.IDENT, "a"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "b"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "c"},
		{token.SLASH, "/"},
		{token.IDENT, "d"},
		{token.EOF, ""},
	})
}

func TestNextToken_Declaration(t *testing.T) {
	input := `number n = 5
fn add(a, b) { return a + b }
any o = { name: "x", list: [1, 2] }`
	checkTokens(t, input, []expectedToken{
		{token.IDENT, "number"},
		{token.IDENT, "n"},
		{token.EQUAL, "="},
		{token.NUMBER, "5"},
		{token.NEWLINE, "\n"},
		{token.KEYWORD_FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.KEYWORD_RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "any"},
		{token.IDENT, "o"},
		{token.EQUAL, "="},
		{token.LBRACE, "{"},
		{token.IDENT, "name"},
		{token.COLON, ":"},
		{token.STRING, "x"},
		{token.COMMA, ","},
		{token.IDENT, "list"},
		{token.COLON, ":"},
		{token.LBRACKET, "["},
		{token.NUMBER, "1"},
		{token.COMMA, ","},
		{token.NUMBER, "2"},
		{token.RBRACKET, "]"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestNextToken_Positions(t *testing.T) {
	l := New("a\n  bc")
	tests := []struct {
		line   int
		column int
	}{
		{1, 1},
		{1, 2},
		{2, 3},
	}
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Fatalf("test[%d]: expected %d:%d, got %s", i, tt.line, tt.column, tok.Position())
		}
	}
}
