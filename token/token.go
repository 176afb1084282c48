// Package token defines Beauty lexer token types and utilities.
package token

import "fmt"

// Type represents the type of a token.
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota
	EOF
	NEWLINE

	// Identifiers and literals
	IDENT  // foo, has?, @file
	NUMBER // 42, 3.14, 1_000
	STRING // "foo", 'bar'

	// Keywords
	keyword_beg
	KEYWORD_CATCH
	KEYWORD_CLASS
	KEYWORD_DELETE
	KEYWORD_ELSE
	KEYWORD_FALSE
	KEYWORD_FN
	KEYWORD_FOR
	KEYWORD_IF
	KEYWORD_IN
	KEYWORD_NEW
	KEYWORD_NULL
	KEYWORD_OF
	KEYWORD_RETURN
	KEYWORD_THROW
	KEYWORD_TRUE
	KEYWORD_TRY
	KEYWORD_UNLESS
	KEYWORD_UNTIL
	KEYWORD_WHILE
	keyword_end

	// Operators
	AMPERSAND_AMPERSAND // &&
	BANG                // !
	BANG_EQUAL          // !=
	COLON               // :
	COMMA               // ,
	DOT                 // .
	DOT_DOT             // ..
	DOT_DOT_DOT         // ...
	EQUAL               // =
	EQUAL_EQUAL         // ==
	GREATER             // >
	GREATER_EQUAL       // >=
	LESS                // <
	LESS_EQUAL          // <=
	MINUS               // -
	MINUS_EQUAL         // -=
	MINUS_MINUS         // --
	PERCENT             // %
	PIPE_PIPE           // ||
	PLUS                // +
	PLUS_EQUAL          // +=
	PLUS_PLUS           // ++
	SEMICOLON           // ;
	SLASH               // /
	STAR                // *
	STAR_STAR           // **

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
)

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
	Offset  int
}

// Position returns a human readable line:column string.
func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

var tokenNames = map[Type]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	KEYWORD_CATCH:  "catch",
	KEYWORD_CLASS:  "class",
	KEYWORD_DELETE: "delete",
	KEYWORD_ELSE:   "else",
	KEYWORD_FALSE:  "false",
	KEYWORD_FN:     "fn",
	KEYWORD_FOR:    "for",
	KEYWORD_IF:     "if",
	KEYWORD_IN:     "in",
	KEYWORD_NEW:    "new",
	KEYWORD_NULL:   "null",
	KEYWORD_OF:     "of",
	KEYWORD_RETURN: "return",
	KEYWORD_THROW:  "throw",
	KEYWORD_TRUE:   "true",
	KEYWORD_TRY:    "try",
	KEYWORD_UNLESS: "unless",
	KEYWORD_UNTIL:  "until",
	KEYWORD_WHILE:  "while",

	AMPERSAND_AMPERSAND: "&&",
	BANG:                "!",
	BANG_EQUAL:          "!=",
	COLON:               ":",
	COMMA:               ",",
	DOT:                 ".",
	DOT_DOT:             "..",
	DOT_DOT_DOT:         "...",
	EQUAL:               "=",
	EQUAL_EQUAL:         "==",
	GREATER:             ">",
	GREATER_EQUAL:       ">=",
	LESS:                "<",
	LESS_EQUAL:          "<=",
	MINUS:               "-",
	MINUS_EQUAL:         "-=",
	MINUS_MINUS:         "--",
	PERCENT:             "%",
	PIPE_PIPE:           "||",
	PLUS:                "+",
	PLUS_EQUAL:          "+=",
	PLUS_PLUS:           "++",
	SEMICOLON:           ";",
	SLASH:               "/",
	STAR:                "*",
	STAR_STAR:           "**",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
}

// String returns the string representation of a token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", t)
}

// IsKeyword reports whether the token type is a keyword.
func (t Type) IsKeyword() bool {
	return t > keyword_beg && t < keyword_end
}

var keywords = map[string]Type{
	"catch":  KEYWORD_CATCH,
	"class":  KEYWORD_CLASS,
	"delete": KEYWORD_DELETE,
	"else":   KEYWORD_ELSE,
	"false":  KEYWORD_FALSE,
	"fn":     KEYWORD_FN,
	"for":    KEYWORD_FOR,
	"if":     KEYWORD_IF,
	"in":     KEYWORD_IN,
	"new":    KEYWORD_NEW,
	"null":   KEYWORD_NULL,
	"of":     KEYWORD_OF,
	"return": KEYWORD_RETURN,
	"throw":  KEYWORD_THROW,
	"true":   KEYWORD_TRUE,
	"try":    KEYWORD_TRY,
	"unless": KEYWORD_UNLESS,
	"until":  KEYWORD_UNTIL,
	"while":  KEYWORD_WHILE,
}

// LookupIdent checks if an identifier is a keyword.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
