// Package lexer implements a lexer for Beauty source code.
package lexer

import (
	"strings"

	"github.com/alexisbouchez/beautygo/token"
)

// Lexer represents a lexer for Beauty source code.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

// New creates a new Lexer instance.
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.position > 0 && l.position <= len(l.input) && l.input[l.position-1] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharN(n int) byte {
	pos := l.readPosition + n - 1
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespaceAndComments()

	startLine := l.line
	startColumn := l.column
	startOffset := l.position

	switch l.ch {
	case '\n':
		tok = l.newToken(token.NEWLINE, "\n")
	case 0:
		tok = l.newToken(token.EOF, "")
		return l.setTokenPosition(tok, startLine, startColumn, startOffset)
	case '+':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = l.newToken(token.PLUS_EQUAL, "+=")
		case '+':
			l.readChar()
			tok = l.newToken(token.PLUS_PLUS, "++")
		default:
			tok = l.newToken(token.PLUS, "+")
		}
	case '-':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = l.newToken(token.MINUS_EQUAL, "-=")
		case '-':
			l.readChar()
			tok = l.newToken(token.MINUS_MINUS, "--")
		default:
			tok = l.newToken(token.MINUS, "-")
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = l.newToken(token.STAR_STAR, "**")
		} else {
			tok = l.newToken(token.STAR, "*")
		}
	case '/':
		tok = l.newToken(token.SLASH, "/")
	case '%':
		tok = l.newToken(token.PERCENT, "%")
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.EQUAL_EQUAL, "==")
		} else {
			tok = l.newToken(token.EQUAL, "=")
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.BANG_EQUAL, "!=")
		} else {
			tok = l.newToken(token.BANG, "!")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.LESS_EQUAL, "<=")
		} else {
			tok = l.newToken(token.LESS, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.GREATER_EQUAL, ">=")
		} else {
			tok = l.newToken(token.GREATER, ">")
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.newToken(token.AMPERSAND_AMPERSAND, "&&")
		} else {
			tok = l.newToken(token.ILLEGAL, "&")
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.newToken(token.PIPE_PIPE, "||")
		} else {
			tok = l.newToken(token.ILLEGAL, "|")
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '.' {
				l.readChar()
				tok = l.newToken(token.DOT_DOT_DOT, "...")
			} else {
				tok = l.newToken(token.DOT_DOT, "..")
			}
		} else {
			tok = l.newToken(token.DOT, ".")
		}
	case ':':
		tok = l.newToken(token.COLON, ":")
	case ';':
		tok = l.newToken(token.SEMICOLON, ";")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '[':
		tok = l.newToken(token.LBRACKET, "[")
	case ']':
		tok = l.newToken(token.RBRACKET, "]")
	case '{':
		tok = l.newToken(token.LBRACE, "{")
	case '}':
		tok = l.newToken(token.RBRACE, "}")
	case '"', '\'':
		tok = l.lexString(l.ch)
		return l.setTokenPosition(tok, startLine, startColumn, startOffset)
	default:
		if isLetter(l.ch) || l.ch == '_' || (l.ch == '@' && isLetter(l.peekChar())) {
			tok = l.lexIdentifier()
			return l.setTokenPosition(tok, startLine, startColumn, startOffset)
		}
		if isDigit(l.ch) {
			tok = l.lexNumber()
			return l.setTokenPosition(tok, startLine, startColumn, startOffset)
		}
		tok = l.newToken(token.ILLEGAL, string(l.ch))
	}

	l.readChar()
	return l.setTokenPosition(tok, startLine, startColumn, startOffset)
}

func (l *Lexer) setTokenPosition(tok token.Token, line, column, offset int) token.Token {
	tok.Line = line
	tok.Column = column
	tok.Offset = offset
	return tok
}

func (l *Lexer) newToken(tokenType token.Type, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal}
}

// skipWhitespaceAndComments skips blanks and line comments (# and //),
// stopping at the newline that ends a comment.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '#' || (l.ch == '/' && l.peekChar() == '/'):
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexIdentifier() token.Token {
	startPos := l.position
	if l.ch == '@' {
		l.readChar()
	}
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	// Predicate and bang names: has?, exists?, save!
	if l.ch == '?' || (l.ch == '!' && l.peekChar() != '=') {
		l.readChar()
	}

	literal := l.input[startPos:l.position]
	return l.newToken(token.LookupIdent(literal), literal)
}

func (l *Lexer) lexNumber() token.Token {
	startPos := l.position

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	// 1..5 is a range, not a float
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') &&
		(isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharN(2)))) {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.newToken(token.NUMBER, l.input[startPos:l.position])
}

// lexString reads a quoted string and decodes its escape sequences.
// An unterminated string yields an ILLEGAL token.
func (l *Lexer) lexString(quote byte) token.Token {
	var content strings.Builder
	l.readChar() // opening quote

	for l.ch != quote {
		if l.ch == 0 {
			return l.newToken(token.ILLEGAL, "unterminated string")
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				content.WriteByte('\n')
			case 't':
				content.WriteByte('\t')
			case 'r':
				content.WriteByte('\r')
			case '0':
				content.WriteByte(0)
			case 0:
				return l.newToken(token.ILLEGAL, "unterminated string")
			default:
				content.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}
		content.WriteByte(l.ch)
		l.readChar()
	}

	l.readChar() // closing quote
	return l.newToken(token.STRING, content.String())
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
