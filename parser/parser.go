// Package parser implements a Beauty parser using Pratt parsing.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbouchez/beautygo/ast"
	"github.com/alexisbouchez/beautygo/lexer"
	"github.com/alexisbouchez/beautygo/token"
)

// Precedence levels for Beauty operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT // =, +=, -= (right associative)
	RANGE      // .., ...
	OR         // ||
	AND        // &&
	EQUALS     // ==, !=
	COMPARE    // <, >, <=, >=
	SUM        // +, -
	PRODUCT    // *, /, %
	POWER      // ** (right associative)
	PREFIX     // -x, !x
	POSTFIX    // x++, x--
	CALL       // f(x)
	MEMBER     // a.b, a[b]
)

// precedences maps token types to their precedence levels
var precedences = map[token.Type]int{
	token.EQUAL:       ASSIGNMENT,
	token.PLUS_EQUAL:  ASSIGNMENT,
	token.MINUS_EQUAL: ASSIGNMENT,

	token.DOT_DOT:     RANGE,
	token.DOT_DOT_DOT: RANGE,

	token.PIPE_PIPE:           OR,
	token.AMPERSAND_AMPERSAND: AND,

	token.EQUAL_EQUAL: EQUALS,
	token.BANG_EQUAL:  EQUALS,

	token.LESS:          COMPARE,
	token.GREATER:       COMPARE,
	token.LESS_EQUAL:    COMPARE,
	token.GREATER_EQUAL: COMPARE,

	token.PLUS:  SUM,
	token.MINUS: SUM,

	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.PERCENT: PRODUCT,

	token.STAR_STAR: POWER,

	token.PLUS_PLUS:   POSTFIX,
	token.MINUS_MINUS: POSTFIX,

	token.LPAREN: CALL,

	token.DOT:      MEMBER,
	token.LBRACKET: MEMBER,
}

var binaryOpcodes = map[token.Type]ast.Opcode{
	token.PLUS:                ast.OpAdd,
	token.MINUS:               ast.OpSubtract,
	token.STAR:                ast.OpMultiply,
	token.SLASH:               ast.OpDivide,
	token.STAR_STAR:           ast.OpPower,
	token.PERCENT:             ast.OpModulo,
	token.EQUAL_EQUAL:         ast.OpEqual,
	token.BANG_EQUAL:          ast.OpNotEqual,
	token.AMPERSAND_AMPERSAND: ast.OpAnd,
	token.PIPE_PIPE:           ast.OpOr,
	token.LESS:                ast.OpLess,
	token.GREATER:             ast.OpGreater,
	token.LESS_EQUAL:          ast.OpLessEqual,
	token.GREATER_EQUAL:       ast.OpGreaterEqual,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser holds the state of the parser
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token

	// sawNewline indicates that we skipped a newline while getting to peekToken
	sawNewline bool

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a new Parser
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.infixParseFns = make(map[token.Type]infixParseFn)

	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.KEYWORD_TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.KEYWORD_FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.KEYWORD_NULL, p.parseNullLiteral)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(token.KEYWORD_FN, p.parseFunctionLiteral)
	p.registerPrefix(token.KEYWORD_NEW, p.parseNewExpression)
	p.registerPrefix(token.KEYWORD_IF, p.parseIfExpression)
	p.registerPrefix(token.KEYWORD_UNLESS, p.parseIfExpression)
	p.registerPrefix(token.KEYWORD_WHILE, p.parseWhileExpression)
	p.registerPrefix(token.KEYWORD_UNTIL, p.parseWhileExpression)
	p.registerPrefix(token.KEYWORD_FOR, p.parseForExpression)
	p.registerPrefix(token.KEYWORD_TRY, p.parseTryExpression)

	for tt := range binaryOpcodes {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.DOT_DOT, p.parseRangeExpression)
	p.registerInfix(token.DOT_DOT_DOT, p.parseRangeExpression)
	p.registerInfix(token.EQUAL, p.parseAssignment)
	p.registerInfix(token.PLUS_EQUAL, p.parseVarOperation)
	p.registerInfix(token.MINUS_EQUAL, p.parseVarOperation)
	p.registerInfix(token.PLUS_PLUS, p.parsePostfixExpression)
	p.registerInfix(token.MINUS_MINUS, p.parsePostfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.DOT, p.parseMemberAccess)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the parser errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("%s: %s", tok.Position(), fmt.Sprintf(format, args...)))
}

func (p *Parser) peekError(t token.Type) {
	p.addError(p.peekToken, "expected next token to be %s, got %s instead (literal: %q)",
		t.String(), p.peekToken.Type.String(), p.peekToken.Literal)
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.addError(p.curToken, "no prefix parse function for %s found (literal: %q)",
		t.String(), p.curToken.Literal)
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	// Track if we skipped a newline so we can use it for statement separation
	p.sawNewline = false
	for p.peekToken.Type == token.NEWLINE {
		p.sawNewline = true
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the entire program
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return nil
	case token.KEYWORD_FN:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionDeclaration()
		}
		return p.parseExpressionStatement()
	case token.KEYWORD_CLASS:
		return p.parseClassDeclaration()
	case token.KEYWORD_RETURN:
		return p.parseReturnStatement()
	case token.KEYWORD_THROW:
		return p.parseThrowStatement()
	case token.KEYWORD_DELETE:
		return p.parseDeleteStatement()
	case token.IDENT:
		// <type> <name> on one line is a declaration
		if p.peekTokenIs(token.IDENT) && !p.sawNewline {
			return p.parseDeclaration()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		// A newline ends the expression unless the next line starts with a
		// member access.
		if p.sawNewline && !p.peekTokenIs(token.DOT) {
			return leftExp
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil || leftExp == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

// Statements

func (p *Parser) parseDeclaration() ast.Statement {
	decl := &ast.Declaration{
		Token: p.curToken,
		Type:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}
	p.nextToken()
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.EQUAL) {
		p.nextToken()
		p.nextToken()
		decl.Value = p.parseExpression(LOWEST)
		if decl.Value == nil {
			return nil
		}
	}
	return decl
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	decl := &ast.FunctionDeclaration{Token: p.curToken}
	p.nextToken()
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	fn := p.parseFunctionRest(decl.Token, decl.Name.Value)
	if fn == nil {
		return nil
	}
	decl.Function = fn
	return decl
}

// parseFunctionRest parses (params) { body } with curToken on the token
// before the opening parenthesis.
func (p *Parser) parseFunctionRest(tok token.Token, name string) *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{Token: tok, Name: name}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Parameters = p.parseFunctionParameters()
	if fn.Parameters == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockBody()
	return fn
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	params := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	decl := &ast.ClassDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	decl.Body = p.parseClassBody()
	return decl
}

// parseClassBody is parseBlockBody with one extra form: constructor(...) { }
// declares a method without the fn keyword.
func (p *Parser) parseClassBody() *ast.BlockBody {
	body := &ast.BlockBody{Token: p.curToken}
	body.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		var stmt ast.Statement
		if p.curTokenIs(token.IDENT) && p.curToken.Literal == "constructor" && p.peekTokenIs(token.LPAREN) {
			name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
			if fn := p.parseFunctionRest(p.curToken, name.Value); fn != nil {
				stmt = &ast.FunctionDeclaration{Token: name.Token, Name: name, Function: fn}
			}
		} else {
			stmt = p.parseStatement()
		}
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError(p.curToken, "unterminated class body")
	}
	return body
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekIsStatementEnd() {
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDeleteStatement() ast.Statement {
	stmt := &ast.DeleteStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return stmt
}

func (p *Parser) parseBlockBody() *ast.BlockBody {
	body := &ast.BlockBody{Token: p.curToken}
	body.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError(p.curToken, "unterminated block, expected }")
	}
	return body
}

// Literals

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	literal := strings.ReplaceAll(p.curToken.Literal, "_", "")
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		p.addError(p.curToken, "could not parse %q as number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.KEYWORD_TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.Operation{Token: p.curToken, Op: ast.OpNegate}
	if p.curTokenIs(token.BANG) {
		expression.Op = ast.OpNot
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	array.Elements = p.parseExpressionList(token.RBRACKET)
	if array.Elements == nil {
		return nil
	}
	return array
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{Token: p.curToken, Pairs: []ast.ObjectPair{}}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		var key string
		switch {
		case p.curTokenIs(token.IDENT), p.curTokenIs(token.STRING), p.curTokenIs(token.NUMBER):
			key = p.curToken.Literal
		case p.curToken.Type.IsKeyword():
			key = p.curToken.Literal
		default:
			p.addError(p.curToken, "invalid object key %q", p.curToken.Literal)
			return nil
		}

		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()

		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		obj.Pairs = append(obj.Pairs, ast.ObjectPair{Key: key, Value: value})

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // move to comma
		if p.peekTokenIs(end) {
			break // trailing comma
		}
		p.nextToken() // move to next expression
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}

	for _, el := range list {
		if el == nil {
			return nil
		}
	}
	return list
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken
	name := ""
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = p.curToken.Literal
	}
	fn := p.parseFunctionRest(tok, name)
	if fn == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseNewExpression() ast.Expression {
	call := &ast.FunctionCall{Token: p.curToken, New: true, Arguments: []ast.Expression{}}

	p.nextToken()
	call.Callee = p.parseExpression(CALL)
	if call.Callee == nil {
		return nil
	}

	if p.peekTokenIs(token.LPAREN) && !p.sawNewline {
		p.nextToken()
		call.Arguments = p.parseExpressionList(token.RPAREN)
		if call.Arguments == nil {
			return nil
		}
	}
	return call
}

// Infix expressions

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.Operation{
		Token: p.curToken,
		Op:    binaryOpcodes[p.curToken.Type],
		Left:  left,
	}

	precedence := p.curPrecedence()

	// Handle right-associative operators
	if p.curTokenIs(token.STAR_STAR) {
		precedence--
	}

	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expression := &ast.RangeLiteral{
		Token:     p.curToken,
		Start:     left,
		Inclusive: p.curTokenIs(token.DOT_DOT),
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.End = p.parseExpression(precedence)
	if expression.End == nil {
		return nil
	}

	return expression
}

func (p *Parser) checkAssignable(target ast.Expression) bool {
	switch target.(type) {
	case *ast.Identifier, *ast.Accessor:
		return true
	}
	p.addError(p.curToken, "invalid assignment target %s", target.String())
	return false
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	if !p.checkAssignable(left) {
		return nil
	}
	expression := &ast.Assignment{Token: p.curToken, Target: left}

	p.nextToken()
	expression.Value = p.parseExpression(ASSIGNMENT - 1)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseVarOperation(left ast.Expression) ast.Expression {
	if !p.checkAssignable(left) {
		return nil
	}
	expression := &ast.VarOperation{Token: p.curToken, Target: left, Op: ast.VarAddAssign}
	if p.curTokenIs(token.MINUS_EQUAL) {
		expression.Op = ast.VarSubtractAssign
	}

	p.nextToken()
	expression.Value = p.parseExpression(ASSIGNMENT - 1)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	if !p.checkAssignable(left) {
		return nil
	}
	expression := &ast.VarOperation{Token: p.curToken, Target: left, Op: ast.VarIncrement}
	if p.curTokenIs(token.MINUS_MINUS) {
		expression.Op = ast.VarDecrement
	}
	return expression
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := &ast.FunctionCall{Token: p.curToken, Callee: callee}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseMemberAccess(object ast.Expression) ast.Expression {
	acc := &ast.Accessor{Token: p.curToken, Object: object}

	p.nextToken()
	// Keywords are valid member names: io.in(), pkg.new
	if !p.curTokenIs(token.IDENT) && !p.curToken.Type.IsKeyword() {
		p.addError(p.curToken, "expected member name after '.', got %s", p.curToken.Type)
		return nil
	}
	acc.Key = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return acc
}

func (p *Parser) parseIndexExpression(object ast.Expression) ast.Expression {
	acc := &ast.Accessor{Token: p.curToken, Object: object, Computed: true}

	p.nextToken()
	acc.Key = p.parseExpression(LOWEST)
	if acc.Key == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return acc
}

// Control flow

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken, Unless: p.curTokenIs(token.KEYWORD_UNLESS)}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlockBody()

	if !p.peekTokenIs(token.KEYWORD_ELSE) {
		return expression
	}
	p.nextToken()

	if p.peekTokenIs(token.KEYWORD_IF) || p.peekTokenIs(token.KEYWORD_UNLESS) {
		p.nextToken()
		tok := p.curToken
		nested := p.parseIfExpression()
		if nested == nil {
			return nil
		}
		expression.Alternative = &ast.BlockBody{
			Token:      tok,
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: tok, Expression: nested}},
		}
		return expression
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Alternative = p.parseBlockBody()
	return expression
}

func (p *Parser) parseWhileExpression() ast.Expression {
	expression := &ast.WhileExpression{Token: p.curToken, Until: p.curTokenIs(token.KEYWORD_UNTIL)}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlockBody()
	return expression
}

// parseForExpression parses for x of xs { } and for k in xs { }. The header
// may be wrapped in parentheses.
func (p *Parser) parseForExpression() ast.Expression {
	expression := &ast.ForExpression{Token: p.curToken}

	parens := p.peekTokenIs(token.LPAREN)
	if parens {
		p.nextToken()
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expression.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	switch {
	case p.peekTokenIs(token.KEYWORD_OF):
	case p.peekTokenIs(token.KEYWORD_IN):
		expression.Keys = true
	default:
		p.peekError(token.KEYWORD_OF)
		return nil
	}
	p.nextToken()
	p.nextToken()

	expression.Iterable = p.parseExpression(LOWEST)
	if expression.Iterable == nil {
		return nil
	}

	if parens && !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlockBody()
	return expression
}

func (p *Parser) parseTryExpression() ast.Expression {
	expression := &ast.TryExpression{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlockBody()

	if !p.peekTokenIs(token.KEYWORD_CATCH) {
		return expression
	}
	p.nextToken()

	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		expression.CatchVar = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		expression.CatchVar = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.CatchBody = p.parseBlockBody()
	return expression
}

// Helper functions

func (p *Parser) peekIsStatementEnd() bool {
	// If we saw a newline while skipping to peek, the statement ends
	if p.sawNewline {
		return true
	}
	return p.peekTokenIs(token.EOF) ||
		p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.RBRACE)
}

// ParseString parses src and returns the program together with any
// parser errors.
func ParseString(src string) (*ast.Program, []string) {
	p := New(lexer.New(src))
	program := p.ParseProgram()
	return program, p.Errors()
}
