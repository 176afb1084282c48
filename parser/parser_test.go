package parser

import (
	"testing"

	"github.com/alexisbouchez/beautygo/ast"
	"github.com/alexisbouchez/beautygo/lexer"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %s", msg)
	}
	t.FailNow()
}

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func parseExpressionStatement(t *testing.T, input string) ast.Expression {
	t.Helper()
	program := parseProgram(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestNumberLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5", 5},
		{"3.14", 3.14},
		{"1_000_000", 1000000},
		{"1.5e10", 1.5e10},
	}

	for _, tt := range tests {
		exp := parseExpressionStatement(t, tt.input)
		literal, ok := exp.(*ast.NumberLiteral)
		if !ok {
			t.Fatalf("expected NumberLiteral, got %T", exp)
		}
		if literal.Value != tt.expected {
			t.Errorf("expected %f, got %f", tt.expected, literal.Value)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	exp := parseExpressionStatement(t, `"hello world"`)
	literal, ok := exp.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("expected StringLiteral, got %T", exp)
	}
	if literal.Value != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", literal.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-a * b", "((-a) * b)"},
		{"!a == b", "((!a) == b)"},
		{"a || b && c", "(a || (b && c))"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a % b - c / d", "((a % b) - (c / d))"},
		{"a != b", "(a != b)"},
		{"a.b.c(1)", "a.b.c(1)"},
		{"a[1 + 2]", "a[(1 + 2)]"},
		{"f(a, b)(c)", "f(a, b)(c)"},
		{"x = y = 3", "x = y = 3"},
		{"1..5", "(1..5)"},
		{"0...n + 1", "(0...(n + 1))"},
		{"i++", "i++"},
		{"a += 2 * 3", "a += (2 * 3)"},
		{"new Point(5).get()", "new Point(5).get()"},
		{"-x.length()", "(-x.length())"},
	}

	for _, tt := range tests {
		exp := parseExpressionStatement(t, tt.input)
		if exp.String() != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, exp.String())
		}
	}
}

func TestDeclarations(t *testing.T) {
	tests := []struct {
		input         string
		expectedType  string
		expectedName  string
		expectedValue string
	}{
		{"number n = 5", "number", "n", "5"},
		{"const pi = 3.14", "const", "pi", "3.14"},
		{"any f = fn (x) { x * 2 }", "any", "f", "fn (x) { (x * 2) }"},
		{"string s", "string", "s", ""},
		{"Point p = new Point(1)", "Point", "p", "new Point(1)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("input %q: expected 1 statement, got %d", tt.input, len(program.Statements))
		}
		decl, ok := program.Statements[0].(*ast.Declaration)
		if !ok {
			t.Fatalf("input %q: expected Declaration, got %T", tt.input, program.Statements[0])
		}
		if decl.Type.Value != tt.expectedType {
			t.Errorf("expected type %q, got %q", tt.expectedType, decl.Type.Value)
		}
		if decl.Name.Value != tt.expectedName {
			t.Errorf("expected name %q, got %q", tt.expectedName, decl.Name.Value)
		}
		value := ""
		if decl.Value != nil {
			value = decl.Value.String()
		}
		if value != tt.expectedValue {
			t.Errorf("expected value %q, got %q", tt.expectedValue, value)
		}
	}
}

func TestNewlineSeparatesStatements(t *testing.T) {
	program := parseProgram(t, "a\n-b\nc; d")
	if len(program.Statements) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(program.Statements))
	}
}

func TestDotContinuesOnNextLine(t *testing.T) {
	exp := parseExpressionStatement(t, "list\n  .add(1)\n  .length()")
	if exp.String() != "list.add(1).length()" {
		t.Errorf("unexpected expression %q", exp.String())
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parseProgram(t, "fn add(a, b) {\n  return a + b\n}")
	decl, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", program.Statements[0])
	}
	if decl.Name.Value != "add" {
		t.Errorf("expected name add, got %q", decl.Name.Value)
	}
	if len(decl.Function.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(decl.Function.Parameters))
	}
	if len(decl.Function.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(decl.Function.Body.Statements))
	}
	ret, ok := decl.Function.Body.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected ReturnStatement, got %T", decl.Function.Body.Statements[0])
	}
	if ret.ReturnValue.String() != "(a + b)" {
		t.Errorf("unexpected return value %q", ret.ReturnValue.String())
	}
}

func TestBareReturn(t *testing.T) {
	program := parseProgram(t, "fn f() { return }")
	decl := program.Statements[0].(*ast.FunctionDeclaration)
	ret := decl.Function.Body.Statements[0].(*ast.ReturnStatement)
	if ret.ReturnValue != nil {
		t.Errorf("expected no return value, got %s", ret.ReturnValue)
	}
}

func TestObjectLiteral(t *testing.T) {
	exp := parseExpressionStatement(t, `{ name: "x", "quoted": 1, in: true, }`)
	obj, ok := exp.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected ObjectLiteral, got %T", exp)
	}
	keys := []string{"name", "quoted", "in"}
	if len(obj.Pairs) != len(keys) {
		t.Fatalf("expected %d pairs, got %d", len(keys), len(obj.Pairs))
	}
	for i, k := range keys {
		if obj.Pairs[i].Key != k {
			t.Errorf("pair %d: expected key %q, got %q", i, k, obj.Pairs[i].Key)
		}
	}
}

func TestArrayLiteral(t *testing.T) {
	exp := parseExpressionStatement(t, "[1, 2 * 2,\n 3 + 3]")
	array, ok := exp.(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expected ArrayLiteral, got %T", exp)
	}
	if len(array.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(array.Elements))
	}
	if array.Elements[2].String() != "(3 + 3)" {
		t.Errorf("unexpected element %q", array.Elements[2].String())
	}
}

func TestIfElseChain(t *testing.T) {
	exp := parseExpressionStatement(t, `if a { 1 } else if b { 2 } else { 3 }`)
	ifExp, ok := exp.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected IfExpression, got %T", exp)
	}
	if ifExp.Alternative == nil || len(ifExp.Alternative.Statements) != 1 {
		t.Fatalf("expected else-if alternative")
	}
	nested, ok := ifExp.Alternative.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected nested IfExpression")
	}
	if nested.Condition.String() != "b" {
		t.Errorf("expected nested condition b, got %q", nested.Condition.String())
	}
	if nested.Alternative == nil {
		t.Errorf("expected final else branch")
	}
}

func TestUnless(t *testing.T) {
	exp := parseExpressionStatement(t, `unless ok { fail() }`)
	ifExp, ok := exp.(*ast.IfExpression)
	if !ok || !ifExp.Unless {
		t.Fatalf("expected unless expression, got %T", exp)
	}
}

func TestLoops(t *testing.T) {
	tests := []struct {
		input string
		check func(ast.Expression) bool
	}{
		{"while i < 3 { i++ }", func(e ast.Expression) bool {
			w, ok := e.(*ast.WhileExpression)
			return ok && !w.Until
		}},
		{"until done { step() }", func(e ast.Expression) bool {
			w, ok := e.(*ast.WhileExpression)
			return ok && w.Until
		}},
		{"for x of [1, 2] { x }", func(e ast.Expression) bool {
			f, ok := e.(*ast.ForExpression)
			return ok && !f.Keys && f.Variable.Value == "x"
		}},
		{"for (k in obj) { k }", func(e ast.Expression) bool {
			f, ok := e.(*ast.ForExpression)
			return ok && f.Keys && f.Iterable.String() == "obj"
		}},
	}

	for _, tt := range tests {
		exp := parseExpressionStatement(t, tt.input)
		if !tt.check(exp) {
			t.Errorf("input %q: unexpected node %T", tt.input, exp)
		}
	}
}

func TestTryCatch(t *testing.T) {
	tests := []struct {
		input    string
		catchVar string
		hasCatch bool
	}{
		{`try { throw Error("x") } catch (e) { e.message }`, "e", true},
		{`try { f() } catch err { err }`, "err", true},
		{`try { f() }`, "", false},
	}

	for _, tt := range tests {
		exp := parseExpressionStatement(t, tt.input)
		try, ok := exp.(*ast.TryExpression)
		if !ok {
			t.Fatalf("expected TryExpression, got %T", exp)
		}
		if (try.CatchBody != nil) != tt.hasCatch {
			t.Errorf("input %q: catch presence mismatch", tt.input)
		}
		if tt.catchVar != "" && try.CatchVar.Value != tt.catchVar {
			t.Errorf("expected catch var %q, got %q", tt.catchVar, try.CatchVar.Value)
		}
	}
}

func TestClassDeclaration(t *testing.T) {
	input := `class Point {
  number a = 1
  fn get() { return this.a }
  constructor(input) { a = input }
}`
	program := parseProgram(t, input)
	class, ok := program.Statements[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected ClassDeclaration, got %T", program.Statements[0])
	}
	if class.Name.Value != "Point" {
		t.Errorf("expected Point, got %q", class.Name.Value)
	}
	if len(class.Body.Statements) != 3 {
		t.Fatalf("expected 3 members, got %d", len(class.Body.Statements))
	}
	ctor, ok := class.Body.Statements[2].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected constructor FunctionDeclaration, got %T", class.Body.Statements[2])
	}
	if ctor.Name.Value != "constructor" || len(ctor.Function.Parameters) != 1 {
		t.Errorf("unexpected constructor %s", ctor.String())
	}
}

func TestThrowAndDelete(t *testing.T) {
	program := parseProgram(t, "throw { message: \"bad\" }\ndelete x")
	if _, ok := program.Statements[0].(*ast.ThrowStatement); !ok {
		t.Errorf("expected ThrowStatement, got %T", program.Statements[0])
	}
	del, ok := program.Statements[1].(*ast.DeleteStatement)
	if !ok || del.Name.Value != "x" {
		t.Errorf("expected delete x, got %T", program.Statements[1])
	}
}

func TestKeywordMemberNames(t *testing.T) {
	exp := parseExpressionStatement(t, "io.in()")
	if exp.String() != "io.in()" {
		t.Errorf("unexpected expression %q", exp.String())
	}
}

func TestParserErrors(t *testing.T) {
	tests := []string{
		"1 = 2",
		"fn (a, {",
		"{ 1 2 }",
		"if x",
	}

	for _, input := range tests {
		p := New(lexer.New(input))
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Errorf("input %q: expected parser errors", input)
		}
	}
}
