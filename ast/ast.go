// Package ast defines the Abstract Syntax Tree for Beauty.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/alexisbouchez/beautygo/token"
)

// Node represents a node in the AST.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents a statement node.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// BlockBody is a braced statement list. It does not open a scope on its own.
type BlockBody struct {
	Token      token.Token
	Statements []Statement
}

func (bb *BlockBody) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, s := range bb.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// ExpressionStatement wraps an expression as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// Declaration introduces a typed binding: number n = 5.
type Declaration struct {
	Token token.Token
	Type  *Identifier
	Name  *Identifier
	Value Expression // nil when declared without initializer
}

func (d *Declaration) statementNode()       {}
func (d *Declaration) TokenLiteral() string { return d.Token.Literal }
func (d *Declaration) String() string {
	s := d.Type.String() + " " + d.Name.String()
	if d.Value != nil {
		s += " = " + d.Value.String()
	}
	return s
}

// FunctionDeclaration binds a named function: fn add(a, b) { ... }.
type FunctionDeclaration struct {
	Token    token.Token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string       { return fd.Function.String() }

// ClassDeclaration binds a class: class Point { ... }.
type ClassDeclaration struct {
	Token token.Token
	Name  *Identifier
	Body  *BlockBody
}

func (cd *ClassDeclaration) statementNode()       {}
func (cd *ClassDeclaration) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDeclaration) String() string {
	return "class " + cd.Name.String() + " " + cd.Body.String()
}

// ReturnStatement represents a return statement.
type ReturnStatement struct {
	Token       token.Token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String()
	}
	return "return"
}

// ThrowStatement raises a value as a language error.
type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string       { return "throw " + ts.Value.String() }

// DeleteStatement removes a binding from the active scope.
type DeleteStatement struct {
	Token token.Token
	Name  *Identifier
}

func (ds *DeleteStatement) statementNode()       {}
func (ds *DeleteStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DeleteStatement) String() string       { return "delete " + ds.Name.String() }

// NumberLiteral represents a number value.
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral represents a string value.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "true"
	}
	return "false"
}

// NullLiteral represents null.
type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// Identifier represents a name.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elements := make([]string, len(al.Elements))
	for i, el := range al.Elements {
		elements[i] = el.String()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// ObjectPair is one key: value entry of an object literal.
type ObjectPair struct {
	Key   string
	Value Expression
}

// ObjectLiteral represents { key: value, ... }. Keys keep source order.
type ObjectLiteral struct {
	Token token.Token
	Pairs []ObjectPair
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	pairs := make([]string, len(ol.Pairs))
	for i, p := range ol.Pairs {
		pairs[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// RangeLiteral represents start..end or start...end.
type RangeLiteral struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (rl *RangeLiteral) expressionNode()      {}
func (rl *RangeLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RangeLiteral) String() string {
	op := "..."
	if rl.Inclusive {
		op = ".."
	}
	return "(" + rl.Start.String() + op + rl.End.String() + ")"
}

// FunctionLiteral represents fn name(params) { body }. Name is empty for
// anonymous functions.
type FunctionLiteral struct {
	Token      token.Token
	Name       string
	Parameters []*Identifier
	Body       *BlockBody
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.String()
	}
	var out bytes.Buffer
	out.WriteString("fn ")
	if fl.Name != "" {
		out.WriteString(fl.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}

// Opcode identifies the operator of an Operation.
type Opcode int

const (
	OpAdd Opcode = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpModulo
	OpNegate
	OpEqual
	OpAnd
	OpOr
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpNot
)

var opcodeSymbols = map[Opcode]string{
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpPower:        "**",
	OpModulo:       "%",
	OpNegate:       "-",
	OpEqual:        "==",
	OpAnd:          "&&",
	OpOr:           "||",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
	OpNot:          "!",
}

func (op Opcode) String() string { return opcodeSymbols[op] }

// IsUnary reports whether the opcode takes a single operand.
func (op Opcode) IsUnary() bool { return op == OpNegate || op == OpNot }

// Operation is a unary or binary operator application. Left is nil for
// unary opcodes.
type Operation struct {
	Token token.Token
	Op    Opcode
	Left  Expression
	Right Expression
}

func (o *Operation) expressionNode()      {}
func (o *Operation) TokenLiteral() string { return o.Token.Literal }
func (o *Operation) String() string {
	if o.Op.IsUnary() {
		return "(" + o.Op.String() + o.Right.String() + ")"
	}
	return "(" + o.Left.String() + " " + o.Op.String() + " " + o.Right.String() + ")"
}

// Accessor represents obj.name or obj[key]. For the dotted form Key is an
// *Identifier and Computed is false.
type Accessor struct {
	Token    token.Token
	Object   Expression
	Key      Expression
	Computed bool
}

func (a *Accessor) expressionNode()      {}
func (a *Accessor) TokenLiteral() string { return a.Token.Literal }
func (a *Accessor) String() string {
	if a.Computed {
		return a.Object.String() + "[" + a.Key.String() + "]"
	}
	return a.Object.String() + "." + a.Key.String()
}

// Assignment represents target = value.
type Assignment struct {
	Token  token.Token
	Target Expression // *Identifier or *Accessor
	Value  Expression
}

func (a *Assignment) expressionNode()      {}
func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// VarOp identifies a compound assignment form.
type VarOp int

const (
	VarAddAssign VarOp = iota
	VarSubtractAssign
	VarIncrement
	VarDecrement
)

var varOpSymbols = map[VarOp]string{
	VarAddAssign:      "+=",
	VarSubtractAssign: "-=",
	VarIncrement:      "++",
	VarDecrement:      "--",
}

func (op VarOp) String() string { return varOpSymbols[op] }

// VarOperation represents target += v, target -= v, target++ and target--.
// Value is nil for the postfix forms.
type VarOperation struct {
	Token  token.Token
	Op     VarOp
	Target Expression
	Value  Expression
}

func (vo *VarOperation) expressionNode()      {}
func (vo *VarOperation) TokenLiteral() string { return vo.Token.Literal }
func (vo *VarOperation) String() string {
	if vo.Value == nil {
		return vo.Target.String() + vo.Op.String()
	}
	return vo.Target.String() + " " + vo.Op.String() + " " + vo.Value.String()
}

// FunctionCall represents callee(args). New is set for new Callee(args).
type FunctionCall struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
	New       bool
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) String() string {
	args := make([]string, len(fc.Arguments))
	for i, a := range fc.Arguments {
		args[i] = a.String()
	}
	s := fc.Callee.String() + "(" + strings.Join(args, ", ") + ")"
	if fc.New {
		return "new " + s
	}
	return s
}

// IfExpression represents if/unless with an optional else branch. An
// else-if chain is an Alternative holding a single IfExpression.
type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockBody
	Alternative *BlockBody
	Unless      bool
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	if ie.Unless {
		out.WriteString("unless ")
	} else {
		out.WriteString("if ")
	}
	out.WriteString(ie.Condition.String())
	out.WriteString(" ")
	out.WriteString(ie.Consequence.String())
	if ie.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Alternative.String())
	}
	return out.String()
}

// WhileExpression represents while/until loops.
type WhileExpression struct {
	Token     token.Token
	Condition Expression
	Body      *BlockBody
	Until     bool
}

func (we *WhileExpression) expressionNode()      {}
func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) String() string {
	kw := "while "
	if we.Until {
		kw = "until "
	}
	return kw + we.Condition.String() + " " + we.Body.String()
}

// ForExpression represents for x of xs (values) and for k in xs (keys).
type ForExpression struct {
	Token    token.Token
	Variable *Identifier
	Iterable Expression
	Body     *BlockBody
	Keys     bool
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) String() string {
	kw := " of "
	if fe.Keys {
		kw = " in "
	}
	return "for " + fe.Variable.String() + kw + fe.Iterable.String() + " " + fe.Body.String()
}

// TryExpression represents try { } catch (e) { }. CatchBody is nil when
// there is no catch clause.
type TryExpression struct {
	Token     token.Token
	Body      *BlockBody
	CatchVar  *Identifier
	CatchBody *BlockBody
}

func (te *TryExpression) expressionNode()      {}
func (te *TryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(te.Body.String())
	if te.CatchBody != nil {
		out.WriteString(" catch ")
		if te.CatchVar != nil {
			out.WriteString("(" + te.CatchVar.String() + ") ")
		}
		out.WriteString(te.CatchBody.String())
	}
	return out.String()
}

// Walk calls fn for node and every node beneath it, depth first. fn returning
// false stops descent into that node's children.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	walkBody := func(b *BlockBody) {
		if b == nil {
			return
		}
		for _, s := range b.Statements {
			Walk(s, fn)
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *ExpressionStatement:
		if n.Expression != nil {
			Walk(n.Expression, fn)
		}
	case *Declaration:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *FunctionDeclaration:
		Walk(n.Function, fn)
	case *ClassDeclaration:
		walkBody(n.Body)
	case *ReturnStatement:
		if n.ReturnValue != nil {
			Walk(n.ReturnValue, fn)
		}
	case *ThrowStatement:
		Walk(n.Value, fn)
	case *ArrayLiteral:
		for _, el := range n.Elements {
			Walk(el, fn)
		}
	case *ObjectLiteral:
		for _, p := range n.Pairs {
			Walk(p.Value, fn)
		}
	case *RangeLiteral:
		Walk(n.Start, fn)
		Walk(n.End, fn)
	case *FunctionLiteral:
		walkBody(n.Body)
	case *Operation:
		if n.Left != nil {
			Walk(n.Left, fn)
		}
		Walk(n.Right, fn)
	case *Accessor:
		Walk(n.Object, fn)
		if n.Computed {
			Walk(n.Key, fn)
		}
	case *Assignment:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *VarOperation:
		Walk(n.Target, fn)
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *FunctionCall:
		Walk(n.Callee, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *IfExpression:
		Walk(n.Condition, fn)
		walkBody(n.Consequence)
		walkBody(n.Alternative)
	case *WhileExpression:
		Walk(n.Condition, fn)
		walkBody(n.Body)
	case *ForExpression:
		Walk(n.Iterable, fn)
		walkBody(n.Body)
	case *TryExpression:
		walkBody(n.Body)
		walkBody(n.CatchBody)
	}
}
