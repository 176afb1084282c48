package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/alexisbouchez/beautygo/ast"
	"github.com/alexisbouchez/beautygo/object"
)

// Eval evaluates an AST node.
func Eval(node ast.Node, env *Env) object.Object {
	switch node := node.(type) {
	// Program
	case *ast.Program:
		return evalProgram(node, env)

	// Statements
	case *ast.ExpressionStatement:
		if node.Expression == nil {
			return object.NULL
		}
		return Eval(node.Expression, env)

	case *ast.Declaration:
		return evalDeclaration(node, env)

	case *ast.FunctionDeclaration:
		return declareFunction(node, env)

	case *ast.ClassDeclaration:
		return evalClassDeclaration(node, env)

	case *ast.ReturnStatement:
		var val object.Object = object.NULL
		if node.ReturnValue != nil {
			val = Eval(node.ReturnValue, env)
			if isError(val) {
				return val
			}
		}
		return &object.ReturnValue{Value: val}

	case *ast.ThrowStatement:
		return evalThrow(node, env)

	case *ast.DeleteStatement:
		if !env.scope.Delete(node.Name.Value) {
			return newError(object.UndefinedVariable, "'%s' is not defined in this scope", node.Name.Value)
		}
		return object.NULL

	// Literals
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.BooleanLiteral:
		return object.NativeToBool(node.Value)

	case *ast.NullLiteral:
		return object.NULL

	case *ast.ArrayLiteral:
		elements := evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &object.Array{Elements: elements}

	case *ast.ObjectLiteral:
		return evalObjectLiteral(node, env)

	case *ast.RangeLiteral:
		return evalRangeLiteral(node, env)

	case *ast.FunctionLiteral:
		return newFunction(node, env)

	// Expressions
	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.Operation:
		return evalOperation(node, env)

	case *ast.Accessor:
		obj, key := evalAccessorParts(node, env)
		if isError(obj) {
			return obj
		}
		if isError(key) {
			return key
		}
		return getMember(obj, key)

	case *ast.Assignment:
		return evalAssignment(node, env)

	case *ast.VarOperation:
		return evalVarOperation(node, env)

	case *ast.FunctionCall:
		return evalFunctionCall(node, env)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.WhileExpression:
		return evalWhileExpression(node, env)

	case *ast.ForExpression:
		return evalForExpression(node, env)

	case *ast.TryExpression:
		return evalTryExpression(node, env)
	}

	return object.NULL
}

func evalProgram(program *ast.Program, env *Env) object.Object {
	return unwrapReturnValue(evalStatements(program.Statements, env))
}

func evalBlockBody(body *ast.BlockBody, env *Env) object.Object {
	if body == nil {
		return object.NULL
	}
	return evalStatements(body.Statements, env)
}

// evalStatements declares every named function of the list before running
// it, so calls may precede declarations.
func evalStatements(stmts []ast.Statement, env *Env) object.Object {
	for _, stmt := range stmts {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			declareFunction(fd, env)
		}
	}

	var result object.Object = object.NULL
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			continue
		}
		result = Eval(stmt, env)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

func evalExpressions(exps []ast.Expression, env *Env) []object.Object {
	var result []object.Object

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func evalObjectLiteral(node *ast.ObjectLiteral, env *Env) object.Object {
	hash := object.NewHash()
	for _, pair := range node.Pairs {
		val := Eval(pair.Value, env)
		if isError(val) {
			return val
		}
		hash.Attach(pair.Key, assigned(pair.Key, val))
	}
	return hash
}

func assigned(name string, val object.Object) *object.Variable {
	v := object.NewVariable(name, object.TagAny)
	v.Set(val)
	return v
}

func evalRangeLiteral(node *ast.RangeLiteral, env *Env) object.Object {
	start := Eval(node.Start, env)
	if isError(start) {
		return start
	}
	end := Eval(node.End, env)
	if isError(end) {
		return end
	}
	return object.NewRange(toNumber(start), toNumber(end), node.Inclusive)
}

func evalIdentifier(node *ast.Identifier, env *Env) object.Object {
	v, ok := env.lookup(node.Value)
	if !ok {
		return newError(object.UndefinedVariable, "'%s' is not defined", node.Value)
	}
	return v.Get(env.scope)
}

func evalDeclaration(node *ast.Declaration, env *Env) object.Object {
	tag := object.TypeTag(node.Type.Value)
	if !object.IsBuiltinTag(tag) {
		if !isClassName(node.Type.Value, env) {
			return newError(object.UndefinedVariable, "unknown type '%s'", node.Type.Value)
		}
	}

	v := object.NewVariable(node.Name.Value, tag)
	if node.Value != nil {
		if err := bind(v, node.Value, env); err != nil {
			return err
		}
	}
	env.scope.Declare(v)
	return object.NULL
}

func isClassName(name string, env *Env) bool {
	v, ok := env.lookup(name)
	if !ok {
		return false
	}
	switch v.Get(env.scope).(type) {
	case *object.Class, *object.NativeClass:
		return true
	}
	return false
}

// bind stores expr into v. Identifiers, accessors, operations and calls are
// kept as initializers re-run on read unless they mention v itself; they
// still run once here so a failing declaration fails where it is written.
func bind(v *object.Variable, expr ast.Expression, env *Env) *object.Error {
	if deferrable(expr) && !mentions(expr, v.Name) {
		return v.SetDeferred(deferredInitializer(expr, env), env.scope)
	}
	val := Eval(expr, env)
	if err, ok := val.(*object.Error); ok {
		return err
	}
	return v.Set(val)
}

func deferrable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.Accessor, *ast.Operation, *ast.FunctionCall:
		return true
	}
	return false
}

func mentions(expr ast.Expression, name string) bool {
	found := false
	ast.Walk(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Value == name {
			found = true
		}
		return !found
	})
	return found
}

// deferredInitializer evaluates expr against the scope it was bound in,
// falling back to the scope of whoever reads it.
func deferredInitializer(expr ast.Expression, env *Env) *object.Initializer {
	def := *env
	_, isCall := expr.(*ast.FunctionCall)
	return &object.Initializer{
		Call: isCall,
		Eval: func(reader *object.Scope) object.Object {
			e := def
			e.fallback = reader
			return unwrapReturnValue(Eval(expr, &e))
		},
	}
}

func evalAssignment(node *ast.Assignment, env *Env) object.Object {
	switch target := node.Target.(type) {
	case *ast.Identifier:
		v, ok := env.lookup(target.Value)
		if !ok {
			return newError(object.UndefinedVariable, "'%s' is not defined", target.Value)
		}
		if err := bind(v, node.Value, env); err != nil {
			return err
		}
		return v.Get(env.scope)

	case *ast.Accessor:
		obj, key := evalAccessorParts(target, env)
		if isError(obj) {
			return obj
		}
		if isError(key) {
			return key
		}
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		return setMember(obj, key, val)
	}
	return newError(object.RuntimeError, "invalid assignment target %s", node.Target.String())
}

func evalVarOperation(node *ast.VarOperation, env *Env) object.Object {
	var rhs object.Object = &object.Number{Value: 1}
	if node.Value != nil {
		rhs = Eval(node.Value, env)
		if isError(rhs) {
			return rhs
		}
	}

	apply := func(cur object.Object) object.Object {
		switch node.Op {
		case ast.VarAddAssign:
			return evalBinary(ast.OpAdd, cur, rhs)
		case ast.VarSubtractAssign:
			return evalBinary(ast.OpSubtract, cur, rhs)
		case ast.VarIncrement:
			return &object.Number{Value: toNumber(cur) + 1}
		default:
			return &object.Number{Value: toNumber(cur) - 1}
		}
	}
	postfix := node.Op == ast.VarIncrement || node.Op == ast.VarDecrement

	switch target := node.Target.(type) {
	case *ast.Identifier:
		v, ok := env.lookup(target.Value)
		if !ok {
			return newError(object.UndefinedVariable, "'%s' is not defined", target.Value)
		}
		cur := v.Get(env.scope)
		if isError(cur) {
			return cur
		}
		next := apply(cur)
		if err := v.Set(next); err != nil {
			return err
		}
		if postfix {
			return cur
		}
		return next

	case *ast.Accessor:
		obj, key := evalAccessorParts(target, env)
		if isError(obj) {
			return obj
		}
		if isError(key) {
			return key
		}
		cur := getMember(obj, key)
		if isError(cur) {
			return cur
		}
		next := apply(cur)
		if res := setMember(obj, key, next); isError(res) {
			return res
		}
		if postfix {
			return cur
		}
		return next
	}
	return newError(object.RuntimeError, "invalid assignment target %s", node.Target.String())
}

func evalAccessorParts(node *ast.Accessor, env *Env) (object.Object, object.Object) {
	obj := Eval(node.Object, env)
	if isError(obj) {
		return obj, nil
	}
	if !node.Computed {
		if id, ok := node.Key.(*ast.Identifier); ok {
			return obj, &object.String{Value: id.Value}
		}
	}
	return obj, Eval(node.Key, env)
}

// getMember reads key from obj. Primitives and arrays fall back to the
// methods of their wrapper class.
func getMember(obj, key object.Object) object.Object {
	switch o := obj.(type) {
	case *object.Null:
		return newError(object.RuntimeError, "cannot read member '%s' of null", object.KeyString(key))
	case *object.String:
		if idx, ok := key.(*object.Number); ok {
			runes := []rune(o.Value)
			i := int(idx.Value)
			if idx.Value != math.Trunc(idx.Value) || i < 0 || i >= len(runes) {
				return object.NULL
			}
			return &object.String{Value: string(runes[i])}
		}
	case object.Readable:
		if val, ok := o.Member(key); ok {
			return val
		}
	}
	if m, ok := wrapperMethod(obj, object.KeyString(key)); ok {
		return m
	}
	return object.NULL
}

func setMember(obj, key, val object.Object) object.Object {
	w, ok := obj.(object.Writable)
	if !ok {
		return newError(object.RuntimeError, "cannot set member '%s' of %s", object.KeyString(key), object.TypeOf(obj))
	}
	if res := w.SetMember(key, val); res != nil {
		return res
	}
	return val
}

// evalOperation evaluates the left operand before the right one. && and ||
// skip the right operand once the left decides the result.
func evalOperation(node *ast.Operation, env *Env) object.Object {
	if node.Op.IsUnary() {
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalUnary(node.Op, right)
	}

	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	switch node.Op {
	case ast.OpAnd:
		if !left.IsTruthy() {
			return left
		}
	case ast.OpOr:
		if left.IsTruthy() {
			return left
		}
	}
	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return evalBinary(node.Op, left, right)
}

func evalUnary(op ast.Opcode, right object.Object) object.Object {
	switch op {
	case ast.OpNegate:
		return &object.Number{Value: -toNumber(right)}
	case ast.OpNot:
		return object.NativeToBool(!right.IsTruthy())
	}
	return newError(object.RuntimeError, "unknown operator %s", op)
}

func evalBinary(op ast.Opcode, left, right object.Object) object.Object {
	switch op {
	case ast.OpAdd:
		_, ls := left.(*object.String)
		_, rs := right.(*object.String)
		if ls || rs {
			return &object.String{Value: object.Display(left) + object.Display(right)}
		}
		return &object.Number{Value: toNumber(left) + toNumber(right)}
	case ast.OpSubtract:
		return &object.Number{Value: toNumber(left) - toNumber(right)}
	case ast.OpMultiply:
		return &object.Number{Value: toNumber(left) * toNumber(right)}
	case ast.OpDivide:
		return &object.Number{Value: toNumber(left) / toNumber(right)}
	case ast.OpModulo:
		return &object.Number{Value: math.Mod(toNumber(left), toNumber(right))}
	case ast.OpPower:
		return &object.Number{Value: math.Pow(toNumber(left), toNumber(right))}
	case ast.OpEqual:
		return object.NativeToBool(object.StrictEqual(left, right))
	case ast.OpNotEqual:
		return object.NativeToBool(!object.StrictEqual(left, right))
	case ast.OpAnd:
		if !left.IsTruthy() {
			return left
		}
		return right
	case ast.OpOr:
		if left.IsTruthy() {
			return left
		}
		return right
	case ast.OpLess, ast.OpGreater, ast.OpLessEqual, ast.OpGreaterEqual:
		return evalComparison(op, left, right)
	}
	return newError(object.RuntimeError, "unknown operator %s", op)
}

func evalComparison(op ast.Opcode, left, right object.Object) object.Object {
	var cmp int
	ls, lok := left.(*object.String)
	rs, rok := right.(*object.String)
	if lok && rok {
		cmp = strings.Compare(ls.Value, rs.Value)
	} else {
		l, r := toNumber(left), toNumber(right)
		if math.IsNaN(l) || math.IsNaN(r) {
			return object.FALSE
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}

	switch op {
	case ast.OpLess:
		return object.NativeToBool(cmp < 0)
	case ast.OpGreater:
		return object.NativeToBool(cmp > 0)
	case ast.OpLessEqual:
		return object.NativeToBool(cmp <= 0)
	default:
		return object.NativeToBool(cmp >= 0)
	}
}

// toNumber coerces a value for arithmetic. Strings that do not parse and
// composite values become NaN.
func toNumber(obj object.Object) float64 {
	switch o := obj.(type) {
	case *object.Number:
		return o.Value
	case *object.Boolean:
		if o.Value {
			return 1
		}
		return 0
	case *object.Null:
		return 0
	case *object.String:
		s := strings.TrimSpace(o.Value)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case *object.NativeInstance:
		if host, ok := o.Host.(object.Object); ok {
			return toNumber(host)
		}
	}
	return math.NaN()
}

func evalIfExpression(node *ast.IfExpression, env *Env) object.Object {
	cond := Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}

	if cond.IsTruthy() != node.Unless {
		return evalBlockBody(node.Consequence, env)
	} else if node.Alternative != nil {
		return evalBlockBody(node.Alternative, env)
	}
	return object.NULL
}

// evalWhileExpression runs every iteration in one child scope, so a
// declaration in the body is re-declared rather than accumulated.
func evalWhileExpression(node *ast.WhileExpression, env *Env) object.Object {
	loopEnv := env.child()
	var result object.Object = object.NULL

	for {
		cond := Eval(node.Condition, loopEnv)
		if isError(cond) {
			return cond
		}
		if cond.IsTruthy() == node.Until {
			break
		}

		result = evalBlockBody(node.Body, loopEnv)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

// evalForExpression gives every iteration its own scope holding the loop
// variable, so functions created in the body see that iteration's value.
func evalForExpression(node *ast.ForExpression, env *Env) object.Object {
	iterable := Eval(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}

	items, err := iterationItems(iterable, node.Keys)
	if err != nil {
		return err
	}

	var result object.Object = object.NULL
	for _, item := range items {
		iterEnv := env.child()
		iterEnv.scope.Define(node.Variable.Value, item)

		result = evalBlockBody(node.Body, iterEnv)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func iterationItems(obj object.Object, keys bool) ([]object.Object, *object.Error) {
	switch o := obj.(type) {
	case *object.Array:
		return sequenceItems(o.Elements, keys), nil
	case *object.Range:
		return sequenceItems(o.Elements.Elements, keys), nil
	case *object.String:
		runes := []rune(o.Value)
		chars := make([]object.Object, len(runes))
		for i, r := range runes {
			chars[i] = &object.String{Value: string(r)}
		}
		return sequenceItems(chars, keys), nil
	case *object.Hash:
		return hashItems(o, keys), nil
	case *object.ClassInstance:
		return hashItems(o.Members, keys), nil
	case *object.NativeInstance:
		if host, ok := o.Host.(object.Object); ok {
			return iterationItems(host, keys)
		}
		return hashItems(o.Members, keys), nil
	}
	return nil, newError(object.RuntimeError, "%s is not iterable", object.TypeOf(obj))
}

func sequenceItems(elements []object.Object, keys bool) []object.Object {
	items := make([]object.Object, len(elements))
	for i, el := range elements {
		if keys {
			items[i] = &object.Number{Value: float64(i)}
		} else {
			items[i] = el
		}
	}
	return items
}

func hashItems(h *object.Hash, keys bool) []object.Object {
	items := make([]object.Object, 0, len(h.Entries))
	for _, e := range h.Entries {
		if keys {
			items = append(items, &object.String{Value: e.Key})
		} else {
			items = append(items, e.Var.Get(nil))
		}
	}
	return items
}

func evalThrow(node *ast.ThrowStatement, env *Env) object.Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	msg := object.Display(val)
	if r, ok := val.(object.Readable); ok {
		if m, found := r.Member(&object.String{Value: "message"}); found && m != object.NULL {
			msg = object.Display(m)
		}
	}
	return &object.Error{Kind: object.UserThrow, Message: msg, Thrown: val}
}

// evalTryExpression catches every language error raised by the body. The
// catch variable holds the thrown value, or an object with the error's
// message when the error came from the runtime.
func evalTryExpression(node *ast.TryExpression, env *Env) object.Object {
	result := evalBlockBody(node.Body, env)
	errObj, ok := result.(*object.Error)
	if !ok || node.CatchBody == nil {
		return result
	}

	if node.CatchVar != nil {
		caught := errObj.Thrown
		if caught == nil {
			h := object.NewHash()
			h.Set("message", &object.String{Value: errObj.Message})
			h.Set("kind", &object.String{Value: string(errObj.Kind)})
			caught = h
		}
		env.scope.Define(node.CatchVar.Value, caught)
	}
	return evalBlockBody(node.CatchBody, env)
}

// Helper functions

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

func newError(kind object.ErrorKind, format string, a ...interface{}) *object.Error {
	return object.NewError(kind, format, a...)
}

func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}
