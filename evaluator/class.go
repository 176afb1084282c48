package evaluator

import (
	"errors"

	"github.com/alexisbouchez/beautygo/ast"
	"github.com/alexisbouchez/beautygo/object"
)

func newFunction(node *ast.FunctionLiteral, env *Env) *object.Function {
	origin := env.origin
	if origin == nil {
		origin = env.scope
	}
	return &object.Function{
		Name:       node.Name,
		Parameters: node.Parameters,
		Body:       node.Body,
		Origin:     origin,
	}
}

func declareFunction(node *ast.FunctionDeclaration, env *Env) object.Object {
	fn := newFunction(node.Function, env)
	fn.Name = node.Name.Value
	env.scope.Define(fn.Name, fn)
	return object.NULL
}

// evalClassDeclaration binds the class under its own name. The binding is
// typed by the class and skips the check on its first write.
func evalClassDeclaration(node *ast.ClassDeclaration, env *Env) object.Object {
	class := &object.Class{Name: node.Name.Value, Body: node.Body, Origin: env.scope}
	v := object.NewVariable(class.Name, object.TypeTag(class.Name))
	v.Override = true
	if err := v.Set(class); err != nil {
		return err
	}
	env.scope.Declare(v)
	return class
}

func evalFunctionCall(node *ast.FunctionCall, env *Env) object.Object {
	callee := Eval(node.Callee, env)
	if isError(callee) {
		return callee
	}

	args := evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	if node.New {
		switch callee.(type) {
		case *object.Class, *object.NativeClass:
		default:
			return newError(object.RuntimeError, "%s is not a class", node.Callee.String())
		}
	}
	return applyFunction(callee, args, env)
}

func applyFunction(fn object.Object, args []object.Object, env *Env) object.Object {
	switch fn := fn.(type) {
	case *object.Function:
		return callFunction(fn, args, env)
	case *object.NativeFunction:
		return callNative(fn, args, env)
	case *object.Class:
		return instantiate(fn, args, env)
	case *object.NativeClass:
		return instantiateNative(fn, args, env)
	}
	return newError(object.RuntimeError, "%s is not callable", object.TypeOf(fn))
}

// callFunction runs fn in a child of the caller's scope. Methods run in a
// child of their instance scope instead, with this bound to the receiver.
// Missing arguments are null.
func callFunction(fn *object.Function, args []object.Object, env *Env) object.Object {
	parent := env.scope
	if fn.Receiver != nil && fn.Origin != nil {
		parent = fn.Origin
	}
	callEnv := &Env{in: env.in, scope: object.NewScope(parent), origin: fn.Origin}

	if fn.Receiver != nil {
		defineConst(callEnv.scope, "this", fn.Receiver)
	}
	for i, param := range fn.Parameters {
		var arg object.Object = object.NULL
		if i < len(args) {
			arg = args[i]
		}
		callEnv.scope.Define(param.Value, arg)
	}

	return unwrapReturnValue(evalBlockBody(fn.Body, callEnv))
}

// instantiate evaluates the class body in a fresh scope and flattens its
// bindings into the instance. Fields stay shared with that scope, so the
// constructor and methods write through to the members.
func instantiate(class *object.Class, args []object.Object, env *Env) object.Object {
	classScope := object.NewScope(class.Origin)
	classEnv := &Env{in: env.in, scope: classScope, origin: env.origin}
	inst := &object.ClassInstance{Class: class, Members: object.NewHash()}
	defineConst(classScope, "this", inst)

	if res := evalBlockBody(class.Body, classEnv); isError(res) {
		return res
	}

	var ctor *object.Function
	for _, v := range classScope.Locals() {
		if v.Name == "this" {
			continue
		}
		if !v.Deferred() {
			if fn, ok := v.Get(nil).(*object.Function); ok {
				bound := fn.Bind(inst)
				bound.Origin = classScope
				v = classScope.Define(v.Name, bound)
				if v.Name == "constructor" {
					ctor = bound
				}
			}
		}
		inst.Members.Attach(v.Name, v)
	}

	if ctor != nil {
		if res := callFunction(ctor, args, classEnv); isError(res) {
			return res
		}
	}
	return inst
}

func instantiateNative(nc *object.NativeClass, args []object.Object, env *Env) (result object.Object) {
	env.in.pushFrame(env)
	defer env.in.popFrame()
	defer recoverNative(nc.Name, &result)

	host, err := hostArgs(args, nc.Raw, env)
	if err != nil {
		return newError(object.NativeError, "%s: %v", nc.Name, err)
	}
	inst, err := nc.Instantiate(host...)
	if err != nil {
		return nativeError(err)
	}
	return inst
}

// callNative invokes a host function. Host errors and panics become
// NativeError unless the host returned a language error.
func callNative(nf *object.NativeFunction, args []object.Object, env *Env) (result object.Object) {
	env.in.pushFrame(env)
	defer env.in.popFrame()
	defer recoverNative(nf.Name, &result)

	host, err := hostArgs(args, nf.Raw, env)
	if err != nil {
		return newError(object.NativeError, "%s: %v", nf.Name, err)
	}
	val, err := nf.Fn(host...)
	if err != nil {
		return nativeError(err)
	}
	return FromNative(val, nil)
}

func recoverNative(name string, result *object.Object) {
	if r := recover(); r != nil {
		*result = newError(object.NativeError, "%s: %v", name, r)
	}
}

func hostArgs(args []object.Object, raw bool, env *Env) ([]any, error) {
	host := make([]any, len(args))
	for i, a := range args {
		if raw {
			host[i] = a
			continue
		}
		v, err := ToNative(a, env)
		if err != nil {
			return nil, err
		}
		host[i] = v
	}
	return host, nil
}

func nativeError(err error) object.Object {
	var errObj *object.Error
	if errors.As(err, &errObj) {
		return errObj
	}
	return newError(object.NativeError, "%s", err.Error())
}
