package evaluator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexisbouchez/beautygo/object"
)

// installGlobals declares the const globals of the root scope.
func (in *Interpreter) installGlobals() {
	ioObj := object.NewHash()
	ioObj.Set("out", &object.NativeFunction{Name: "out", Raw: true, Fn: in.ioOut(true)})
	ioObj.Set("trimOut", &object.NativeFunction{Name: "trimOut", Raw: true, Fn: in.ioOut(false)})
	ioObj.Set("in", &object.NativeFunction{Name: "in", Fn: in.ioIn})
	ioObj.Set("charIn", &object.NativeFunction{Name: "charIn", Fn: in.ioCharIn})

	globals := []struct {
		name string
		val  object.Object
	}{
		{"io", ioObj},
		{"order", &object.NativeFunction{Name: "order", Fn: in.order}},
		{"unwrap", &object.NativeFunction{Name: "unwrap", Raw: true, Fn: in.unwrap}},
		{"eval", &object.NativeFunction{Name: "eval", Fn: in.eval}},
		{"typeOf", &object.NativeFunction{Name: "typeOf", Raw: true, Fn: typeOf}},
		{"String", getStringClass()},
		{"Number", getNumberClass()},
		{"Array", getArrayClass()},
		{"Error", getErrorClass()},
	}
	for _, g := range globals {
		defineConst(in.Global, g.name, g.val)
	}
}

// ioOut prints its arguments. With newline set, null arguments are skipped
// and a newline follows.
func (in *Interpreter) ioOut(newline bool) object.HostFunc {
	return func(args ...any) (any, error) {
		var sb strings.Builder
		for _, a := range args {
			obj := a.(object.Object)
			if newline && obj == object.NULL {
				continue
			}
			sb.WriteString(object.Display(obj))
		}
		if newline {
			sb.WriteByte('\n')
		}
		if _, err := io.WriteString(in.out, sb.String()); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		return nil, nil
	}
}

func (in *Interpreter) ioIn(args ...any) (any, error) {
	line, err := in.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (in *Interpreter) ioCharIn(args ...any) (any, error) {
	r, _, err := in.in.ReadRune()
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return string(r), nil
}

// unwrap declares every key of each object argument in the caller's scope.
func (in *Interpreter) unwrap(args ...any) (any, error) {
	scope := in.caller().scope
	for _, a := range args {
		h, ok := a.(*object.Hash)
		if !ok {
			continue
		}
		for _, e := range h.Entries {
			scope.Define(e.Key, e.Var.Get(scope))
		}
	}
	return nil, nil
}

// eval evaluates source in a child of the caller's scope.
func (in *Interpreter) eval(args ...any) (any, error) {
	program, err := in.parse(argString(args, 0))
	if err != nil {
		return nil, err
	}
	caller := in.caller()
	result := unwrapReturnValue(Eval(program, caller.child()))
	if errObj, ok := result.(*object.Error); ok {
		return nil, errObj
	}
	return result, nil
}

func typeOf(args ...any) (any, error) {
	if len(args) == 0 {
		return string(object.TagVoid), nil
	}
	return string(object.TypeOf(args[0].(object.Object))), nil
}

// installPackages registers the bundled native packages.
func (in *Interpreter) installPackages() {
	in.ExposePackage("fs", false, func(in *Interpreter) any { return in.fsPackage() })
	in.ExposePackage("math", false, mathPackage())
	in.ExposePackage("json", false, jsonPackage())
	in.ExposePackage("yaml", false, yamlPackage())
	in.ExposePackage("regex", false, regexPackage())
	in.ExposePackage("text", false, textPackage())
}
