package evaluator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/alexisbouchez/beautygo/object"
)

const hostFuncName = "native"

// FromNative converts a host value into a language value. ctx is the
// instance a NativeMethod is bound to; it may be nil otherwise.
func FromNative(v any, ctx object.Object) object.Object {
	switch val := v.(type) {
	case nil:
		return object.NULL
	case object.Object:
		return val
	case bool:
		return object.NativeToBool(val)
	case string:
		return &object.String{Value: val}
	case float64:
		return &object.Number{Value: val}
	case float32:
		return &object.Number{Value: float64(val)}
	case int:
		return &object.Number{Value: float64(val)}
	case int8:
		return &object.Number{Value: float64(val)}
	case int16:
		return &object.Number{Value: float64(val)}
	case int32:
		return &object.Number{Value: float64(val)}
	case int64:
		return &object.Number{Value: float64(val)}
	case uint:
		return &object.Number{Value: float64(val)}
	case uint8:
		return &object.Number{Value: float64(val)}
	case uint16:
		return &object.Number{Value: float64(val)}
	case uint32:
		return &object.Number{Value: float64(val)}
	case uint64:
		return &object.Number{Value: float64(val)}
	case []any:
		elements := make([]object.Object, len(val))
		for i, el := range val {
			elements[i] = FromNative(el, nil)
		}
		return &object.Array{Elements: elements}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		hash := object.NewHash()
		for _, k := range keys {
			member := FromNative(val[k], nil)
			if nf, ok := member.(*object.NativeFunction); ok && nf.Name == hostFuncName {
				nf.Name = k
			}
			hash.Attach(k, assigned(k, member))
		}
		return hash
	case error:
		hash := object.NewHash()
		hash.Set("message", &object.String{Value: val.Error()})
		return hash
	case object.HostFunc:
		return &object.NativeFunction{Name: hostFuncName, Fn: val}
	case func(args ...any) (any, error):
		return &object.NativeFunction{Name: hostFuncName, Fn: val}
	case object.NativeMethod:
		inst, ok := ctx.(*object.NativeInstance)
		if !ok {
			return newError(object.NativeError, "native method has no instance to bind")
		}
		return &object.NativeFunction{
			Name: "method",
			Raw:  inst.Class.Raw,
			Fn:   func(args ...any) (any, error) { return val(inst, args...) },
		}
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) object.Object {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elements := make([]object.Object, rv.Len())
		for i := range elements {
			elements[i] = FromNative(rv.Index(i).Interface(), nil)
		}
		return &object.Array{Elements: elements}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		hash := object.NewHash()
		for _, k := range keys {
			hash.Attach(k.String(), assigned(k.String(), FromNative(rv.MapIndex(k).Interface(), nil)))
		}
		return hash
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return object.NULL
		}
		return FromNative(rv.Elem().Interface(), nil)
	}
	return &object.String{Value: fmt.Sprint(rv.Interface())}
}

var errCircular = errors.New("circular structure")

// visiting holds the containers on the path of a recursive conversion.
type visiting map[object.Object]bool

func (v visiting) enter(container object.Object) error {
	if v[container] {
		return errCircular
	}
	v[container] = true
	return nil
}

func (v visiting) leave(container object.Object) { delete(v, container) }

// ToNative converts a language value into a host value. Callables become
// HostFuncs that re-enter evaluation through env. A value that contains
// itself cannot be converted.
func ToNative(obj object.Object, env *Env) (any, error) {
	return toNative(obj, env, visiting{})
}

func toNative(obj object.Object, env *Env, seen visiting) (any, error) {
	switch o := obj.(type) {
	case nil, *object.Null:
		return nil, nil
	case *object.Number:
		return o.Value, nil
	case *object.String:
		return o.Value, nil
	case *object.Boolean:
		return o.Value, nil
	case *object.Array:
		return toNativeSlice(o, env, seen)
	case *object.Range:
		return toNativeSlice(o.Elements, env, seen)
	case *object.Hash:
		return toNativeMap(o, env, seen)
	case *object.ClassInstance:
		return toNativeMap(o.Members, env, seen)
	case *object.NativeInstance:
		if host, ok := o.Host.(object.Object); ok {
			return toNative(host, env, seen)
		}
		if o.Host != nil {
			return o.Host, nil
		}
		return toNativeMap(o.Members, env, seen)
	case *object.NativeFunction:
		if !o.Raw {
			return o.Fn, nil
		}
		return callback(o, env), nil
	case *object.Function, *object.Class, *object.NativeClass:
		return callback(o, env), nil
	case *object.Error:
		return o, nil
	}
	return obj.Inspect(), nil
}

func toNativeSlice(arr *object.Array, env *Env, seen visiting) ([]any, error) {
	if err := seen.enter(arr); err != nil {
		return nil, err
	}
	defer seen.leave(arr)

	out := make([]any, len(arr.Elements))
	for i, el := range arr.Elements {
		v, err := toNative(el, env, seen)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// toNativeMap keeps the first entry of duplicated keys.
func toNativeMap(h *object.Hash, env *Env, seen visiting) (map[string]any, error) {
	if err := seen.enter(h); err != nil {
		return nil, err
	}
	defer seen.leave(h)

	out := make(map[string]any, len(h.Entries))
	for _, e := range h.Entries {
		if _, dup := out[e.Key]; dup {
			continue
		}
		v, err := toNative(e.Var.Get(nil), env, seen)
		if err != nil {
			return nil, err
		}
		out[e.Key] = v
	}
	return out, nil
}

func callback(fn object.Object, env *Env) object.HostFunc {
	return func(args ...any) (any, error) {
		langArgs := make([]object.Object, len(args))
		for i, a := range args {
			langArgs[i] = FromNative(a, nil)
		}
		res := applyFunction(fn, langArgs, env)
		if errObj, ok := res.(*object.Error); ok {
			return nil, errObj
		}
		return ToNative(res, env)
	}
}

// hostError reports a bad argument to a native function.
func hostError(name string, format string, a ...any) error {
	return errors.New(name + ": " + fmt.Sprintf(format, a...))
}
