package evaluator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/alexisbouchez/beautygo/object"
)

// jsonPackage works on language values directly so object key order
// survives a round trip.
func jsonPackage() map[string]any {
	return map[string]any{
		"parse": &object.NativeFunction{Name: "parse", Raw: true, Fn: func(args ...any) (any, error) {
			src, ok := rawArg(args, 0).(*object.String)
			if !ok {
				return nil, hostError("json.parse", "expected a string")
			}
			return parseJSON(src.Value)
		}},
		"stringify": &object.NativeFunction{Name: "stringify", Raw: true, Fn: func(args ...any) (any, error) {
			data, err := json.Marshal(jsonValue{rawArg(args, 0)})
			if errors.Is(err, errCircular) {
				return nil, hostError("json.stringify", "%v", errCircular)
			}
			if err != nil {
				return nil, hostError("json.stringify", "%v", err)
			}
			indent := 0.0
			if n, ok := rawArg(args, 1).(*object.Number); ok {
				indent = n.Value
			}
			if indent > 0 {
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", strings.Repeat(" ", int(indent))); err != nil {
					return nil, hostError("json.stringify", "%v", err)
				}
				return buf.String(), nil
			}
			return string(data), nil
		}},
	}
}

func rawArg(args []any, i int) object.Object {
	if i < len(args) {
		if obj, ok := args[i].(object.Object); ok {
			return obj
		}
	}
	return object.NULL
}

// parseJSON decodes src token by token, keeping object keys in order.
func parseJSON(src string) (object.Object, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	val, err := decodeJSON(dec)
	if err != nil {
		return nil, hostError("json.parse", "%v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, hostError("json.parse", "unexpected data after top-level value")
	}
	return val, nil
}

func decodeJSON(dec *json.Decoder) (object.Object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return object.NULL, nil
	case bool:
		return object.NativeToBool(t), nil
	case string:
		return &object.String{Value: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return &object.Number{Value: f}, nil
	case json.Delim:
		switch t {
		case '[':
			arr := &object.Array{}
			for dec.More() {
				el, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.Elements = append(arr.Elements, el)
			}
			_, err := dec.Token()
			return arr, err
		case '{':
			hash := object.NewHash()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				hash.Attach(key, assigned(key, val))
			}
			_, err := dec.Token()
			return hash, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// jsonValue marshals a language value. Objects keep their entry order and
// the first of duplicated keys.
type jsonValue struct {
	obj object.Object
}

func (v jsonValue) MarshalJSON() ([]byte, error) {
	return marshalJSON(v.obj, visiting{})
}

func marshalJSON(obj object.Object, seen visiting) ([]byte, error) {
	switch o := obj.(type) {
	case nil, *object.Null:
		return []byte("null"), nil
	case *object.Boolean:
		return json.Marshal(o.Value)
	case *object.String:
		return json.Marshal(o.Value)
	case *object.Number:
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return []byte("null"), nil
		}
		return []byte(object.FormatNumber(o.Value)), nil
	case *object.Array:
		return marshalJSONArray(o, seen)
	case *object.Range:
		return marshalJSONArray(o.Elements, seen)
	case *object.Hash:
		return marshalJSONObject(o, seen)
	case *object.ClassInstance:
		return marshalJSONObject(o.Members, seen)
	case *object.NativeInstance:
		if host, ok := o.Host.(object.Object); ok {
			return marshalJSON(host, seen)
		}
		return marshalJSONObject(o.Members, seen)
	}
	return []byte("null"), nil
}

func marshalJSONArray(arr *object.Array, seen visiting) ([]byte, error) {
	if err := seen.enter(arr); err != nil {
		return nil, err
	}
	defer seen.leave(arr)

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, el := range arr.Elements {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := marshalJSON(el, seen)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalJSONObject(h *object.Hash, seen visiting) ([]byte, error) {
	if err := seen.enter(h); err != nil {
		return nil, err
	}
	defer seen.leave(h)

	var buf bytes.Buffer
	keys := make(map[string]bool, len(h.Entries))
	written := 0
	buf.WriteByte('{')
	for _, e := range h.Entries {
		if keys[e.Key] {
			continue
		}
		keys[e.Key] = true
		val := e.Var.Get(nil)
		if !jsonEncodable(val) {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		written++
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		data, err := marshalJSON(val, seen)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonEncodable reports whether a member takes part in serialization.
// Functions and classes are skipped.
func jsonEncodable(obj object.Object) bool {
	switch obj.(type) {
	case *object.Function, *object.NativeFunction, *object.Class, *object.NativeClass, *object.Error:
		return false
	}
	return true
}
