package evaluator

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alexisbouchez/beautygo/object"
)

// Lazy initialization for wrapper classes to avoid initialization cycles
var (
	stringClassOnce sync.Once
	numberClassOnce sync.Once
	arrayClassOnce  sync.Once
	errorClassOnce  sync.Once

	stringClass *object.NativeClass
	numberClass *object.NativeClass
	arrayClass  *object.NativeClass
	errorClass  *object.NativeClass
)

// wrapperMethod looks name up in the wrapper class of obj and binds it.
func wrapperMethod(obj object.Object, name string) (object.Object, bool) {
	var class *object.NativeClass
	switch obj.(type) {
	case *object.String:
		class = getStringClass()
	case *object.Number:
		class = getNumberClass()
	case *object.Array, *object.Range:
		class = getArrayClass()
	default:
		return nil, false
	}
	m, ok := class.BindMethod(&object.NativeInstance{Class: class, Host: obj}, name)
	if !ok {
		return nil, false
	}
	return m, true
}

func newNativeClass(name string, raw bool, init object.NativeMethod, methods map[string]object.NativeMethod, order ...string) *object.NativeClass {
	return &object.NativeClass{Name: name, Raw: raw, Init: init, Methods: methods, Order: order}
}

func hostString(self *object.NativeInstance) string {
	if s, ok := self.Host.(*object.String); ok {
		return s.Value
	}
	return ""
}

func hostNumber(self *object.NativeInstance) float64 {
	if n, ok := self.Host.(*object.Number); ok {
		return n.Value
	}
	return 0
}

func argString(args []any, i int) string {
	if i >= len(args) || args[i] == nil {
		return ""
	}
	if s, ok := args[i].(string); ok {
		return s
	}
	if f, ok := args[i].(float64); ok {
		return object.FormatNumber(f)
	}
	return fmt.Sprint(args[i])
}

func argNumber(args []any, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	if f, ok := args[i].(float64); ok {
		return f
	}
	return def
}

// substr takes length runes of s starting at start. A negative start
// counts from the end; a negative length selects nothing.
func substr(s string, start, length float64, hasLength bool) string {
	runes := []rune(s)
	n := len(runes)
	from := int(start)
	if from < 0 {
		from = max(n+from, 0)
	}
	if from > n {
		from = n
	}
	to := n
	if hasLength {
		if length <= 0 {
			return ""
		}
		to = min(from+int(length), n)
	}
	return string(runes[from:to])
}

// substring takes the runes of s between start and end, end exclusive.
// Bounds are clamped to the string and swapped when reversed.
func substring(s string, start, end float64, hasEnd bool) string {
	runes := []rune(s)
	n := len(runes)
	clamp := func(f float64) int {
		return min(max(int(f), 0), n)
	}
	from, to := clamp(start), n
	if hasEnd {
		to = clamp(end)
	}
	if from > to {
		from, to = to, from
	}
	return string(runes[from:to])
}

func getStringClass() *object.NativeClass {
	stringClassOnce.Do(func() {
		stringClass = newNativeClass("String", false,
			func(self *object.NativeInstance, args ...any) (any, error) {
				self.Host = &object.String{Value: argString(args, 0)}
				return nil, nil
			},
			map[string]object.NativeMethod{
				"substring": func(self *object.NativeInstance, args ...any) (any, error) {
					return substring(hostString(self), argNumber(args, 0, 0), argNumber(args, 1, 0), len(args) > 1), nil
				},
				"length": func(self *object.NativeInstance, args ...any) (any, error) {
					return len([]rune(hostString(self))), nil
				},
				"whereIs?": func(self *object.NativeInstance, args ...any) (any, error) {
					s := hostString(self)
					idx := strings.Index(s, argString(args, 0))
					if idx < 0 {
						return nil, nil
					}
					return len([]rune(s[:idx])), nil
				},
				"toArray": func(self *object.NativeInstance, args ...any) (any, error) {
					parts := strings.Split(hostString(self), argString(args, 0))
					out := make([]any, len(parts))
					for i, p := range parts {
						out[i] = p
					}
					return out, nil
				},
				"upper": func(self *object.NativeInstance, args ...any) (any, error) {
					return cases.Upper(language.Und).String(hostString(self)), nil
				},
				"lower": func(self *object.NativeInstance, args ...any) (any, error) {
					return cases.Lower(language.Und).String(hostString(self)), nil
				},
				"matches?": func(self *object.NativeInstance, args ...any) (any, error) {
					re, err := compileRegex("matches?", argString(args, 0))
					if err != nil {
						return nil, err
					}
					return re.MatchString(hostString(self))
				},
			},
			"substring", "length", "whereIs?", "toArray", "upper", "lower", "matches?",
		)
	})
	return stringClass
}

func numberDigits(v float64) []string {
	s := strings.ReplaceAll(object.FormatNumber(v), ".", "")
	return strings.Split(s, "")
}

func getNumberClass() *object.NativeClass {
	numberClassOnce.Do(func() {
		numberClass = newNativeClass("Number", false,
			func(self *object.NativeInstance, args ...any) (any, error) {
				var arg object.Object = object.NULL
				if len(args) > 0 {
					arg = FromNative(args[0], nil)
				}
				self.Host = &object.Number{Value: toNumber(arg)}
				return nil, nil
			},
			map[string]object.NativeMethod{
				"subnumber": func(self *object.NativeInstance, args ...any) (any, error) {
					digits := substr(object.FormatNumber(hostNumber(self)), -argNumber(args, 0, 0), argNumber(args, 1, 0), len(args) > 1)
					return toNumber(&object.String{Value: digits}), nil
				},
				"digitLength": func(self *object.NativeInstance, args ...any) (any, error) {
					return len(numberDigits(hostNumber(self))), nil
				},
				"digits": func(self *object.NativeInstance, args ...any) (any, error) {
					return numberDigits(hostNumber(self)), nil
				},
				"format": func(self *object.NativeInstance, args ...any) (any, error) {
					tag, err := localeArg("format", args, 0)
					if err != nil {
						return nil, err
					}
					return formatNumber(tag, hostNumber(self)), nil
				},
			},
			"subnumber", "digitLength", "digits", "format",
		)
	})
	return numberClass
}

func hostArray(self *object.NativeInstance) *object.Array {
	switch h := self.Host.(type) {
	case *object.Array:
		return h
	case *object.Range:
		return h.Elements
	}
	return &object.Array{}
}

func getArrayClass() *object.NativeClass {
	arrayClassOnce.Do(func() {
		arrayClass = newNativeClass("Array", true,
			func(self *object.NativeInstance, args ...any) (any, error) {
				if len(args) > 0 {
					if arr, ok := args[0].(*object.Array); ok {
						self.Host = arr
						return nil, nil
					}
				}
				elements := make([]object.Object, 0, len(args))
				for _, a := range args {
					elements = append(elements, a.(object.Object))
				}
				self.Host = &object.Array{Elements: elements}
				return nil, nil
			},
			map[string]object.NativeMethod{
				"length": func(self *object.NativeInstance, args ...any) (any, error) {
					return len(hostArray(self).Elements), nil
				},
				"has?": func(self *object.NativeInstance, args ...any) (any, error) {
					if len(args) == 0 {
						return false, nil
					}
					needle := args[0].(object.Object)
					for _, el := range hostArray(self).Elements {
						if object.StrictEqual(el, needle) {
							return true, nil
						}
					}
					return false, nil
				},
				"add": func(self *object.NativeInstance, args ...any) (any, error) {
					arr := hostArray(self)
					for _, a := range args {
						arr.Elements = append(arr.Elements, a.(object.Object))
					}
					return arr, nil
				},
			},
			"length", "has?", "add",
		)
	})
	return arrayClass
}

func getErrorClass() *object.NativeClass {
	errorClassOnce.Do(func() {
		errorClass = newNativeClass("Error", false,
			func(self *object.NativeInstance, args ...any) (any, error) {
				var msg any
				if len(args) > 0 {
					msg = args[0]
				}
				if err := self.Members.Set("message", FromNative(msg, nil)); err != nil {
					return nil, err
				}
				return nil, nil
			},
			map[string]object.NativeMethod{},
		)
	})
	return errorClass
}
