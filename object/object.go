// Package object defines the Beauty value model.
package object

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexisbouchez/beautygo/ast"
)

// Type represents the type of an object.
type Type string

const (
	NULL_OBJ            Type = "NULL"
	NUMBER_OBJ          Type = "NUMBER"
	STRING_OBJ          Type = "STRING"
	BOOLEAN_OBJ         Type = "BOOLEAN"
	ARRAY_OBJ           Type = "ARRAY"
	HASH_OBJ            Type = "OBJECT"
	RANGE_OBJ           Type = "RANGE"
	FUNCTION_OBJ        Type = "FUNCTION"
	NATIVE_FUNCTION_OBJ Type = "NATIVE_FUNCTION"
	CLASS_OBJ           Type = "CLASS"
	INSTANCE_OBJ        Type = "INSTANCE"
	NATIVE_CLASS_OBJ    Type = "NATIVE_CLASS"
	NATIVE_INSTANCE_OBJ Type = "NATIVE_INSTANCE"
	RETURN_VALUE_OBJ    Type = "RETURN_VALUE"
	ERROR_OBJ           Type = "ERROR"
)

// Object is the base interface for all Beauty values.
type Object interface {
	Type() Type
	Inspect() string
	IsTruthy() bool
}

// Readable is implemented by values that expose members or indices.
type Readable interface {
	Object
	Member(key Object) (Object, bool)
}

// Writable is implemented by values whose members can be assigned in place.
type Writable interface {
	Object
	SetMember(key Object, val Object) Object
}

// Callable is implemented by values that can be invoked.
type Callable interface {
	Object
	CallName() string
}

// Null is the distinguished absent value.
type Null struct{}

func (n *Null) Type() Type      { return NULL_OBJ }
func (n *Null) Inspect() string { return "null" }
func (n *Null) IsTruthy() bool  { return false }

// Number represents a Beauty number (float64).
type Number struct {
	Value float64
}

func (n *Number) Type() Type      { return NUMBER_OBJ }
func (n *Number) Inspect() string { return FormatNumber(n.Value) }
func (n *Number) IsTruthy() bool  { return n.Value != 0 && !math.IsNaN(n.Value) }

// FormatNumber renders integral values without a fraction.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-7 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String represents a Beauty string.
type String struct {
	Value string
}

func (s *String) Type() Type      { return STRING_OBJ }
func (s *String) Inspect() string { return strconv.Quote(s.Value) }
func (s *String) IsTruthy() bool  { return s.Value != "" }

// Boolean represents true or false.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() Type      { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }
func (b *Boolean) IsTruthy() bool  { return b.Value }

// Array represents an ordered list of values.
type Array struct {
	Elements []Object
}

func (a *Array) Type() Type      { return ARRAY_OBJ }
func (a *Array) Inspect() string { return a.inspect(path{}) }

func (a *Array) inspect(p path) string {
	if !p.enter(a) {
		return circular
	}
	defer p.leave(a)
	elements := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		elements[i] = inspectIn(el, p)
	}
	return "[" + strings.Join(elements, ", ") + "]"
}
func (a *Array) IsTruthy() bool { return true }

// Member returns the element at a numeric index.
func (a *Array) Member(key Object) (Object, bool) {
	idx, ok := arrayIndex(key)
	if !ok || idx >= len(a.Elements) {
		return NULL, false
	}
	return a.Elements[idx], true
}

// SetMember stores val at a numeric index, padding with null past the end.
func (a *Array) SetMember(key Object, val Object) Object {
	idx, ok := arrayIndex(key)
	if !ok {
		return NewError(RuntimeError, "invalid array index %s", key.Inspect())
	}
	for len(a.Elements) <= idx {
		a.Elements = append(a.Elements, NULL)
	}
	a.Elements[idx] = val
	return nil
}

// arrayIndex accepts a non-negative integral number or a string spelling
// one, so arr["1"] and arr[1] name the same element.
func arrayIndex(key Object) (int, bool) {
	switch k := key.(type) {
	case *Number:
		if k.Value < 0 || k.Value != math.Trunc(k.Value) {
			return 0, false
		}
		return int(k.Value), true
	case *String:
		i, err := strconv.Atoi(k.Value)
		if err != nil || i < 0 {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Entry is one member of a Hash. Keys are not required to be unique.
type Entry struct {
	Key string
	Var *Variable
}

// Hash is the language's Object: an ordered member table. Lookup is linear
// and the first matching key wins.
type Hash struct {
	Entries []*Entry
}

// NewHash creates an empty member table.
func NewHash() *Hash {
	return &Hash{}
}

func (h *Hash) Type() Type      { return HASH_OBJ }
func (h *Hash) Inspect() string { return h.inspect(path{}) }

func (h *Hash) inspect(p path) string {
	if !p.enter(h) {
		return circular
	}
	defer p.leave(h)
	var out bytes.Buffer
	pairs := make([]string, 0, len(h.Entries))
	for _, e := range h.Entries {
		pairs = append(pairs, fmt.Sprintf("%s: %s", e.Key, inspectIn(e.Var.Get(nil), p)))
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}
func (h *Hash) IsTruthy() bool { return true }

// Lookup returns the variable behind the first entry named key.
func (h *Hash) Lookup(key string) (*Variable, bool) {
	for _, e := range h.Entries {
		if e.Key == key {
			return e.Var, true
		}
	}
	return nil, false
}

// Get returns the value of the first entry named key, or NULL.
func (h *Hash) Get(key string) Object {
	if v, ok := h.Lookup(key); ok {
		return v.Get(nil)
	}
	return NULL
}

// Set mutates the first entry named key or appends a new one. It returns a
// non-nil *Error when the existing binding rejects the value.
func (h *Hash) Set(key string, val Object) *Error {
	if v, ok := h.Lookup(key); ok {
		return v.Set(val)
	}
	v := NewVariable(key, TagAny)
	v.Set(val)
	h.Entries = append(h.Entries, &Entry{Key: key, Var: v})
	return nil
}

// Attach appends an entry that shares an existing variable.
func (h *Hash) Attach(key string, v *Variable) {
	h.Entries = append(h.Entries, &Entry{Key: key, Var: v})
}

// Keys returns the entry keys in order.
func (h *Hash) Keys() []string {
	keys := make([]string, len(h.Entries))
	for i, e := range h.Entries {
		keys[i] = e.Key
	}
	return keys
}

func (h *Hash) Member(key Object) (Object, bool) {
	if v, ok := h.Lookup(KeyString(key)); ok {
		return v.Get(nil), true
	}
	return NULL, false
}

func (h *Hash) SetMember(key Object, val Object) Object {
	if err := h.Set(KeyString(key), val); err != nil {
		return err
	}
	return nil
}

// KeyString converts a member key to its lookup string.
func KeyString(key Object) string {
	if s, ok := key.(*String); ok {
		return s.Value
	}
	return key.Inspect()
}

// Range is start..end (inclusive) or start...end, materialized eagerly.
type Range struct {
	Start     float64
	End       float64
	Inclusive bool
	Elements  *Array
}

// NewRange materializes start, start+1, ... while below end, or below end+1
// when inclusive. A range whose end precedes its start is empty.
func NewRange(start, end float64, inclusive bool) *Range {
	r := &Range{Start: start, End: end, Inclusive: inclusive, Elements: &Array{}}
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return r
	}
	limit := end
	if inclusive {
		limit = end + 1
	}
	for v := start; v < limit; v++ {
		r.Elements.Elements = append(r.Elements.Elements, &Number{Value: v})
	}
	return r
}

func (r *Range) Type() Type { return RANGE_OBJ }
func (r *Range) Inspect() string {
	op := "..."
	if r.Inclusive {
		op = ".."
	}
	return FormatNumber(r.Start) + op + FormatNumber(r.End)
}
func (r *Range) IsTruthy() bool { return true }

func (r *Range) Member(key Object) (Object, bool) { return r.Elements.Member(key) }
func (r *Range) SetMember(key Object, val Object) Object {
	return r.Elements.SetMember(key, val)
}

// Function is a user-defined function. Functions do not close over their
// defining scope; Origin is only the fallback for name resolution.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockBody
	Origin     *Scope
	Receiver   Object // bound instance for methods, nil otherwise
}

func (f *Function) Type() Type { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Value
	}
	return fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(params, ", "))
}
func (f *Function) IsTruthy() bool   { return true }
func (f *Function) CallName() string { return f.Name }

// Bind returns a copy of f whose this is bound to recv.
func (f *Function) Bind(recv Object) *Function {
	bound := *f
	bound.Receiver = recv
	return &bound
}

// HostFunc is a host callable exposed to the language.
type HostFunc func(args ...any) (any, error)

// NativeFunction wraps a host callable. When Raw is set the arguments are
// passed as language values instead of being converted to host values.
type NativeFunction struct {
	Name string
	Fn   HostFunc
	Raw  bool
}

func (nf *NativeFunction) Type() Type       { return NATIVE_FUNCTION_OBJ }
func (nf *NativeFunction) Inspect() string  { return "fn " + nf.Name + "() [native]" }
func (nf *NativeFunction) IsTruthy() bool   { return true }
func (nf *NativeFunction) CallName() string { return nf.Name }

// Class is a user-defined class. Its body is re-evaluated per instance.
type Class struct {
	Name   string
	Body   *ast.BlockBody
	Origin *Scope
}

func (c *Class) Type() Type       { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class " + c.Name }
func (c *Class) IsTruthy() bool   { return true }
func (c *Class) CallName() string { return c.Name }

// ClassInstance is the flattened member table of an instantiated class.
type ClassInstance struct {
	Class   *Class
	Members *Hash
}

func (ci *ClassInstance) Type() Type      { return INSTANCE_OBJ }
func (ci *ClassInstance) Inspect() string { return inspectIn(ci, path{}) }
func (ci *ClassInstance) IsTruthy() bool  { return true }

func (ci *ClassInstance) Member(key Object) (Object, bool) { return ci.Members.Member(key) }
func (ci *ClassInstance) SetMember(key Object, val Object) Object {
	return ci.Members.SetMember(key, val)
}

// NativeMethod is a host method operating on a native instance.
type NativeMethod func(self *NativeInstance, args ...any) (any, error)

// NativeClass wraps a host constructor and a shared method table.
type NativeClass struct {
	Name    string
	Init    NativeMethod
	Methods map[string]NativeMethod
	Order   []string // method names in declaration order
	Raw     bool
}

func (nc *NativeClass) Type() Type       { return NATIVE_CLASS_OBJ }
func (nc *NativeClass) Inspect() string  { return "class " + nc.Name + " [native]" }
func (nc *NativeClass) IsTruthy() bool   { return true }
func (nc *NativeClass) CallName() string { return nc.Name }

// Instantiate creates an instance with every method bound to it as a
// member, then runs Init with args.
func (nc *NativeClass) Instantiate(args ...any) (*NativeInstance, error) {
	inst := &NativeInstance{Class: nc, Members: NewHash()}
	for _, name := range nc.Order {
		m, _ := nc.BindMethod(inst, name)
		inst.Members.Set(name, m)
	}
	if nc.Init != nil {
		if _, err := nc.Init(inst, args...); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// BindMethod returns the named method bound to inst.
func (nc *NativeClass) BindMethod(inst *NativeInstance, name string) (*NativeFunction, bool) {
	method, ok := nc.Methods[name]
	if !ok {
		return nil, false
	}
	return &NativeFunction{
		Name: name,
		Raw:  nc.Raw,
		Fn: func(args ...any) (any, error) {
			return method(inst, args...)
		},
	}, true
}

// NativeInstance is an instance of a NativeClass. Host holds the wrapped
// host value, if any.
type NativeInstance struct {
	Class   *NativeClass
	Host    any
	Members *Hash
}

func (ni *NativeInstance) Type() Type      { return NATIVE_INSTANCE_OBJ }
func (ni *NativeInstance) Inspect() string { return inspectIn(ni, path{}) }
func (ni *NativeInstance) IsTruthy() bool  { return true }

// CompatibleWith defers to the wrapped host value.
func (ni *NativeInstance) CompatibleWith(tag TypeTag) bool {
	switch host := ni.Host.(type) {
	case Compatible:
		return host.CompatibleWith(tag)
	case Object:
		return Accepts(tag, host)
	}
	return false
}

func (ni *NativeInstance) Member(key Object) (Object, bool) { return ni.Members.Member(key) }
func (ni *NativeInstance) SetMember(key Object, val Object) Object {
	return ni.Members.SetMember(key, val)
}

// ReturnValue wraps a return value while it unwinds to the call boundary.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() Type      { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }
func (rv *ReturnValue) IsTruthy() bool  { return rv.Value.IsTruthy() }

// Singleton values
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// NativeToBool converts a Go bool to a Beauty Boolean.
func NativeToBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Display renders a value the way io.out prints it: strings unquoted,
// everything else as Inspect.
func Display(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	if obj == nil {
		return "null"
	}
	return obj.Inspect()
}

// StrictEqual compares primitives by value and everything else by identity.
func StrictEqual(a, b Object) bool {
	switch left := a.(type) {
	case *Number:
		right, ok := b.(*Number)
		return ok && left.Value == right.Value
	case *String:
		right, ok := b.(*String)
		return ok && left.Value == right.Value
	case *Boolean:
		right, ok := b.(*Boolean)
		return ok && left.Value == right.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	}
	return a == b
}
