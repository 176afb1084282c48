package object

// Initializer produces a binding's value on demand. Eval receives the scope
// of the reader, used as the fallback for name resolution. Call marks
// initializers that invoke a callable; their result is memoized.
type Initializer struct {
	Eval func(reader *Scope) Object
	Call bool
}

// Variable is a named, typed storage location for one value.
type Variable struct {
	Name     string
	Tag      TypeTag
	Override bool // skip the type check on the first write

	value     Object
	init      *Initializer
	cache     Object
	assigned  bool
	resolving bool
}

// NewVariable creates an unassigned binding.
func NewVariable(name string, tag TypeTag) *Variable {
	if tag == "" {
		tag = TagAny
	}
	return &Variable{Name: name, Tag: tag}
}

// Assigned reports whether the variable holds a value.
func (v *Variable) Assigned() bool { return v.assigned }

// Deferred reports whether the variable holds an unevaluated initializer.
func (v *Variable) Deferred() bool { return v.init != nil }

// Get returns the current value. Deferred call initializers run at most
// once; other deferred initializers run on every read. The result is an
// *Error when evaluation fails.
func (v *Variable) Get(reader *Scope) Object {
	if v.init == nil {
		if v.value == nil {
			return NULL
		}
		return v.value
	}
	if v.init.Call && v.cache != nil {
		return v.cache
	}
	if v.resolving {
		return NewError(RuntimeError, "circular reference while resolving '%s'", v.Name)
	}

	v.resolving = true
	val := v.init.Eval(reader)
	v.resolving = false

	if val == nil {
		val = NULL
	}
	if _, isErr := val.(*Error); isErr {
		return val
	}
	if v.init.Call {
		v.cache = val
	}
	return val
}

func (v *Variable) checkWrite(val Object) *Error {
	if v.Tag == TagConst && v.assigned {
		return NewError(ConstViolation, "cannot reassign const '%s'", v.Name)
	}
	if v.Override && !v.assigned {
		return nil
	}
	if !Accepts(v.Tag, val) {
		return NewError(TypeMismatch, "cannot assign %s to '%s' of type %s", TypeOf(val), v.Name, v.Tag)
	}
	return nil
}

// Set stores an evaluated value.
func (v *Variable) Set(val Object) *Error {
	if val == nil {
		val = NULL
	}
	if err := v.checkWrite(val); err != nil {
		return err
	}
	v.value = val
	v.init = nil
	v.cache = nil
	v.assigned = true
	return nil
}

// SetDeferred stores an initializer to be evaluated on read. The
// initializer also runs once up front so that failures surface at bind
// time; typed bindings type-check that value and a call result is kept as
// the memoized value.
func (v *Variable) SetDeferred(init *Initializer, reader *Scope) *Error {
	if v.Tag == TagConst && v.assigned {
		return NewError(ConstViolation, "cannot reassign const '%s'", v.Name)
	}

	val := init.Eval(reader)
	if val == nil {
		val = NULL
	}
	if err, isErr := val.(*Error); isErr {
		return err
	}
	if v.Tag != TagAny && v.Tag != TagConst && !(v.Override && !v.assigned) && !Accepts(v.Tag, val) {
		return NewError(TypeMismatch, "cannot assign %s to '%s' of type %s", TypeOf(val), v.Name, v.Tag)
	}
	var cache Object
	if init.Call {
		cache = val
	}

	v.value = nil
	v.init = init
	v.cache = cache
	v.assigned = true
	return nil
}
