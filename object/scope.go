package object

// Scope holds variable bindings and links to its parent.
type Scope struct {
	vars   map[string]*Variable
	names  []string
	parent *Scope
}

// NewScope creates a scope. A nil parent creates a root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*Variable), parent: parent}
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Lookup walks from s to the root and returns the nearest binding.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLocal returns a binding of s itself, ignoring ancestors.
func (s *Scope) LookupLocal(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Declare binds v in s, overwriting any binding of the same name in s.
func (s *Scope) Declare(v *Variable) *Variable {
	if _, exists := s.vars[v.Name]; !exists {
		s.names = append(s.names, v.Name)
	}
	s.vars[v.Name] = v
	return v
}

// Define declares name as an any-typed binding holding val.
func (s *Scope) Define(name string, val Object) *Variable {
	v := NewVariable(name, TagAny)
	v.Set(val)
	return s.Declare(v)
}

// Delete removes name from s. Bindings of ancestors stay visible.
func (s *Scope) Delete(name string) bool {
	if _, ok := s.vars[name]; !ok {
		return false
	}
	delete(s.vars, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Locals returns the bindings of s in declaration order.
func (s *Scope) Locals() []*Variable {
	locals := make([]*Variable, 0, len(s.names))
	for _, n := range s.names {
		locals = append(locals, s.vars[n])
	}
	return locals
}
