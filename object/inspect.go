package object

const circular = "[Circular]"

// path holds the containers between the root of a rendering and the value
// being rendered. A container met again on its own path is a cycle.
type path map[Object]bool

func (p path) enter(container Object) bool {
	if p[container] {
		return false
	}
	p[container] = true
	return true
}

func (p path) leave(container Object) { delete(p, container) }

// inspectIn renders obj, replacing a reference back to an enclosing
// container with [Circular].
func inspectIn(obj Object, p path) string {
	switch o := obj.(type) {
	case nil:
		return "null"
	case *Array:
		return o.inspect(p)
	case *Hash:
		return o.inspect(p)
	case *ClassInstance:
		return o.Class.Name + " " + o.Members.inspect(p)
	case *NativeInstance:
		if host, ok := o.Host.(Object); ok {
			return inspectIn(host, p)
		}
		return o.Class.Name + " " + o.Members.inspect(p)
	}
	return obj.Inspect()
}
