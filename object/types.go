package object

// TypeTag is the nominal type label used for compatibility checks.
type TypeTag string

const (
	TagAny    TypeTag = "any"
	TagConst  TypeTag = "const"
	TagBool   TypeTag = "bool"
	TagString TypeTag = "string"
	TagNumber TypeTag = "number"
	TagVoid   TypeTag = "void"
	TagArray  TypeTag = "array"
	TagObject TypeTag = "object"
)

var builtinTags = map[TypeTag]bool{
	TagAny:    true,
	TagConst:  true,
	TagBool:   true,
	TagString: true,
	TagNumber: true,
	TagVoid:   true,
	TagArray:  true,
	TagObject: true,
}

// IsBuiltinTag reports whether tag is one of the non-class type tags.
func IsBuiltinTag(tag TypeTag) bool {
	return builtinTags[tag]
}

// Compatible is implemented by values that accept class tags other than
// their own.
type Compatible interface {
	CompatibleWith(tag TypeTag) bool
}

// TypeOf returns the type tag of a value.
func TypeOf(obj Object) TypeTag {
	switch o := obj.(type) {
	case nil, *Null:
		return TagVoid
	case *Number:
		return TagNumber
	case *String:
		return TagString
	case *Boolean:
		return TagBool
	case *Array, *Range:
		return TagArray
	case *Hash:
		return TagObject
	case *Class:
		return TypeTag(o.Name)
	case *ClassInstance:
		return TypeTag(o.Class.Name)
	case *NativeClass:
		return TypeTag(o.Name)
	case *NativeInstance:
		return TypeTag(o.Class.Name)
	}
	return TagAny
}

// CompareTypes reports whether a value tagged actual may be stored in a
// binding declared as declared. const is write-once, not a type, so it is
// compatible with everything.
func CompareTypes(declared, actual TypeTag) bool {
	switch {
	case declared == TagAny || declared == TagConst:
		return true
	case actual == TagAny || actual == TagConst:
		return true
	}
	return declared == actual
}

// Accepts applies CompareTypes to a value, letting it declare itself
// compatible with a class tag.
func Accepts(declared TypeTag, val Object) bool {
	if CompareTypes(declared, TypeOf(val)) {
		return true
	}
	if IsBuiltinTag(declared) {
		return false
	}
	if c, ok := val.(Compatible); ok {
		return c.CompatibleWith(declared)
	}
	return false
}
