package ast

import "strings"

// Type is a static type annotation attached to an expression: either a value
// type or, for identifiers naming functions and for bound methods, a FuncType.
type Type interface {
	String() string
	typeNode()
}

// ValueType is the type of a first-class value.
type ValueType interface {
	Type
	valueType()
}

// ClassValueType is the type of instances of a named class, including the
// predefined int, bool, str and object, and the special <None> and <Empty>.
type ClassValueType struct {
	Name string
}

func (t *ClassValueType) String() string { return t.Name }
func (t *ClassValueType) typeNode()      {}
func (t *ClassValueType) valueType()     {}

// ListValueType is the type [Elem].
type ListValueType struct {
	Elem ValueType
}

func (t *ListValueType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ListValueType) typeNode()      {}
func (t *ListValueType) valueType()     {}

// FuncType is the type of a function or bound method.
type FuncType struct {
	Params []ValueType
	Return ValueType
}

func (t *FuncType) String() string {
	params := make([]string, 0, len(t.Params))
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	ret := "<None>"
	if t.Return != nil {
		ret = t.Return.String()
	}
	return "[" + strings.Join(params, ", ") + "] -> " + ret
}

func (t *FuncType) typeNode() {}

// Predefined types.
var (
	IntType    = &ClassValueType{Name: "int"}
	BoolType   = &ClassValueType{Name: "bool"}
	StrType    = &ClassValueType{Name: "str"}
	ObjectType = &ClassValueType{Name: "object"}
	NoneType   = &ClassValueType{Name: "<None>"}
	EmptyType  = &ClassValueType{Name: "<Empty>"}
)

// ClassName returns the class name of t, or "" if t is not a class type.
func ClassName(t Type) string {
	if c, ok := t.(*ClassValueType); ok {
		return c.Name
	}
	return ""
}

func IsInt(t Type) bool    { return ClassName(t) == "int" }
func IsBool(t Type) bool   { return ClassName(t) == "bool" }
func IsStr(t Type) bool    { return ClassName(t) == "str" }
func IsObject(t Type) bool { return ClassName(t) == "object" }

// IsUnboxed reports whether values of t are held as raw words.
func IsUnboxed(t Type) bool { return IsInt(t) || IsBool(t) }

// IsList reports whether t is a list type.
func IsList(t Type) bool {
	_, ok := t.(*ListValueType)
	return ok
}

// IsFunc reports whether t is a function type.
func IsFunc(t Type) bool {
	_, ok := t.(*FuncType)
	return ok
}

// NeedsBox reports whether a value of static type from must be boxed when it
// flows into a location of static type to.
func NeedsBox(from, to Type) bool {
	return IsUnboxed(from) && IsObject(to)
}

// Equal compares two types structurally.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
