package ast

type decl struct {
	Location Location
}

func (d *decl) Pos() Location { return d.Location }
func (d *decl) declNode()     {}

// TypeAnnotation is a type as written in the source.
type TypeAnnotation interface {
	Node
	annotation()
	// ValueType converts the annotation to the value type it denotes.
	ValueType() ValueType
}

// ClassType is an annotation naming a class.
type ClassType struct {
	Location  Location
	ClassName string
}

func (t *ClassType) Pos() Location { return t.Location }
func (t *ClassType) annotation()   {}

func (t *ClassType) ValueType() ValueType {
	switch t.ClassName {
	case "int":
		return IntType
	case "bool":
		return BoolType
	case "str":
		return StrType
	case "object":
		return ObjectType
	case "<None>":
		return NoneType
	}
	return &ClassValueType{Name: t.ClassName}
}

// ListType is an annotation of the form [Elem].
type ListType struct {
	Location Location
	Elem     TypeAnnotation
}

func (t *ListType) Pos() Location { return t.Location }
func (t *ListType) annotation()   {}

func (t *ListType) ValueType() ValueType {
	return &ListValueType{Elem: t.Elem.ValueType()}
}

// TypedVar is a name with its declared type.
type TypedVar struct {
	Location   Location
	Identifier *Identifier
	Type       TypeAnnotation
}

func (v *TypedVar) Pos() Location { return v.Location }

// VarDef declares a variable or attribute with a literal initial value.
type VarDef struct {
	decl
	Var   *TypedVar
	Value Literal
}

// FuncDef declares a function or method.
type FuncDef struct {
	decl
	Name         *Identifier
	Params       []*TypedVar
	ReturnType   TypeAnnotation
	Declarations []Decl
	Statements   []Stmt
}

// ClassDef declares a class.
type ClassDef struct {
	decl
	Name         *Identifier
	SuperClass   *Identifier
	Declarations []Decl
}

// GlobalDecl binds a name in a function to the global variable of that name.
type GlobalDecl struct {
	decl
	Variable *Identifier
}

// NonLocalDecl binds a name in a nested function to the variable of an
// enclosing function.
type NonLocalDecl struct {
	decl
	Variable *Identifier
}
