package symbols

import (
	"errors"
	"fmt"

	"chocogen/pkg/ast"
	"chocogen/pkg/stack"

	"github.com/charmbracelet/log"
)

// ErrUnresolved reports a declaration that refers to something the analysis
// cannot find. The front end rules these out, so seeing it means the input
// tree is inconsistent.
var ErrUnresolved = errors.New("unresolved declaration")

// Type tags of the predefined classes. User classes are numbered from
// FirstUserTag in declaration order.
const (
	ListTag      = -1
	ObjectTag    = 0
	IntTag       = 1
	BoolTag      = 2
	StrTag       = 3
	FirstUserTag = 4
)

// Analysis is the complete descriptor set for one program.
type Analysis struct {
	Globals *Table

	// Classes lists the predefined classes followed by user classes in
	// declaration order.
	Classes []*ClassInfo
	// Functions lists every user function and method, nested functions
	// included, in depth-first declaration order.
	Functions  []*FuncInfo
	GlobalVars []*GlobalVarInfo
	Statements []ast.Stmt

	Object, Int, Bool, Str, List *ClassInfo
	Print, Len, ObjectInit       *FuncInfo
}

// pending is a function whose body scope still has to be filled.
type pending struct {
	def  *ast.FuncDef
	info *FuncInfo
}

// Analyze builds the descriptors for p.
func Analyze(p *ast.Program) (*Analysis, error) {
	a := &Analysis{Globals: NewTable(nil), Statements: p.Statements}
	a.predefine()

	work := stack.NewStack[pending]()
	tag := FirstUserTag

	for _, d := range p.Declarations {
		switch d := d.(type) {
		case *ast.VarDef:
			name := d.Var.Identifier.Name
			g := &GlobalVarInfo{
				Name:  name,
				Type:  d.Var.Type.ValueType(),
				Init:  d.Value,
				Label: "$" + name,
			}
			a.GlobalVars = append(a.GlobalVars, g)
			a.Globals.Put(name, g)
		case *ast.FuncDef:
			f := a.newFunc(d, nil, "")
			a.Globals.Put(f.BaseName, f)
			work.Push(pending{def: d, info: f})
			if err := a.drain(work); err != nil {
				return nil, err
			}
		case *ast.ClassDef:
			c, err := a.class(d, tag, work)
			if err != nil {
				return nil, err
			}
			tag++
			a.Globals.Put(c.Name, c)
			a.Classes = append(a.Classes, c)
			if err := a.drain(work); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %T at top level", ErrUnresolved, d)
		}
	}

	log.Debug("analysis complete", "classes", len(a.Classes), "functions", len(a.Functions), "globals", len(a.GlobalVars))
	return a, nil
}

// predefine registers object, int, bool, str, list and the builtin functions.
func (a *Analysis) predefine() {
	a.ObjectInit = &FuncInfo{
		Name:       "object.__init__",
		BaseName:   "__init__",
		Params:     []string{"self"},
		ParamTypes: []ast.ValueType{ast.ObjectType},
		ReturnType: ast.NoneType,
		CodeLabel:  "$object.__init__",
		Builtin:    true,
	}

	predef := func(name string, tag int, attrs ...*AttrInfo) *ClassInfo {
		c := &ClassInfo{
			Name:               name,
			TypeTag:            tag,
			Attributes:         attrs,
			Methods:            []*FuncInfo{a.ObjectInit},
			PrototypeLabel:     "$" + name + "$prototype",
			DispatchTableLabel: "$" + name + "$dispatchTable",
		}
		a.Classes = append(a.Classes, c)
		return c
	}

	a.Object = predef("object", ObjectTag)
	a.Int = predef("int", IntTag, &AttrInfo{Name: "__int__", Type: ast.IntType, Init: ast.Int(0)})
	a.Bool = predef("bool", BoolTag, &AttrInfo{Name: "__bool__", Type: ast.BoolType, Init: ast.Bool(false)})
	a.Str = predef("str", StrTag, &AttrInfo{Name: "__len__", Type: ast.IntType, Init: ast.Int(0)})
	a.Int.Super, a.Bool.Super, a.Str.Super = a.Object, a.Object, a.Object

	a.List = &ClassInfo{
		Name:           ".list",
		TypeTag:        ListTag,
		Super:          a.Object,
		Attributes:     []*AttrInfo{{Name: "__len__", Type: ast.IntType, Init: ast.Int(0)}},
		PrototypeLabel: "$.list$prototype",
	}
	a.Classes = append(a.Classes, a.List)

	for _, c := range []*ClassInfo{a.Object, a.Int, a.Bool, a.Str} {
		a.Globals.Put(c.Name, c)
	}

	builtin := func(name string, ret ast.ValueType) *FuncInfo {
		f := &FuncInfo{
			Name:       name,
			BaseName:   name,
			Params:     []string{"arg"},
			ParamTypes: []ast.ValueType{ast.ObjectType},
			ReturnType: ret,
			CodeLabel:  name,
			Builtin:    true,
		}
		a.Globals.Put(name, f)
		return f
	}
	a.Print = builtin("print", ast.NoneType)
	a.Len = builtin("len", ast.IntType)
}

// newFunc creates the descriptor of d nested in parent (nil for global
// functions and methods), qualified by prefix.
func (a *Analysis) newFunc(d *ast.FuncDef, parent *FuncInfo, prefix string) *FuncInfo {
	base := d.Name.Name
	name := base
	if prefix != "" {
		name = prefix + "." + base
	}
	f := &FuncInfo{
		Name:       name,
		BaseName:   base,
		Parent:     parent,
		ReturnType: d.ReturnType.ValueType(),
		Statements: d.Statements,
		CodeLabel:  "$" + name,
	}
	parentTable := a.Globals
	if parent != nil {
		f.Depth = parent.Depth + 1
		parentTable = parent.Symbols
	}
	f.Symbols = NewTable(parentTable)
	for _, p := range d.Params {
		f.Params = append(f.Params, p.Identifier.Name)
		f.ParamTypes = append(f.ParamTypes, p.Type.ValueType())
	}
	return f
}

// drain fills the scopes of all pending functions, depth first. Nested
// functions are pushed after their parent scope is complete so nonlocal
// declarations can resolve against it.
func (a *Analysis) drain(work *stack.Stack[pending]) error {
	for work.Size() > 0 {
		p := work.Pop()
		nested, err := a.fillScope(p.def, p.info)
		if err != nil {
			return err
		}
		a.Functions = append(a.Functions, p.info)
		for i := len(nested) - 1; i >= 0; i-- {
			work.Push(nested[i])
		}
	}
	return nil
}

func (a *Analysis) fillScope(d *ast.FuncDef, f *FuncInfo) ([]pending, error) {
	for i, name := range f.Params {
		f.Symbols.Put(name, &StackVarInfo{Name: name, Type: f.ParamTypes[i], Func: f})
	}

	var nested []pending
	for _, decl := range d.Declarations {
		switch decl := decl.(type) {
		case *ast.VarDef:
			v := &StackVarInfo{
				Name: decl.Var.Identifier.Name,
				Type: decl.Var.Type.ValueType(),
				Init: decl.Value,
				Func: f,
			}
			f.Locals = append(f.Locals, v)
			f.Symbols.Put(v.Name, v)
		case *ast.GlobalDecl:
			name := decl.Variable.Name
			g, ok := a.Globals.Get(name).(*GlobalVarInfo)
			if !ok {
				return nil, fmt.Errorf("%w: global %s in %s", ErrUnresolved, name, f.Name)
			}
			f.Symbols.Put(name, g)
		case *ast.NonLocalDecl:
			name := decl.Variable.Name
			var v *StackVarInfo
			if parent := f.Symbols.Parent(); parent != nil {
				v, _ = parent.Get(name).(*StackVarInfo)
			}
			if v == nil {
				return nil, fmt.Errorf("%w: nonlocal %s in %s", ErrUnresolved, name, f.Name)
			}
			f.Symbols.Put(name, v)
		case *ast.FuncDef:
			inner := a.newFunc(decl, f, f.Name)
			f.Symbols.Put(inner.BaseName, inner)
			nested = append(nested, pending{def: decl, info: inner})
		default:
			return nil, fmt.Errorf("%w: %T in function %s", ErrUnresolved, decl, f.Name)
		}
	}
	return nested, nil
}

// class builds the descriptor of d and queues its methods.
func (a *Analysis) class(d *ast.ClassDef, tag int, work *stack.Stack[pending]) (*ClassInfo, error) {
	name := d.Name.Name
	superName := "object"
	if d.SuperClass != nil && d.SuperClass.Name != "" {
		superName = d.SuperClass.Name
	}
	super, ok := a.Globals.Get(superName).(*ClassInfo)
	if !ok {
		return nil, fmt.Errorf("%w: superclass %s of %s", ErrUnresolved, superName, name)
	}

	c := &ClassInfo{
		Name:               name,
		TypeTag:            tag,
		Super:              super,
		Attributes:         append([]*AttrInfo(nil), super.Attributes...),
		Methods:            append([]*FuncInfo(nil), super.Methods...),
		PrototypeLabel:     "$" + name + "$prototype",
		DispatchTableLabel: "$" + name + "$dispatchTable",
	}

	var methods []pending
	for _, decl := range d.Declarations {
		switch decl := decl.(type) {
		case *ast.VarDef:
			c.Attributes = append(c.Attributes, &AttrInfo{
				Name: decl.Var.Identifier.Name,
				Type: decl.Var.Type.ValueType(),
				Init: decl.Value,
			})
		case *ast.FuncDef:
			m := a.newFunc(decl, nil, name)
			if i := c.MethodIndex(m.BaseName); i >= 0 {
				c.Methods[i] = m
			} else {
				c.Methods = append(c.Methods, m)
			}
			methods = append(methods, pending{def: decl, info: m})
		default:
			return nil, fmt.Errorf("%w: %T in class %s", ErrUnresolved, decl, name)
		}
	}
	for i := len(methods) - 1; i >= 0; i-- {
		work.Push(methods[i])
	}
	return c, nil
}
