// Package symbols holds the descriptors the code generator consults: classes,
// functions, attributes, global variables and stack variables, together with
// the per-scope symbol tables mapping names to them. Descriptors are built once
// by Analyze and treated as immutable afterwards.
package symbols

import "chocogen/pkg/ast"

// Info is one of *ClassInfo, *FuncInfo, *AttrInfo, *GlobalVarInfo or
// *StackVarInfo.
type Info interface {
	info()
}

// ClassInfo describes a class: its runtime type tag, prototype and dispatch
// table labels, and the ordered attribute and method lists (inherited first,
// overrides replacing in place).
type ClassInfo struct {
	Name               string
	TypeTag            int
	Super              *ClassInfo
	Attributes         []*AttrInfo
	Methods            []*FuncInfo
	PrototypeLabel     string
	DispatchTableLabel string
}

func (*ClassInfo) info() {}

// AttributeIndex returns the storage index of attribute name, or -1.
func (c *ClassInfo) AttributeIndex(name string) int {
	for i, a := range c.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// MethodIndex returns the dispatch table index of method name, or -1.
func (c *ClassInfo) MethodIndex(name string) int {
	for i, m := range c.Methods {
		if m.BaseName == name {
			return i
		}
	}
	return -1
}

// AttrInfo describes an attribute and its initial value.
type AttrInfo struct {
	Name string
	Type ast.ValueType
	Init ast.Literal
}

func (*AttrInfo) info() {}

// GlobalVarInfo describes a global variable stored at a fixed label.
type GlobalVarInfo struct {
	Name  string
	Type  ast.ValueType
	Init  ast.Literal
	Label string
}

func (*GlobalVarInfo) info() {}

// StackVarInfo describes a parameter or local of Func.
type StackVarInfo struct {
	Name string
	Type ast.ValueType
	Init ast.Literal // nil for parameters
	Func *FuncInfo
}

func (*StackVarInfo) info() {}

// FuncInfo describes a function, a method or a builtin.
type FuncInfo struct {
	// Name is qualified by the enclosing function or class: f, f.g, C.m.
	Name     string
	BaseName string
	// Depth is 0 for global functions and methods, parent depth + 1 otherwise.
	Depth  int
	Parent *FuncInfo

	Params     []string
	ParamTypes []ast.ValueType
	ReturnType ast.ValueType
	Locals     []*StackVarInfo
	Statements []ast.Stmt
	Symbols    *Table
	CodeLabel  string

	// Builtin routines are emitted by the runtime library, not translated.
	Builtin bool
}

func (*FuncInfo) info() {}

// VarIndex returns the activation record index of a parameter or local:
// parameters first, then locals. It returns -1 for other names.
func (f *FuncInfo) VarIndex(name string) int {
	for i, p := range f.Params {
		if p == name {
			return i
		}
	}
	for i, l := range f.Locals {
		if l.Name == name {
			return len(f.Params) + i
		}
	}
	return -1
}

// Table maps the names visible in one scope to their descriptors, deferring
// to its parent for names it does not declare.
type Table struct {
	parent  *Table
	entries map[string]Info
}

// NewTable returns an empty scope nested in parent (nil for the global scope).
func NewTable(parent *Table) *Table {
	return &Table{parent: parent, entries: make(map[string]Info)}
}

// Put declares name in this scope.
func (t *Table) Put(name string, info Info) {
	t.entries[name] = info
}

// Get resolves name in this scope or the nearest enclosing one.
func (t *Table) Get(name string) Info {
	for s := t; s != nil; s = s.parent {
		if info, ok := s.entries[name]; ok {
			return info
		}
	}
	return nil
}

func (t *Table) Parent() *Table {
	return t.parent
}
