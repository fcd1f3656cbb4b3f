package symbols

import (
	"fmt"

	"chocogen/pkg/ast"
)

// Layout is a printable summary of the object and frame layouts chosen for
// a program.
type Layout struct {
	Classes   []ClassLayout    `json:"classes"`
	Functions []FunctionLayout `json:"functions"`
	Globals   []VarLayout      `json:"globals"`
}

type ClassLayout struct {
	Name       string      `json:"name"`
	Tag        int         `json:"tag"`
	Super      string      `json:"super,omitempty"`
	Prototype  string      `json:"prototype"`
	Dispatch   string      `json:"dispatchTable,omitempty"`
	Attributes []VarLayout `json:"attributes"`
	Methods    []string    `json:"methods"`
}

type FunctionLayout struct {
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Depth  int         `json:"depth"`
	Parent string      `json:"parent,omitempty"`
	Params []VarLayout `json:"params"`
	Locals []VarLayout `json:"locals"`
	// StaticLink is the fp offset of the static link, or absent at depth 0.
	StaticLink *int `json:"staticLink,omitempty"`
}

// VarLayout is a named location: a byte offset from the object start, from
// fp, or a data label.
type VarLayout struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

func typeName(t ast.ValueType) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// Layout describes every class, function and global of a.
func (a *Analysis) Layout() *Layout {
	l := &Layout{
		Classes:   []ClassLayout{},
		Functions: []FunctionLayout{},
		Globals:   []VarLayout{},
	}
	for _, c := range a.Classes {
		cl := ClassLayout{
			Name:       c.Name,
			Tag:        c.TypeTag,
			Prototype:  c.PrototypeLabel,
			Dispatch:   c.DispatchTableLabel,
			Attributes: []VarLayout{},
			Methods:    []string{},
		}
		if c.Super != nil {
			cl.Super = c.Super.Name
		}
		for i, attr := range c.Attributes {
			cl.Attributes = append(cl.Attributes, VarLayout{
				Name:     attr.Name,
				Type:     typeName(attr.Type),
				Location: fmt.Sprintf("%d", 12+4*i),
			})
		}
		for _, m := range c.Methods {
			cl.Methods = append(cl.Methods, m.CodeLabel)
		}
		l.Classes = append(l.Classes, cl)
	}

	for _, f := range a.Functions {
		n := len(f.Params)
		fl := FunctionLayout{
			Name:   f.Name,
			Label:  f.CodeLabel,
			Depth:  f.Depth,
			Params: []VarLayout{},
			Locals: []VarLayout{},
		}
		if f.Parent != nil {
			fl.Parent = f.Parent.Name
		}
		if f.Depth > 0 {
			off := 4 * n
			fl.StaticLink = &off
		}
		for i, p := range f.Params {
			fl.Params = append(fl.Params, VarLayout{
				Name:     p,
				Type:     typeName(f.ParamTypes[i]),
				Location: fmt.Sprintf("%d(fp)", 4*(n-1-i)),
			})
		}
		for j, v := range f.Locals {
			fl.Locals = append(fl.Locals, VarLayout{
				Name:     v.Name,
				Type:     typeName(v.Type),
				Location: fmt.Sprintf("%d(fp)", -4*(j+3)),
			})
		}
		l.Functions = append(l.Functions, fl)
	}

	for _, g := range a.GlobalVars {
		l.Globals = append(l.Globals, VarLayout{Name: g.Name, Type: typeName(g.Type), Location: g.Label})
	}
	return l
}
