package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrFrontEnd is returned when the typed tree carries errors reported by the
// front end. Such a tree must not reach code generation.
var ErrFrontEnd = errors.New("front end reported errors")

// object is one "kind"-tagged JSON node.
type object map[string]json.RawMessage

// Decode reads a typed program in the JSON format emitted by the reference
// ChocoPy front end.
func Decode(data []byte) (*Program, error) {
	var root object
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode typed ast: %w", err)
	}
	if k := root.kind(); k != "Program" {
		return nil, fmt.Errorf("decode typed ast: root node is %q, want Program", k)
	}
	if raw, ok := root["errors"]; ok && !isNull(raw) {
		var errs struct {
			Errors []struct {
				Message  string   `json:"message"`
				Location Location `json:"location"`
			} `json:"errors"`
		}
		if err := json.Unmarshal(raw, &errs); err != nil {
			return nil, fmt.Errorf("decode errors block: %w", err)
		}
		if len(errs.Errors) > 0 {
			msgs := make([]string, 0, len(errs.Errors))
			for _, e := range errs.Errors {
				msgs = append(msgs, fmt.Sprintf("%s: %s", e.Location, e.Message))
			}
			return nil, fmt.Errorf("%w (%d): %s", ErrFrontEnd, len(errs.Errors), strings.Join(msgs, "; "))
		}
	}

	d := &decoder{}
	p := &Program{Location: root.location()}
	p.Declarations = d.decls(root["declarations"])
	p.Statements = d.stmts(root["statements"])
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}

// decoder records the first error and keeps returning zero values after it,
// so the recursive descent does not have to check at every step.
type decoder struct {
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("decode typed ast: "+format, args...)
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func (o object) kind() string {
	var k string
	_ = json.Unmarshal(o["kind"], &k)
	return k
}

func (o object) location() Location {
	var l Location
	if raw, ok := o["location"]; ok && !isNull(raw) {
		_ = json.Unmarshal(raw, &l)
	}
	return l
}

func (d *decoder) object(raw json.RawMessage) object {
	if isNull(raw) {
		return nil
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		d.fail("%v", err)
		return nil
	}
	return o
}

func (d *decoder) list(raw json.RawMessage) []json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail("%v", err)
		return nil
	}
	return items
}

func (d *decoder) str(o object, field string) string {
	var s string
	if err := json.Unmarshal(o[field], &s); err != nil {
		d.fail("field %q of %s: %v", field, o.kind(), err)
	}
	return s
}

func (d *decoder) decls(raw json.RawMessage) []Decl {
	var out []Decl
	for _, item := range d.list(raw) {
		if decl := d.decl(item); decl != nil {
			out = append(out, decl)
		}
	}
	return out
}

func (d *decoder) decl(raw json.RawMessage) Decl {
	o := d.object(raw)
	if o == nil {
		d.fail("missing declaration")
		return nil
	}
	base := decl{Location: o.location()}
	switch k := o.kind(); k {
	case "VarDef":
		v := &VarDef{decl: base, Var: d.typedVar(o["var"])}
		lit, ok := d.expr(o["value"]).(Literal)
		if !ok {
			d.fail("VarDef value is not a literal")
			return nil
		}
		v.Value = lit
		return v
	case "FuncDef":
		f := &FuncDef{decl: base, Name: d.ident(o["name"])}
		for _, p := range d.list(o["params"]) {
			f.Params = append(f.Params, d.typedVar(p))
		}
		f.ReturnType = d.annotation(o["returnType"])
		f.Declarations = d.decls(o["declarations"])
		f.Statements = d.stmts(o["statements"])
		return f
	case "ClassDef":
		return &ClassDef{
			decl:         base,
			Name:         d.ident(o["name"]),
			SuperClass:   d.ident(o["superClass"]),
			Declarations: d.decls(o["declarations"]),
		}
	case "GlobalDecl":
		return &GlobalDecl{decl: base, Variable: d.ident(o["variable"])}
	case "NonLocalDecl":
		return &NonLocalDecl{decl: base, Variable: d.ident(o["variable"])}
	default:
		d.fail("unknown declaration kind %q", k)
		return nil
	}
}

func (d *decoder) typedVar(raw json.RawMessage) *TypedVar {
	o := d.object(raw)
	if o == nil {
		d.fail("missing typed variable")
		return &TypedVar{}
	}
	v := &TypedVar{Location: o.location(), Identifier: d.ident(o["identifier"]), Type: d.annotation(o["type"])}
	if v.Identifier != nil && v.Type != nil && v.Identifier.InferredType == nil {
		v.Identifier.InferredType = v.Type.ValueType()
	}
	return v
}

func (d *decoder) annotation(raw json.RawMessage) TypeAnnotation {
	o := d.object(raw)
	if o == nil {
		return &ClassType{ClassName: "<None>"}
	}
	switch k := o.kind(); k {
	case "ClassType":
		return &ClassType{Location: o.location(), ClassName: d.str(o, "className")}
	case "ListType":
		return &ListType{Location: o.location(), Elem: d.annotation(o["elementType"])}
	default:
		d.fail("unknown type annotation kind %q", k)
		return &ClassType{ClassName: "object"}
	}
}

func (d *decoder) valueType(raw json.RawMessage) ValueType {
	t := d.typ(raw)
	if t == nil {
		return nil
	}
	vt, ok := t.(ValueType)
	if !ok {
		d.fail("expected a value type, got %s", t)
		return nil
	}
	return vt
}

func (d *decoder) typ(raw json.RawMessage) Type {
	o := d.object(raw)
	if o == nil {
		return nil
	}
	switch k := o.kind(); k {
	case "ClassValueType":
		return ClassOf(d.str(o, "className"))
	case "ListValueType":
		return &ListValueType{Elem: d.valueType(o["elementType"])}
	case "FuncType":
		f := &FuncType{Return: d.valueType(o["returnType"])}
		for _, p := range d.list(o["parameters"]) {
			f.Params = append(f.Params, d.valueType(p))
		}
		return f
	default:
		d.fail("unknown type kind %q", k)
		return nil
	}
}

func (d *decoder) ident(raw json.RawMessage) *Identifier {
	o := d.object(raw)
	if o == nil {
		return nil
	}
	return &Identifier{
		typed: typed{Location: o.location(), InferredType: d.typ(o["inferredType"])},
		Name:  d.str(o, "name"),
	}
}

func (d *decoder) stmts(raw json.RawMessage) []Stmt {
	var out []Stmt
	for _, item := range d.list(raw) {
		if s := d.stmt(item); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) stmt(raw json.RawMessage) Stmt {
	o := d.object(raw)
	if o == nil {
		d.fail("missing statement")
		return nil
	}
	base := stmt{Location: o.location()}
	switch k := o.kind(); k {
	case "ExprStmt":
		return &ExprStmt{stmt: base, Expr: d.expr(o["expr"])}
	case "AssignStmt":
		s := &AssignStmt{stmt: base, Value: d.expr(o["value"])}
		for _, t := range d.list(o["targets"]) {
			s.Targets = append(s.Targets, d.expr(t))
		}
		return s
	case "IfStmt":
		return &IfStmt{
			stmt:      base,
			Condition: d.expr(o["condition"]),
			ThenBody:  d.stmts(o["thenBody"]),
			ElseBody:  d.stmts(o["elseBody"]),
		}
	case "WhileStmt":
		return &WhileStmt{stmt: base, Condition: d.expr(o["condition"]), Body: d.stmts(o["body"])}
	case "ForStmt":
		return &ForStmt{
			stmt:       base,
			Identifier: d.ident(o["identifier"]),
			Iterable:   d.expr(o["iterable"]),
			Body:       d.stmts(o["body"]),
		}
	case "ReturnStmt":
		r := &ReturnStmt{stmt: base}
		if raw, ok := o["value"]; ok && !isNull(raw) {
			r.Value = d.expr(raw)
		}
		return r
	default:
		d.fail("unknown statement kind %q", k)
		return nil
	}
}

func (d *decoder) exprs(raw json.RawMessage) []Expr {
	var out []Expr
	for _, item := range d.list(raw) {
		out = append(out, d.expr(item))
	}
	return out
}

func (d *decoder) expr(raw json.RawMessage) Expr {
	o := d.object(raw)
	if o == nil {
		d.fail("missing expression")
		return nil
	}
	base := typed{Location: o.location(), InferredType: d.typ(o["inferredType"])}
	switch k := o.kind(); k {
	case "IntegerLiteral":
		var v int64
		if err := json.Unmarshal(o["value"], &v); err != nil {
			d.fail("integer literal: %v", err)
		}
		return &IntegerLiteral{typed: base, Value: int32(v)}
	case "BooleanLiteral":
		var v bool
		if err := json.Unmarshal(o["value"], &v); err != nil {
			d.fail("boolean literal: %v", err)
		}
		return &BooleanLiteral{typed: base, Value: v}
	case "StringLiteral":
		return &StringLiteral{typed: base, Value: d.str(o, "value")}
	case "NoneLiteral":
		return &NoneLiteral{typed: base}
	case "Identifier":
		return &Identifier{typed: base, Name: d.str(o, "name")}
	case "UnaryExpr":
		return &UnaryExpr{typed: base, Operator: d.str(o, "operator"), Operand: d.expr(o["operand"])}
	case "BinaryExpr":
		return &BinaryExpr{
			typed:    base,
			Left:     d.expr(o["left"]),
			Operator: d.str(o, "operator"),
			Right:    d.expr(o["right"]),
		}
	case "IfExpr":
		return &IfExpr{
			typed:     base,
			Condition: d.expr(o["condition"]),
			Then:      d.expr(o["thenExpr"]),
			Else:      d.expr(o["elseExpr"]),
		}
	case "CallExpr":
		return &CallExpr{typed: base, Function: d.ident(o["function"]), Args: d.exprs(o["args"])}
	case "MethodCallExpr":
		m, ok := d.expr(o["method"]).(*MemberExpr)
		if !ok {
			d.fail("MethodCallExpr method is not a MemberExpr")
			return nil
		}
		return &MethodCallExpr{typed: base, Method: m, Args: d.exprs(o["args"])}
	case "MemberExpr":
		return &MemberExpr{typed: base, Object: d.expr(o["object"]), Member: d.ident(o["member"])}
	case "IndexExpr":
		return &IndexExpr{typed: base, List: d.expr(o["list"]), Index: d.expr(o["index"])}
	case "ListExpr":
		return &ListExpr{typed: base, Elements: d.exprs(o["elements"])}
	default:
		d.fail("unknown expression kind %q", k)
		return nil
	}
}
