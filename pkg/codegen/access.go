package codegen

import (
	"fmt"

	"chocogen/pkg/ast"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
	"chocogen/pkg/symbols"
)

// variable resolves an identifier to a global or stack variable.
func (g *fnGen) variable(id *ast.Identifier) symbols.Info {
	switch info := g.table.Get(id.Name).(type) {
	case *symbols.GlobalVarInfo:
		return info
	case *symbols.StackVarInfo:
		return info
	case nil:
		defect(id, "unknown name %s", id.Name)
	default:
		defect(id, "%s is not a variable", id.Name)
	}
	return nil
}

// varType is the declared type of the variable id names.
func (g *fnGen) varType(id *ast.Identifier) ast.ValueType {
	switch v := g.variable(id).(type) {
	case *symbols.GlobalVarInfo:
		return v.Type
	case *symbols.StackVarInfo:
		return v.Type
	}
	return nil
}

// frameOf leaves in t0 the frame pointer of owner, following static links
// outward from the current function, and returns the register holding it.
func (g *fnGen) frameOf(owner *symbols.FuncInfo, n ast.Node) riscv.Reg {
	if owner == g.fn {
		return riscv.FP
	}
	if g.fn == nil {
		defect(n, "stack variable of %s referenced at top level", owner.Name)
	}
	cur := g.fn
	base := riscv.FP
	for cur != owner {
		if cur.Parent == nil {
			defect(n, "%s does not enclose %s", owner.Name, g.fn.Name)
		}
		g.e.Lw(riscv.T0, base, riscv.WordSize*len(cur.Params), "static link of "+cur.Name)
		base = riscv.T0
		cur = cur.Parent
	}
	return riscv.T0
}

// staticLink leaves in t0 the frame pointer callee expects as its static
// link: that of its lexical parent.
func (g *fnGen) staticLink(callee *symbols.FuncInfo, n ast.Node) {
	base := g.frameOf(callee.Parent, n)
	if base == riscv.FP {
		g.e.Mv(riscv.T0, riscv.FP, "static link is this frame")
	}
}

// loadVar loads the variable id names into a0.
func (g *fnGen) loadVar(id *ast.Identifier) {
	switch v := g.variable(id).(type) {
	case *symbols.GlobalVarInfo:
		g.e.LwGlobal(riscv.A0, riscv.Label(v.Label), "global "+v.Name)
	case *symbols.StackVarInfo:
		base := g.frameOf(v.Func, id)
		g.e.Lw(riscv.A0, base, varOffset(v.Func, v.Name), fmt.Sprintf("%s.%s", v.Func.Name, v.Name))
	}
}

// storeVar stores a0 into the variable id names. a0 is preserved.
func (g *fnGen) storeVar(id *ast.Identifier) {
	switch v := g.variable(id).(type) {
	case *symbols.GlobalVarInfo:
		g.e.SwGlobal(riscv.A0, riscv.Label(v.Label), riscv.T0, "global "+v.Name)
	case *symbols.StackVarInfo:
		base := g.frameOf(v.Func, id)
		g.e.Sw(riscv.A0, base, varOffset(v.Func, v.Name), fmt.Sprintf("%s.%s", v.Func.Name, v.Name))
	}
}

// noneCheck traps if r holds None.
func (g *fnGen) noneCheck(r riscv.Reg) {
	ok := g.e.FreshLabel()
	g.e.Bnez(r, ok, "not None")
	g.e.J(runtime.ErrorNone, "")
	g.e.Label(ok)
}

// boundsCheck traps unless 0 <= idx < len(obj). The unsigned compare covers
// negative indices.
func (g *fnGen) boundsCheck(idx, obj riscv.Reg) {
	ok := g.e.FreshLabel()
	g.e.Lw(riscv.T1, obj, runtime.LenOffset, "len")
	g.e.Bltu(idx, riscv.T1, ok, "index in range")
	g.e.J(runtime.ErrorOOB, "")
	g.e.Label(ok)
}

// box wraps a0 in an object if a value of type from flows into a location
// of type to.
func (g *fnGen) box(from, to ast.Type) {
	if !ast.NeedsBox(from, to) {
		return
	}
	routine := runtime.BoxInt
	if ast.IsBool(from) {
		routine = runtime.BoxBool
	}
	g.slots.Reserve()
	g.e.Sw(riscv.A0, riscv.SP, 0, "box argument")
	g.e.Jal(routine, "")
	g.slots.ReleaseTop(1)
}

// class is the descriptor of the class type t names.
func (g *fnGen) class(t ast.Type, n ast.Node) *symbols.ClassInfo {
	if ast.IsList(t) {
		return g.p.a.List
	}
	c, ok := g.p.a.Globals.Get(ast.ClassName(t)).(*symbols.ClassInfo)
	if !ok {
		defect(n, "no class for type %v", t)
	}
	return c
}

// attribute resolves m to its class and attribute index.
func (g *fnGen) attribute(m *ast.MemberExpr) (*symbols.ClassInfo, int) {
	c := g.class(m.Object.Type(), m)
	idx := c.AttributeIndex(m.Member.Name)
	if idx < 0 {
		defect(m, "class %s has no attribute %s", c.Name, m.Member.Name)
	}
	return c, idx
}

func attrOffset(idx int) int {
	return runtime.FirstAttr + riscv.WordSize*idx
}

// memberLoad evaluates m.Object.m.Member into a0.
func (g *fnGen) memberLoad(m *ast.MemberExpr) {
	c, idx := g.attribute(m)
	g.expr(m.Object)
	g.noneCheck(riscv.A0)
	g.e.Lw(riscv.A0, riscv.A0, attrOffset(idx), c.Name+"."+m.Member.Name)
}

// memberStore stores the value in a0 into m and leaves it in a0.
func (g *fnGen) memberStore(m *ast.MemberExpr) {
	c, idx := g.attribute(m)
	val := g.slots.ClaimFromBottom()
	g.e.Sw(riscv.A0, riscv.FP, val, "value")
	g.expr(m.Object)
	g.noneCheck(riscv.A0)
	g.e.Lw(riscv.T0, riscv.FP, val, "value")
	g.e.Sw(riscv.T0, riscv.A0, attrOffset(idx), c.Name+"."+m.Member.Name)
	g.e.Mv(riscv.A0, riscv.T0, "")
	g.slots.Release(1)
}

// elementAddress turns the index in a0 into the address of element a0 of
// the list in t0.
func (g *fnGen) elementAddress() {
	g.e.Addi(riscv.A0, riscv.A0, runtime.ListElems/riscv.WordSize, "skip header")
	g.e.Slli(riscv.A0, riscv.A0, 2, "bytes")
	g.e.Add(riscv.A0, riscv.T0, riscv.A0, "element address")
}

// charAt turns the index in a0 into the shared one-character string for
// byte a0 of the string in t0.
func (g *fnGen) charAt() {
	g.e.Add(riscv.A0, riscv.T0, riscv.A0, "")
	g.e.Lbu(riscv.A0, riscv.A0, runtime.StrBytes, "character")
	g.e.Li(riscv.T1, runtime.CharSize, "")
	g.e.Mul(riscv.A0, riscv.A0, riscv.T1, "")
	g.e.La(riscv.T1, runtime.AllChars, "")
	g.e.Add(riscv.A0, riscv.T1, riscv.A0, "shared string")
}

// indexLoad evaluates x.List[x.Index] into a0.
func (g *fnGen) indexLoad(x *ast.IndexExpr) {
	g.expr(x.List)
	list := g.slots.ClaimFromBottom()
	g.e.Sw(riscv.A0, riscv.FP, list, "indexed object")
	g.expr(x.Index)
	g.e.Lw(riscv.T0, riscv.FP, list, "indexed object")
	g.slots.Release(1)
	g.noneCheck(riscv.T0)
	g.boundsCheck(riscv.A0, riscv.T0)
	if ast.IsStr(x.List.Type()) {
		g.charAt()
		return
	}
	g.elementAddress()
	g.e.Lw(riscv.A0, riscv.A0, 0, "element")
}

// indexStore stores the value in a0 into x and leaves it in a0.
func (g *fnGen) indexStore(x *ast.IndexExpr) {
	val := g.slots.ClaimFromBottom()
	g.e.Sw(riscv.A0, riscv.FP, val, "value")
	g.expr(x.List)
	list := g.slots.ClaimFromBottom()
	g.e.Sw(riscv.A0, riscv.FP, list, "list")
	g.expr(x.Index)
	g.e.Lw(riscv.T0, riscv.FP, list, "list")
	g.noneCheck(riscv.T0)
	g.boundsCheck(riscv.A0, riscv.T0)
	g.elementAddress()
	g.e.Lw(riscv.T0, riscv.FP, val, "value")
	g.e.Sw(riscv.T0, riscv.A0, 0, "element")
	g.e.Mv(riscv.A0, riscv.T0, "")
	g.slots.Release(2)
}

// targetType is the static type of an assignment target's location.
func (g *fnGen) targetType(target ast.Expr) ast.Type {
	switch t := target.(type) {
	case *ast.Identifier:
		return g.varType(t)
	case *ast.MemberExpr:
		c, idx := g.attribute(t)
		return c.Attributes[idx].Type
	case *ast.IndexExpr:
		if l, ok := t.List.Type().(*ast.ListValueType); ok {
			return l.Elem
		}
	}
	return target.Type()
}

// store writes a0 into target, keeping a0.
func (g *fnGen) store(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Identifier:
		g.storeVar(t)
	case *ast.MemberExpr:
		g.memberStore(t)
	case *ast.IndexExpr:
		g.indexStore(t)
	default:
		defect(target, "cannot assign to %T", target)
	}
}
