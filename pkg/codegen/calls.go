package codegen

import (
	"chocogen/pkg/ast"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
	"chocogen/pkg/symbols"
)

// call translates f(args): a function call, or construction when f names a
// class.
func (g *fnGen) call(x *ast.CallExpr) {
	switch info := g.table.Get(x.Function.Name).(type) {
	case *symbols.FuncInfo:
		g.callFunction(info, x)
	case *symbols.ClassInfo:
		g.construct(info)
	default:
		defect(x, "%s is not callable", x.Function.Name)
	}
}

// evalArgs evaluates args left to right into claimed slots, boxing each one
// its formal type requires, and returns the slot offsets.
func (g *fnGen) evalArgs(args []ast.Expr, formals []ast.ValueType) []int {
	if len(args) != len(formals) {
		defect(nil, "%d arguments for %d parameters", len(args), len(formals))
	}
	offs := make([]int, len(args))
	for i, arg := range args {
		g.expr(arg)
		g.box(arg.Type(), formals[i])
		offs[i] = g.slots.ClaimFromBottom()
		g.e.Sw(riscv.A0, riscv.FP, offs[i], "argument")
	}
	return offs
}

// pushArgs moves claimed argument values to the top of the frame, last
// argument at 0(sp). first is the parameter position of the first value.
func (g *fnGen) pushArgs(offs []int, first, total int) {
	for i := len(offs) - 1; i >= 0; i-- {
		g.e.Lw(riscv.T0, riscv.FP, offs[i], "")
		g.slots.Release(1)
		g.slots.Reserve()
		g.e.Sw(riscv.T0, riscv.SP, paramOffset(first+i, total), "")
	}
}

func (g *fnGen) callFunction(f *symbols.FuncInfo, x *ast.CallExpr) {
	n := len(f.Params)
	offs := g.evalArgs(x.Args, f.ParamTypes)
	g.pushArgs(offs, 0, n)
	pushed := n
	if f.Depth > 0 {
		g.staticLink(f, x)
		g.slots.Reserve()
		g.e.Sw(riscv.T0, riscv.SP, riscv.WordSize*n, "static link")
		pushed++
	}
	g.e.Jal(riscv.Label(f.CodeLabel), f.Name)
	g.slots.ReleaseTop(pushed)
}

// construct allocates an instance of c and runs its __init__. int and bool
// construct their unboxed zero.
func (g *fnGen) construct(c *symbols.ClassInfo) {
	e := g.e
	if c.TypeTag == symbols.IntTag || c.TypeTag == symbols.BoolTag {
		e.Mv(riscv.A0, riscv.Zero, c.Name+"()")
		return
	}
	e.La(riscv.A0, riscv.Label(c.PrototypeLabel), "")
	e.Jal(runtime.Alloc, "")
	obj := g.slots.ClaimFromBottom()
	e.Sw(riscv.A0, riscv.FP, obj, "new "+c.Name)
	g.slots.Reserve()
	e.Sw(riscv.A0, riscv.SP, 0, "self")
	e.Lw(riscv.A1, riscv.A0, runtime.DispatchOffset, "")
	e.Lw(riscv.A1, riscv.A1, 0, "__init__")
	e.Jalr(riscv.A1, "")
	g.slots.ReleaseTop(1)
	e.Lw(riscv.A0, riscv.FP, obj, "new "+c.Name)
	g.slots.Release(1)
}

// method resolves the method m names on the static type of its receiver.
func (g *fnGen) method(m *ast.MemberExpr) (*symbols.FuncInfo, int) {
	c := g.class(m.Object.Type(), m)
	idx := c.MethodIndex(m.Member.Name)
	if idx < 0 {
		defect(m, "class %s has no method %s", c.Name, m.Member.Name)
	}
	return c.Methods[idx], idx
}

// methodCall translates obj.m(args). The receiver and the dispatched address
// are held in claimed slots while the arguments are evaluated; the receiver
// is passed as the first argument.
func (g *fnGen) methodCall(x *ast.MethodCallExpr) {
	e := g.e
	if ast.IsUnboxed(x.Method.Object.Type()) {
		defect(x, "method call on unboxed %v", x.Method.Object.Type())
	}
	m, idx := g.method(x.Method)
	k := len(x.Args)
	total := k + 1

	g.expr(x.Method.Object)
	g.noneCheck(riscv.A0)
	e.Lw(riscv.A1, riscv.A0, runtime.DispatchOffset, "")
	e.Lw(riscv.A1, riscv.A1, riscv.WordSize*idx, x.Method.Member.Name)
	addr := g.slots.ClaimFromBottom()
	e.Sw(riscv.A1, riscv.FP, addr, "method")
	self := g.slots.ClaimFromBottom()
	e.Sw(riscv.A0, riscv.FP, self, "receiver")

	offs := g.evalArgs(x.Args, m.ParamTypes[1:])
	g.pushArgs(offs, 1, total)
	e.Lw(riscv.T0, riscv.FP, self, "receiver")
	g.slots.Reserve()
	e.Sw(riscv.T0, riscv.SP, paramOffset(0, total), "self")
	e.Lw(riscv.A1, riscv.FP, addr, "method")
	e.Jalr(riscv.A1, m.Name)
	g.slots.ReleaseTop(total)
	g.slots.Release(2)
}
