package codegen

import (
	"chocogen/pkg/ast"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
)

// expr evaluates x into a0. Temporaries live in frame slots; only a0 carries
// a value from one construct to the next.
func (g *fnGen) expr(x ast.Expr) {
	e := g.e
	switch x := x.(type) {
	case *ast.IntegerLiteral:
		e.Li(riscv.A0, x.Value, "")
	case *ast.BooleanLiteral:
		var v int32
		if x.Value {
			v = 1
		}
		e.Li(riscv.A0, v, "")
	case *ast.NoneLiteral:
		e.Mv(riscv.A0, riscv.Zero, "None")
	case *ast.StringLiteral:
		e.La(riscv.A0, g.p.consts.Str(x.Value), riscv.Quote(x.Value))
	case *ast.Identifier:
		g.loadVar(x)
	case *ast.UnaryExpr:
		g.unary(x)
	case *ast.BinaryExpr:
		g.binary(x)
	case *ast.IfExpr:
		g.ifExpr(x)
	case *ast.CallExpr:
		g.call(x)
	case *ast.MethodCallExpr:
		g.methodCall(x)
	case *ast.MemberExpr:
		g.memberLoad(x)
	case *ast.IndexExpr:
		g.indexLoad(x)
	case *ast.ListExpr:
		g.listDisplay(x)
	case nil:
		defect(nil, "missing expression")
	default:
		defect(x, "unsupported expression %T", x)
	}
}

func (g *fnGen) unary(x *ast.UnaryExpr) {
	g.expr(x.Operand)
	switch x.Operator {
	case "-":
		g.e.Neg(riscv.A0, riscv.A0, "")
	case "not":
		g.e.Seqz(riscv.A0, riscv.A0, "")
	default:
		defect(x, "unknown unary operator %s", x.Operator)
	}
}

func (g *fnGen) ifExpr(x *ast.IfExpr) {
	els := g.e.FreshLabel()
	end := g.e.FreshLabel()
	g.expr(x.Condition)
	g.e.Beqz(riscv.A0, els, "")
	g.expr(x.Then)
	g.box(x.Then.Type(), x.Type())
	g.e.J(end, "")
	g.e.Label(els)
	g.expr(x.Else)
	g.box(x.Else.Type(), x.Type())
	g.e.Label(end)
}

// binary evaluates x. The left operand is spilled to a claimed slot while
// the right one is evaluated, then reloaded into t0.
func (g *fnGen) binary(x *ast.BinaryExpr) {
	e := g.e
	switch x.Operator {
	case "and", "or":
		end := e.FreshLabel()
		g.expr(x.Left)
		if x.Operator == "and" {
			e.Beqz(riscv.A0, end, "short circuit")
		} else {
			e.Bnez(riscv.A0, end, "short circuit")
		}
		g.expr(x.Right)
		e.Label(end)
		return
	}

	g.expr(x.Left)
	left := g.slots.ClaimFromBottom()
	e.Sw(riscv.A0, riscv.FP, left, "left operand")
	g.expr(x.Right)
	e.Lw(riscv.T0, riscv.FP, left, "left operand")
	g.slots.Release(1)

	operand := x.Left.Type()
	switch x.Operator {
	case "+":
		switch {
		case ast.IsStr(operand):
			g.callRuntime(runtime.StrCat)
		case ast.IsList(operand) || ast.IsList(x.Type()):
			g.p.lib.RequireListConcat()
			g.callRuntime(runtime.ListConcat)
		default:
			e.Add(riscv.A0, riscv.T0, riscv.A0, "")
		}
	case "-":
		e.Sub(riscv.A0, riscv.T0, riscv.A0, "")
	case "*":
		e.Mul(riscv.A0, riscv.T0, riscv.A0, "")
	case "//":
		g.divisorCheck()
		g.floorDiv()
	case "%":
		g.divisorCheck()
		g.floorMod()
	case "<":
		e.Slt(riscv.A0, riscv.T0, riscv.A0, "")
	case ">":
		e.Slt(riscv.A0, riscv.A0, riscv.T0, "")
	case "<=":
		e.Slt(riscv.A0, riscv.A0, riscv.T0, "")
		e.Seqz(riscv.A0, riscv.A0, "")
	case ">=":
		e.Slt(riscv.A0, riscv.T0, riscv.A0, "")
		e.Seqz(riscv.A0, riscv.A0, "")
	case "==", "!=":
		if ast.IsStr(operand) {
			routine := runtime.StrEql
			if x.Operator == "!=" {
				routine = runtime.StrNeql
			}
			g.callRuntime(routine)
			return
		}
		e.Xor(riscv.A0, riscv.T0, riscv.A0, "")
		if x.Operator == "==" {
			e.Seqz(riscv.A0, riscv.A0, "")
		} else {
			e.Snez(riscv.A0, riscv.A0, "")
		}
	case "is":
		e.Xor(riscv.A0, riscv.T0, riscv.A0, "")
		e.Seqz(riscv.A0, riscv.A0, "same object")
	default:
		defect(x, "unknown binary operator %s", x.Operator)
	}
}

// callRuntime calls a two-argument routine with the left operand in t0 and
// the right one in a0.
func (g *fnGen) callRuntime(routine riscv.Label) {
	g.slots.Reserve()
	g.slots.Reserve()
	g.e.Sw(riscv.T0, riscv.SP, riscv.WordSize, "left")
	g.e.Sw(riscv.A0, riscv.SP, 0, "right")
	g.e.Jal(routine, "")
	g.slots.ReleaseTop(2)
}

func (g *fnGen) divisorCheck() {
	ok := g.e.FreshLabel()
	g.e.Bnez(riscv.A0, ok, "divisor not zero")
	g.e.J(runtime.ErrorDiv, "")
	g.e.Label(ok)
}

// floorDiv computes t0 // a0 rounded toward negative infinity. When the
// signs differ and the dividend is not zero, the dividend is moved one step
// toward zero before the truncating divide and the quotient decremented.
func (g *fnGen) floorDiv() {
	e := g.e
	trunc := e.FreshLabel()
	end := e.FreshLabel()
	e.Xor(riscv.T2, riscv.T0, riscv.A0, "")
	e.Bgez(riscv.T2, trunc, "same sign")
	e.Beqz(riscv.T0, trunc, "zero dividend")
	e.Slt(riscv.T2, riscv.Zero, riscv.A0, "divisor positive")
	e.Add(riscv.T2, riscv.T2, riscv.T2, "")
	e.Addi(riscv.T2, riscv.T2, -1, "+1 or -1")
	e.Add(riscv.T2, riscv.T0, riscv.T2, "")
	e.Div(riscv.T2, riscv.T2, riscv.A0, "")
	e.Addi(riscv.A0, riscv.T2, -1, "")
	e.J(end, "")
	e.Label(trunc)
	e.Div(riscv.A0, riscv.T0, riscv.A0, "")
	e.Label(end)
}

// floorMod computes t0 % a0 with the sign of the divisor.
func (g *fnGen) floorMod() {
	e := g.e
	end := e.FreshLabel()
	e.Rem(riscv.T2, riscv.T0, riscv.A0, "")
	e.Beqz(riscv.T2, end, "")
	e.Xor(riscv.T3, riscv.T2, riscv.A0, "")
	e.Bgez(riscv.T3, end, "same sign")
	e.Add(riscv.T2, riscv.T2, riscv.A0, "")
	e.Label(end)
	e.Mv(riscv.A0, riscv.T2, "")
}

// listDisplay evaluates the elements into claimed slots, allocates the list
// and copies them in. An empty display is the shared empty-list prototype.
func (g *fnGen) listDisplay(x *ast.ListExpr) {
	e := g.e
	if len(x.Elements) == 0 {
		e.La(riscv.A0, runtime.ListPrototype, "[]")
		return
	}
	var elem ast.Type
	if l, ok := x.Type().(*ast.ListValueType); ok {
		elem = l.Elem
	}

	offs := make([]int, len(x.Elements))
	for i, el := range x.Elements {
		g.expr(el)
		g.box(el.Type(), elem)
		offs[i] = g.slots.ClaimFromBottom()
		e.Sw(riscv.A0, riscv.FP, offs[i], "element")
	}

	n := len(x.Elements)
	e.La(riscv.A0, runtime.ListPrototype, "")
	e.Li(riscv.A1, int32(n+runtime.HeaderWords+1), "words")
	e.Jal(runtime.Alloc2, "")
	e.Li(riscv.T0, int32(n), "")
	e.Sw(riscv.T0, riscv.A0, runtime.LenOffset, "__len__")
	for i := n - 1; i >= 0; i-- {
		e.Lw(riscv.T0, riscv.FP, offs[i], "")
		e.Sw(riscv.T0, riscv.A0, runtime.ListElems+riscv.WordSize*i, "")
		g.slots.Release(1)
	}
}
