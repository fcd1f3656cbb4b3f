package codegen

import (
	"chocogen/pkg/ast"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
)

func (g *fnGen) stmts(list []ast.Stmt) {
	for _, s := range list {
		g.stmt(s)
	}
}

func (g *fnGen) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		g.expr(s.Expr)
	case *ast.AssignStmt:
		g.assign(s)
	case *ast.IfStmt:
		g.ifStmt(s)
	case *ast.WhileStmt:
		g.while(s)
	case *ast.ForStmt:
		g.forStmt(s)
	case *ast.ReturnStmt:
		g.ret(s)
	default:
		defect(s, "unsupported statement %T", s)
	}
}

// assign evaluates the value once and stores it into every target, left to
// right. Each target gets the raw value back in a0 before its own boxing.
func (g *fnGen) assign(s *ast.AssignStmt) {
	g.expr(s.Value)
	val := 0
	many := len(s.Targets) > 1
	if many {
		val = g.slots.ClaimFromBottom()
		g.e.Sw(riscv.A0, riscv.FP, val, "assigned value")
	}
	for i, target := range s.Targets {
		if i > 0 {
			g.e.Lw(riscv.A0, riscv.FP, val, "assigned value")
		}
		g.box(s.Value.Type(), g.targetType(target))
		g.store(target)
	}
	if many {
		g.e.Lw(riscv.A0, riscv.FP, val, "assigned value")
		g.slots.Release(1)
	}
}

func (g *fnGen) ifStmt(s *ast.IfStmt) {
	els := g.e.FreshLabel()
	end := g.e.FreshLabel()
	g.expr(s.Condition)
	g.e.Beqz(riscv.A0, els, "")
	g.stmts(s.ThenBody)
	if len(s.ElseBody) == 0 {
		g.e.Label(els)
		return
	}
	g.e.J(end, "")
	g.e.Label(els)
	g.stmts(s.ElseBody)
	g.e.Label(end)
}

// while jumps to the test first so the body and the test are laid out once.
func (g *fnGen) while(s *ast.WhileStmt) {
	body := g.e.FreshLabel()
	test := g.e.FreshLabel()
	g.e.J(test, "")
	g.e.Label(body)
	g.stmts(s.Body)
	g.e.Label(test)
	g.expr(s.Condition)
	g.e.Bnez(riscv.A0, body, "")
}

// forStmt iterates over a list or string. The iterable and the cursor live
// in claimed slots and the length is read from the object on every
// iteration, so a list grown by the body is walked to its new end.
func (g *fnGen) forStmt(s *ast.ForStmt) {
	e := g.e
	top := e.FreshLabel()
	end := e.FreshLabel()
	isStr := ast.IsStr(s.Iterable.Type())

	g.expr(s.Iterable)
	g.noneCheck(riscv.A0)
	iter := g.slots.ClaimFromBottom()
	e.Sw(riscv.A0, riscv.FP, iter, "iterable")
	cursor := g.slots.ClaimFromBottom()
	e.Sw(riscv.Zero, riscv.FP, cursor, "cursor")

	e.Label(top)
	e.Lw(riscv.T1, riscv.FP, cursor, "cursor")
	e.Lw(riscv.T0, riscv.FP, iter, "iterable")
	e.Lw(riscv.T2, riscv.T0, runtime.LenOffset, "current length")
	e.Bgeu(riscv.T1, riscv.T2, end, "done")
	e.Addi(riscv.T2, riscv.T1, 1, "")
	e.Sw(riscv.T2, riscv.FP, cursor, "advance")
	e.Mv(riscv.A0, riscv.T1, "")
	var elem ast.Type = ast.StrType
	if isStr {
		g.charAt()
	} else {
		g.elementAddress()
		e.Lw(riscv.A0, riscv.A0, 0, "element")
		if l, ok := s.Iterable.Type().(*ast.ListValueType); ok {
			elem = l.Elem
		}
	}
	g.box(elem, g.varType(s.Identifier))
	g.storeVar(s.Identifier)
	g.stmts(s.Body)
	e.J(top, "")
	e.Label(end)
	g.slots.Release(2)
}

// ret leaves the result in a0 and jumps to the single epilogue.
func (g *fnGen) ret(s *ast.ReturnStmt) {
	if g.fn == nil {
		defect(s, "return outside a function")
	}
	if s.Value == nil {
		g.e.Mv(riscv.A0, riscv.Zero, "None")
	} else {
		g.expr(s.Value)
		g.box(s.Value.Type(), g.fn.ReturnType)
	}
	g.e.J(g.epilogue, "return")
}
