package codegen

import (
	"fmt"

	"chocogen/pkg/codegen/frame"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
	"chocogen/pkg/symbols"

	"github.com/charmbracelet/log"
)

// fnGen translates one routine body: the top level or a user function.
type fnGen struct {
	p     *Program
	e     *riscv.Emitter
	slots *frame.Allocator

	fn       *symbols.FuncInfo // nil at top level
	table    *symbols.Table
	epilogue riscv.Label
}

// savedSlots are the ra and control link slots every frame claims first.
const savedSlots = 2

func (p *Program) newFnGen(fn *symbols.FuncInfo) *fnGen {
	g := &fnGen{p: p, e: p.e, slots: frame.New(), fn: fn, table: p.a.Globals}
	if fn != nil {
		g.table = fn.Symbols
	}
	return g
}

func sizeSym(name string) string {
	return "@" + name + ".size"
}

// emitTopLevel writes the entry point: heap setup, the main frame, the
// character table and the top-level statements, then exit.
func (p *Program) emitTopLevel() {
	g := p.newFnGen(nil)
	e := g.e
	size := sizeSym(".main")

	e.GlobalLabel("main")
	e.Li(riscv.A0, int32(p.opts.HeapSize), "heap bytes")
	e.Jal(runtime.HeapInit, "")
	e.Mv(riscv.GP, riscv.A0, "heap pointer")
	e.Li(riscv.T0, int32(p.opts.HeapSize), "")
	e.Add(riscv.S11, riscv.GP, riscv.T0, "heap limit")
	e.AddiSym(riscv.SP, riscv.SP, "-"+size, "main frame")
	e.AddiSym(riscv.FP, riscv.SP, size, "")
	for i := 0; i < savedSlots; i++ {
		off := g.slots.ClaimFromBottom()
		e.Sw(riscv.Zero, riscv.FP, off, "no caller")
	}
	e.Jal(runtime.InitChars, "")

	g.stmts(p.a.Statements)

	e.Li(riscv.A0, 10, "exit")
	e.Ecall("")
	g.slots.Release(savedSlots)
	g.checkBalanced("main")
	e.Equiv(size, g.slots.FrameSize())

	log.Debug("emitted top level", "frame", g.slots.FrameSize())
}

// emitFunction writes fn as a standalone routine. Nested functions are
// emitted separately and reach their enclosing frames through static links.
func (p *Program) emitFunction(fn *symbols.FuncInfo) {
	g := p.newFnGen(fn)
	e := g.e
	size := sizeSym(fn.Name)
	g.epilogue = e.FreshLabel()

	e.Blank()
	e.GlobalLabel(riscv.Label(fn.CodeLabel))
	e.AddiSym(riscv.SP, riscv.SP, "-"+size, "reserve frame")
	e.SwSym(riscv.RA, riscv.SP, size+"-4", "return address")
	e.SwSym(riscv.FP, riscv.SP, size+"-8", "control link")
	e.AddiSym(riscv.FP, riscv.SP, size, "new fp")
	g.slots.ClaimFromBottom()
	g.slots.ClaimFromBottom()

	for j, v := range fn.Locals {
		g.expr(v.Init)
		g.box(v.Init.Type(), v.Type)
		off := g.slots.ClaimFromBottom()
		if want := localOffset(j); off != want {
			defect(v.Init, "local %s of %s landed at %d, want %d", v.Name, fn.Name, off, want)
		}
		e.Sw(riscv.A0, riscv.FP, off, "local "+v.Name)
	}

	g.stmts(fn.Statements)

	e.Mv(riscv.A0, riscv.Zero, "implicit None")
	e.Label(g.epilogue)
	e.Lw(riscv.RA, riscv.FP, -4, "return address")
	e.Lw(riscv.FP, riscv.FP, -8, "control link")
	e.AddiSym(riscv.SP, riscv.SP, size, "pop frame")
	e.Jr(riscv.RA, "")

	g.slots.Release(savedSlots + len(fn.Locals))
	g.checkBalanced(fn.Name)
	e.Equiv(size, g.slots.FrameSize())

	log.Debug("emitted function", "name", fn.Name, "depth", fn.Depth, "frame", g.slots.FrameSize())
}

func (g *fnGen) checkBalanced(name string) {
	if g.slots.Live() != 0 || g.slots.Claimed() != 0 {
		panic(&Error{Msg: fmt.Sprintf("%s: %d slots still held (%d claimed)", name, g.slots.Live(), g.slots.Claimed())})
	}
}

// localOffset is the fp offset of the j-th local, below ra and the control
// link.
func localOffset(j int) int {
	return -riscv.WordSize * (j + savedSlots + 1)
}

// paramOffset is the fp offset of parameter i of n. The last one sits at
// 0(fp), the static link just above the first.
func paramOffset(i, n int) int {
	return riscv.WordSize * (n - 1 - i)
}

// varOffset is the fp offset of a parameter or local of fn.
func varOffset(fn *symbols.FuncInfo, name string) int {
	idx := fn.VarIndex(name)
	n := len(fn.Params)
	switch {
	case idx < 0:
		panic(&Error{Msg: fmt.Sprintf("%s has no variable %s", fn.Name, name)})
	case idx < n:
		return paramOffset(idx, n)
	default:
		return localOffset(idx - n)
	}
}
