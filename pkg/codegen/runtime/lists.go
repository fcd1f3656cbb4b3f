package runtime

import "chocogen/pkg/riscv"

// emitListConcat writes listConcat(left, right). None operands trap. An
// empty operand returns the other operand itself; otherwise a new list holds
// left's elements then right's.
func (l *Library) emitListConcat() {
	e := l.e
	none := riscv.Label("listConcat.none")
	leftEmpty := riscv.Label("listConcat.leftEmpty")
	copyLeft := riscv.Label("listConcat.copyLeft")
	copyRight := riscv.Label("listConcat.copyRight")
	rightStart := riscv.Label("listConcat.rightStart")
	done := riscv.Label("listConcat.done")

	l.prologue(ListConcat)
	e.Lw(riscv.A0, riscv.FP, 4, "left")
	e.Beqz(riscv.A0, none, "")
	e.Lw(riscv.A1, riscv.FP, 0, "right")
	e.Beqz(riscv.A1, none, "")
	e.Lw(riscv.T0, riscv.A0, LenOffset, "len(left)")
	e.Lw(riscv.T1, riscv.A1, LenOffset, "len(right)")
	e.Beqz(riscv.T0, leftEmpty, "")
	e.Beqz(riscv.T1, done, "right empty, a0 is left")

	e.Sw(riscv.A0, riscv.FP, -12, "save left")
	e.Sw(riscv.A1, riscv.FP, -16, "save right")
	e.Add(riscv.T2, riscv.T0, riscv.T1, "total length")
	e.Addi(riscv.A1, riscv.T2, HeaderWords+1, "plus header and __len__")
	e.La(riscv.A0, ListPrototype, "")
	e.Jal(Alloc2, "")

	e.Lw(riscv.A1, riscv.FP, -12, "left")
	e.Lw(riscv.A2, riscv.FP, -16, "right")
	e.Lw(riscv.T1, riscv.A1, LenOffset, "")
	e.Lw(riscv.T2, riscv.A2, LenOffset, "")
	e.Add(riscv.T0, riscv.T1, riscv.T2, "")
	e.Sw(riscv.T0, riscv.A0, LenOffset, "__len__")
	e.Addi(riscv.T3, riscv.A0, ListElems, "destination")
	e.Addi(riscv.A3, riscv.A1, ListElems, "source")
	e.Label(copyLeft)
	e.Beqz(riscv.T1, rightStart, "")
	e.Lw(riscv.T4, riscv.A3, 0, "")
	e.Sw(riscv.T4, riscv.T3, 0, "")
	e.Addi(riscv.A3, riscv.A3, 4, "")
	e.Addi(riscv.T3, riscv.T3, 4, "")
	e.Addi(riscv.T1, riscv.T1, -1, "")
	e.J(copyLeft, "")
	e.Label(rightStart)
	e.Addi(riscv.A3, riscv.A2, ListElems, "source")
	e.Label(copyRight)
	e.Beqz(riscv.T2, done, "")
	e.Lw(riscv.T4, riscv.A3, 0, "")
	e.Sw(riscv.T4, riscv.T3, 0, "")
	e.Addi(riscv.A3, riscv.A3, 4, "")
	e.Addi(riscv.T3, riscv.T3, 4, "")
	e.Addi(riscv.T2, riscv.T2, -1, "")
	e.J(copyRight, "")

	e.Label(none)
	e.J(ErrorNone, "")
	e.Label(leftEmpty)
	e.Mv(riscv.A0, riscv.A1, "right unchanged")
	e.Label(done)
	l.epilogue()
}
