package runtime

import "chocogen/pkg/riscv"

// emitStrCat writes strcat(left, right). An empty operand returns the other
// operand itself; otherwise a new string holds left's bytes then right's.
func (l *Library) emitStrCat() {
	e := l.e
	leftEmpty := riscv.Label("strcat.leftEmpty")
	rightEmpty := riscv.Label("strcat.rightEmpty")
	copyBytes := riscv.Label("strcat.copy")
	copyDone := riscv.Label("strcat.copyDone")
	done := riscv.Label("strcat.done")

	l.prologue(StrCat)
	e.Lw(riscv.T0, riscv.FP, 4, "left")
	e.Lw(riscv.T2, riscv.FP, 0, "right")
	e.Lw(riscv.T1, riscv.T0, LenOffset, "len(left)")
	e.Beqz(riscv.T1, leftEmpty, "")
	e.Lw(riscv.T3, riscv.T2, LenOffset, "len(right)")
	e.Beqz(riscv.T3, rightEmpty, "")

	e.Add(riscv.T0, riscv.T1, riscv.T3, "total length")
	e.Addi(riscv.T0, riscv.T0, 4, "")
	e.Srli(riscv.A1, riscv.T0, 2, "(len + 4) / 4 words of bytes")
	e.Addi(riscv.A1, riscv.A1, 4, "plus header and __len__")
	e.La(riscv.A0, StrPrototype, "")
	e.Jal(Alloc2, "")

	e.Lw(riscv.T0, riscv.FP, 4, "left")
	e.Lw(riscv.T2, riscv.FP, 0, "right")
	e.Lw(riscv.T1, riscv.T0, LenOffset, "len(left)")
	e.Lw(riscv.T3, riscv.T2, LenOffset, "len(right)")
	e.Add(riscv.T4, riscv.T1, riscv.T3, "")
	e.Sw(riscv.T4, riscv.A0, LenOffset, "__len__")
	e.Addi(riscv.T0, riscv.T0, StrBytes, "left bytes")
	e.Addi(riscv.T4, riscv.A0, StrBytes, "destination")
	e.Jal(copyBytes, "")
	e.Addi(riscv.T0, riscv.T2, StrBytes, "right bytes")
	e.Mv(riscv.T1, riscv.T3, "")
	e.Jal(copyBytes, "")
	e.Sb(riscv.Zero, riscv.T4, 0, "NUL")
	e.J(done, "")

	e.Label(leftEmpty)
	e.Mv(riscv.A0, riscv.T2, "right unchanged")
	e.J(done, "")
	e.Label(rightEmpty)
	e.Mv(riscv.A0, riscv.T0, "left unchanged")
	e.J(done, "")

	// t1 bytes from t0 to t4; leaves t4 past the last byte written.
	e.Label(copyBytes)
	e.Beqz(riscv.T1, copyDone, "")
	e.Lbu(riscv.T5, riscv.T0, 0, "")
	e.Sb(riscv.T5, riscv.T4, 0, "")
	e.Addi(riscv.T0, riscv.T0, 1, "")
	e.Addi(riscv.T4, riscv.T4, 1, "")
	e.Addi(riscv.T1, riscv.T1, -1, "")
	e.J(copyBytes, "")
	e.Label(copyDone)
	e.Jr(riscv.RA, "")

	e.Label(done)
	l.epilogue()
}

// emitStrCompare writes streql or strneql: equal length and equal bytes.
func (l *Library) emitStrCompare(name riscv.Label, equal bool) {
	e := l.e
	same := riscv.Label(string(name) + ".same")
	differ := riscv.Label(string(name) + ".differ")
	loop := riscv.Label(string(name) + ".loop")
	done := riscv.Label(string(name) + ".done")

	l.prologue(name)
	e.Lw(riscv.T0, riscv.FP, 4, "left")
	e.Lw(riscv.T1, riscv.FP, 0, "right")
	e.Lw(riscv.T2, riscv.T0, LenOffset, "len(left)")
	e.Lw(riscv.T3, riscv.T1, LenOffset, "len(right)")
	e.Bne(riscv.T2, riscv.T3, differ, "")
	e.Addi(riscv.T0, riscv.T0, StrBytes, "")
	e.Addi(riscv.T1, riscv.T1, StrBytes, "")
	e.Label(loop)
	e.Beqz(riscv.T2, same, "")
	e.Lbu(riscv.T3, riscv.T0, 0, "")
	e.Lbu(riscv.T4, riscv.T1, 0, "")
	e.Bne(riscv.T3, riscv.T4, differ, "")
	e.Addi(riscv.T0, riscv.T0, 1, "")
	e.Addi(riscv.T1, riscv.T1, 1, "")
	e.Addi(riscv.T2, riscv.T2, -1, "")
	e.J(loop, "")

	result := func(b bool) int32 {
		if b {
			return 1
		}
		return 0
	}
	e.Label(same)
	e.Li(riscv.A0, result(equal), "")
	e.J(done, "")
	e.Label(differ)
	e.Li(riscv.A0, result(!equal), "")
	e.Label(done)
	l.epilogue()
}
