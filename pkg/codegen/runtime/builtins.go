package runtime

import "chocogen/pkg/riscv"

func (l *Library) emitObjectInit() {
	e := l.e
	e.Blank()
	e.GlobalLabel(ObjectInit)
	e.Mv(riscv.A0, riscv.Zero, "None")
	e.Jr(riscv.RA, "")
}

// emitPrint writes print(x) for boxed int, bool and str arguments followed by
// a newline. Anything else is an invalid argument.
func (l *Library) emitPrint() {
	e := l.e
	isInt := riscv.Label("print.int")
	isBool := riscv.Label("print.bool")
	isStr := riscv.Label("print.str")
	isFalse := riscv.Label("print.false")
	newline := riscv.Label("print.newline")

	l.prologue(Print)
	e.Lw(riscv.A0, riscv.FP, 0, "argument")
	e.Beqz(riscv.A0, ErrorArg, "None")
	e.Lw(riscv.T0, riscv.A0, TagOffset, "type tag")
	e.Li(riscv.T1, IntTag, "")
	e.Beq(riscv.T0, riscv.T1, isInt, "")
	e.Li(riscv.T1, BoolTag, "")
	e.Beq(riscv.T0, riscv.T1, isBool, "")
	e.Li(riscv.T1, StrTag, "")
	e.Beq(riscv.T0, riscv.T1, isStr, "")
	e.J(ErrorArg, "")

	e.Label(isInt)
	e.Lw(riscv.A1, riscv.A0, FirstAttr, "__int__")
	e.Li(riscv.A0, 1, "print int")
	e.Ecall("")
	e.J(newline, "")

	e.Label(isBool)
	e.Lw(riscv.T0, riscv.A0, FirstAttr, "__bool__")
	e.Beqz(riscv.T0, isFalse, "")
	e.La(riscv.A1, l.consts.Str("True"), "")
	e.Addi(riscv.A1, riscv.A1, StrBytes, "")
	e.Li(riscv.A0, 4, "print string")
	e.Ecall("")
	e.J(newline, "")
	e.Label(isFalse)
	e.La(riscv.A1, l.consts.Str("False"), "")
	e.Addi(riscv.A1, riscv.A1, StrBytes, "")
	e.Li(riscv.A0, 4, "print string")
	e.Ecall("")
	e.J(newline, "")

	e.Label(isStr)
	e.Addi(riscv.A1, riscv.A0, StrBytes, "string bytes")
	e.Li(riscv.A0, 4, "print string")
	e.Ecall("")

	e.Label(newline)
	e.Li(riscv.A0, 11, "print char")
	e.Li(riscv.A1, 10, "newline")
	e.Ecall("")
	e.Mv(riscv.A0, riscv.Zero, "None")
	l.epilogue()
}

// emitLen writes len(x) for str and list arguments.
func (l *Library) emitLen() {
	e := l.e
	ok := riscv.Label("len.ok")

	l.prologue(Len)
	e.Lw(riscv.A0, riscv.FP, 0, "argument")
	e.Beqz(riscv.A0, ErrorArg, "None")
	e.Lw(riscv.T0, riscv.A0, TagOffset, "type tag")
	e.Li(riscv.T1, StrTag, "")
	e.Beq(riscv.T0, riscv.T1, ok, "")
	e.Li(riscv.T1, ListTag, "")
	e.Beq(riscv.T0, riscv.T1, ok, "")
	e.J(ErrorArg, "")
	e.Label(ok)
	e.Lw(riscv.A0, riscv.A0, LenOffset, "__len__")
	l.epilogue()
}

// emitBoxInt wraps the int argument in a fresh int object.
func (l *Library) emitBoxInt() {
	e := l.e
	l.prologue(BoxInt)
	e.La(riscv.A0, IntPrototype, "")
	e.Jal(Alloc, "")
	e.Lw(riscv.T0, riscv.FP, 0, "value")
	e.Sw(riscv.T0, riscv.A0, FirstAttr, "__int__")
	l.epilogue()
}

// emitBoxBool returns the shared True or False object for the argument.
func (l *Library) emitBoxBool() {
	e := l.e
	isFalse := riscv.Label("box.bool.false")
	done := riscv.Label("box.bool.done")

	l.prologue(BoxBool)
	e.Lw(riscv.T0, riscv.FP, 0, "value")
	e.Beqz(riscv.T0, isFalse, "")
	e.La(riscv.A0, l.consts.Bool(true), "True")
	e.J(done, "")
	e.Label(isFalse)
	e.La(riscv.A0, l.consts.Bool(false), "False")
	e.Label(done)
	l.epilogue()
}

// emitInitChars fills AllChars with the 256 one-character strings. Indexing a
// string yields the entry for the byte found, so equal characters share one
// object.
func (l *Library) emitInitChars() {
	e := l.e
	loop := riscv.Label("initChars.loop")

	e.Blank()
	e.GlobalLabel(InitChars)
	e.La(riscv.A0, StrPrototype, "")
	e.Lw(riscv.T0, riscv.A0, TagOffset, "tag")
	e.Li(riscv.T1, CharSize/riscv.WordSize, "size in words")
	e.Lw(riscv.T2, riscv.A0, DispatchOffset, "dispatch table")
	e.Li(riscv.T3, 1, "__len__")
	e.La(riscv.A0, AllChars, "")
	e.Li(riscv.T4, CharCount, "")
	e.Mv(riscv.T5, riscv.Zero, "character")
	e.Label(loop)
	e.Sw(riscv.T0, riscv.A0, TagOffset, "")
	e.Sw(riscv.T1, riscv.A0, SizeOffset, "")
	e.Sw(riscv.T2, riscv.A0, DispatchOffset, "")
	e.Sw(riscv.T3, riscv.A0, LenOffset, "")
	e.Sw(riscv.T5, riscv.A0, StrBytes, "byte then NUL padding")
	e.Addi(riscv.A0, riscv.A0, CharSize, "")
	e.Addi(riscv.T5, riscv.T5, 1, "")
	e.Bne(riscv.T4, riscv.T5, loop, "")
	e.Jr(riscv.RA, "")
}
