// Package runtime emits the support routines every generated program links
// against: string and list operations, boxing, the single-character string
// table, the heap allocator, the builtins and the fatal error traps.
//
// Routines follow the user calling convention. Arguments are pushed so that
// the last one sits at 0(sp) on entry; the result comes back in a0.
package runtime

import (
	"chocogen/pkg/riscv"

	"github.com/charmbracelet/log"
)

// Entry points.
const (
	StrCat     riscv.Label = "strcat"
	StrEql     riscv.Label = "streql"
	StrNeql    riscv.Label = "strneql"
	ListConcat riscv.Label = "listConcat"
	BoxInt     riscv.Label = "box.int"
	BoxBool    riscv.Label = "box.bool"
	InitChars  riscv.Label = "initChars"
	AllChars   riscv.Label = "allChars"
	Alloc      riscv.Label = "alloc"
	Alloc2     riscv.Label = "alloc2"
	HeapInit   riscv.Label = "heap.init"
	Abort      riscv.Label = "abort"
	Print      riscv.Label = "print"
	Len        riscv.Label = "len"
	ObjectInit riscv.Label = "$object.__init__"

	ErrorArg  riscv.Label = "error.Arg"
	ErrorDiv  riscv.Label = "error.Div"
	ErrorOOB  riscv.Label = "error.OOB"
	ErrorNone riscv.Label = "error.None"
	ErrorOOM  riscv.Label = "error.OOM"
)

// Prototype labels of the predefined classes the routines allocate.
const (
	IntPrototype  riscv.Label = "$int$prototype"
	StrPrototype  riscv.Label = "$str$prototype"
	ListPrototype riscv.Label = "$.list$prototype"
)

// Exit codes of the fatal traps.
const (
	CodeInvalidArg = 1
	CodeDivZero    = 2
	CodeOOB        = 3
	CodeNone       = 4
	CodeOOM        = 5
)

// Messages printed by the fatal traps.
const (
	MsgInvalidArg = "Invalid argument"
	MsgDivZero    = "Division by zero"
	MsgOOB        = "Index out of bounds"
	MsgNone       = "Operation on None"
	MsgOOM        = "Out of memory"
)

// Object layout in bytes.
const (
	TagOffset      = 0
	SizeOffset     = 4
	DispatchOffset = 8
	FirstAttr      = 12
	LenOffset      = 12
	StrBytes       = 16
	ListElems      = 16
	HeaderWords    = 3
)

// Tags the routines test for.
const (
	IntTag  = 1
	BoolTag = 2
	StrTag  = 3
	ListTag = -1
)

// CharCount is the number of single-character strings in AllChars and
// CharSize the byte size of each.
const (
	CharCount = 256
	CharSize  = 20
)

// Constants interns the static objects the routines refer to.
type Constants interface {
	Str(s string) riscv.Label
	Bool(b bool) riscv.Label
}

// Library emits the runtime routines into an emitter.
type Library struct {
	e      *riscv.Emitter
	consts Constants

	listConcat bool
}

// New returns a library writing to e and interning through consts.
func New(e *riscv.Emitter, consts Constants) *Library {
	return &Library{e: e, consts: consts}
}

// RequireListConcat marks listConcat as referenced.
func (l *Library) RequireListConcat() {
	l.listConcat = true
}

// Emit writes every routine. listConcat is included only if required.
func (l *Library) Emit() {
	l.emitAbort()
	l.emitHeapInit()
	l.emitAlloc()
	l.emitObjectInit()
	l.emitPrint()
	l.emitLen()
	l.emitInitChars()
	l.emitBoxInt()
	l.emitBoxBool()
	l.emitStrCat()
	l.emitStrCompare(StrEql, true)
	l.emitStrCompare(StrNeql, false)
	if l.listConcat {
		l.emitListConcat()
	}

	l.emitError(ErrorArg, CodeInvalidArg, MsgInvalidArg)
	l.emitError(ErrorDiv, CodeDivZero, MsgDivZero)
	l.emitError(ErrorOOB, CodeOOB, MsgOOB)
	l.emitError(ErrorNone, CodeNone, MsgNone)
	l.emitError(ErrorOOM, CodeOOM, MsgOOM)

	log.Debug("runtime library emitted", "listConcat", l.listConcat)
}

// EmitCharTable reserves the data filled in by initChars.
func (l *Library) EmitCharTable() {
	l.e.DataGlobalLabel(AllChars)
	l.e.Space(CharCount*CharSize, "single-character strings")
}

// prologue opens a 16-byte frame with ra at -4(fp) and the caller's fp at
// -8(fp), leaving the arguments at non-negative offsets from fp.
func (l *Library) prologue(name riscv.Label) {
	e := l.e
	e.Blank()
	e.GlobalLabel(name)
	e.Addi(riscv.SP, riscv.SP, -16, "reserve frame")
	e.Sw(riscv.RA, riscv.SP, 12, "return address")
	e.Sw(riscv.FP, riscv.SP, 8, "control link")
	e.Addi(riscv.FP, riscv.SP, 16, "new fp")
}

func (l *Library) epilogue() {
	e := l.e
	e.Mv(riscv.SP, riscv.FP, "pop frame")
	e.Lw(riscv.RA, riscv.FP, -4, "return address")
	e.Lw(riscv.FP, riscv.FP, -8, "control link")
	e.Jr(riscv.RA, "return")
}

// emitError writes a trap that aborts with code and message.
func (l *Library) emitError(name riscv.Label, code int32, msg string) {
	e := l.e
	e.Blank()
	e.GlobalLabel(name)
	e.Li(riscv.A0, code, "exit code: "+msg)
	e.La(riscv.A1, l.consts.Str(msg), "message object")
	e.Addi(riscv.A1, riscv.A1, StrBytes, "message bytes")
	e.J(Abort, "")
}

// emitAbort prints the NUL-terminated message at a1 and a newline, then exits
// with the code in a0.
func (l *Library) emitAbort() {
	e := l.e
	e.Blank()
	e.GlobalLabel(Abort)
	e.Mv(riscv.T0, riscv.A0, "exit code")
	e.Li(riscv.A0, 4, "print string")
	e.Ecall("")
	e.Li(riscv.A0, 11, "print char")
	e.Li(riscv.A1, 10, "newline")
	e.Ecall("")
	e.Li(riscv.A0, 17, "exit with code")
	e.Mv(riscv.A1, riscv.T0, "")
	e.Ecall("")
}

// emitHeapInit requests a0 bytes from the system and returns their base.
func (l *Library) emitHeapInit() {
	e := l.e
	e.Blank()
	e.GlobalLabel(HeapInit)
	e.Mv(riscv.A1, riscv.A0, "bytes")
	e.Li(riscv.A0, 9, "sbrk")
	e.Ecall("a0 is the heap base")
	e.Jr(riscv.RA, "")
}

// emitAlloc writes the bump allocator. alloc copies the prototype in a0;
// alloc2 does the same but sizes the object to a1 words. The heap runs from
// gp up to s11. Clobbers t0-t4.
func (l *Library) emitAlloc() {
	e := l.e
	copyLoop := riscv.Label("alloc2.copy")
	done := riscv.Label("alloc2.done")

	e.Blank()
	e.GlobalLabel(Alloc)
	e.Lw(riscv.A1, riscv.A0, SizeOffset, "prototype size")
	e.GlobalLabel(Alloc2)
	e.Slli(riscv.T0, riscv.A1, 2, "bytes")
	e.Add(riscv.T0, riscv.GP, riscv.T0, "new heap top")
	e.Bltu(riscv.S11, riscv.T0, ErrorOOM, "past the heap limit")
	e.Lw(riscv.T1, riscv.A0, SizeOffset, "words to copy")
	e.Mv(riscv.T2, riscv.GP, "destination")
	e.Mv(riscv.T3, riscv.A0, "source")
	e.Label(copyLoop)
	e.Beqz(riscv.T1, done, "")
	e.Lw(riscv.T4, riscv.T3, 0, "")
	e.Sw(riscv.T4, riscv.T2, 0, "")
	e.Addi(riscv.T3, riscv.T3, 4, "")
	e.Addi(riscv.T2, riscv.T2, 4, "")
	e.Addi(riscv.T1, riscv.T1, -1, "")
	e.J(copyLoop, "")
	e.Label(done)
	e.Sw(riscv.A1, riscv.GP, SizeOffset, "actual size")
	e.Mv(riscv.A0, riscv.GP, "new object")
	e.Mv(riscv.GP, riscv.T0, "bump")
	e.Jr(riscv.RA, "")
}
