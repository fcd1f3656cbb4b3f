// Package riscv writes RV32IM assembly text in the dialect accepted by the
// Venus simulator: one instruction per line, optional trailing comments, a
// text section and a data section kept in separate buffers.
package riscv

import (
	"bytes"
	"fmt"
	"strings"
)

// Reg is a machine register by its ABI name.
type Reg string

const (
	Zero Reg = "zero"
	RA   Reg = "ra"
	SP   Reg = "sp"
	GP   Reg = "gp"
	FP   Reg = "fp"
	A0   Reg = "a0"
	A1   Reg = "a1"
	A2   Reg = "a2"
	A3   Reg = "a3"
	T0   Reg = "t0"
	T1   Reg = "t1"
	T2   Reg = "t2"
	T3   Reg = "t3"
	T4   Reg = "t4"
	T5   Reg = "t5"
	T6   Reg = "t6"
	S11  Reg = "s11"
)

// WordSize is the machine word in bytes.
const WordSize = 4

// Label names a code or data address.
type Label string

// Emitter accumulates assembly text.
type Emitter struct {
	text bytes.Buffer
	data bytes.Buffer

	comments  bool
	nextLocal int
}

// NewEmitter returns an empty emitter. With comments false every trailing
// comment is dropped.
func NewEmitter(comments bool) *Emitter {
	return &Emitter{comments: comments}
}

// FreshLabel returns a local label not handed out before by this emitter.
func (e *Emitter) FreshLabel() Label {
	e.nextLocal++
	return Label(fmt.Sprintf("label_%d", e.nextLocal))
}

// addText writes one instruction line with an optional comment.
func (e *Emitter) addText(instr, comment string) {
	if e.comments && comment != "" {
		fmt.Fprintf(&e.text, "  %-40s # %s\n", instr, comment)
		return
	}
	e.text.WriteString("  " + instr + "\n")
}

// addData writes one data directive line.
func (e *Emitter) addData(directive, comment string) {
	if e.comments && comment != "" {
		fmt.Fprintf(&e.data, "  %-40s # %s\n", directive, comment)
		return
	}
	e.data.WriteString("  " + directive + "\n")
}

func op(mnemonic string, args ...string) string {
	return fmt.Sprintf("%-6s %s", mnemonic, strings.Join(args, ", "))
}

func mem(off string, base Reg) string {
	return off + "(" + string(base) + ")"
}

// Comment writes a full-line comment to the text section.
func (e *Emitter) Comment(s string) {
	if e.comments {
		e.text.WriteString("  # " + s + "\n")
	}
}

// Blank separates routines.
func (e *Emitter) Blank() {
	e.text.WriteString("\n")
}

// Label defines l at the current text position.
func (e *Emitter) Label(l Label) {
	e.text.WriteString(string(l) + ":\n")
}

// GlobalLabel exports l and defines it at the current text position.
func (e *Emitter) GlobalLabel(l Label) {
	e.text.WriteString(".globl " + string(l) + "\n")
	e.Label(l)
}

// Equiv defines the assembler symbol sym as value.
func (e *Emitter) Equiv(sym string, value int) {
	e.text.WriteString(fmt.Sprintf(".equiv %s, %d\n", sym, value))
}

func (e *Emitter) Li(rd Reg, imm int32, comment string) {
	e.addText(op("li", string(rd), fmt.Sprint(imm)), comment)
}

func (e *Emitter) La(rd Reg, l Label, comment string) {
	e.addText(op("la", string(rd), string(l)), comment)
}

func (e *Emitter) Mv(rd, rs Reg, comment string) {
	e.addText(op("mv", string(rd), string(rs)), comment)
}

func (e *Emitter) Lw(rd, base Reg, off int, comment string) {
	e.addText(op("lw", string(rd), mem(fmt.Sprint(off), base)), comment)
}

// LwSym loads with a symbolic offset such as "@f.size-4".
func (e *Emitter) LwSym(rd, base Reg, off string, comment string) {
	e.addText(op("lw", string(rd), mem(off, base)), comment)
}

func (e *Emitter) Sw(rs, base Reg, off int, comment string) {
	e.addText(op("sw", string(rs), mem(fmt.Sprint(off), base)), comment)
}

// SwSym stores with a symbolic offset.
func (e *Emitter) SwSym(rs, base Reg, off string, comment string) {
	e.addText(op("sw", string(rs), mem(off, base)), comment)
}

// LwGlobal loads the word at label l.
func (e *Emitter) LwGlobal(rd Reg, l Label, comment string) {
	e.addText(op("lw", string(rd), string(l)), comment)
}

// SwGlobal stores rs at label l using tmp for the address.
func (e *Emitter) SwGlobal(rs Reg, l Label, tmp Reg, comment string) {
	e.addText(op("sw", string(rs), string(l), string(tmp)), comment)
}

func (e *Emitter) Lbu(rd, base Reg, off int, comment string) {
	e.addText(op("lbu", string(rd), mem(fmt.Sprint(off), base)), comment)
}

func (e *Emitter) Sb(rs, base Reg, off int, comment string) {
	e.addText(op("sb", string(rs), mem(fmt.Sprint(off), base)), comment)
}

func (e *Emitter) Addi(rd, rs Reg, imm int, comment string) {
	e.addText(op("addi", string(rd), string(rs), fmt.Sprint(imm)), comment)
}

// AddiSym adds a symbolic immediate such as "-@main.size".
func (e *Emitter) AddiSym(rd, rs Reg, imm string, comment string) {
	e.addText(op("addi", string(rd), string(rs), imm), comment)
}

func (e *Emitter) rtype(mnemonic string, rd, rs1, rs2 Reg, comment string) {
	e.addText(op(mnemonic, string(rd), string(rs1), string(rs2)), comment)
}

func (e *Emitter) Add(rd, rs1, rs2 Reg, comment string)  { e.rtype("add", rd, rs1, rs2, comment) }
func (e *Emitter) Sub(rd, rs1, rs2 Reg, comment string)  { e.rtype("sub", rd, rs1, rs2, comment) }
func (e *Emitter) Mul(rd, rs1, rs2 Reg, comment string)  { e.rtype("mul", rd, rs1, rs2, comment) }
func (e *Emitter) Div(rd, rs1, rs2 Reg, comment string)  { e.rtype("div", rd, rs1, rs2, comment) }
func (e *Emitter) Rem(rd, rs1, rs2 Reg, comment string)  { e.rtype("rem", rd, rs1, rs2, comment) }
func (e *Emitter) Xor(rd, rs1, rs2 Reg, comment string)  { e.rtype("xor", rd, rs1, rs2, comment) }
func (e *Emitter) And(rd, rs1, rs2 Reg, comment string)  { e.rtype("and", rd, rs1, rs2, comment) }
func (e *Emitter) Or(rd, rs1, rs2 Reg, comment string)   { e.rtype("or", rd, rs1, rs2, comment) }
func (e *Emitter) Slt(rd, rs1, rs2 Reg, comment string)  { e.rtype("slt", rd, rs1, rs2, comment) }
func (e *Emitter) Sltu(rd, rs1, rs2 Reg, comment string) { e.rtype("sltu", rd, rs1, rs2, comment) }

func (e *Emitter) Slli(rd, rs Reg, sh int, comment string) {
	e.addText(op("slli", string(rd), string(rs), fmt.Sprint(sh)), comment)
}

func (e *Emitter) Srli(rd, rs Reg, sh int, comment string) {
	e.addText(op("srli", string(rd), string(rs), fmt.Sprint(sh)), comment)
}

func (e *Emitter) Seqz(rd, rs Reg, comment string) {
	e.addText(op("seqz", string(rd), string(rs)), comment)
}

func (e *Emitter) Snez(rd, rs Reg, comment string) {
	e.addText(op("snez", string(rd), string(rs)), comment)
}

func (e *Emitter) Neg(rd, rs Reg, comment string) {
	e.addText(op("neg", string(rd), string(rs)), comment)
}

func (e *Emitter) branch(mnemonic string, rs1, rs2 Reg, l Label, comment string) {
	e.addText(op(mnemonic, string(rs1), string(rs2), string(l)), comment)
}

func (e *Emitter) Beq(rs1, rs2 Reg, l Label, comment string)  { e.branch("beq", rs1, rs2, l, comment) }
func (e *Emitter) Bne(rs1, rs2 Reg, l Label, comment string)  { e.branch("bne", rs1, rs2, l, comment) }
func (e *Emitter) Blt(rs1, rs2 Reg, l Label, comment string)  { e.branch("blt", rs1, rs2, l, comment) }
func (e *Emitter) Bge(rs1, rs2 Reg, l Label, comment string)  { e.branch("bge", rs1, rs2, l, comment) }
func (e *Emitter) Bltu(rs1, rs2 Reg, l Label, comment string) { e.branch("bltu", rs1, rs2, l, comment) }
func (e *Emitter) Bgeu(rs1, rs2 Reg, l Label, comment string) { e.branch("bgeu", rs1, rs2, l, comment) }

func (e *Emitter) branchz(mnemonic string, rs Reg, l Label, comment string) {
	e.addText(op(mnemonic, string(rs), string(l)), comment)
}

func (e *Emitter) Beqz(rs Reg, l Label, comment string) { e.branchz("beqz", rs, l, comment) }
func (e *Emitter) Bnez(rs Reg, l Label, comment string) { e.branchz("bnez", rs, l, comment) }
func (e *Emitter) Bltz(rs Reg, l Label, comment string) { e.branchz("bltz", rs, l, comment) }
func (e *Emitter) Bgez(rs Reg, l Label, comment string) { e.branchz("bgez", rs, l, comment) }

func (e *Emitter) J(l Label, comment string) {
	e.addText(op("j", string(l)), comment)
}

func (e *Emitter) Jal(l Label, comment string) {
	e.addText(op("jal", string(l)), comment)
}

func (e *Emitter) Jalr(rs Reg, comment string) {
	e.addText(op("jalr", string(rs)), comment)
}

func (e *Emitter) Jr(rs Reg, comment string) {
	e.addText(op("jr", string(rs)), comment)
}

func (e *Emitter) Ecall(comment string) {
	e.addText("ecall", comment)
}

// DataLabel defines l at the current data position, word aligned.
func (e *Emitter) DataLabel(l Label) {
	e.data.WriteString("  .align 2\n")
	e.data.WriteString(string(l) + ":\n")
}

// DataGlobalLabel exports l and defines it in the data section.
func (e *Emitter) DataGlobalLabel(l Label) {
	e.data.WriteString(".globl " + string(l) + "\n")
	e.DataLabel(l)
}

// Word emits one data word holding v.
func (e *Emitter) Word(v int32, comment string) {
	e.addData(fmt.Sprintf(".word %d", v), comment)
}

// WordLabel emits one data word holding the address of l.
func (e *Emitter) WordLabel(l Label, comment string) {
	e.addData(".word "+string(l), comment)
}

// String emits s NUL terminated.
func (e *Emitter) String(s string, comment string) {
	e.addData(".string "+Quote(s), comment)
}

// Space reserves n zero bytes.
func (e *Emitter) Space(n int, comment string) {
	e.addData(fmt.Sprintf(".space %d", n), comment)
}

// Code returns the text section followed by the data section.
func (e *Emitter) Code() string {
	var b bytes.Buffer
	b.WriteString(".text\n")
	b.Write(e.text.Bytes())
	if e.data.Len() > 0 {
		b.WriteString("\n.data\n")
		b.Write(e.data.Bytes())
	}
	return b.String()
}

// Quote renders s as an assembler string literal. Bytes outside the printable
// range are written as \xHH.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
