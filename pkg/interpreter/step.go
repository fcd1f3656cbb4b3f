package interpreter

import (
	"fmt"
	"math"
)

// maxPrint bounds the strings the print-string ecall will read.
const maxPrint = 1 << 20

func (i *Interpreter) fault(format string, args ...any) error {
	line := 0
	if i.pc >= 0 && i.pc < len(i.prog.Text) {
		line = i.prog.Text[i.pc].Line
	}
	return &Fault{PC: i.pc, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (i *Interpreter) set(rd int, v int32) {
	if rd != 0 {
		i.regs[rd] = v
	}
}

// jump moves to an absolute text address.
func (i *Interpreter) jump(addr int32) error {
	a := uint32(addr)
	if a < TextBase || (a-TextBase)%4 != 0 {
		return i.fault("jump to non-text address %#x", a)
	}
	i.pc = int((a - TextBase) / 4)
	return nil
}

func textAddr(pc int) int32 {
	return int32(TextBase + uint32(4*pc))
}

// exec runs the instruction at pc.
func (i *Interpreter) exec() error {
	if i.pc < 0 || i.pc >= len(i.prog.Text) {
		return i.fault("execution left the text segment")
	}
	in := i.prog.Text[i.pc]
	r := &i.regs
	rs1, rs2 := r[in.Rs1], r[in.Rs2]
	next := i.pc + 1

	switch in.Op {
	case "add":
		i.set(in.Rd, rs1+rs2)
	case "sub":
		i.set(in.Rd, rs1-rs2)
	case "mul":
		i.set(in.Rd, rs1*rs2)
	case "mulh":
		i.set(in.Rd, int32((int64(rs1)*int64(rs2))>>32))
	case "div":
		i.set(in.Rd, divide(rs1, rs2))
	case "divu":
		if rs2 == 0 {
			i.set(in.Rd, -1)
		} else {
			i.set(in.Rd, int32(uint32(rs1)/uint32(rs2)))
		}
	case "rem":
		i.set(in.Rd, remainder(rs1, rs2))
	case "remu":
		if rs2 == 0 {
			i.set(in.Rd, rs1)
		} else {
			i.set(in.Rd, int32(uint32(rs1)%uint32(rs2)))
		}
	case "xor":
		i.set(in.Rd, rs1^rs2)
	case "and":
		i.set(in.Rd, rs1&rs2)
	case "or":
		i.set(in.Rd, rs1|rs2)
	case "slt":
		i.set(in.Rd, flag(rs1 < rs2))
	case "sltu":
		i.set(in.Rd, flag(uint32(rs1) < uint32(rs2)))
	case "sll":
		i.set(in.Rd, rs1<<(uint32(rs2)&31))
	case "srl":
		i.set(in.Rd, int32(uint32(rs1)>>(uint32(rs2)&31)))
	case "sra":
		i.set(in.Rd, rs1>>(uint32(rs2)&31))

	case "addi":
		i.set(in.Rd, rs1+in.Imm)
	case "xori":
		i.set(in.Rd, rs1^in.Imm)
	case "andi":
		i.set(in.Rd, rs1&in.Imm)
	case "ori":
		i.set(in.Rd, rs1|in.Imm)
	case "slti":
		i.set(in.Rd, flag(rs1 < in.Imm))
	case "sltiu":
		i.set(in.Rd, flag(uint32(rs1) < uint32(in.Imm)))
	case "slli":
		i.set(in.Rd, rs1<<(uint32(in.Imm)&31))
	case "srli":
		i.set(in.Rd, int32(uint32(rs1)>>(uint32(in.Imm)&31)))
	case "srai":
		i.set(in.Rd, rs1>>(uint32(in.Imm)&31))

	case "mv":
		i.set(in.Rd, rs1)
	case "neg":
		i.set(in.Rd, -rs1)
	case "not":
		i.set(in.Rd, ^rs1)
	case "seqz":
		i.set(in.Rd, flag(rs1 == 0))
	case "snez":
		i.set(in.Rd, flag(rs1 != 0))
	case "sltz":
		i.set(in.Rd, flag(rs1 < 0))
	case "sgtz":
		i.set(in.Rd, flag(rs1 > 0))

	case "li", "la":
		i.set(in.Rd, in.Imm)
	case "lui":
		i.set(in.Rd, in.Imm<<12)
	case "auipc":
		i.set(in.Rd, textAddr(i.pc)+in.Imm<<12)

	case "beq", "bne", "blt", "bge", "bltu", "bgeu", "bgt", "ble", "bgtu", "bleu":
		if branch(in.Op, rs1, rs2) {
			return i.jump(in.Imm)
		}
	case "beqz", "bnez", "bltz", "bgez", "blez", "bgtz":
		if branch(in.Op[:len(in.Op)-1], rs1, 0) {
			return i.jump(in.Imm)
		}

	case "lw":
		v, err := i.mem.loadWord(uint32(rs1 + in.Imm))
		if err != nil {
			return i.fault("%v", err)
		}
		i.set(in.Rd, int32(v))
	case "lb":
		i.set(in.Rd, int32(int8(i.mem.loadByte(uint32(rs1+in.Imm)))))
	case "lbu":
		i.set(in.Rd, int32(i.mem.loadByte(uint32(rs1+in.Imm))))
	case "lh", "lhu":
		addr := uint32(rs1 + in.Imm)
		if addr%2 != 0 {
			return i.fault("misaligned halfword load at %#x", addr)
		}
		h := uint16(i.mem.loadByte(addr)) | uint16(i.mem.loadByte(addr+1))<<8
		if in.Op == "lh" {
			i.set(in.Rd, int32(int16(h)))
		} else {
			i.set(in.Rd, int32(h))
		}
	case "sw":
		if err := i.mem.storeWord(uint32(rs1+in.Imm), uint32(rs2)); err != nil {
			return i.fault("%v", err)
		}
	case "sb":
		i.mem.storeByte(uint32(rs1+in.Imm), byte(rs2))
	case "sh":
		addr := uint32(rs1 + in.Imm)
		if addr%2 != 0 {
			return i.fault("misaligned halfword store at %#x", addr)
		}
		i.mem.storeByte(addr, byte(rs2))
		i.mem.storeByte(addr+1, byte(rs2>>8))

	case "j":
		return i.jump(in.Imm)
	case "jal":
		i.set(in.Rd, textAddr(next))
		return i.jump(in.Imm)
	case "jalr":
		target := rs1 + in.Imm
		i.set(in.Rd, textAddr(next))
		return i.jump(target &^ 1)
	case "jr":
		return i.jump(rs1)

	case "ecall":
		if err := i.ecall(); err != nil || i.exited {
			return err
		}
	case "nop":
	default:
		return i.fault("unsupported instruction %s", in.Op)
	}
	i.pc = next
	return nil
}

// ecall services the Venus environment calls selected by a0.
func (i *Interpreter) ecall() error {
	a1 := i.regs[11]
	switch code := i.regs[10]; code {
	case 1:
		fmt.Fprintf(i.out, "%d", a1)
	case 4:
		s, err := i.mem.cString(uint32(a1), maxPrint)
		if err != nil {
			return i.fault("%v", err)
		}
		i.out.Write(s)
	case 9:
		if a1 < 0 {
			return i.fault("negative sbrk of %d bytes", a1)
		}
		old := i.brk
		if uint64(old)+uint64(a1) >= uint64(StackTop) {
			return i.fault("sbrk of %d bytes exhausts memory", a1)
		}
		i.brk += uint32(a1)
		i.regs[10] = int32(old)
	case 10:
		i.exited, i.exitCode = true, 0
	case 11:
		i.out.Write([]byte{byte(a1)})
	case 17:
		i.exited, i.exitCode = true, int(a1)
	default:
		return i.fault("unknown ecall %d", code)
	}
	return nil
}

func flag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// branch evaluates the condition named by a branch mnemonic without its
// leading b.
func branch(op string, a, b int32) bool {
	switch op[1:] {
	case "eq":
		return a == b
	case "ne":
		return a != b
	case "lt":
		return a < b
	case "ge":
		return a >= b
	case "gt":
		return a > b
	case "le":
		return a <= b
	case "ltu":
		return uint32(a) < uint32(b)
	case "geu":
		return uint32(a) >= uint32(b)
	case "gtu":
		return uint32(a) > uint32(b)
	case "leu":
		return uint32(a) <= uint32(b)
	}
	return false
}

// divide follows the RV32M rules for zero divisors and overflow.
func divide(a, b int32) int32 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt32 && b == -1:
		return a
	}
	return a / b
}

func remainder(a, b int32) int32 {
	switch {
	case b == 0:
		return a
	case a == math.MinInt32 && b == -1:
		return 0
	}
	return a % b
}
