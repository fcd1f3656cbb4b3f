package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Instr is one decoded instruction. Pseudo instructions are kept as written
// and expanded by the executor. Imm holds the resolved immediate, offset or
// absolute target address.
type Instr struct {
	Op           string
	Rd, Rs1, Rs2 int
	Imm          int32
	Line         int
}

// Program is an assembled program ready to load.
type Program struct {
	Text    []Instr
	Data    []byte
	Symbols map[string]int32
	Entry   int
}

// AssembleError reports a line the assembler could not accept.
type AssembleError struct {
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var (
	labelRe = regexp.MustCompile(`^([A-Za-z_.$@][\w.$@]*):`)
	memRe   = regexp.MustCompile(`^(.*)\((\w+)\)$`)
)

var registers = func() map[string]int {
	r := map[string]int{
		"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
		"t0": 5, "t1": 6, "t2": 7, "s0": 8, "fp": 8, "s1": 9,
		"t3": 28, "t4": 29, "t5": 30, "t6": 31,
	}
	for k := 0; k < 8; k++ {
		r[fmt.Sprintf("a%d", k)] = 10 + k
	}
	for k := 2; k <= 11; k++ {
		r[fmt.Sprintf("s%d", k)] = 16 + k
	}
	for k := 0; k < 32; k++ {
		r[fmt.Sprintf("x%d", k)] = k
	}
	return r
}()

type rawInstr struct {
	op   string
	args []string
	line int
}

type fixup struct {
	offset int
	expr   string
	line   int
}

type assembler struct {
	text    []rawInstr
	data    []byte
	fixups  []fixup
	symbols map[string]int32
	inData  bool
}

// Assemble parses src. Labels, .equiv symbols and .word operands may be
// used before they are defined.
func Assemble(src string) (*Program, error) {
	a := &assembler{symbols: make(map[string]int32)}
	for n, line := range strings.Split(src, "\n") {
		if err := a.line(stripComment(line), n+1); err != nil {
			return nil, err
		}
	}

	p := &Program{Data: a.data, Symbols: a.symbols}
	for _, f := range a.fixups {
		v, err := a.eval(f.expr)
		if err != nil {
			return nil, &AssembleError{Line: f.line, Msg: err.Error()}
		}
		putWord(p.Data[f.offset:], uint32(v))
	}
	for _, r := range a.text {
		in, err := a.decode(r)
		if err != nil {
			return nil, &AssembleError{Line: r.line, Msg: err.Error()}
		}
		p.Text = append(p.Text, in)
	}
	if main, ok := a.symbols["main"]; ok {
		p.Entry = int(uint32(main)-TextBase) / 4
	}
	return p, nil
}

func putWord(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

// stripComment drops a trailing # comment outside string literals.
func stripComment(line string) string {
	inStr := false
	for k := 0; k < len(line); k++ {
		switch c := line[k]; {
		case c == '\\' && inStr:
			k++
		case c == '"':
			inStr = !inStr
		case c == '#' && !inStr:
			return line[:k]
		}
	}
	return line
}

func (a *assembler) line(line string, n int) error {
	line = strings.TrimSpace(line)
	for {
		m := labelRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		if _, dup := a.symbols[m[1]]; dup {
			return &AssembleError{Line: n, Msg: "duplicate label " + m[1]}
		}
		if a.inData {
			a.symbols[m[1]] = int32(DataBase + uint32(len(a.data)))
		} else {
			a.symbols[m[1]] = int32(TextBase + uint32(4*len(a.text)))
		}
		line = strings.TrimSpace(line[len(m[0]):])
	}
	if line == "" {
		return nil
	}

	op, rest, _ := strings.Cut(line, " ")
	if k := strings.IndexByte(op, '\t'); k >= 0 {
		op, rest = op[:k], op[k+1:]+" "+rest
	}
	rest = strings.TrimSpace(rest)

	if strings.HasPrefix(op, ".") {
		if err := a.directive(op, rest, n); err != nil {
			return &AssembleError{Line: n, Msg: err.Error()}
		}
		return nil
	}
	if a.inData {
		return &AssembleError{Line: n, Msg: "instruction in data section: " + op}
	}
	a.text = append(a.text, rawInstr{op: op, args: splitArgs(rest), line: n})
	return nil
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for k := range parts {
		parts[k] = strings.TrimSpace(parts[k])
	}
	return parts
}

func (a *assembler) directive(op, rest string, n int) error {
	switch op {
	case ".text":
		a.inData = false
	case ".data":
		a.inData = true
	case ".globl", ".global":
	case ".equiv", ".equ", ".set":
		args := splitArgs(rest)
		if len(args) != 2 {
			return fmt.Errorf("%s wants a name and a value", op)
		}
		v, err := a.eval(args[1])
		if err != nil {
			return err
		}
		a.symbols[args[0]] = v
	case ".word":
		for _, arg := range splitArgs(rest) {
			a.fixups = append(a.fixups, fixup{offset: len(a.data), expr: arg, line: n})
			a.data = append(a.data, 0, 0, 0, 0)
		}
	case ".string", ".asciiz":
		s, err := unquote(rest)
		if err != nil {
			return err
		}
		a.data = append(a.data, s...)
		a.data = append(a.data, 0)
	case ".space":
		size, err := a.eval(rest)
		if err != nil {
			return err
		}
		a.data = append(a.data, make([]byte, size)...)
	case ".align":
		k, err := a.eval(rest)
		if err != nil {
			return err
		}
		for align := 1 << k; len(a.data)%align != 0; {
			a.data = append(a.data, 0)
		}
	default:
		return fmt.Errorf("unknown directive %s", op)
	}
	return nil
}

// unquote decodes a string literal with \n, \t, \", \\, \0 and \xHH escapes.
func unquote(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, fmt.Errorf("malformed string %s", s)
	}
	s = s[1 : len(s)-1]
	var out []byte
	for k := 0; k < len(s); k++ {
		if s[k] != '\\' {
			out = append(out, s[k])
			continue
		}
		k++
		if k >= len(s) {
			return nil, fmt.Errorf("dangling escape")
		}
		switch s[k] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		case 'x':
			if k+3 > len(s) {
				return nil, fmt.Errorf("short \\x escape")
			}
			v, err := strconv.ParseUint(s[k+1:k+3], 16, 8)
			if err != nil {
				return nil, err
			}
			out = append(out, byte(v))
			k += 2
		default:
			out = append(out, s[k])
		}
	}
	return out, nil
}

// eval computes a sum of integer and symbol terms such as "-@f.size" or
// "@f.size-4".
func (a *assembler) eval(expr string) (int32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	var total int32
	sign := int32(1)
	start := 0
	if expr[0] == '-' || expr[0] == '+' {
		if expr[0] == '-' {
			sign = -1
		}
		start = 1
	}
	for k := start; k <= len(expr); k++ {
		if k < len(expr) && expr[k] != '+' && expr[k] != '-' {
			continue
		}
		v, err := a.term(strings.TrimSpace(expr[start:k]))
		if err != nil {
			return 0, err
		}
		total += sign * v
		if k < len(expr) {
			sign = 1
			if expr[k] == '-' {
				sign = -1
			}
		}
		start = k + 1
	}
	return total, nil
}

func (a *assembler) term(t string) (int32, error) {
	if t == "" {
		return 0, fmt.Errorf("missing operand")
	}
	if c := t[0]; c >= '0' && c <= '9' {
		v, err := strconv.ParseInt(t, 0, 64)
		if err != nil {
			return 0, err
		}
		return int32(v), nil
	}
	v, ok := a.symbols[t]
	if !ok {
		return 0, fmt.Errorf("undefined symbol %s", t)
	}
	return v, nil
}

func (a *assembler) reg(s string) (int, error) {
	r, ok := registers[s]
	if !ok {
		return 0, fmt.Errorf("unknown register %q", s)
	}
	return r, nil
}

// address decodes "off(reg)" or a bare absolute expression.
func (a *assembler) address(s string) (int32, int, error) {
	if m := memRe.FindStringSubmatch(s); m != nil {
		base, err := a.reg(m[2])
		if err != nil {
			return 0, 0, err
		}
		off := int32(0)
		if strings.TrimSpace(m[1]) != "" {
			if off, err = a.eval(m[1]); err != nil {
				return 0, 0, err
			}
		}
		return off, base, nil
	}
	v, err := a.eval(s)
	return v, 0, err
}

var (
	rtypeOps  = set("add", "sub", "mul", "mulh", "div", "divu", "rem", "remu", "xor", "and", "or", "slt", "sltu", "sll", "srl", "sra")
	itypeOps  = set("addi", "xori", "andi", "ori", "slti", "sltiu", "slli", "srli", "srai")
	unaryOps  = set("mv", "neg", "not", "seqz", "snez", "sltz", "sgtz")
	branchOps = set("beq", "bne", "blt", "bge", "bltu", "bgeu", "bgt", "ble", "bgtu", "bleu")
	zeroBrOps = set("beqz", "bnez", "bltz", "bgez", "blez", "bgtz")
	loadOps   = set("lw", "lb", "lbu", "lh", "lhu")
	storeOps  = set("sw", "sb", "sh")
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// decode resolves the operands of one instruction against the symbol table.
func (a *assembler) decode(r rawInstr) (Instr, error) {
	in := Instr{Op: r.op, Line: r.line}
	args := r.args
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s wants %d operands, got %d", r.op, n, len(args))
		}
		return nil
	}
	regs := func(dst ...*int) error {
		for k, d := range dst {
			v, err := a.reg(args[k])
			if err != nil {
				return err
			}
			*d = v
		}
		return nil
	}

	var err error
	switch op := r.op; {
	case rtypeOps[op]:
		if err = want(3); err == nil {
			err = regs(&in.Rd, &in.Rs1, &in.Rs2)
		}
	case itypeOps[op]:
		if err = want(3); err == nil {
			if err = regs(&in.Rd, &in.Rs1); err == nil {
				in.Imm, err = a.eval(args[2])
			}
		}
	case unaryOps[op]:
		if err = want(2); err == nil {
			err = regs(&in.Rd, &in.Rs1)
		}
	case branchOps[op]:
		if err = want(3); err == nil {
			if err = regs(&in.Rs1, &in.Rs2); err == nil {
				in.Imm, err = a.eval(args[2])
			}
		}
	case zeroBrOps[op]:
		if err = want(2); err == nil {
			if err = regs(&in.Rs1); err == nil {
				in.Imm, err = a.eval(args[1])
			}
		}
	case loadOps[op]:
		if err = want(2); err == nil {
			if err = regs(&in.Rd); err == nil {
				in.Imm, in.Rs1, err = a.address(args[1])
			}
		}
	case storeOps[op]:
		// "sw rs, label, tmp" stores to an absolute address.
		if len(args) == 3 {
			args = args[:2]
		}
		if err = want(2); err == nil {
			if in.Rs2, err = a.reg(args[0]); err == nil {
				in.Imm, in.Rs1, err = a.address(args[1])
			}
		}
	case op == "li" || op == "la" || op == "lui" || op == "auipc":
		if err = want(2); err == nil {
			if err = regs(&in.Rd); err == nil {
				in.Imm, err = a.eval(args[1])
			}
		}
	case op == "j":
		if err = want(1); err == nil {
			in.Imm, err = a.eval(args[0])
		}
	case op == "jal":
		in.Rd = registers["ra"]
		if len(args) == 2 {
			if err = regs(&in.Rd); err == nil {
				in.Imm, err = a.eval(args[1])
			}
		} else if err = want(1); err == nil {
			in.Imm, err = a.eval(args[0])
		}
	case op == "jalr":
		in.Rd = registers["ra"]
		switch len(args) {
		case 1:
			err = regs(&in.Rs1)
		case 2:
			if err = regs(&in.Rd); err == nil {
				in.Imm, in.Rs1, err = a.address(args[1])
			}
		case 3:
			if err = regs(&in.Rd, &in.Rs1); err == nil {
				in.Imm, err = a.eval(args[2])
			}
		default:
			err = want(1)
		}
	case op == "jr":
		if err = want(1); err == nil {
			err = regs(&in.Rs1)
		}
	case op == "ret":
		in.Op, in.Rs1 = "jr", registers["ra"]
		err = want(0)
	case op == "ecall" || op == "nop":
		err = want(0)
	default:
		err = fmt.Errorf("unknown instruction %s", op)
	}
	return in, err
}
