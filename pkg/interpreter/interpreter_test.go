package interpreter_test

import (
	"bytes"
	"errors"
	"testing"

	"chocogen/pkg/interpreter"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, interpreter.Result, error) {
	t.Helper()
	var out bytes.Buffer
	res, err := interpreter.Exec(src, interpreter.WithWriter(&out), interpreter.WithMaxSteps(100000))
	return out.String(), res, err
}

func TestArithmeticAndPrint(t *testing.T) {
	src := `
.text
main:
  li   t0, 6
  li   t1, -4
  mul  a1, t0, t1      # -24
  li   a0, 1
  ecall
  li   a0, 11
  li   a1, 10
  ecall
  li   a0, 10
  ecall
`
	out, res, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "-24\n", out)
	require.Equal(t, 0, res.ExitCode)
}

func TestDivisionFollowsRV32M(t *testing.T) {
	tests := []struct {
		op     string
		a, b   int
		result string
	}{
		{"div", -7, 2, "-3"},
		{"rem", -7, 2, "-1"},
		{"div", 7, 0, "-1"},
		{"rem", 7, 0, "7"},
		{"div", -2147483648, -1, "-2147483648"},
		{"rem", -2147483648, -1, "0"},
	}

	for _, test := range tests {
		src := ".text\nmain:\n" +
			"  li t0, " + itoa(test.a) + "\n" +
			"  li t1, " + itoa(test.b) + "\n" +
			"  " + test.op + " a1, t0, t1\n" +
			"  li a0, 1\n  ecall\n  li a0, 10\n  ecall\n"
		out, _, err := run(t, src)
		require.NoError(t, err)
		require.Equal(t, test.result, out, "%s %d, %d", test.op, test.a, test.b)
	}
}

func itoa(n int) string {
	if n < 0 {
		return "-" + itoa(-n)
	}
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}

func TestDataStringsAndSymbols(t *testing.T) {
	src := `
.text
main:
  la   a1, msg
  addi a1, a1, 4
  li   a0, 4
  ecall
  lw   a1, count
  li   a0, 1
  ecall
  li   a0, 10
  ecall

.data
.align 2
msg:
  .word 0
  .string "hi \"there\"\n"
.align 2
count:
  .word @n+1
.equiv @n, 41
`
	out, _, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "hi \"there\"\n42", out)
}

func TestCallAndReturn(t *testing.T) {
	src := `
.text
main:
  li   sp, 0x7ffffff0
  addi sp, sp, -@main.size
  li   a0, 20
  jal  double
  mv   a1, a0
  li   a0, 17
  ecall
double:
  add  a0, a0, a0
  addi a0, a0, 2
  jr   ra
.equiv @main.size, 16
`
	_, res, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 42, res.ExitCode)
}

func TestLoopAndBranches(t *testing.T) {
	src := `
.text
main:
  li   t0, 0
  li   t1, 0
loop:
  addi t0, t0, 1
  add  t1, t1, t0
  li   t2, 10
  blt  t0, t2, loop
  mv   a1, t1
  li   a0, 17
  ecall
`
	_, res, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 55, res.ExitCode)
}

func TestSbrkReturnsOldBreak(t *testing.T) {
	src := `
.text
main:
  li   a0, 9
  li   a1, 64
  ecall
  mv   t0, a0
  li   a0, 9
  li   a1, 8
  ecall
  sub  a1, a0, t0
  li   a0, 17
  ecall
`
	_, res, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 64, res.ExitCode)
}

func TestByteAccess(t *testing.T) {
	src := `
.text
main:
  la   t0, buf
  li   t1, 200
  sb   t1, 1(t0)
  lbu  a1, 1(t0)
  lb   t2, 1(t0)
  add  a1, a1, t2      # 200 + -56
  li   a0, 17
  ecall
.data
buf:
  .space 4
`
	_, res, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 144, res.ExitCode)
}

func TestFaults(t *testing.T) {
	t.Run("misaligned word", func(t *testing.T) {
		_, _, err := run(t, ".text\nmain:\n  li t0, 2\n  lw a0, 0(t0)\n")
		var f *interpreter.Fault
		require.True(t, errors.As(err, &f))
		require.Equal(t, 1, f.PC)
	})
	t.Run("falls off the text", func(t *testing.T) {
		_, _, err := run(t, ".text\nmain:\n  nop\n")
		var f *interpreter.Fault
		require.True(t, errors.As(err, &f))
	})
	t.Run("step limit", func(t *testing.T) {
		_, _, err := run(t, ".text\nmain:\n  j main\n")
		require.ErrorIs(t, err, interpreter.ErrMaxStepsExceeded)
	})
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{".text\nmain:\n  frob a0\n", 3},
		{".text\nmain:\nmain:\n", 3},
		{".text\nmain:\n  j nowhere\n", 3},
		{".text\n  add a0, a1\n", 2},
		{".data\n  .bogus 1\n", 2},
	}

	for _, test := range tests {
		_, err := interpreter.Assemble(test.src)
		var ae *interpreter.AssembleError
		require.True(t, errors.As(err, &ae), test.src)
		require.Equal(t, test.line, ae.Line, test.src)
	}
}

func TestStepAndRegisters(t *testing.T) {
	p, err := interpreter.Assemble(".text\nmain:\n  li a0, 7\n  li a1, 3\n  li a0, 17\n  ecall\n")
	require.NoError(t, err)

	it := interpreter.NewInterpreter(p)
	halted, err := it.Step()
	require.NoError(t, err)
	require.False(t, halted)
	require.Equal(t, int32(7), it.Reg("a0"))
	require.Equal(t, int32(interpreter.StackTop), it.Reg("sp"))

	_, err = it.ExitCode()
	require.ErrorIs(t, err, interpreter.ErrNotExited)

	require.NoError(t, it.Run())
	code, err := it.ExitCode()
	require.NoError(t, err)
	require.Equal(t, 3, code)
	require.Equal(t, 4, it.Steps())
}
