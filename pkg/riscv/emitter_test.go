package riscv_test

import (
	"strings"
	"testing"

	"chocogen/pkg/riscv"

	"github.com/stretchr/testify/require"
)

func TestEmitterSections(t *testing.T) {
	e := riscv.NewEmitter(false)
	e.GlobalLabel("main")
	e.Li(riscv.A0, 10, "dropped")
	e.Lw(riscv.T0, riscv.FP, -12, "")
	e.SwGlobal(riscv.A0, "$x", riscv.T0, "")
	e.AddiSym(riscv.SP, riscv.SP, "-@f.size", "")
	e.Ecall("")
	e.Equiv("@f.size", 32)
	e.DataGlobalLabel("$x")
	e.Word(-1, "")

	want := strings.Join([]string{
		".text",
		".globl main",
		"main:",
		"  li     a0, 10",
		"  lw     t0, -12(fp)",
		"  sw     a0, $x, t0",
		"  addi   sp, sp, -@f.size",
		"  ecall",
		".equiv @f.size, 32",
		"",
		".data",
		".globl $x",
		"  .align 2",
		"$x:",
		"  .word -1",
		"",
	}, "\n")
	require.Equal(t, want, e.Code())
}

func TestComments(t *testing.T) {
	e := riscv.NewEmitter(true)
	e.Mv(riscv.A0, riscv.Zero, "None")
	e.Comment("note")
	require.Equal(t, ".text\n  mv     a0, zero                          # None\n  # note\n", e.Code())
}

func TestFreshLabelsAreUnique(t *testing.T) {
	e := riscv.NewEmitter(false)
	seen := map[riscv.Label]bool{}
	for i := 0; i < 100; i++ {
		l := e.FreshLabel()
		require.False(t, seen[l], l)
		seen[l] = true
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a\\b", `"a\\b"`},
		{"line\n\ttab", `"line\n\ttab"`},
		{"\x01\xff", `"\x01\xff"`},
	}
	for _, test := range tests {
		require.Equal(t, test.out, riscv.Quote(test.in))
	}
}
