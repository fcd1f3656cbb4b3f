// Package interpreter assembles and executes RV32IM programs in the Venus
// dialect the code generator emits. It exists so generated programs can be
// run and checked without an external simulator.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrNotExited        = errors.New("program has not exited")
)

// Fault is a runtime error of the simulated machine.
type Fault struct {
	PC   int
	Line int
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("pc %d (line %d): %s", f.PC, f.Line, f.Msg)
}

// Interpreter runs one loaded program.
type Interpreter struct {
	prog *Program
	regs [32]int32
	pc   int // index into prog.Text
	mem  *memory
	brk  uint32 // end of the sbrk heap

	out io.Writer

	maxSteps int // 0 means unlimited
	steps    int

	exited   bool
	exitCode int
}

type Option func(*Interpreter)

// WithWriter sets where the print ecalls write.
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps bounds the number of executed instructions.
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// NewInterpreter loads p with the stack pointer at StackTop and the heap
// break just past the data.
func NewInterpreter(p *Program, opts ...Option) *Interpreter {
	it := &Interpreter{prog: p}
	for _, o := range opts {
		o(it)
	}
	if it.out == nil {
		it.out = os.Stdout
	}
	it.Reset()
	return it
}

// Reset reloads data and registers and rewinds to the entry point.
func (i *Interpreter) Reset() {
	i.mem = newMemory()
	for k, b := range i.prog.Data {
		i.mem.storeByte(DataBase+uint32(k), b)
	}
	i.regs = [32]int32{}
	i.regs[2] = int32(StackTop)
	i.brk = (DataBase + uint32(len(i.prog.Data)) + pageSize - 1) &^ (pageSize - 1)
	i.pc = i.prog.Entry
	i.steps = 0
	i.exited = false
	i.exitCode = 0
}

// Step executes one instruction and reports whether the program exited.
func (i *Interpreter) Step() (bool, error) {
	if i.exited {
		return true, nil
	}
	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, ErrMaxStepsExceeded
	}
	err := i.exec()
	i.steps++
	return i.exited, err
}

// Run executes until the program exits or faults.
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// ExitCode is the code passed to the exit ecall.
func (i *Interpreter) ExitCode() (int, error) {
	if !i.exited {
		return 0, ErrNotExited
	}
	return i.exitCode, nil
}

// Steps is the number of instructions executed so far.
func (i *Interpreter) Steps() int {
	return i.steps
}

// Reg returns the value of register name.
func (i *Interpreter) Reg(name string) int32 {
	return i.regs[registers[name]]
}

// Word reads the memory word at addr.
func (i *Interpreter) Word(addr uint32) (int32, error) {
	v, err := i.mem.loadWord(addr)
	return int32(v), err
}

// Result is the observable outcome of a run.
type Result struct {
	ExitCode int
	Steps    int
}

// Exec assembles src and runs it to completion.
func Exec(src string, opts ...Option) (Result, error) {
	p, err := Assemble(src)
	if err != nil {
		return Result{}, fmt.Errorf("assemble: %w", err)
	}
	it := NewInterpreter(p, opts...)
	if err := it.Run(); err != nil {
		return Result{Steps: it.Steps()}, err
	}
	code, _ := it.ExitCode()
	return Result{ExitCode: code, Steps: it.Steps()}, nil
}
