// Package codegen translates an analyzed ChocoPy program into RV32IM assembly
// for the Venus simulator.
//
// Values travel in a0. Every temporary that must survive the evaluation of a
// subexpression is spilled to a slot of the current frame handed out by a
// frame.Allocator, and the frame size of each routine is fixed after its body
// has been translated, through an .equiv symbol the prologue refers to.
package codegen

import (
	"fmt"
	"os"

	"chocogen/pkg/ast"
	"chocogen/pkg/codegen/assembly"
	"chocogen/pkg/codegen/frame"
	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
	"chocogen/pkg/symbols"

	"github.com/charmbracelet/log"
)

// DefaultHeapSize is the heap requested at startup, in bytes.
const DefaultHeapSize = 32 << 20

// Options control generation.
type Options struct {
	Output   string // path Build writes the assembly to
	Comments bool   // annotate instructions
	HeapSize int    // bytes; DefaultHeapSize when zero
}

// Program generates the assembly of one analyzed program.
type Program struct {
	a    *symbols.Analysis
	opts Options

	e      *riscv.Emitter
	consts *constants
	lib    *runtime.Library
	code   string
}

// NewProgram returns a generator for a.
func NewProgram(a *symbols.Analysis, opts Options) assembly.Assembly {
	if opts.HeapSize == 0 {
		opts.HeapSize = DefaultHeapSize
	}
	return &Program{a: a, opts: opts}
}

// Generate translates the whole program. Internal inconsistencies abort it
// with an error wrapping ErrDefect.
func (p *Program) Generate() (err error) {
	p.e = riscv.NewEmitter(p.opts.Comments)
	p.consts = newConstants()
	p.lib = runtime.New(p.e, p.consts)
	p.code = ""

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r := r.(type) {
		case *Error:
			err = fmt.Errorf("%w: %v", ErrDefect, r)
		case *frame.Error:
			err = fmt.Errorf("%w: %v", ErrDefect, r)
		default:
			panic(r)
		}
	}()

	p.emitTopLevel()
	for _, f := range p.a.Functions {
		p.emitFunction(f)
	}
	p.lib.Emit()

	p.emitPrototypes()
	p.emitDispatchTables()
	p.emitGlobals()
	p.consts.emit(p.e, p.a)
	p.lib.EmitCharTable()

	p.code = p.e.Code()
	log.Debug("generated program", "functions", len(p.a.Functions), "bytes", len(p.code))
	return nil
}

// GetCode returns the text produced by the last successful Generate.
func (p *Program) GetCode() string {
	return p.code
}

// Build writes the generated assembly to the configured output path.
func (p *Program) Build() error {
	if p.opts.Output == "" {
		return fmt.Errorf("no output path")
	}
	if err := os.WriteFile(p.opts.Output, []byte(p.code), 0644); err != nil {
		return fmt.Errorf("failed to write assembly file: %w", err)
	}
	log.Info("wrote assembly", "path", p.opts.Output)
	return nil
}

// staticValue is the data word initializing a location of type t with lit.
// Object-typed locations get a boxed constant for int and bool literals.
func (p *Program) staticValue(lit ast.Literal, t ast.ValueType) (int32, riscv.Label) {
	switch lit := lit.(type) {
	case *ast.IntegerLiteral:
		if ast.IsObject(t) {
			return 0, p.consts.Int(lit.Value)
		}
		return lit.Value, ""
	case *ast.BooleanLiteral:
		if ast.IsObject(t) {
			return 0, p.consts.Bool(lit.Value)
		}
		if lit.Value {
			return 1, ""
		}
		return 0, ""
	case *ast.StringLiteral:
		return 0, p.consts.Str(lit.Value)
	case *ast.NoneLiteral, nil:
		return 0, ""
	}
	defect(lit, "initializer %T is not a literal", lit)
	return 0, ""
}

func (p *Program) emitStatic(lit ast.Literal, t ast.ValueType, comment string) {
	v, l := p.staticValue(lit, t)
	if l != "" {
		p.e.WordLabel(l, comment)
		return
	}
	p.e.Word(v, comment)
}

// emitPrototypes writes one template object per class. alloc copies it.
func (p *Program) emitPrototypes() {
	for _, c := range p.a.Classes {
		words := runtime.HeaderWords + len(c.Attributes)
		if c == p.a.Str {
			words++
		}
		p.e.DataGlobalLabel(riscv.Label(c.PrototypeLabel))
		emitHeader(p.e, c, words)
		for _, attr := range c.Attributes {
			p.emitStatic(attr.Init, attr.Type, attr.Name)
		}
		if c == p.a.Str {
			p.e.Word(0, "empty string")
		}
	}
}

func (p *Program) emitDispatchTables() {
	for _, c := range p.a.Classes {
		if c.DispatchTableLabel == "" {
			continue
		}
		p.e.DataGlobalLabel(riscv.Label(c.DispatchTableLabel))
		for _, m := range c.Methods {
			p.e.WordLabel(riscv.Label(m.CodeLabel), m.Name)
		}
	}
}

func (p *Program) emitGlobals() {
	for _, g := range p.a.GlobalVars {
		p.e.DataGlobalLabel(riscv.Label(g.Label))
		p.emitStatic(g.Init, g.Type, g.Name)
	}
}
