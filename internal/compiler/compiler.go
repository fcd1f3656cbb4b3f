package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"chocogen/pkg/ast"
	"chocogen/pkg/codegen"
	"chocogen/pkg/codegen/assembly"
	"chocogen/pkg/color"
	"chocogen/pkg/interpreter"
	"chocogen/pkg/symbols"

	"github.com/charmbracelet/log"
	"github.com/hokaccha/go-prettyjson"
	"github.com/jmespath-community/go-jmespath"
)

// ErrProgramFailed is returned by Run when the program exits with a non-zero
// code.
var ErrProgramFailed = errors.New("program exited with an error")

type Compiler struct {
	Verbose    bool   // print the generated assembly and section banners
	NoColor    bool   // disable colored output
	Comments   bool   // annotate the generated assembly
	HeapSize   int    // heap in MiB; the code generator default when zero
	MaxSteps   int    // instruction limit for Run; unlimited when zero
	SourceFile string // typed AST in JSON
	OutputFile string // assembly written by Build
	Query      string // JMESPath expression applied to the layout

	Stdout io.Writer // where Run and Layout write; os.Stdout when nil

	exitCode int
}

// ExitCode is the exit code of the last program run.
func (opts *Compiler) ExitCode() int {
	return opts.exitCode
}

func (opts *Compiler) stdout() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}
	return opts.Stdout
}

// analyze loads the typed AST and builds its descriptors.
func (opts *Compiler) analyze() (*symbols.Analysis, error) {
	log.Info("Processing file", "file", opts.SourceFile)

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.SourceFile, err)
	}
	p, err := ast.Decode(input)
	if err != nil {
		return nil, err
	}
	a, err := symbols.Analyze(p)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return a, nil
}

// generate translates the source file into assembly.
func (opts *Compiler) generate() (assembly.Assembly, error) {
	a, err := opts.analyze()
	if err != nil {
		return nil, err
	}
	prog := codegen.NewProgram(a, codegen.Options{
		Output:   opts.OutputFile,
		Comments: opts.Comments,
		HeapSize: opts.HeapSize << 20,
	})
	if err := prog.Generate(); err != nil {
		return nil, fmt.Errorf("assembly generation failed: %w", err)
	}
	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.Banner("Generated Assembly"))
		fmt.Fprintln(opts.stdout(), prog.GetCode())
	}
	return prog, nil
}

// Compile writes the assembly for the source file to OutputFile.
func (opts *Compiler) Compile() error {
	prog, err := opts.generate()
	if err != nil {
		return err
	}
	if err := prog.Build(); err != nil {
		return fmt.Errorf("assembly build failed: %w", err)
	}
	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.Success("wrote "+opts.OutputFile))
	}
	return nil
}

// Run compiles the source file and executes it in the interpreter.
func (opts *Compiler) Run() error {
	prog, err := opts.generate()
	if err != nil {
		return err
	}
	if opts.OutputFile != "" {
		if err := prog.Build(); err != nil {
			return fmt.Errorf("assembly build failed: %w", err)
		}
	}

	out := opts.stdout()
	if opts.Verbose {
		fmt.Fprintln(out, color.Banner("Program Output"))
	}
	res, err := interpreter.Exec(prog.GetCode(),
		interpreter.WithWriter(out),
		interpreter.WithMaxSteps(opts.MaxSteps))
	if err != nil {
		return fmt.Errorf("interpretation failed: %w", err)
	}
	opts.exitCode = res.ExitCode
	log.Debug("program finished", "exit", res.ExitCode, "steps", res.Steps)
	if opts.Verbose {
		fmt.Fprintln(out, color.ExitStatus(res.ExitCode))
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: code %d", ErrProgramFailed, res.ExitCode)
	}
	return nil
}

// Layout prints the object and frame layouts chosen for the source file,
// filtered through Query when set.
func (opts *Compiler) Layout() error {
	a, err := opts.analyze()
	if err != nil {
		return err
	}
	var v any = a.Layout()
	if opts.Query != "" {
		if v, err = query(v, opts.Query); err != nil {
			return err
		}
	}
	f := prettyjson.NewFormatter()
	f.DisabledColor = opts.NoColor
	data, err := f.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}
	fmt.Fprintln(opts.stdout(), string(data))
	return nil
}

// query evaluates a JMESPath expression over the JSON form of v.
func query(v any, expr string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to render layout: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to render layout: %w", err)
	}
	res, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid layout query %q: %w", expr, err)
	}
	return res, nil
}
