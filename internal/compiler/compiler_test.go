package compiler_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chocogen/internal/compiler"
	"chocogen/pkg/color"

	"github.com/stretchr/testify/require"
)

func classType(name string) string {
	return `{"kind": "ClassValueType", "className": "` + name + `"}`
}

func printCall(arg string) string {
	return `{"kind": "ExprStmt", "expr": {
	  "kind": "CallExpr", "inferredType": ` + classType("<None>") + `,
	  "function": {"kind": "Identifier", "name": "print"},
	  "args": [` + arg + `]}}`
}

func intLit(v string) string {
	return `{"kind": "IntegerLiteral", "inferredType": ` + classType("int") + `, "value": ` + v + `}`
}

// source is: x: int = 6; print("hi"); print(x * 7)
var source = `{
  "kind": "Program",
  "declarations": [{
    "kind": "VarDef",
    "var": {"kind": "TypedVar", "identifier": {"kind": "Identifier", "name": "x"},
            "type": {"kind": "ClassType", "className": "int"}},
    "value": ` + intLit("6") + `
  }],
  "statements": [
    ` + printCall(`{"kind": "StringLiteral", "inferredType": `+classType("str")+`, "value": "hi"}`) + `,
    ` + printCall(`{"kind": "BinaryExpr", "inferredType": `+classType("int")+`,
        "left": {"kind": "Identifier", "inferredType": `+classType("int")+`, "name": "x"},
        "operator": "*", "right": `+intLit("7")+`}`) + `
  ],
  "errors": {"kind": "Errors", "errors": []}
}`

// failing is: print(1 // 0)
var failing = `{
  "kind": "Program",
  "declarations": [],
  "statements": [` + printCall(`{"kind": "BinaryExpr", "inferredType": `+classType("int")+`,
      "left": `+intLit("1")+`, "operator": "//", "right": `+intLit("0")+`}`) + `]
}`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	require.True(t, json.Valid([]byte(src)))
	path := filepath.Join(t.TempDir(), "prog.ast.json")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestCompileWritesAssembly(t *testing.T) {
	out := filepath.Join(t.TempDir(), "prog.s")
	c := &compiler.Compiler{SourceFile: writeSource(t, source), OutputFile: out}
	require.NoError(t, c.Compile())

	asm, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(asm), ".text\n"))
	require.Contains(t, string(asm), "main:")
}

func TestCompileVerboseReportsOutput(t *testing.T) {
	color.EnableColor(false)
	var stdout bytes.Buffer
	out := filepath.Join(t.TempDir(), "prog.s")
	c := &compiler.Compiler{SourceFile: writeSource(t, source), OutputFile: out, Stdout: &stdout, Verbose: true}
	require.NoError(t, c.Compile())
	require.Contains(t, stdout.String(), "=== Generated Assembly ===")
	require.True(t, strings.HasSuffix(stdout.String(), "Success: wrote "+out+"\n"))
}

func TestRun(t *testing.T) {
	var stdout bytes.Buffer
	c := &compiler.Compiler{SourceFile: writeSource(t, source), Stdout: &stdout}
	require.NoError(t, c.Run())
	require.Equal(t, "hi\n42\n", stdout.String())
	require.Equal(t, 0, c.ExitCode())
}

func TestRunReportsExitCode(t *testing.T) {
	var stdout bytes.Buffer
	c := &compiler.Compiler{SourceFile: writeSource(t, failing), Stdout: &stdout}
	err := c.Run()
	require.ErrorIs(t, err, compiler.ErrProgramFailed)
	require.Equal(t, 2, c.ExitCode())
	require.Equal(t, "Division by zero\n", stdout.String())
}

func TestRunVerbose(t *testing.T) {
	color.EnableColor(false)
	var stdout bytes.Buffer
	c := &compiler.Compiler{SourceFile: writeSource(t, source), Stdout: &stdout, Verbose: true}
	require.NoError(t, c.Run())
	s := stdout.String()
	require.Contains(t, s, "=== Generated Assembly ===")
	require.Contains(t, s, "=== Program Output ===\nhi\n42\n")
	require.Contains(t, s, "exit code 0")
}

func TestLayout(t *testing.T) {
	var stdout bytes.Buffer
	c := &compiler.Compiler{SourceFile: writeSource(t, source), Stdout: &stdout, NoColor: true}
	require.NoError(t, c.Layout())
	require.NotContains(t, stdout.String(), "\x1b[")

	var layout struct {
		Globals []struct {
			Name     string `json:"name"`
			Location string `json:"location"`
		} `json:"globals"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &layout))
	require.Len(t, layout.Globals, 1)
	require.Equal(t, "$x", layout.Globals[0].Location)
}

func TestLayoutQuery(t *testing.T) {
	var stdout bytes.Buffer
	c := &compiler.Compiler{
		SourceFile: writeSource(t, source),
		Stdout:     &stdout,
		NoColor:    true,
		Query:      "globals[?name=='x'].location | [0]",
	}
	require.NoError(t, c.Layout())
	require.Equal(t, "\"$x\"\n", stdout.String())

	c.Query = "globals[?"
	require.Error(t, c.Layout())
}

func TestMissingSource(t *testing.T) {
	c := &compiler.Compiler{SourceFile: filepath.Join(t.TempDir(), "nope.json")}
	require.Error(t, c.Run())
}
