package ast_test

import (
	"testing"

	"chocogen/pkg/ast"

	"github.com/stretchr/testify/require"
)

const typedProgram = `{
  "kind": "Program",
  "location": [1, 1, 4, 9],
  "declarations": [
    {
      "kind": "VarDef",
      "location": [1, 1, 1, 10],
      "var": {
        "kind": "TypedVar",
        "identifier": {"kind": "Identifier", "name": "x"},
        "type": {"kind": "ClassType", "className": "int"}
      },
      "value": {
        "kind": "IntegerLiteral",
        "inferredType": {"kind": "ClassValueType", "className": "int"},
        "value": 3
      }
    },
    {
      "kind": "FuncDef",
      "name": {"kind": "Identifier", "name": "f"},
      "params": [
        {
          "kind": "TypedVar",
          "identifier": {"kind": "Identifier", "name": "xs"},
          "type": {"kind": "ListType", "elementType": {"kind": "ClassType", "className": "int"}}
        }
      ],
      "returnType": {"kind": "ClassType", "className": "int"},
      "declarations": [{"kind": "GlobalDecl", "variable": {"kind": "Identifier", "name": "x"}}],
      "statements": [
        {
          "kind": "ReturnStmt",
          "value": {
            "kind": "IndexExpr",
            "inferredType": {"kind": "ClassValueType", "className": "int"},
            "list": {
              "kind": "Identifier",
              "inferredType": {"kind": "ListValueType", "elementType": {"kind": "ClassValueType", "className": "int"}},
              "name": "xs"
            },
            "index": {"kind": "Identifier", "inferredType": {"kind": "ClassValueType", "className": "int"}, "name": "x"}
          }
        }
      ]
    }
  ],
  "statements": [
    {
      "kind": "ExprStmt",
      "location": [4, 1, 4, 9],
      "expr": {
        "kind": "CallExpr",
        "inferredType": {"kind": "ClassValueType", "className": "<None>"},
        "function": {
          "kind": "Identifier",
          "inferredType": {
            "kind": "FuncType",
            "parameters": [{"kind": "ClassValueType", "className": "object"}],
            "returnType": {"kind": "ClassValueType", "className": "<None>"}
          },
          "name": "print"
        },
        "args": [
          {"kind": "StringLiteral", "inferredType": {"kind": "ClassValueType", "className": "str"}, "value": "hi"}
        ]
      }
    },
    {"kind": "ReturnStmt", "value": null}
  ],
  "errors": {"kind": "Errors", "errors": []}
}`

func TestDecode(t *testing.T) {
	p, err := ast.Decode([]byte(typedProgram))
	require.NoError(t, err)
	require.Equal(t, ast.Location{1, 1, 4, 9}, p.Pos())
	require.Len(t, p.Declarations, 2)
	require.Len(t, p.Statements, 2)

	v, ok := p.Declarations[0].(*ast.VarDef)
	require.True(t, ok)
	require.Equal(t, "x", v.Var.Identifier.Name)
	require.True(t, ast.IsInt(v.Var.Identifier.Type()))
	require.Equal(t, int32(3), v.Value.(*ast.IntegerLiteral).Value)

	f, ok := p.Declarations[1].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, "[int]", f.Params[0].Type.ValueType().String())
	require.IsType(t, &ast.GlobalDecl{}, f.Declarations[0])
	ret := f.Statements[0].(*ast.ReturnStmt)
	idx := ret.Value.(*ast.IndexExpr)
	require.True(t, ast.IsList(idx.List.Type()))

	call := p.Statements[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	require.Equal(t, "print", call.Function.Name)
	require.True(t, ast.IsFunc(call.Function.Type()))
	require.Equal(t, "hi", call.Args[0].(*ast.StringLiteral).Value)
	require.Nil(t, p.Statements[1].(*ast.ReturnStmt).Value)
}

func TestDecodeRejectsFrontEndErrors(t *testing.T) {
	src := `{
	  "kind": "Program",
	  "declarations": [],
	  "statements": [],
	  "errors": {"kind": "Errors", "errors": [
	    {"kind": "CompilerError", "location": [2, 3, 2, 5], "message": "Not a variable: y"}
	  ]}
	}`
	_, err := ast.Decode([]byte(src))
	require.ErrorIs(t, err, ast.ErrFrontEnd)
	require.Contains(t, err.Error(), "Not a variable: y")
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not json", `{`},
		{"wrong root", `{"kind": "ExprStmt"}`},
		{"unknown statement", `{"kind": "Program", "statements": [{"kind": "GotoStmt"}]}`},
		{"unknown expression", `{"kind": "Program", "statements": [{"kind": "ExprStmt", "expr": {"kind": "Lambda"}}]}`},
		{"non-literal initializer", `{"kind": "Program", "declarations": [{"kind": "VarDef",
			"var": {"identifier": {"name": "x"}, "type": {"kind": "ClassType", "className": "int"}},
			"value": {"kind": "Identifier", "name": "y"}}]}`},
	}
	for _, test := range tests {
		_, err := ast.Decode([]byte(test.src))
		require.Error(t, err, test.name)
	}
}

func TestTypeHelpers(t *testing.T) {
	require.True(t, ast.NeedsBox(ast.IntType, ast.ObjectType))
	require.True(t, ast.NeedsBox(ast.BoolType, ast.ObjectType))
	require.False(t, ast.NeedsBox(ast.IntType, ast.IntType))
	require.False(t, ast.NeedsBox(ast.StrType, ast.ObjectType))
	require.True(t, ast.Equal(ast.ListOf(ast.IntType), ast.ListOf(ast.ClassOf("int"))))
	require.False(t, ast.Equal(ast.ListOf(ast.IntType), ast.IntType))
	require.Same(t, ast.NoneType, ast.Annot("<None>").ValueType())
}
