package symbols_test

import (
	"testing"

	"chocogen/pkg/ast"
	"chocogen/pkg/symbols"

	"github.com/stretchr/testify/require"
)

func TestPredefinedClasses(t *testing.T) {
	a, err := symbols.Analyze(&ast.Program{})
	require.NoError(t, err)

	tests := []struct {
		class    *symbols.ClassInfo
		name     string
		tag      int
		dispatch string
	}{
		{a.Object, "object", symbols.ObjectTag, "$object$dispatchTable"},
		{a.Int, "int", symbols.IntTag, "$int$dispatchTable"},
		{a.Bool, "bool", symbols.BoolTag, "$bool$dispatchTable"},
		{a.Str, "str", symbols.StrTag, "$str$dispatchTable"},
		{a.List, ".list", symbols.ListTag, ""},
	}
	for _, test := range tests {
		require.Equal(t, test.name, test.class.Name)
		require.Equal(t, test.tag, test.class.TypeTag)
		require.Equal(t, test.dispatch, test.class.DispatchTableLabel)
	}

	require.Equal(t, "print", a.Print.CodeLabel)
	require.Equal(t, "len", a.Len.CodeLabel)
	require.Same(t, a.Print, a.Globals.Get("print"))
	require.Equal(t, 0, a.Str.AttributeIndex("__len__"))
	require.Equal(t, 0, a.Object.MethodIndex("__init__"))
}

func TestClassesInheritAndOverride(t *testing.T) {
	self := ast.Param("self", ast.Annot("A"))
	p := &ast.Program{Declarations: []ast.Decl{
		ast.ClassDecl("A", "object",
			ast.Var("x", ast.Annot("int"), ast.Int(1)),
			ast.Def("f", []*ast.TypedVar{self}, nil, nil),
			ast.Def("g", []*ast.TypedVar{self}, nil, nil),
		),
		ast.ClassDecl("B", "A",
			ast.Var("y", ast.Annot("bool"), ast.Bool(true)),
			ast.Def("g", []*ast.TypedVar{ast.Param("self", ast.Annot("B"))}, nil, nil),
			ast.Def("__init__", []*ast.TypedVar{ast.Param("self", ast.Annot("B"))}, nil, nil),
		),
	}}
	a, err := symbols.Analyze(p)
	require.NoError(t, err)

	b, ok := a.Globals.Get("B").(*symbols.ClassInfo)
	require.True(t, ok)
	require.Equal(t, symbols.FirstUserTag+1, b.TypeTag)
	require.Equal(t, "A", b.Super.Name)

	var attrs, methods []string
	for _, attr := range b.Attributes {
		attrs = append(attrs, attr.Name)
	}
	for _, m := range b.Methods {
		methods = append(methods, m.CodeLabel)
	}
	require.Equal(t, []string{"x", "y"}, attrs)
	require.Equal(t, []string{"$B.__init__", "$A.f", "$B.g"}, methods)
}

func TestNestedFunctions(t *testing.T) {
	p := &ast.Program{Declarations: []ast.Decl{
		ast.Var("total", ast.Annot("int"), ast.Int(0)),
		ast.Def("f", []*ast.TypedVar{ast.Param("a", ast.Annot("int")), ast.Param("b", ast.Annot("int"))}, nil,
			[]ast.Decl{
				ast.Var("c", ast.Annot("int"), ast.Int(0)),
				ast.Def("g", nil, nil, []ast.Decl{
					ast.NonLocal("c"),
					ast.Global("total"),
					ast.Def("h", nil, nil, nil),
				}),
				ast.Def("k", nil, nil, nil),
			}),
	}}
	a, err := symbols.Analyze(p)
	require.NoError(t, err)

	var names []string
	for _, f := range a.Functions {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"f", "f.g", "f.g.h", "f.k"}, names)

	f, g, h := a.Functions[0], a.Functions[1], a.Functions[2]
	require.Equal(t, 0, f.Depth)
	require.Equal(t, 2, h.Depth)
	require.Same(t, g, h.Parent)
	require.Equal(t, "$f.g.h", h.CodeLabel)

	require.Equal(t, 0, f.VarIndex("a"))
	require.Equal(t, 2, f.VarIndex("c"))
	require.Equal(t, -1, f.VarIndex("g"))

	c, ok := g.Symbols.Get("c").(*symbols.StackVarInfo)
	require.True(t, ok)
	require.Same(t, f, c.Func)
	require.IsType(t, &symbols.GlobalVarInfo{}, g.Symbols.Get("total"))
	require.Same(t, h, g.Symbols.Get("h"))
	require.Same(t, c, h.Symbols.Get("c"))
}

func TestUnresolvedDeclarations(t *testing.T) {
	tests := []struct {
		name string
		decl ast.Decl
	}{
		{"unknown global", ast.Def("f", nil, nil, []ast.Decl{ast.Global("nope")})},
		{"nonlocal at depth 0", ast.Def("f", nil, nil, []ast.Decl{ast.NonLocal("x")})},
		{"unknown superclass", ast.ClassDecl("A", "Missing")},
	}
	for _, test := range tests {
		_, err := symbols.Analyze(&ast.Program{Declarations: []ast.Decl{test.decl}})
		require.ErrorIs(t, err, symbols.ErrUnresolved, test.name)
	}
}

func TestLayout(t *testing.T) {
	p := &ast.Program{Declarations: []ast.Decl{
		ast.Var("g", ast.Annot("str"), ast.Str("")),
		ast.Def("f", []*ast.TypedVar{ast.Param("a", ast.Annot("int")), ast.Param("b", ast.Annot("object"))}, nil,
			[]ast.Decl{
				ast.Var("c", ast.Annot("bool"), ast.Bool(false)),
				ast.Def("inner", []*ast.TypedVar{ast.Param("z", ast.Annot("int"))}, nil, nil),
			}),
	}}
	a, err := symbols.Analyze(p)
	require.NoError(t, err)

	l := a.Layout()
	require.Len(t, l.Classes, 5)
	require.Equal(t, "12", l.Classes[1].Attributes[0].Location)

	f := l.Functions[0]
	require.Equal(t, "4(fp)", f.Params[0].Location)
	require.Equal(t, "0(fp)", f.Params[1].Location)
	require.Equal(t, "-12(fp)", f.Locals[0].Location)
	require.Nil(t, f.StaticLink)

	inner := l.Functions[1]
	require.Equal(t, "f", inner.Parent)
	require.NotNil(t, inner.StaticLink)
	require.Equal(t, 4, *inner.StaticLink)

	require.Equal(t, []symbols.VarLayout{{Name: "g", Type: "str", Location: "$g"}}, l.Globals)
}
