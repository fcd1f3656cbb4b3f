package ast

// Constructors for building typed trees directly, mostly from tests and tools
// that synthesize programs. Each expression builder takes the static type the
// type checker would have assigned.

func Int(v int32) *IntegerLiteral {
	return &IntegerLiteral{typed: typed{InferredType: IntType}, Value: v}
}

func Bool(v bool) *BooleanLiteral {
	return &BooleanLiteral{typed: typed{InferredType: BoolType}, Value: v}
}

func Str(s string) *StringLiteral {
	return &StringLiteral{typed: typed{InferredType: StrType}, Value: s}
}

func None() *NoneLiteral {
	return &NoneLiteral{typed: typed{InferredType: NoneType}}
}

func Name(name string, t Type) *Identifier {
	return &Identifier{typed: typed{InferredType: t}, Name: name}
}

func Unary(op string, x Expr) *UnaryExpr {
	var t Type = IntType
	if op == "not" {
		t = BoolType
	}
	return &UnaryExpr{typed: typed{InferredType: t}, Operator: op, Operand: x}
}

func Binary(l Expr, op string, r Expr, t Type) *BinaryExpr {
	return &BinaryExpr{typed: typed{InferredType: t}, Left: l, Operator: op, Right: r}
}

func Cond(cond, then, els Expr, t Type) *IfExpr {
	return &IfExpr{typed: typed{InferredType: t}, Condition: cond, Then: then, Else: els}
}

func Call(fn *Identifier, t Type, args ...Expr) *CallExpr {
	return &CallExpr{typed: typed{InferredType: t}, Function: fn, Args: args}
}

func MethodCall(m *MemberExpr, t Type, args ...Expr) *MethodCallExpr {
	return &MethodCallExpr{typed: typed{InferredType: t}, Method: m, Args: args}
}

func Member(obj Expr, name string, t Type) *MemberExpr {
	return &MemberExpr{typed: typed{InferredType: t}, Object: obj, Member: Name(name, t)}
}

func Index(list, idx Expr, t Type) *IndexExpr {
	return &IndexExpr{typed: typed{InferredType: t}, List: list, Index: idx}
}

func List(t Type, elems ...Expr) *ListExpr {
	return &ListExpr{typed: typed{InferredType: t}, Elements: elems}
}

func ClassOf(name string) *ClassValueType {
	switch name {
	case "int":
		return IntType
	case "bool":
		return BoolType
	case "str":
		return StrType
	case "object":
		return ObjectType
	}
	return &ClassValueType{Name: name}
}

func ListOf(elem ValueType) *ListValueType { return &ListValueType{Elem: elem} }

func Func(ret ValueType, params ...ValueType) *FuncType {
	return &FuncType{Params: params, Return: ret}
}

func Eval(e Expr) *ExprStmt { return &ExprStmt{Expr: e} }

func Assign(value Expr, targets ...Expr) *AssignStmt {
	return &AssignStmt{Targets: targets, Value: value}
}

func If(cond Expr, then []Stmt, els []Stmt) *IfStmt {
	return &IfStmt{Condition: cond, ThenBody: then, ElseBody: els}
}

func While(cond Expr, body ...Stmt) *WhileStmt {
	return &WhileStmt{Condition: cond, Body: body}
}

func For(id *Identifier, iter Expr, body ...Stmt) *ForStmt {
	return &ForStmt{Identifier: id, Iterable: iter, Body: body}
}

func Return(v Expr) *ReturnStmt { return &ReturnStmt{Value: v} }

func Annot(name string) *ClassType { return &ClassType{ClassName: name} }

func ListAnnot(elem TypeAnnotation) *ListType { return &ListType{Elem: elem} }

func Param(name string, t TypeAnnotation) *TypedVar {
	return &TypedVar{Identifier: Name(name, t.ValueType()), Type: t}
}

func Var(name string, t TypeAnnotation, v Literal) *VarDef {
	return &VarDef{Var: Param(name, t), Value: v}
}

func Def(name string, params []*TypedVar, ret TypeAnnotation, decls []Decl, body ...Stmt) *FuncDef {
	if ret == nil {
		ret = Annot("<None>")
	}
	return &FuncDef{
		Name:         Name(name, nil),
		Params:       params,
		ReturnType:   ret,
		Declarations: decls,
		Statements:   body,
	}
}

func ClassDecl(name, super string, decls ...Decl) *ClassDef {
	return &ClassDef{Name: Name(name, nil), SuperClass: Name(super, nil), Declarations: decls}
}

func Global(name string) *GlobalDecl { return &GlobalDecl{Variable: Name(name, nil)} }

func NonLocal(name string) *NonLocalDecl { return &NonLocalDecl{Variable: Name(name, nil)} }
