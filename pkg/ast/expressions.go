package ast

// IntegerLiteral is a 32-bit integer constant.
type IntegerLiteral struct {
	typed
	Value int32
}

func (*IntegerLiteral) literalNode() {}

// BooleanLiteral is True or False.
type BooleanLiteral struct {
	typed
	Value bool
}

func (*BooleanLiteral) literalNode() {}

// StringLiteral is a string constant.
type StringLiteral struct {
	typed
	Value string
}

func (*StringLiteral) literalNode() {}

// NoneLiteral is None.
type NoneLiteral struct {
	typed
}

func (*NoneLiteral) literalNode() {}

// Identifier names a variable, function or class.
type Identifier struct {
	typed
	Name string
}

// UnaryExpr is "-x" or "not x".
type UnaryExpr struct {
	typed
	Operator string
	Operand  Expr
}

// BinaryExpr is an arithmetic, relational or logical operation.
type BinaryExpr struct {
	typed
	Left     Expr
	Operator string
	Right    Expr
}

// IfExpr is "Then if Condition else Else".
type IfExpr struct {
	typed
	Condition Expr
	Then      Expr
	Else      Expr
}

// CallExpr calls a function or constructs an instance of a class.
type CallExpr struct {
	typed
	Function *Identifier
	Args     []Expr
}

// MethodCallExpr calls a bound method.
type MethodCallExpr struct {
	typed
	Method *MemberExpr
	Args   []Expr
}

// MemberExpr selects an attribute or a method of an object.
type MemberExpr struct {
	typed
	Object Expr
	Member *Identifier
}

// IndexExpr indexes into a list or a string.
type IndexExpr struct {
	typed
	List  Expr
	Index Expr
}

// ListExpr is a list display.
type ListExpr struct {
	typed
	Elements []Expr
}
