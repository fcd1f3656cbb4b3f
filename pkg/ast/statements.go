package ast

type stmt struct {
	Location Location
}

func (s *stmt) Pos() Location { return s.Location }
func (s *stmt) stmtNode()     {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	stmt
	Expr Expr
}

// AssignStmt assigns Value to every target, left to right.
type AssignStmt struct {
	stmt
	Targets []Expr
	Value   Expr
}

// IfStmt is an if statement. An elif chain is a nested IfStmt in ElseBody.
type IfStmt struct {
	stmt
	Condition Expr
	ThenBody  []Stmt
	ElseBody  []Stmt
}

// WhileStmt is a while loop.
type WhileStmt struct {
	stmt
	Condition Expr
	Body      []Stmt
}

// ForStmt iterates Identifier over the elements of a list or the characters
// of a string.
type ForStmt struct {
	stmt
	Identifier *Identifier
	Iterable   Expr
	Body       []Stmt
}

// ReturnStmt returns from the enclosing function. Value is nil for a bare
// return.
type ReturnStmt struct {
	stmt
	Value Expr
}
