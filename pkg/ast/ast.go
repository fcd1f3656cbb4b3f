// Package ast defines the typed abstract syntax tree consumed by the code
// generator. Trees are produced by an external front end (parser and type
// checker) and are read-only by the time they reach this module: every
// expression already carries its inferred static type.
//
// The node set is closed. Expressions implement Expr, statements implement
// Stmt and top-level or nested declarations implement Decl; the unexported
// marker methods keep other packages from adding kinds, so a type switch over
// the kinds listed here is exhaustive.
package ast

import "fmt"

// Location is the source span of a node: start line, start column, end line,
// end column (all 1-based, as reported by the front end).
type Location [4]int

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l[0], l[1])
}

// Node is any element of the tree.
type Node interface {
	Pos() Location
}

// Expr is an expression node. Every expression evaluates to a single word
// value whose representation is dictated by Type().
type Expr interface {
	Node
	Type() Type
	exprNode()
}

// Stmt is a statement node. Statements produce no value.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a declaration: variable, function, class, global or nonlocal.
type Decl interface {
	Node
	declNode()
}

// Literal is an expression that may initialize a variable or attribute.
type Literal interface {
	Expr
	literalNode()
}

// Program is the root of a typed tree.
type Program struct {
	Location     Location
	Declarations []Decl
	Statements   []Stmt
}

func (p *Program) Pos() Location { return p.Location }

// typed carries the fields shared by all expressions.
type typed struct {
	Location     Location
	InferredType Type
}

func (t *typed) Pos() Location { return t.Location }

// Type returns the static type assigned by the type checker.
func (t *typed) Type() Type { return t.InferredType }

// SetType replaces the inferred type. Only builders and the JSON loader use it.
func (t *typed) SetType(typ Type) { t.InferredType = typ }

func (t *typed) exprNode() {}
