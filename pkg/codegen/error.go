package codegen

import (
	"errors"
	"fmt"

	"chocogen/pkg/ast"
)

// ErrDefect is returned by Generate when the typed tree and the descriptors
// disagree, or the slot accounting of a function does not balance. Both mean
// the input or this package is broken; no partial output is produced.
var ErrDefect = errors.New("code generation defect")

// Error is raised with panic inside the translator and recovered by Generate.
type Error struct {
	Pos ast.Location
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func defect(n ast.Node, format string, args ...any) {
	var pos ast.Location
	if n != nil {
		pos = n.Pos()
	}
	panic(&Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}
