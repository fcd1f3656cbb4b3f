// Package stack provides the LIFO used to track nested scopes while
// descriptors are built.
package stack

type Stack[T any] struct {
	items []T
}

// NewStack returns a stack holding elm, last element on top.
func NewStack[T any](elm ...T) *Stack[T] {
	s := &Stack[T]{items: make([]T, 0, len(elm))}
	s.items = append(s.items, elm...)
	return s
}

// Push places elm on top.
func (s *Stack[T]) Push(elm T) {
	s.items = append(s.items, elm)
}

// Pop removes the top element. An empty stack yields the zero value.
func (s *Stack[T]) Pop() T {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero
	}
	top := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return top
}

// Size is the number of elements held.
func (s *Stack[T]) Size() int {
	return len(s.items)
}
