package codegen

import (
	"fmt"

	"chocogen/pkg/codegen/runtime"
	"chocogen/pkg/riscv"
	"chocogen/pkg/symbols"
)

// constants interns the static objects of a program: the two bools, string
// literals and boxed ints. const_0 is False and const_1 is True; the rest are
// numbered in the order they are first requested.
type constants struct {
	strs  map[string]riscv.Label
	ints  map[int32]riscv.Label
	order []constant
	next  int
}

type constant struct {
	label riscv.Label
	str   *string
	val   int32
}

func newConstants() *constants {
	return &constants{
		strs: make(map[string]riscv.Label),
		ints: make(map[int32]riscv.Label),
		next: 2,
	}
}

func (c *constants) fresh() riscv.Label {
	l := riscv.Label(fmt.Sprintf("const_%d", c.next))
	c.next++
	return l
}

// Bool returns the shared True or False object.
func (c *constants) Bool(b bool) riscv.Label {
	if b {
		return "const_1"
	}
	return "const_0"
}

// Str returns the string object holding s.
func (c *constants) Str(s string) riscv.Label {
	if l, ok := c.strs[s]; ok {
		return l
	}
	l := c.fresh()
	c.strs[s] = l
	c.order = append(c.order, constant{label: l, str: &s})
	return l
}

// Int returns a boxed int object holding v.
func (c *constants) Int(v int32) riscv.Label {
	if l, ok := c.ints[v]; ok {
		return l
	}
	l := c.fresh()
	c.ints[v] = l
	c.order = append(c.order, constant{label: l, val: v})
	return l
}

// emit writes every interned object to the data section, bools first.
func (c *constants) emit(e *riscv.Emitter, a *symbols.Analysis) {
	for _, b := range []bool{false, true} {
		e.DataGlobalLabel(c.Bool(b))
		emitHeader(e, a.Bool, 4)
		v := int32(0)
		if b {
			v = 1
		}
		e.Word(v, "__bool__")
	}
	for _, k := range c.order {
		e.DataGlobalLabel(k.label)
		if k.str != nil {
			n := len(*k.str)
			emitHeader(e, a.Str, 4+(n+4)/4)
			e.Word(int32(n), "__len__")
			e.String(*k.str, "")
			continue
		}
		emitHeader(e, a.Int, 4)
		e.Word(k.val, "__int__")
	}
}

func emitHeader(e *riscv.Emitter, c *symbols.ClassInfo, words int) {
	e.Word(int32(c.TypeTag), "type tag")
	e.Word(int32(words), "size in words")
	if c.DispatchTableLabel == "" {
		e.Word(0, "no dispatch table")
		return
	}
	e.WordLabel(riscv.Label(c.DispatchTableLabel), "dispatch table")
}

var _ runtime.Constants = (*constants)(nil)
