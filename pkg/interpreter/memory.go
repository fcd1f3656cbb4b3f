package interpreter

import (
	"encoding/binary"
	"fmt"
)

// Address space of a loaded program.
const (
	TextBase  uint32 = 0x00400000
	DataBase  uint32 = 0x10000000
	StackTop  uint32 = 0x7ffffff0
	pageShift        = 12
	pageSize         = 1 << pageShift
)

// memory is a sparse little-endian byte store, allocated a page at a time on
// first write. Unwritten memory reads as zero.
type memory struct {
	pages map[uint32]*[pageSize]byte
}

func newMemory() *memory {
	return &memory{pages: make(map[uint32]*[pageSize]byte)}
}

func (m *memory) page(addr uint32, create bool) *[pageSize]byte {
	p, ok := m.pages[addr>>pageShift]
	if !ok && create {
		p = new([pageSize]byte)
		m.pages[addr>>pageShift] = p
	}
	return p
}

func (m *memory) loadByte(addr uint32) byte {
	if p := m.page(addr, false); p != nil {
		return p[addr&(pageSize-1)]
	}
	return 0
}

func (m *memory) storeByte(addr uint32, b byte) {
	m.page(addr, true)[addr&(pageSize-1)] = b
}

func (m *memory) loadWord(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, fmt.Errorf("misaligned word load at %#x", addr)
	}
	var buf [4]byte
	for k := range buf {
		buf[k] = m.loadByte(addr + uint32(k))
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (m *memory) storeWord(addr, v uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("misaligned word store at %#x", addr)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	for k, b := range buf {
		m.storeByte(addr+uint32(k), b)
	}
	return nil
}

// cString reads bytes from addr up to the first NUL.
func (m *memory) cString(addr uint32, limit int) ([]byte, error) {
	var out []byte
	for len(out) < limit {
		b := m.loadByte(addr)
		if b == 0 {
			return out, nil
		}
		out = append(out, b)
		addr++
	}
	return nil, fmt.Errorf("unterminated string at %#x", addr)
}
