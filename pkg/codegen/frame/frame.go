// Package frame tracks the temporary stack slots of one activation record
// while its body is translated, and derives the frame size from the peak.
//
// Two kinds of use share one count. Reserve and ReleaseTop manage slots at
// the stack pointer, used for outgoing call arguments. ClaimFromBottom and
// Release hand out slots at fixed fp-relative offsets below the ones already
// claimed, used for values that must survive nested evaluation.
package frame

import "fmt"

// Alignment is the frame size granularity in bytes.
const Alignment = 16

const wordSize = 4

// Error reports a release of more slots than are held. It is raised with
// panic and means the translator is broken.
type Error struct {
	Op        string
	Requested int
	Held      int
}

func (e *Error) Error() string {
	return fmt.Sprintf("frame: %s(%d) with only %d slots held", e.Op, e.Requested, e.Held)
}

// Allocator counts slots for one function body.
type Allocator struct {
	live    int
	peak    int
	claimed int
}

// New returns an allocator with nothing held.
func New() *Allocator {
	return &Allocator{}
}

// Reserve takes one slot at the top of the frame.
func (a *Allocator) Reserve() {
	a.live++
	if a.live > a.peak {
		a.peak = a.live
	}
}

// ClaimFromBottom takes the next slot below those already claimed and
// returns its byte offset from fp (-4, -8, ...).
func (a *Allocator) ClaimFromBottom() int {
	a.Reserve()
	a.claimed++
	return -a.claimed * wordSize
}

// ReleaseTop gives back n slots taken with Reserve.
func (a *Allocator) ReleaseTop(n int) {
	if n > a.live-a.claimed {
		panic(&Error{Op: "ReleaseTop", Requested: n, Held: a.live - a.claimed})
	}
	a.live -= n
}

// Release gives back the n most recently claimed bottom slots.
func (a *Allocator) Release(n int) {
	if n > a.claimed {
		panic(&Error{Op: "Release", Requested: n, Held: a.claimed})
	}
	a.claimed -= n
	a.live -= n
}

// FrameSize is the peak slot count in bytes rounded up to Alignment.
func (a *Allocator) FrameSize() int {
	size := a.peak * wordSize
	return (size + Alignment - 1) / Alignment * Alignment
}

// Live is the number of slots currently held, reserved or claimed.
func (a *Allocator) Live() int { return a.live }

// Claimed is the number of slots handed out from the bottom.
func (a *Allocator) Claimed() int { return a.claimed }

// Peak is the highest Live count seen so far.
func (a *Allocator) Peak() int { return a.peak }
