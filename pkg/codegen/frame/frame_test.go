package frame_test

import (
	"testing"

	"chocogen/pkg/codegen/frame"

	"github.com/stretchr/testify/require"
)

func TestClaimOffsets(t *testing.T) {
	a := frame.New()
	require.Equal(t, -4, a.ClaimFromBottom())
	require.Equal(t, -8, a.ClaimFromBottom())
	a.Reserve()
	require.Equal(t, -12, a.ClaimFromBottom())
	require.Equal(t, 4, a.Live())
	require.Equal(t, 3, a.Claimed())

	a.Release(1)
	require.Equal(t, -12, a.ClaimFromBottom(), "released slot is handed out again")
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		peak int
		size int
	}{
		{0, 0},
		{1, 16},
		{4, 16},
		{5, 32},
		{8, 32},
		{9, 48},
	}

	for _, test := range tests {
		a := frame.New()
		for i := 0; i < test.peak; i++ {
			a.Reserve()
		}
		a.ReleaseTop(test.peak)
		require.Equal(t, test.size, a.FrameSize(), "peak %d", test.peak)
		require.Equal(t, test.peak, a.Peak())
		require.Zero(t, a.Live())
	}
}

func TestFrameSizeIndependentOfReleaseOrder(t *testing.T) {
	sequences := map[string]func(a *frame.Allocator){
		"claims then top": func(a *frame.Allocator) {
			a.ClaimFromBottom()
			a.ClaimFromBottom()
			a.Reserve()
			a.Reserve()
			a.Reserve()
			a.ReleaseTop(3)
			a.Release(2)
		},
		"interleaved": func(a *frame.Allocator) {
			a.Reserve()
			a.ClaimFromBottom()
			a.Reserve()
			a.ClaimFromBottom()
			a.Reserve()
			a.Release(1)
			a.ReleaseTop(1)
			a.Release(1)
			a.ReleaseTop(2)
		},
		"top first": func(a *frame.Allocator) {
			a.Reserve()
			a.Reserve()
			a.Reserve()
			a.ClaimFromBottom()
			a.ClaimFromBottom()
			a.ReleaseTop(2)
			a.Release(1)
			a.ReleaseTop(1)
			a.Release(1)
		},
	}

	for name, run := range sequences {
		a := frame.New()
		run(a)
		require.Equal(t, 5, a.Peak(), name)
		require.Equal(t, 32, a.FrameSize(), name)
		require.Zero(t, a.Live(), name)
		require.Zero(t, a.Claimed(), name)
	}
}

func TestOverReleasePanics(t *testing.T) {
	a := frame.New()
	a.ClaimFromBottom()

	var ferr *frame.Error
	require.PanicsWithError(t, "frame: ReleaseTop(1) with only 0 slots held", func() { a.ReleaseTop(1) })
	func() {
		defer func() {
			r := recover()
			require.ErrorAs(t, r.(error), &ferr)
		}()
		a.Release(2)
	}()
	require.Equal(t, "Release", ferr.Op)
	require.Equal(t, 1, ferr.Held)
}
