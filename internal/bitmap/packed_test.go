package bitmap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPacked(t *testing.T) {
	tests := []struct {
		width     uint
		length    uint64
		wantWords int
	}{
		{1, 64, 1},
		{1, 65, 2},
		{3, 21, 1},
		{3, 22, 2},
		{11, 1024, 176},
		{64, 10, 10},
		{7, 0, 0},
	}

	for _, tt := range tests {
		p := NewPacked(tt.width, tt.length)
		require.Len(t, p.Words(), tt.wantWords, "width=%d length=%d", tt.width, tt.length)
		require.Equal(t, tt.length, p.Len())
		require.Equal(t, tt.width, p.Width())
		for i := uint64(0); i < tt.length; i++ {
			require.Zero(t, p.Get(i))
		}
	}
}

func TestNewPackedBadWidth(t *testing.T) {
	require.Panics(t, func() { NewPacked(0, 8) })
	require.Panics(t, func() { NewPacked(65, 8) })
}

func TestPackedRoundTripAllWidths(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for width := uint(1); width <= 64; width++ {
		const length = 200
		p := NewPacked(width, length)
		want := make([]uint64, length)
		for i := range want {
			want[i] = rng.Uint64() & widthMask(width)
			p.Set(uint64(i), want[i])
		}
		for i := range want {
			require.Equal(t, want[i], p.Get(uint64(i)), "width=%d index=%d", width, i)
		}
	}
}

func TestPackedSetDoesNotDisturbNeighbours(t *testing.T) {
	// 13-bit values straddle word boundaries at several indexes.
	p := NewPacked(13, 20)
	for i := uint64(0); i < 20; i++ {
		p.Set(i, widthMask(13))
	}

	p.Set(4, 0) // bits 52..64 span two words
	for i := uint64(0); i < 20; i++ {
		if i == 4 {
			require.Zero(t, p.Get(i))
		} else {
			require.Equal(t, widthMask(13), p.Get(i), "index %d", i)
		}
	}
}

func TestPackedSetTruncatesToWidth(t *testing.T) {
	p := NewPacked(4, 3)
	p.Set(1, 0xFF)
	require.Equal(t, uint64(0xF), p.Get(1))
	require.Zero(t, p.Get(0))
	require.Zero(t, p.Get(2))
}

func TestPackedBounds(t *testing.T) {
	p := NewPacked(5, 10)
	require.Panics(t, func() { p.Get(10) })
	require.Panics(t, func() { p.Set(10, 1) })
}

func TestPackedCloneEqualClear(t *testing.T) {
	p := NewPacked(9, 50)
	for i := uint64(0); i < 50; i += 3 {
		p.Set(i, i+1)
	}

	c := p.Clone()
	require.True(t, p.Equal(c))

	c.Set(0, 100)
	require.False(t, p.Equal(c))
	require.Equal(t, uint64(1), p.Get(0), "clone must not alias the original")

	require.False(t, p.Equal(NewPacked(8, 50)))

	p.Clear()
	for i := uint64(0); i < 50; i++ {
		require.Zero(t, p.Get(i))
	}
}

func TestNewPackedFromWords(t *testing.T) {
	p := NewPacked(6, 30)
	for i := uint64(0); i < 30; i++ {
		p.Set(i, i)
	}

	restored, err := NewPackedFromWords(6, 30, p.Words())
	require.NoError(t, err)
	require.True(t, p.Equal(restored))

	_, err = NewPackedFromWords(6, 31, p.Words()[:1])
	require.Error(t, err)
	_, err = NewPackedFromWords(0, 30, p.Words())
	require.Error(t, err)
}
