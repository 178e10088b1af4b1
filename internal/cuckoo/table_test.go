package cuckoo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableTryPlace(t *testing.T) {
	tbl := newTable(8, 4, 12, 1)

	for i := uint64(1); i <= 4; i++ {
		require.True(t, tbl.tryPlace(3, i), "slot %d should be free", i)
	}
	require.False(t, tbl.tryPlace(3, 99), "bucket 3 is full")
	require.True(t, tbl.tryPlace(4, 99), "neighbouring bucket is unaffected")
	require.Equal(t, 5, tbl.occupied())
}

func TestTableContainsAndRemove(t *testing.T) {
	tbl := newTable(8, 4, 12, 1)
	require.True(t, tbl.tryPlace(1, 7))
	require.True(t, tbl.tryPlace(5, 7))
	require.True(t, tbl.tryPlace(5, 9))

	require.True(t, tbl.contains(1, 2, 7))
	require.True(t, tbl.contains(2, 5, 9))
	require.False(t, tbl.contains(1, 2, 9))

	// One occurrence at a time, first bucket first.
	require.True(t, tbl.remove(1, 5, 7))
	require.False(t, tbl.bucketContains(1, 7))
	require.True(t, tbl.bucketContains(5, 7))
	require.True(t, tbl.remove(1, 5, 7))
	require.False(t, tbl.remove(1, 5, 7))
	require.Equal(t, 1, tbl.occupied())
}

func TestTableEvictAndRestore(t *testing.T) {
	tbl := newTable(4, 2, 8, 42)
	require.True(t, tbl.tryPlace(2, 10))
	require.True(t, tbl.tryPlace(2, 20))
	before := tbl.slots.Clone()

	slot, evicted := tbl.evictAndPlace(2, 30)
	require.Contains(t, []uint64{tbl.slot(2, 0), tbl.slot(2, 1)}, slot)
	require.Contains(t, []uint64{10, 20}, evicted)
	require.True(t, tbl.bucketContains(2, 30))
	require.False(t, tbl.bucketContains(2, evicted))

	tbl.restore(slot, evicted)
	require.True(t, before.Equal(tbl.slots))
}

func TestTableClear(t *testing.T) {
	tbl := newTable(2, 4, 16, 1)
	for i := uint64(1); i <= 8; i++ {
		require.True(t, tbl.tryPlace(i%2, i))
	}
	require.Equal(t, 8, tbl.occupied())
	require.Equal(t, uint64(8), tbl.capacity())

	tbl.clear()
	require.Zero(t, tbl.occupied())
}
