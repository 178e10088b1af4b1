package cuckoo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/hashing"
)

func TestFilterSnapshotRoundTrip(t *testing.T) {
	hasher := hashing.NewHasher(hashing.Key{3, 4}, hashing.Key{5, 6})
	f, err := New(500, 0.01, WithHasher(hasher), WithMaxKicks(100))
	require.NoError(t, err)

	items := common.Items("snap-", 0, 400)
	for _, item := range items {
		require.NoError(t, f.Insert(item))
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFilter(&buf, f))

	restored, err := ReadFilter(&buf)
	require.NoError(t, err)

	require.Equal(t, f.Len(), restored.Len())
	require.Equal(t, f.BucketCount(), restored.BucketCount())
	require.Equal(t, f.BucketSize(), restored.BucketSize())
	require.Equal(t, f.FingerprintBits(), restored.FingerprintBits())
	require.Equal(t, f.MaxKicks(), restored.MaxKicks())
	require.Equal(t, f.ExpectedItems(), restored.ExpectedItems())
	require.Equal(t, hasher, restored.hasher)
	require.True(t, f.table.slots.Equal(restored.table.slots))
	common.RequireAllPresent(t, restored.Contains, items)

	require.NoError(t, restored.Insert([]byte("after-restore")))
	require.True(t, restored.Contains([]byte("after-restore")))
}

func TestScalableSnapshotRoundTrip(t *testing.T) {
	sf, err := NewScalable(50, 0.01, WithGrowthFactor(3), WithTighteningRatio(0.8), WithSeed(8))
	require.NoError(t, err)

	items := common.Items("gen-", 0, 500)
	for _, item := range items {
		require.NoError(t, sf.Insert(item))
	}
	require.Greater(t, sf.GenerationCount(), 1)

	var buf bytes.Buffer
	require.NoError(t, WriteScalable(&buf, sf))

	restored, err := ReadScalable(&buf)
	require.NoError(t, err)

	require.Equal(t, sf.GenerationCount(), restored.GenerationCount())
	require.Equal(t, sf.Len(), restored.Len())
	require.Equal(t, sf.opts.GrowthFactor, restored.opts.GrowthFactor)
	require.Equal(t, sf.opts.TighteningRatio, restored.opts.TighteningRatio)
	for i := 0; i < sf.GenerationCount(); i++ {
		require.True(t, sf.Generation(i).table.slots.Equal(restored.Generation(i).table.slots))
	}
	common.RequireAllPresent(t, restored.Contains, items)

	more := common.Items("more-", 0, 1000)
	for _, item := range more {
		require.NoError(t, restored.Insert(item))
	}
	common.RequireAllPresent(t, restored.Contains, more)
	require.GreaterOrEqual(t, restored.GenerationCount(), sf.GenerationCount())
}

func TestSnapshotKindMismatch(t *testing.T) {
	f, err := New(10, 0.01)
	require.NoError(t, err)
	sf, err := NewScalable(10, 0.01)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFilter(&buf, f))
	_, err = ReadScalable(&buf)
	require.ErrorIs(t, err, filter.ErrInvalidParameter)

	buf.Reset()
	require.NoError(t, WriteScalable(&buf, sf))
	_, err = ReadFilter(&buf)
	require.ErrorIs(t, err, filter.ErrInvalidParameter)
}

func TestRestoreFilterRejectsCorruption(t *testing.T) {
	f, err := New(100, 0.01)
	require.NoError(t, err)
	require.NoError(t, f.Insert([]byte("x")))

	tests := []struct {
		name   string
		mutate func(s *filterSnapshot)
	}{
		{"short words", func(s *filterSnapshot) { s.Words = s.Words[:len(s.Words)-1] }},
		{"bucket count", func(s *filterSnapshot) { s.NumBuckets = 3 }},
		{"bucket size", func(s *filterSnapshot) { s.BucketSize = 0 }},
		{"fingerprint width", func(s *filterSnapshot) { s.FingerprintBits = 1 }},
		{"keys", func(s *filterSnapshot) { s.Keys = s.Keys[:2] }},
		{"expected items", func(s *filterSnapshot) { s.Expected = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := f.snapshot()
			tt.mutate(&s)
			_, err := restoreFilter(s)
			require.ErrorIs(t, err, filter.ErrInvalidParameter)
		})
	}

	s := f.snapshot()
	restored, err := restoreFilter(s)
	require.NoError(t, err)
	require.Equal(t, 1, restored.Len())
}

func TestReadScalableRejectsMixedHashers(t *testing.T) {
	a, err := New(10, 0.01)
	require.NoError(t, err)
	b, err := New(20, 0.01, WithHasher(hashing.NewHasher(hashing.Key{7, 7}, hashing.Key{8, 8})))
	require.NoError(t, err)

	var buf bytes.Buffer
	s := scalableSnapshot{
		Kind:            common.KindScalableCuckoo,
		Capacity:        10,
		FPP:             0.01,
		GrowthFactor:    2,
		TighteningRatio: 0.5,
		Generations:     []filterSnapshot{a.snapshot(), b.snapshot()},
	}
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&s))

	_, err = ReadScalable(&buf)
	require.ErrorIs(t, err, filter.ErrInvalidParameter)
}

func TestReadFilterGarbage(t *testing.T) {
	_, err := ReadFilter(bytes.NewReader([]byte{0xc1, 0x00}))
	require.Error(t, err)
}
