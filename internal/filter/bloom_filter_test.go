package filter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"amq/internal/common"
	"amq/internal/hashing"
)

func newTestBloom(t *testing.T, k uint32, m uint64) *bloomFilter {
	t.Helper()
	f, err := NewBloomFilter(k, m, hashing.DefaultHasher())
	require.NoError(t, err)
	return f.(*bloomFilter)
}

func TestOptimalBloomFilterParams(t *testing.T) {
	tests := []struct {
		n            uint64
		p            float64
		expectedK    uint32
		expectedMMin uint64 // m should be at least this
	}{
		{100, 0.01, 7, 900},    // ~958 bits for 100 elements at 1% FP
		{1000, 0.01, 7, 9000},  // ~9585 bits for 1000 elements at 1% FP
		{100, 0.001, 10, 1400}, // ~1438 bits for 100 elements at 0.1% FP
	}

	for _, tt := range tests {
		k, m := OptimalBloomFilterParams(tt.n, tt.p)
		require.Equal(t, tt.expectedK, k, "k for n=%d p=%f", tt.n, tt.p)
		require.GreaterOrEqual(t, m, tt.expectedMMin, "m for n=%d p=%f", tt.n, tt.p)
	}
}

func TestNewBloomFilterInvalid(t *testing.T) {
	_, err := NewBloomFilter(0, 100, hashing.DefaultHasher())
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewBloomFilter(3, 0, hashing.DefaultHasher())
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewBloomFilterWithFPP(0, 0.01, hashing.DefaultHasher())
	require.ErrorIs(t, err, ErrInvalidParameter)

	for _, p := range []float64{0, 1, -0.5, 1.5} {
		_, err = NewBloomFilterWithFPP(100, p, hashing.DefaultHasher())
		require.True(t, errors.Is(err, ErrInvalidParameter), "p=%v", p)
	}
}

func TestBloomFilterFalsePositiveRate(t *testing.T) {
	n := 1000
	p := 0.01

	f, err := NewBloomFilterWithFPP(n, p, hashing.DefaultHasher())
	require.NoError(t, err)

	for _, item := range common.Items("key-", 0, n) {
		require.NoError(t, f.Insert(item))
	}

	observed := common.FalsePositiveRate(f.Contains, common.Items("key-", n, n+10000))
	require.LessOrEqual(t, observed, p*2, "false positive rate %.4f exceeds 2x target", observed)
	require.InDelta(t, p, f.EstimatedFPP(), p)

	t.Logf("False positive rate: %.4f (target: %.4f, estimated: %.4f)", observed, p, f.EstimatedFPP())
}

func TestBloomFilterInsertAndContains(t *testing.T) {
	bf := newTestBloom(t, 3, 1000)
	require.True(t, bf.IsEmpty())

	keys := [][]byte{
		[]byte("key1"),
		[]byte("key2"),
		[]byte("key3"),
		[]byte("test"),
		[]byte("bloom"),
	}
	for _, key := range keys {
		require.NoError(t, bf.Insert(key))
	}

	common.RequireAllPresent(t, bf.Contains, keys)
	require.Equal(t, len(keys), bf.Len())
	require.False(t, bf.IsEmpty())
	require.LessOrEqual(t, bf.bitmap.Count(), uint64(3*len(keys)))
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	bf := newTestBloom(t, 5, 10000)

	keys := make([][]byte, 100)
	for i := range keys {
		keys[i] = []byte{byte(i), byte(i >> 8), byte(i >> 16)}
		require.NoError(t, bf.Insert(keys[i]))
	}

	common.RequireAllPresent(t, bf.Contains, keys)
}

func TestBloomFilterUsesDerivedHashes(t *testing.T) {
	bf := newTestBloom(t, 4, 4096)
	item := []byte("derived")
	require.NoError(t, bf.Insert(item))

	pair := hashing.DefaultHasher().Hash(item)
	for i := uint64(0); i < 4; i++ {
		require.True(t, bf.bitmap.Contains(pair.Nth(i)%4096), "bit for derived hash %d", i)
	}
}

func TestBloomFilterWriteAndRead(t *testing.T) {
	original, err := NewBloomFilter(4, 1000, hashing.NewRandomHasher())
	require.NoError(t, err)
	keys := [][]byte{
		[]byte("key1"),
		[]byte("key2"),
		[]byte("test"),
	}
	for _, key := range keys {
		require.NoError(t, original.Insert(key))
	}

	var buf bytes.Buffer
	n, err := WriteBloomFilter(&buf, original)
	require.NoError(t, err)

	// 4 (k) + 5*8 (n, keys) + 8 (m) + bitmap bytes
	require.Equal(t, 4+48+(1000+7)/8, n)

	restored, err := ReadBloomFilter(&buf)
	require.NoError(t, err)

	common.RequireAllPresent(t, restored.Contains, keys)
	require.Equal(t, original.Len(), restored.Len())
	require.Equal(t, original.(*bloomFilter).bitmap.Bytes(), restored.(*bloomFilter).bitmap.Bytes())
}

func TestReadBloomFilterCorrupt(t *testing.T) {
	var buf bytes.Buffer
	_, err := common.WriteUint32(&buf, 0)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err = common.WriteUint64(&buf, 1)
		require.NoError(t, err)
	}

	_, err = ReadBloomFilter(&buf)
	require.ErrorIs(t, err, ErrInvalidParameter)

	buf.Reset()
	_, err = common.WriteUint32(&buf, 3)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err = common.WriteUint64(&buf, 0)
		require.NoError(t, err)
	}
	_, err = ReadBloomFilter(&buf)
	require.ErrorIs(t, err, ErrInvalidParameter, "zero-bit bitmap")

	_, err = ReadBloomFilter(bytes.NewReader([]byte{1, 2}))
	require.Error(t, err)
}
