package filter

import (
	"io"
	"math"

	"amq/internal/bitmap"
	"amq/internal/common"
	"amq/internal/hashing"
)

// bloomFilter implements a space-efficient probabilistic data structure
// for set membership testing with no false negatives. It has no full state
// and does not support removal.
type bloomFilter struct {
	bitmap bitmap.Bitmap
	hasher hashing.Hasher
	k      uint32 // number of hash functions
	m      uint64 // number of bits in bitmap
	n      uint64 // number of insertions
}

var _ Filter = (*bloomFilter)(nil)

// OptimalBloomFilterParams returns the bit count m = -n ln(p) / ln(2)^2 and
// hash count k = ceil(m/n ln 2), at least 1, for n items at false positive
// rate p.
func OptimalBloomFilterParams(n uint64, p float64) (k uint32, m uint64) {
	m = uint64(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	k = max(uint32(math.Ceil(float64(m)/float64(n)*math.Ln2)), 1)
	return k, m
}

// NewBloomFilter creates a bloom filter with k hash functions over m bits,
// addressed through hasher.
func NewBloomFilter(k uint32, m uint64, hasher hashing.Hasher) (Filter, error) {
	if k == 0 {
		return nil, InvalidParameter("bloom filter needs at least one hash function")
	}
	if m == 0 {
		return nil, InvalidParameter("bloom filter needs at least one bit")
	}
	return &bloomFilter{
		bitmap: bitmap.NewBitmap(m),
		hasher: hasher,
		k:      k,
		m:      m,
	}, nil
}

// NewBloomFilterWithFPP sizes a bloom filter for n items at false positive
// probability p.
func NewBloomFilterWithFPP(n int, p float64, hasher hashing.Hasher) (Filter, error) {
	if err := CheckCapacity(n); err != nil {
		return nil, err
	}
	if err := CheckProbability(p); err != nil {
		return nil, err
	}
	k, m := OptimalBloomFilterParams(uint64(n), p)
	return NewBloomFilter(k, m, hasher)
}

// Insert sets the k bits of item. It never fails.
func (bf *bloomFilter) Insert(item []byte) error {
	it := bf.hasher.Hash(item).Iter()
	for i := uint32(0); i < bf.k; i++ {
		bf.bitmap.Add(it.Next() % bf.m)
	}
	bf.n++
	return nil
}

// Contains reports whether all k bits of item are set.
func (bf *bloomFilter) Contains(item []byte) bool {
	it := bf.hasher.Hash(item).Iter()
	for i := uint32(0); i < bf.k; i++ {
		if !bf.bitmap.Contains(it.Next() % bf.m) {
			return false
		}
	}
	return true
}

// Len returns the number of insertions, duplicates included.
func (bf *bloomFilter) Len() int {
	return int(bf.n)
}

func (bf *bloomFilter) IsEmpty() bool {
	return bf.n == 0
}

// EstimatedFPP returns (1 - e^(-kn/m))^k.
func (bf *bloomFilter) EstimatedFPP() float64 {
	k := float64(bf.k)
	return math.Pow(1-math.Exp(-k*float64(bf.n)/float64(bf.m)), k)
}

// IsBloomFilter reports whether f was built by NewBloomFilter.
func IsBloomFilter(f Filter) bool {
	_, ok := f.(*bloomFilter)
	return ok
}

// WriteBloomFilter serializes a bloom filter to a writer.
// Format: [k: uint32][n: uint64][hasher keys: 4 x uint64][bitmap]
func WriteBloomFilter(w io.Writer, f Filter) (int, error) {
	bf, ok := f.(*bloomFilter)
	if !ok {
		return 0, InvalidParameter("%T is not a bloom filter", f)
	}
	k1, k2 := bf.hasher.Keys()

	total, err := common.WriteUint32(w, bf.k)
	if err != nil {
		return total, err
	}

	for _, v := range []uint64{bf.n, k1[0], k1[1], k2[0], k2[1]} {
		n, err := common.WriteUint64(w, v)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err := bitmap.WriteBitmap(w, bf.bitmap)
	total += n
	return total, err
}

// ReadBloomFilter deserializes a bloom filter from a reader.
func ReadBloomFilter(r io.Reader) (Filter, error) {
	k, err := common.ReadUint32(r)
	if err != nil {
		return nil, err
	}

	var header [5]uint64
	for i := range header {
		if header[i], err = common.ReadUint64(r); err != nil {
			return nil, err
		}
	}
	if k == 0 {
		return nil, InvalidParameter("corrupt bloom filter header (k=0)")
	}

	bm, err := bitmap.ReadBitmap(r)
	if err != nil {
		return nil, err
	}
	if bm.Len() == 0 {
		return nil, InvalidParameter("corrupt bloom filter header (m=0)")
	}

	return &bloomFilter{
		bitmap: bm,
		hasher: hashing.NewHasher(hashing.Key{header[1], header[2]}, hashing.Key{header[3], header[4]}),
		k:      k,
		m:      bm.Len(),
		n:      header[0],
	}, nil
}
