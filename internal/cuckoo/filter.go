// Package cuckoo implements cuckoo filters: approximate membership with
// deletion, backed by a table of fingerprint buckets in which every item has
// two candidate buckets. A scalable variant chains filters of growing
// capacity so insertions never surface a full table.
package cuckoo

import (
	"math"

	"amq/internal/filter"
	"amq/internal/hashing"
)

// Filter is a cuckoo filter with a fixed number of buckets. Inserting an item
// whose fingerprint already sits in one of its candidate buckets is a no-op,
// so Len counts distinct fingerprints.
type Filter struct {
	table    *table
	hasher   hashing.Hasher
	fpBits   uint
	maxKicks int
	expected int
	count    int
	// nearlyFull is set by a failed insertion and cleared by the next
	// successful removal.
	nearlyFull bool
}

var _ filter.RemovableFilter = (*Filter)(nil)

// displacement records one swap of an eviction chain so it can be undone.
type displacement struct {
	slot uint64
	fp   uint64
}

// evictionChain is the state of an insertion that found both candidate
// buckets full: the bucket being evicted from, the fingerprint looking for a
// home, the kicks left, and the swaps made so far.
type evictionChain struct {
	bucket    uint64
	fp        uint64
	remaining int
	undo      []displacement
}

// New returns a filter sized for capacity items at false positive
// probability fpp. The fingerprint width follows from fpp and the bucket size.
func New(capacity int, fpp float64, opts ...Option) (*Filter, error) {
	if err := filter.CheckProbability(fpp); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	bits, err := FingerprintBitsFor(fpp, o.BucketSize)
	if err != nil {
		return nil, err
	}
	return newFilter(capacity, bits, o)
}

// NewWithFingerprintBits returns a filter sized for capacity items storing
// bits-wide fingerprints.
func NewWithFingerprintBits(capacity int, bits uint, opts ...Option) (*Filter, error) {
	o := buildOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return newFilter(capacity, bits, o)
}

func newFilter(capacity int, bits uint, o Options) (*Filter, error) {
	if err := filter.CheckCapacity(capacity); err != nil {
		return nil, err
	}
	if bits < minFingerprintBits || bits > maxFingerprintBits {
		return nil, filter.InvalidParameter("fingerprint width must be in [%d, %d], got %d",
			minFingerprintBits, maxFingerprintBits, bits)
	}

	return &Filter{
		table:    newTable(bucketCount(capacity, o.BucketSize), uint64(o.BucketSize), bits, o.Seed),
		hasher:   o.Hasher,
		fpBits:   bits,
		maxKicks: o.MaxKicks,
		expected: capacity,
	}, nil
}

// FingerprintBitsFor returns the fingerprint width that keeps a table of
// bucketSize-slot buckets under false positive probability fpp:
// ceil(log2(2 / (1 - (1-fpp)^(1/(2b))))).
func FingerprintBitsFor(fpp float64, bucketSize int) (uint, error) {
	if err := filter.CheckProbability(fpp); err != nil {
		return 0, err
	}
	perSlot := -math.Expm1(math.Log1p(-fpp) / float64(2*bucketSize))
	bits := math.Ceil(math.Log2(2 / perSlot))
	if bits > maxFingerprintBits {
		return 0, filter.InvalidParameter("false positive probability %v needs more than %d fingerprint bits",
			fpp, maxFingerprintBits)
	}
	if bits < minFingerprintBits {
		bits = minFingerprintBits
	}
	return uint(bits), nil
}

// bucketCount returns the power-of-two bucket count that holds capacity
// items below maxLoadFactor.
func bucketCount(capacity, bucketSize int) uint64 {
	exact := math.Ceil(float64(capacity) / (float64(bucketSize) * maxLoadFactor))
	return hashing.NextPowerOfTwo(uint64(exact))
}

// address returns the fingerprint of pair and its two candidate buckets.
func (f *Filter) address(pair hashing.Pair) (fp, i1, i2 uint64) {
	fp = hashing.Fingerprint(pair, f.fpBits)
	i1 = pair.Nth(0) & (f.table.numBuckets - 1)
	i2 = hashing.AltIndex(i1, fp, f.table.numBuckets)
	return fp, i1, i2
}

// Insert adds item. It returns filter.ErrFilterFull when the eviction chain
// runs out of kicks; the table is then exactly as it was before the call.
func (f *Filter) Insert(item []byte) error {
	return f.insertPair(f.hasher.Hash(item))
}

func (f *Filter) insertPair(pair hashing.Pair) error {
	fp, i1, i2 := f.address(pair)
	if f.table.contains(i1, i2, fp) {
		return nil
	}
	if f.table.tryPlace(i1, fp) || f.table.tryPlace(i2, fp) {
		f.count++
		return nil
	}

	start := i1
	if f.table.rng.Uint64()&1 == 1 {
		start = i2
	}
	chain := &evictionChain{bucket: start, fp: fp, remaining: f.maxKicks}
	if f.kick(chain) {
		f.count++
		return nil
	}
	f.rollback(chain)
	f.nearlyFull = true
	return filter.ErrFilterFull
}

// kick runs the eviction chain until a displaced fingerprint lands in a free
// slot or the kicks run out. Every swap only moves resident fingerprints
// between their two candidate buckets.
func (f *Filter) kick(chain *evictionChain) bool {
	for ; chain.remaining > 0; chain.remaining-- {
		slot, evicted := f.table.evictAndPlace(chain.bucket, chain.fp)
		chain.undo = append(chain.undo, displacement{slot: slot, fp: evicted})

		chain.fp = evicted
		chain.bucket = hashing.AltIndex(chain.bucket, evicted, f.table.numBuckets)
		if f.table.tryPlace(chain.bucket, chain.fp) {
			return true
		}
	}
	return false
}

// rollback undoes the swaps of a failed chain in reverse order, which
// returns every displaced fingerprint to its original slot and drops the
// new one.
func (f *Filter) rollback(chain *evictionChain) {
	for i := len(chain.undo) - 1; i >= 0; i-- {
		d := chain.undo[i]
		f.table.restore(d.slot, d.fp)
	}
}

// Contains returns true if item might be in the set.
func (f *Filter) Contains(item []byte) bool {
	return f.containsPair(f.hasher.Hash(item))
}

func (f *Filter) containsPair(pair hashing.Pair) bool {
	fp, i1, i2 := f.address(pair)
	return f.table.contains(i1, i2, fp)
}

// Remove deletes item's fingerprint from one of its buckets. A different
// item with the same fingerprint and buckets is indistinguishable, so
// removing an item that was never inserted can remove a colliding one.
func (f *Filter) Remove(item []byte) bool {
	return f.removePair(f.hasher.Hash(item))
}

func (f *Filter) removePair(pair hashing.Pair) bool {
	fp, i1, i2 := f.address(pair)
	if !f.table.remove(i1, i2, fp) {
		return false
	}
	f.count--
	f.nearlyFull = false
	return true
}

// Len returns the number of stored fingerprints.
func (f *Filter) Len() int {
	return f.count
}

func (f *Filter) IsEmpty() bool {
	return f.count == 0
}

// IsNearlyFull reports whether an insertion has failed since the last
// successful removal or Clear. Further insertions may still succeed if they
// land in buckets with free slots.
func (f *Filter) IsNearlyFull() bool {
	return f.nearlyFull
}

// Capacity returns the number of fingerprint slots.
func (f *Filter) Capacity() int {
	return int(f.table.capacity())
}

// ExpectedItems returns the item count the filter was sized for.
func (f *Filter) ExpectedItems() int {
	return f.expected
}

func (f *Filter) BucketCount() int {
	return int(f.table.numBuckets)
}

func (f *Filter) BucketSize() int {
	return int(f.table.bucketSize)
}

func (f *Filter) FingerprintBits() uint {
	return f.fpBits
}

func (f *Filter) MaxKicks() int {
	return f.maxKicks
}

// EstimatedFPP returns 1 - ((2^f - 2) / (2^f - 1))^(2 b load), the chance
// that a lookup matches some stored fingerprint in its two buckets.
func (f *Filter) EstimatedFPP() float64 {
	fingerprints := math.Exp2(float64(f.fpBits))
	single := (fingerprints - 2) / (fingerprints - 1)
	load := float64(f.count) / float64(f.Capacity())
	return 1 - math.Pow(single, 2*float64(f.table.bucketSize)*load)
}

// Clear removes every fingerprint.
func (f *Filter) Clear() {
	f.table.clear()
	f.count = 0
	f.nearlyFull = false
}
