package cuckoo

import (
	"math/rand/v2"

	"amq/internal/bitmap"
)

// table is an array of numBuckets buckets of bucketSize fingerprint slots,
// packed at the fingerprint width. A zero slot is empty.
type table struct {
	slots      *bitmap.Packed
	numBuckets uint64
	bucketSize uint64
	rng        *rand.Rand
}

func newTable(numBuckets, bucketSize uint64, fpBits uint, seed uint64) *table {
	return &table{
		slots:      bitmap.NewPacked(fpBits, numBuckets*bucketSize),
		numBuckets: numBuckets,
		bucketSize: bucketSize,
		rng:        newRNG(seed),
	}
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (t *table) slot(bucket, i uint64) uint64 {
	return bucket*t.bucketSize + i
}

// tryPlace stores fp in the first empty slot of bucket. It reports false
// when the bucket is full. Duplicate handling is the caller's decision.
func (t *table) tryPlace(bucket, fp uint64) bool {
	for i := uint64(0); i < t.bucketSize; i++ {
		s := t.slot(bucket, i)
		if t.slots.Get(s) == 0 {
			t.slots.Set(s, fp)
			return true
		}
	}
	return false
}

// evictAndPlace swaps fp into a randomly chosen slot of a full bucket and
// returns that slot and the fingerprint it held.
func (t *table) evictAndPlace(bucket, fp uint64) (slot, evicted uint64) {
	slot = t.slot(bucket, t.rng.Uint64N(t.bucketSize))
	evicted = t.slots.Get(slot)
	t.slots.Set(slot, fp)
	return slot, evicted
}

// restore puts fp back into slot, undoing one evictAndPlace.
func (t *table) restore(slot, fp uint64) {
	t.slots.Set(slot, fp)
}

func (t *table) bucketContains(bucket, fp uint64) bool {
	for i := uint64(0); i < t.bucketSize; i++ {
		if t.slots.Get(t.slot(bucket, i)) == fp {
			return true
		}
	}
	return false
}

func (t *table) contains(i1, i2, fp uint64) bool {
	return t.bucketContains(i1, fp) || t.bucketContains(i2, fp)
}

func (t *table) bucketRemove(bucket, fp uint64) bool {
	for i := uint64(0); i < t.bucketSize; i++ {
		s := t.slot(bucket, i)
		if t.slots.Get(s) == fp {
			t.slots.Set(s, 0)
			return true
		}
	}
	return false
}

// remove clears one slot holding fp in either candidate bucket.
func (t *table) remove(i1, i2, fp uint64) bool {
	return t.bucketRemove(i1, fp) || t.bucketRemove(i2, fp)
}

// occupied counts non-empty slots.
func (t *table) occupied() int {
	n := 0
	for s := uint64(0); s < t.slots.Len(); s++ {
		if t.slots.Get(s) != 0 {
			n++
		}
	}
	return n
}

func (t *table) capacity() uint64 {
	return t.slots.Len()
}

func (t *table) clear() {
	t.slots.Clear()
}
