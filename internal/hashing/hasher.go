// Package hashing derives the hash values every filter in this module is
// addressed by: a pair of base hashes per item, an unbounded sequence of
// derived hashes built from that pair, and fixed-width fingerprints.
package hashing

import (
	"math/rand/v2"

	"github.com/dchest/siphash"
)

// Key is a 128-bit SipHash key.
type Key [2]uint64

// Hasher computes the two base hashes of an item with independently keyed
// SipHash-2-4 functions. The zero value is usable but both functions then
// share a key; use one of the constructors.
type Hasher struct {
	keys [2]Key
}

// NewHasher returns a hasher using the given keys for H1 and H2.
func NewHasher(k1, k2 Key) Hasher {
	return Hasher{keys: [2]Key{k1, k2}}
}

// NewRandomHasher returns a hasher with freshly drawn keys. Two filters built
// with different random hashers do not agree on fingerprints.
func NewRandomHasher() Hasher {
	return NewHasher(
		Key{rand.Uint64(), rand.Uint64()},
		Key{rand.Uint64(), rand.Uint64()},
	)
}

// DefaultHasher returns a hasher with fixed keys, so hashes are stable
// across processes.
func DefaultHasher() Hasher {
	return NewHasher(Key{0, 0}, Key{1, 1})
}

// Keys returns the keys the hasher was built with.
func (h Hasher) Keys() (Key, Key) {
	return h.keys[0], h.keys[1]
}

// Hash returns the base hash pair of item.
func (h Hasher) Hash(item []byte) Pair {
	return Pair{
		H1: siphash.Hash(h.keys[0][0], h.keys[0][1], item),
		H2: siphash.Hash(h.keys[1][0], h.keys[1][1], item),
	}
}
