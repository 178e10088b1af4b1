package hashing

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// maxFingerprintDraws bounds the search for a non-zero fingerprint.
const maxFingerprintDraws = 64

// Fingerprint derives a bits-wide fingerprint from p. It takes the top bits of
// the derived hashes starting at index 1 (index 0 addresses buckets) and
// returns the first non-zero one: zero marks an empty slot and is never a
// valid fingerprint. bits must be in [1, 64].
func Fingerprint(p Pair, bits uint) uint64 {
	shift := 64 - bits
	for i := uint64(1); i <= maxFingerprintDraws; i++ {
		if fp := p.Nth(i) >> shift; fp != 0 {
			return fp
		}
	}
	return 1
}

// AltIndex returns the partner bucket of index for fingerprint fp in a table of
// numBuckets buckets. numBuckets must be a power of two, which makes the
// mapping an involution: AltIndex(AltIndex(i, fp, m), fp, m) == i.
func AltIndex(index, fp, numBuckets uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], fp)
	return (index ^ xxhash.Sum64(buf[:])) & (numBuckets - 1)
}

// IsPowerOfTwo reports whether n is a power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n == 0).
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
