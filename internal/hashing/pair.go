package hashing

// Pair holds the two base hashes of one item. It is computed per operation
// and never stored.
type Pair struct {
	H1 uint64
	H2 uint64
}

// Nth returns the i-th derived hash h1 + i*h2 + i^3 (mod 2^64). The cubic
// term breaks up the arithmetic progressions plain double hashing produces.
func (p Pair) Nth(i uint64) uint64 {
	return p.H1 + i*p.H2 + i*i*i
}

// Iter returns an iterator positioned at the 0th derived hash.
func (p Pair) Iter() *Iter {
	it := &Iter{pair: p}
	it.Reset()
	return it
}

// Iter walks the derived hash sequence of a Pair using finite differences,
// so each step costs three additions. The sequence never ends; callers take
// as many values as they need.
type Iter struct {
	pair    Pair
	a, b, c uint64
}

// Next returns the current derived hash and advances.
func (it *Iter) Next() uint64 {
	ret := it.a
	it.a += it.b
	it.b += it.c
	it.c += 6
	return ret
}

// Reset rewinds the iterator to the 0th derived hash.
func (it *Iter) Reset() {
	it.a = it.pair.H1
	it.b = it.pair.H2 + 1
	it.c = 6
}
