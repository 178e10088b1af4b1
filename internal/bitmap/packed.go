package bitmap

import "fmt"

// Packed is a fixed-length array of fixed-width unsigned values stored
// back to back in 64-bit words. A value may straddle two words. Cuckoo
// buckets and quotient filter slots both live in a Packed.
type Packed struct {
	words  []uint64
	width  uint
	length uint64
	mask   uint64
}

// NewPacked allocates length zeroed values of width bits each.
// width must be in [1, 64].
func NewPacked(width uint, length uint64) *Packed {
	if width == 0 || width > 64 {
		panic(fmt.Sprintf("bitmap: packed width %d out of range [1, 64]", width))
	}
	return &Packed{
		words:  make([]uint64, wordsFor(width, length)),
		width:  width,
		length: length,
		mask:   widthMask(width),
	}
}

// NewPackedFromWords rebuilds a Packed around previously exported words.
// The words slice is copied.
func NewPackedFromWords(width uint, length uint64, words []uint64) (*Packed, error) {
	if width == 0 || width > 64 {
		return nil, fmt.Errorf("bitmap: packed width %d out of range [1, 64]", width)
	}
	if uint64(len(words)) != wordsFor(width, length) {
		return nil, fmt.Errorf("bitmap: %d words cannot hold %d values of %d bits", len(words), length, width)
	}
	p := NewPacked(width, length)
	copy(p.words, words)
	return p, nil
}

func wordsFor(width uint, length uint64) uint64 {
	return (length*uint64(width) + 63) / 64
}

func widthMask(width uint) uint64 {
	if width == 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}

func (p *Packed) check(i uint64) {
	if i >= p.length {
		panic(fmt.Sprintf("bitmap: packed index %d out of range [0, %d)", i, p.length))
	}
}

// Get returns the value at index i.
func (p *Packed) Get(i uint64) uint64 {
	p.check(i)
	bit := i * uint64(p.width)
	w, off := bit/64, uint(bit%64)

	v := p.words[w] >> off
	if off+p.width > 64 {
		v |= p.words[w+1] << (64 - off)
	}
	return v & p.mask
}

// Set stores v at index i. Bits of v above the width are dropped.
func (p *Packed) Set(i uint64, v uint64) {
	p.check(i)
	v &= p.mask
	bit := i * uint64(p.width)
	w, off := bit/64, uint(bit%64)

	p.words[w] = p.words[w]&^(p.mask<<off) | v<<off
	if off+p.width > 64 {
		spill := 64 - off
		p.words[w+1] = p.words[w+1]&^(p.mask>>spill) | v>>spill
	}
}

// Len returns the number of values.
func (p *Packed) Len() uint64 {
	return p.length
}

// Width returns the width of each value in bits.
func (p *Packed) Width() uint {
	return p.width
}

// Words exposes the backing words; callers must not modify them.
func (p *Packed) Words() []uint64 {
	return p.words
}

// Clear zeroes every value.
func (p *Packed) Clear() {
	clear(p.words)
}

// Equal reports whether both arrays have the same shape and contents.
func (p *Packed) Equal(other *Packed) bool {
	if p.width != other.width || p.length != other.length {
		return false
	}
	for i, w := range p.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (p *Packed) Clone() *Packed {
	c := NewPacked(p.width, p.length)
	copy(c.words, p.words)
	return c
}
