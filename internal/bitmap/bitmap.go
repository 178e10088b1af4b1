// Package bitmap provides the flat bit-level storage the filters are built
// on: a plain bit set, and a packed array of fixed-width slots.
package bitmap

import (
	"fmt"
	"io"
	"math/bits"

	"amq/internal/common"
)

// maxBitmapBits bounds ReadBitmap allocations (2 GiB of bit data).
const maxBitmapBits = 1 << 34

// bitmapImpl is a concrete implementation of the Bitmap interface.
type bitmapImpl struct {
	data    []byte // Backing storage: each byte stores 8 bits
	numBits uint64
}

var _ Bitmap = (*bitmapImpl)(nil)

// NewBitmap creates a new bitmap with the specified number of bits.
// All bits are initialized to 0.
func NewBitmap(numBits uint64) Bitmap {
	return &bitmapImpl{
		data:    make([]byte, (numBits+7)/8),
		numBits: numBits,
	}
}

// NewBitmapFromBytes wraps data as a bitmap of numBits bits. Missing trailing
// bytes are treated as zero; data is copied.
func NewBitmapFromBytes(numBits uint64, data []byte) Bitmap {
	b := &bitmapImpl{
		data:    make([]byte, (numBits+7)/8),
		numBits: numBits,
	}
	copy(b.data, data)
	return b
}

func (b *bitmapImpl) check(i uint64) {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
}

// Add sets the bit at position i to 1 (adds i to the set).
func (b *bitmapImpl) Add(i uint64) {
	b.check(i)
	b.data[i/8] |= 1 << (i % 8)
}

// Remove sets the bit at position i to 0 (removes i from the set).
func (b *bitmapImpl) Remove(i uint64) {
	b.check(i)
	b.data[i/8] &^= 1 << (i % 8)
}

// Contains returns true if bit at position i is set (i is in the set).
func (b *bitmapImpl) Contains(i uint64) bool {
	b.check(i)
	return b.data[i/8]&(1<<(i%8)) != 0
}

func (b *bitmapImpl) Len() uint64 {
	return b.numBits
}

func (b *bitmapImpl) Count() uint64 {
	var n int
	for _, v := range b.data {
		n += bits.OnesCount8(v)
	}
	return uint64(n)
}

func (b *bitmapImpl) Bytes() []byte {
	return b.data
}

// WriteBitmap serializes a bitmap to a writer.
// Format: [8 bytes: numBits][data bytes]
// Returns the number of bytes written.
func WriteBitmap(w io.Writer, bm Bitmap) (int, error) {
	total, err := common.WriteUint64(w, bm.Len())
	if err != nil {
		return total, err
	}

	n, err := common.WriteBytes(w, bm.Bytes())
	return total + n, err
}

// ReadBitmap deserializes a bitmap from a reader.
func ReadBitmap(r io.Reader) (Bitmap, error) {
	numBits, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	if numBits > maxBitmapBits {
		return nil, common.ErrLengthOutOfRange
	}

	data, err := common.ReadBytes(r, (numBits+7)/8)
	if err != nil {
		return nil, err
	}

	return NewBitmapFromBytes(numBits, data), nil
}
