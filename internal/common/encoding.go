package common

import (
	"encoding/binary"
	"errors"
	"io"
)

// Fixed-width integers are written little-endian. The bloom filter and
// bitmap formats are built from these helpers; the structured snapshots use
// msgpack instead.

// ErrLengthOutOfRange is returned when a decoded length prefix is larger than
// any structure this module builds.
var ErrLengthOutOfRange = errors.New("encoding: length prefix out of range")

// WriteUint32 writes v in 4 bytes.
func WriteUint32(w io.Writer, v uint32) (int, error) {
	return w.Write(binary.LittleEndian.AppendUint32(nil, v))
}

// ReadUint32 reads a value written by WriteUint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes v in 8 bytes.
func WriteUint64(w io.Writer, v uint64) (int, error) {
	return w.Write(binary.LittleEndian.AppendUint64(nil, v))
}

// ReadUint64 reads a value written by WriteUint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteBytes writes data without a length prefix; the reader must know the
// length from an earlier header field.
func WriteBytes(w io.Writer, data []byte) (int, error) {
	return w.Write(data)
}

// ReadBytes reads exactly length bytes. A zero length reads nothing and
// returns nil.
func ReadBytes(r io.Reader, length uint64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
