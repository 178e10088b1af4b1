package common

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// A header in the shape the bloom filter writes: a u32, some u64s, then raw
// bytes whose length the reader knows.
func TestHeaderRoundTrip(t *testing.T) {
	words := []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 0x8000000000000000, 1234567890123}
	payload := bytes.Repeat([]byte{0x00, 0xFF, 0x7F, 0x80}, 250)

	var buf bytes.Buffer
	total, err := WriteUint32(&buf, 0xDEADBEEF)
	require.NoError(t, err)
	for _, w := range words {
		n, err := WriteUint64(&buf, w)
		require.NoError(t, err)
		total += n
	}
	n, err := WriteBytes(&buf, payload)
	require.NoError(t, err)
	total += n
	require.Equal(t, 4+8*len(words)+len(payload), total)
	require.Equal(t, total, buf.Len())

	k, err := ReadUint32(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), k)
	for _, want := range words {
		got, err := ReadUint64(&buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	data, err := ReadBytes(&buf, uint64(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.Zero(t, buf.Len())
}

func TestLittleEndianLayout(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteUint32(&buf, 0x01020304)
	require.NoError(t, err)
	_, err = WriteUint64(&buf, 0x0102030405060708)
	require.NoError(t, err)

	require.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5, 4, 3, 2, 1}, buf.Bytes())
}

func TestTruncatedReads(t *testing.T) {
	tests := []struct {
		name string
		read func(r io.Reader) error
		data []byte
	}{
		{"uint32 empty", func(r io.Reader) error { _, err := ReadUint32(r); return err }, nil},
		{"uint32 short", func(r io.Reader) error { _, err := ReadUint32(r); return err }, []byte{1, 2, 3}},
		{"uint64 short", func(r io.Reader) error { _, err := ReadUint64(r); return err }, []byte{1, 2, 3, 4, 5}},
		{"bytes empty", func(r io.Reader) error { _, err := ReadBytes(r, 5); return err }, nil},
		{"bytes short", func(r io.Reader) error { _, err := ReadBytes(r, 10); return err }, []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.read(bytes.NewReader(tt.data)))
		})
	}
}

func TestReadBytesZeroLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3})
	result, err := ReadBytes(buf, 0)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Equal(t, 3, buf.Len())
}
