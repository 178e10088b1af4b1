package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for _, k := range []Kind{KindCuckoo, KindScalableCuckoo, KindQuotient, KindBloom} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	require.Equal(t, "kind(99)", Kind(99).String())
	_, err := ParseKind("xor")
	require.Error(t, err)
}

func TestKindFromPath(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
	}{
		{"users.cf", KindCuckoo},
		{"dir/events.SCF", KindScalableCuckoo},
		{SnapshotPath("urls", KindQuotient), KindQuotient},
		{SnapshotPath("/tmp/seen", KindBloom), KindBloom},
	}

	for _, tt := range tests {
		kind, err := KindFromPath(tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.kind, kind, tt.path)
	}

	_, err := KindFromPath("table.sst")
	require.Error(t, err)
}

func TestFalsePositiveRate(t *testing.T) {
	items := Items("k", 0, 10)
	require.Len(t, items, 10)
	require.Equal(t, []byte("k3"), items[3])

	even := func(item []byte) bool { return (item[len(item)-1]-'0')%2 == 0 }
	require.InDelta(t, 0.5, FalsePositiveRate(even, items), 1e-9)
	require.Equal(t, 0.0, FalsePositiveRate(even, nil))
}
