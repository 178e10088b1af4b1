package common

import (
	"fmt"
	"testing"
)

// Items returns the keys prefix<from> .. prefix<to-1>.
func Items(prefix string, from, to int) [][]byte {
	items := make([][]byte, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, []byte(fmt.Sprintf("%s%d", prefix, i)))
	}
	return items
}

// RequireAllPresent fails the test at the first item contains reports as
// absent. Filters never produce false negatives, so any miss is a bug.
func RequireAllPresent(t *testing.T, contains func([]byte) bool, items [][]byte) {
	t.Helper()

	for i, item := range items {
		if !contains(item) {
			t.Fatalf("false negative for item %d (%q)", i, item)
		}
	}
}

// FalsePositiveRate returns the fraction of probes contains reports as present.
func FalsePositiveRate(contains func([]byte) bool, probes [][]byte) float64 {
	if len(probes) == 0 {
		return 0
	}
	hits := 0
	for _, p := range probes {
		if contains(p) {
			hits++
		}
	}
	return float64(hits) / float64(len(probes))
}
