// Package filter defines the contract shared by every approximate membership
// structure in this module, and the error kinds they report.
package filter

// Filter answers approximate membership queries. Contains may report an item
// that was never inserted (a false positive) but never misses one that was.
// Implementations are not safe for concurrent use; callers synchronize.
type Filter interface {
	// Insert adds item. Structures with a bounded table return ErrFilterFull
	// when item cannot be placed; the filter is then unchanged.
	Insert(item []byte) error

	// Contains returns true if item might be in the set.
	// Returns false if item is definitely NOT in the set.
	Contains(item []byte) bool

	// Len returns the number of stored entries.
	Len() int

	// IsEmpty reports whether Len is zero.
	IsEmpty() bool

	// EstimatedFPP returns the false positive probability at the current load.
	EstimatedFPP() float64
}

// RemovableFilter is a Filter that also supports deletion.
type RemovableFilter interface {
	Filter

	// Remove deletes one stored occurrence of item and reports whether one was
	// found. Removing an absent item is a no-op that returns false.
	Remove(item []byte) bool
}
