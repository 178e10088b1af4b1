package quotient

import "fmt"

// metadataBits is the number of flag bits stored below each remainder.
const metadataBits = 3

const (
	// flagShifted: the remainder is not stored in its canonical slot.
	flagShifted slot = 1 << iota
	// flagContinuation: the slot is not the first of its run.
	flagContinuation
	// flagOccupied: some remainder has this slot as its canonical quotient.
	// It describes the slot's index, not the remainder stored in it.
	flagOccupied

	metadataMask = flagShifted | flagContinuation | flagOccupied
)

// slot is one packed record: remainder<<3 | occupied | continuation | shifted.
type slot uint64

func newSlot(remainder uint64) slot {
	return slot(remainder << metadataBits)
}

func (s slot) remainder() uint64 {
	return uint64(s >> metadataBits)
}

func (s slot) occupied() bool {
	return s&flagOccupied != 0
}

func (s slot) continuation() bool {
	return s&flagContinuation != 0
}

func (s slot) shifted() bool {
	return s&flagShifted != 0
}

// empty reports whether the slot holds no remainder. A stored remainder
// always carries at least one flag: a run start in its canonical slot has
// occupied set, anything else is shifted.
func (s slot) empty() bool {
	return s&metadataMask == 0
}

func (s slot) String() string {
	if s.empty() {
		return "-"
	}
	flags := []byte("---")
	if s.occupied() {
		flags[0] = 'o'
	}
	if s.continuation() {
		flags[1] = 'c'
	}
	if s.shifted() {
		flags[2] = 's'
	}
	return fmt.Sprintf("%d:%s", s.remainder(), flags)
}

// entry is a decoded (quotient, remainder) pair.
type entry struct {
	q uint64
	r uint64
}
