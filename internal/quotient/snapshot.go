package quotient

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"amq/internal/bitmap"
	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/hashing"
)

type filterSnapshot struct {
	Kind          common.Kind `msgpack:"kind"`
	QuotientBits  uint        `msgpack:"q_bits"`
	RemainderBits uint        `msgpack:"r_bits"`
	Keys          []uint64    `msgpack:"keys"`
	Words         []uint64    `msgpack:"words"`
}

// WriteFilter serializes f as msgpack.
func WriteFilter(w io.Writer, f *Filter) error {
	k1, k2 := f.hasher.Keys()
	return msgpack.NewEncoder(w).Encode(&filterSnapshot{
		Kind:          common.KindQuotient,
		QuotientBits:  f.qbits,
		RemainderBits: f.rbits,
		Keys:          []uint64{k1[0], k1[1], k2[0], k2[1]},
		Words:         f.slots.Words(),
	})
}

// ReadFilter deserializes a filter written by WriteFilter. The slot table
// is checked run by run before it is accepted.
func ReadFilter(r io.Reader) (*Filter, error) {
	var s filterSnapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	if s.Kind != common.KindQuotient {
		return nil, filter.InvalidParameter("snapshot holds a %s filter, not %s", s.Kind, common.KindQuotient)
	}
	if err := checkBits(s.QuotientBits, s.RemainderBits); err != nil {
		return nil, err
	}
	if len(s.Keys) != 4 {
		return nil, filter.InvalidParameter("corrupt quotient snapshot header")
	}

	slots, err := bitmap.NewPackedFromWords(s.RemainderBits+metadataBits, 1<<s.QuotientBits, s.Words)
	if err != nil {
		return nil, filter.InvalidParameter("corrupt quotient snapshot: %v", err)
	}
	f := &Filter{
		slots:  slots,
		qbits:  s.QuotientBits,
		rbits:  s.RemainderBits,
		mask:   1<<s.QuotientBits - 1,
		hasher: hashing.NewHasher(hashing.Key{s.Keys[0], s.Keys[1]}, hashing.Key{s.Keys[2], s.Keys[3]}),
	}
	n, err := f.check()
	if err != nil {
		return nil, filter.InvalidParameter("corrupt quotient snapshot: %v", err)
	}
	f.count = n
	return f, nil
}

// check walks the whole table and verifies the run structure: every run
// start pairs with an occupied quotient at or before it, no run is left
// pending across an empty slot, runs are sorted, and the shifted flag
// matches whether a remainder sits in its canonical slot. It returns the
// number of stored remainders.
func (f *Filter) check() (int, error) {
	start, found := uint64(0), false
	for i := uint64(0); i < f.slots.Len(); i++ {
		if s := f.get(i); !s.empty() && !s.shifted() {
			start, found = i, true
			break
		}
	}

	var (
		pending []uint64
		current uint64
		prevRem uint64
		inRun   bool
		n       int
	)
	for k := uint64(0); k < f.slots.Len(); k++ {
		i := (start + k) & f.mask
		s := f.get(i)
		if s.empty() {
			if s.remainder() != 0 {
				return 0, fmt.Errorf("empty slot %d holds remainder %d", i, s.remainder())
			}
			if len(pending) > 0 {
				return 0, fmt.Errorf("quotient %d has no run", pending[0])
			}
			inRun = false
			continue
		}
		if !found {
			return 0, fmt.Errorf("slot %d is in use but no cluster start exists", i)
		}

		if s.occupied() {
			pending = append(pending, i)
		}
		if s.continuation() {
			if !inRun {
				return 0, fmt.Errorf("continuation slot %d follows no run", i)
			}
			if s.remainder() < prevRem {
				return 0, fmt.Errorf("run of quotient %d is not sorted at slot %d", current, i)
			}
		} else {
			if len(pending) == 0 {
				return 0, fmt.Errorf("run starting at slot %d has no occupied quotient", i)
			}
			current, pending = pending[0], pending[1:]
		}
		if s.shifted() != (i != current) {
			return 0, fmt.Errorf("slot %d shifted flag disagrees with quotient %d", i, current)
		}
		inRun = true
		prevRem = s.remainder()
		n++
	}
	if len(pending) > 0 {
		return 0, fmt.Errorf("quotient %d has no run", pending[0])
	}
	return n, nil
}
