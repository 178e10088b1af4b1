// Package quotient implements a quotient filter: a single open-addressed
// table of 2^q slots in which each item's hash is split into a q-bit
// quotient, the slot it belongs to, and an r-bit remainder, the value
// stored. Remainders that share a quotient form a sorted run; runs pushed
// out of their canonical slots by earlier runs form clusters.
package quotient

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"amq/internal/bitmap"
	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/hashing"
)

// Filter is a quotient filter. It is a multiset: inserting an item twice
// stores two remainders, and each Remove takes one away.
type Filter struct {
	slots  *bitmap.Packed
	qbits  uint
	rbits  uint
	mask   uint64 // 2^q - 1, also the index wrap mask
	hasher hashing.Hasher
	count  int
}

var _ filter.RemovableFilter = (*Filter)(nil)

// New returns a filter of 2^quotientBits slots storing remainderBits-wide
// remainders.
func New(quotientBits, remainderBits uint, opts ...Option) (*Filter, error) {
	if err := checkBits(quotientBits, remainderBits); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return newFilter(quotientBits, remainderBits, o.Hasher), nil
}

// NewWithFPP returns a filter for capacity items at false positive
// probability fpp. The table is sized to be 75% full at capacity.
func NewWithFPP(capacity int, fpp float64, opts ...Option) (*Filter, error) {
	if err := filter.CheckCapacity(capacity); err != nil {
		return nil, err
	}
	if err := filter.CheckProbability(fpp); err != nil {
		return nil, err
	}

	q := math.Ceil(math.Log2(float64(capacity) * slotsPerItem))
	r := math.Ceil(math.Log2(1 / (-2 * math.Log1p(-fpp))))
	q = math.Max(q, 1)
	r = math.Max(r, minRemainderBits)
	if q+r > maxTotalBits {
		return nil, filter.InvalidParameter("%d items at false positive probability %v need %v hash bits",
			capacity, fpp, q+r)
	}
	return New(uint(q), uint(r), opts...)
}

func checkBits(q, r uint) error {
	if q < 1 {
		return filter.InvalidParameter("quotient bits must be at least 1")
	}
	if r < minRemainderBits || r > maxRemainderBits {
		return filter.InvalidParameter("remainder bits must be in [%d, %d], got %d",
			minRemainderBits, maxRemainderBits, r)
	}
	if q+r > maxTotalBits {
		return filter.InvalidParameter("quotient and remainder bits exceed %d (q=%d, r=%d)", maxTotalBits, q, r)
	}
	return nil
}

func newFilter(q, r uint, hasher hashing.Hasher) *Filter {
	return &Filter{
		slots:  bitmap.NewPacked(r+metadataBits, 1<<q),
		qbits:  q,
		rbits:  r,
		mask:   1<<q - 1,
		hasher: hasher,
	}
}

// split returns the quotient and remainder of an item's hash: the low q+r
// bits of the first derived hash, quotient on top.
func (f *Filter) split(item []byte) (q, r uint64) {
	h := f.hasher.Hash(item).Nth(0)
	return (h >> f.rbits) & f.mask, h & (1<<f.rbits - 1)
}

func (f *Filter) get(i uint64) slot {
	return slot(f.slots.Get(i))
}

func (f *Filter) set(i uint64, s slot) {
	f.slots.Set(i, uint64(s))
}

func (f *Filter) next(i uint64) uint64 {
	return (i + 1) & f.mask
}

func (f *Filter) prev(i uint64) uint64 {
	return (i - 1) & f.mask
}

// clusterStart walks left from i past shifted slots. The slot it stops at
// holds a run start in its canonical slot.
func (f *Filter) clusterStart(i uint64) uint64 {
	for n := uint64(0); f.get(i).shifted() && n < f.slots.Len(); n++ {
		i = f.prev(i)
	}
	return i
}

// runStart returns the slot holding the first remainder of quotient q,
// which must be occupied. Starting at the cluster start b == s, each step
// moves s past one run and b to the next occupied quotient, so run starts
// and occupied quotients are paired in order.
func (f *Filter) runStart(q uint64) uint64 {
	b := f.clusterStart(q)
	s := b
	for b != q {
		s = f.next(s)
		for f.get(s).continuation() {
			s = f.next(s)
		}
		b = f.next(b)
		for !f.get(b).occupied() {
			b = f.next(b)
		}
	}
	return s
}

// Insert adds item. It returns filter.ErrFilterFull when every slot is in
// use, whether or not the item is already present.
func (f *Filter) Insert(item []byte) error {
	return f.insertEntry(f.split(item))
}

func (f *Filter) insertEntry(q, r uint64) error {
	if uint64(f.count) == f.slots.Len() {
		return filter.ErrFilterFull
	}
	if f.get(q).empty() {
		f.set(q, newSlot(r)|flagOccupied)
		f.count++
		return nil
	}

	start := f.clusterStart(q)
	entries := f.decode(start, false)
	dq := f.offset(start, q)
	at := sort.Search(len(entries), func(i int) bool {
		d := f.offset(start, entries[i].q)
		return d > dq || (d == dq && entries[i].r > r)
	})
	f.relayout(start, len(entries), slices.Insert(entries, at, entry{q: q, r: r}))
	f.count++
	return nil
}

// Contains walks to the run of the item's quotient and scans its sorted
// remainders.
func (f *Filter) Contains(item []byte) bool {
	return f.containsEntry(f.split(item))
}

func (f *Filter) containsEntry(q, r uint64) bool {
	if !f.get(q).occupied() {
		return false
	}
	s := f.runStart(q)
	for {
		rem := f.get(s).remainder()
		if rem == r {
			return true
		}
		if rem > r {
			return false
		}
		s = f.next(s)
		if !f.get(s).continuation() {
			return false
		}
	}
}

// Remove deletes one occurrence of item and shifts the rest of its cluster
// left. It reports false if the item's remainder is not in its run.
func (f *Filter) Remove(item []byte) bool {
	return f.removeEntry(f.split(item))
}

func (f *Filter) removeEntry(q, r uint64) bool {
	if !f.get(q).occupied() {
		return false
	}

	start := f.clusterStart(q)
	entries := f.decode(start, false)
	at := slices.Index(entries, entry{q: q, r: r})
	if at < 0 {
		return false
	}
	f.relayout(start, len(entries), slices.Delete(entries, at, at+1))
	f.count--
	return true
}

// offset returns the distance from start to i going right.
func (f *Filter) offset(start, i uint64) uint64 {
	return (i - start) & f.mask
}

// decode reads the entries stored from the cluster start onwards, in slot
// order. Occupied quotients are queued as they are passed and each run start
// takes the oldest one. Without whole it stops at the first empty slot;
// with whole it reads the entire table.
func (f *Filter) decode(start uint64, whole bool) []entry {
	var (
		entries []entry
		pending []uint64
		current uint64
	)
	for k := uint64(0); k < f.slots.Len(); k++ {
		i := (start + k) & f.mask
		s := f.get(i)
		if s.empty() {
			if !whole {
				break
			}
			continue
		}
		if s.occupied() {
			pending = append(pending, i)
		}
		if !s.continuation() {
			current, pending = pending[0], pending[1:]
		}
		entries = append(entries, entry{q: current, r: s.remainder()})
	}
	return entries
}

// relayout clears the span of old slots starting at start and writes
// entries back, sorted by quotient offset then remainder. Each run begins at
// its canonical slot or right after the previous run, whichever is later, so
// removals close gaps and split clusters where they open.
func (f *Filter) relayout(start uint64, old int, entries []entry) {
	for k := 0; k < old; k++ {
		f.set((start+uint64(k))&f.mask, 0)
	}

	cursor := uint64(0)
	for i, e := range entries {
		d := f.offset(start, e.q)
		first := i == 0 || entries[i-1].q != e.q
		pos := cursor
		if first && d > pos {
			pos = d
		}

		s := newSlot(e.r)
		if !first {
			s |= flagContinuation
		}
		if pos != d {
			s |= flagShifted
		}
		f.set((start+pos)&f.mask, s)
		cursor = pos + 1
	}
	for i, e := range entries {
		if i == 0 || entries[i-1].q != e.q {
			f.set(e.q, f.get(e.q)|flagOccupied)
		}
	}
}

// entries returns every stored (quotient, remainder) pair, starting at the
// lowest-indexed cluster start.
func (f *Filter) entries() []entry {
	for i := uint64(0); i < f.slots.Len(); i++ {
		if s := f.get(i); !s.empty() && !s.shifted() {
			return f.decode(i, true)
		}
	}
	return nil
}

// Resize rebuilds the filter with 2^quotientBits slots. Every stored
// fingerprint q<<r | r keeps its bits; the quotient takes more of them and the
// remainder fewer, so the remainder width drops by the growth in q.
func (f *Filter) Resize(quotientBits uint) error {
	if quotientBits <= f.qbits {
		return filter.InvalidParameter("resize must grow the quotient (have %d bits, asked for %d)",
			f.qbits, quotientBits)
	}
	if f.qbits+f.rbits < quotientBits+minRemainderBits {
		return filter.InvalidParameter("resizing to %d quotient bits leaves no remainder bits", quotientBits)
	}

	start := time.Now()
	rbits := f.qbits + f.rbits - quotientBits
	resized := newFilter(quotientBits, rbits, f.hasher)
	for _, e := range f.entries() {
		fp := e.q<<f.rbits | e.r
		if err := resized.insertEntry(fp>>rbits, fp&(1<<rbits-1)); err != nil {
			return err
		}
	}
	common.LogDuration(start, "quotient: resized %d -> %d slots (%d items, remainder %d bits)",
		f.Capacity(), resized.Capacity(), f.count, rbits)

	*f = *resized
	return nil
}

// Len returns the number of stored remainders, duplicates included.
func (f *Filter) Len() int {
	return f.count
}

func (f *Filter) IsEmpty() bool {
	return f.count == 0
}

// Capacity returns the number of slots.
func (f *Filter) Capacity() int {
	return int(f.slots.Len())
}

func (f *Filter) QuotientBits() uint {
	return f.qbits
}

func (f *Filter) RemainderBits() uint {
	return f.rbits
}

// EstimatedFPP returns 1 - e^(-load / 2^r).
func (f *Filter) EstimatedFPP() float64 {
	load := float64(f.count) / float64(f.Capacity())
	return 1 - math.Exp(-load/math.Exp2(float64(f.rbits)))
}

// Clear removes every remainder.
func (f *Filter) Clear() {
	f.slots.Clear()
	f.count = 0
}

// String dumps the table one slot per line as index, remainder and
// occupied/continuation/shifted flags.
func (f *Filter) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "quotient filter q=%d r=%d len=%d\n", f.qbits, f.rbits, f.count)
	for i := uint64(0); i < f.slots.Len(); i++ {
		fmt.Fprintf(&b, "%6d  %s\n", i, f.get(i))
	}
	return b.String()
}
