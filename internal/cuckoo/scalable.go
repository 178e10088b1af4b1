package cuckoo

import (
	"errors"
	"math"

	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/hashing"
)

// ScalableFilter is an append-only sequence of cuckoo filters
// ("generations"). When the newest generation is full a larger one with a
// tighter false positive target, and so a wider fingerprint, is opened.
// Older generations are never rewritten.
type ScalableFilter struct {
	generations []*Filter
	capacity    int
	fpp         float64
	opts        Options
}

var _ filter.RemovableFilter = (*ScalableFilter)(nil)

// NewScalable returns a scalable filter whose first generation holds
// capacity items at false positive probability fpp.
func NewScalable(capacity int, fpp float64, opts ...Option) (*ScalableFilter, error) {
	if err := filter.CheckCapacity(capacity); err != nil {
		return nil, err
	}
	if err := filter.CheckProbability(fpp); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := o.validateGrowth(); err != nil {
		return nil, err
	}

	sf := &ScalableFilter{
		capacity: capacity,
		fpp:      fpp,
		opts:     o,
	}
	if _, err := sf.grow(); err != nil {
		return nil, err
	}
	return sf, nil
}

// generationFPP returns the false positive target of generation k. The
// targets form a geometric series, so the union stays bounded by
// fpp / (1 - tightening).
func (sf *ScalableFilter) generationFPP(k int) float64 {
	return sf.fpp * math.Pow(sf.opts.TighteningRatio, float64(k))
}

// maxGenerationItems caps the item count a single generation is sized for,
// so a large growth factor cannot overflow int.
const maxGenerationItems = 1 << 40

// grow opens the next generation.
func (sf *ScalableFilter) grow() (*Filter, error) {
	k := len(sf.generations)
	capacity := sf.capacity
	if k > 0 {
		capacity = sf.nextCapacity()
	}

	bits, err := sf.generationBits(k)
	if err != nil {
		return nil, err
	}

	o := sf.opts
	o.Seed = sf.opts.Seed + uint64(k)
	gen, err := newFilter(capacity, bits, o)
	if err != nil {
		return nil, err
	}
	sf.generations = append(sf.generations, gen)

	if k > 0 {
		common.Logf("cuckoo: opened generation %d (items=%d, slots=%d, fingerprint=%d bits)\n",
			k, capacity, gen.Capacity(), bits)
	}
	return gen, nil
}

// nextCapacity returns the item count of the generation after the newest.
func (sf *ScalableFilter) nextCapacity() int {
	next := math.Ceil(float64(sf.newest().ExpectedItems()) * sf.opts.GrowthFactor)
	return int(min(next, maxGenerationItems))
}

// generationBits returns the fingerprint width of generation k. Widths never
// decrease. Once the tightened target is out of reach of a 64-bit
// fingerprint, later generations stay at 64 bits; only the first generation's
// target is checked.
func (sf *ScalableFilter) generationBits(k int) (uint, error) {
	bits, err := FingerprintBitsFor(sf.generationFPP(k), sf.opts.BucketSize)
	if k == 0 {
		return bits, err
	}
	if err != nil {
		bits = maxFingerprintBits
	}
	return max(bits, sf.newest().FingerprintBits()), nil
}

func (sf *ScalableFilter) newest() *Filter {
	return sf.generations[len(sf.generations)-1]
}

// Insert adds item to the newest generation, opening a new one when it is
// full. Items already present in any generation are not inserted again, so
// each item lives in exactly one generation.
func (sf *ScalableFilter) Insert(item []byte) error {
	pair := sf.opts.Hasher.Hash(item)
	if sf.containsPair(pair) {
		return nil
	}

	// A generation that has already refused an item is skipped.
	if newest := sf.newest(); !newest.IsNearlyFull() {
		err := newest.insertPair(pair)
		if !errors.Is(err, filter.ErrFilterFull) {
			return err
		}
	}

	// The new generation derives its own fingerprint from the pair at its
	// own width.
	gen, err := sf.grow()
	if err != nil {
		return err
	}
	return gen.insertPair(pair)
}

// Contains probes generations newest first.
func (sf *ScalableFilter) Contains(item []byte) bool {
	return sf.containsPair(sf.opts.Hasher.Hash(item))
}

func (sf *ScalableFilter) containsPair(pair hashing.Pair) bool {
	for i := len(sf.generations) - 1; i >= 0; i-- {
		if sf.generations[i].containsPair(pair) {
			return true
		}
	}
	return false
}

// Remove deletes item from the newest generation that holds it.
func (sf *ScalableFilter) Remove(item []byte) bool {
	pair := sf.opts.Hasher.Hash(item)
	for i := len(sf.generations) - 1; i >= 0; i-- {
		if sf.generations[i].removePair(pair) {
			return true
		}
	}
	return false
}

func (sf *ScalableFilter) Len() int {
	n := 0
	for _, g := range sf.generations {
		n += g.Len()
	}
	return n
}

func (sf *ScalableFilter) IsEmpty() bool {
	return sf.Len() == 0
}

// Capacity returns the total number of fingerprint slots over all generations.
func (sf *ScalableFilter) Capacity() int {
	n := 0
	for _, g := range sf.generations {
		n += g.Capacity()
	}
	return n
}

func (sf *ScalableFilter) GenerationCount() int {
	return len(sf.generations)
}

// Generation returns generation i, oldest first. The returned filter is
// owned by sf and must not be mutated.
func (sf *ScalableFilter) Generation(i int) *Filter {
	return sf.generations[i]
}

// EstimatedFPP returns 1 - prod(1 - fpp_i) over the generations.
func (sf *ScalableFilter) EstimatedFPP() float64 {
	miss := 1.0
	for _, g := range sf.generations {
		miss *= 1 - g.EstimatedFPP()
	}
	return 1 - miss
}

// Clear drops every generation but a fresh first one.
func (sf *ScalableFilter) Clear() {
	clear(sf.generations[1:])
	sf.generations = sf.generations[:1]
	sf.generations[0].Clear()
}
