package cuckoo

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"amq/internal/bitmap"
	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/hashing"
)

// filterSnapshot is the msgpack layout of one cuckoo filter: its sizing
// parameters, hasher keys, and the raw packed table.
type filterSnapshot struct {
	Kind            common.Kind `msgpack:"kind"`
	Expected        int         `msgpack:"expected"`
	NumBuckets      uint64      `msgpack:"buckets"`
	BucketSize      uint64      `msgpack:"bucket_size"`
	FingerprintBits uint        `msgpack:"fp_bits"`
	MaxKicks        int         `msgpack:"max_kicks"`
	Keys            []uint64    `msgpack:"keys"`
	Words           []uint64    `msgpack:"words"`
}

type scalableSnapshot struct {
	Kind            common.Kind      `msgpack:"kind"`
	Capacity        int              `msgpack:"capacity"`
	FPP             float64          `msgpack:"fpp"`
	GrowthFactor    float64          `msgpack:"growth"`
	TighteningRatio float64          `msgpack:"tightening"`
	Generations     []filterSnapshot `msgpack:"generations"`
}

func (f *Filter) snapshot() filterSnapshot {
	k1, k2 := f.hasher.Keys()
	return filterSnapshot{
		Kind:            common.KindCuckoo,
		Expected:        f.expected,
		NumBuckets:      f.table.numBuckets,
		BucketSize:      f.table.bucketSize,
		FingerprintBits: f.fpBits,
		MaxKicks:        f.maxKicks,
		Keys:            []uint64{k1[0], k1[1], k2[0], k2[1]},
		Words:           f.table.slots.Words(),
	}
}

func restoreFilter(s filterSnapshot) (*Filter, error) {
	if s.Kind != common.KindCuckoo {
		return nil, filter.InvalidParameter("snapshot holds a %s filter, not %s", s.Kind, common.KindCuckoo)
	}
	if !hashing.IsPowerOfTwo(s.NumBuckets) || s.BucketSize < 1 || s.BucketSize > 64 {
		return nil, filter.InvalidParameter("corrupt cuckoo snapshot (buckets=%d, bucket size=%d)",
			s.NumBuckets, s.BucketSize)
	}
	if s.FingerprintBits < minFingerprintBits || s.FingerprintBits > maxFingerprintBits {
		return nil, filter.InvalidParameter("corrupt cuckoo snapshot (fingerprint=%d bits)", s.FingerprintBits)
	}
	if len(s.Keys) != 4 || s.Expected <= 0 || s.MaxKicks < 0 {
		return nil, filter.InvalidParameter("corrupt cuckoo snapshot header")
	}

	slots, err := bitmap.NewPackedFromWords(s.FingerprintBits, s.NumBuckets*s.BucketSize, s.Words)
	if err != nil {
		return nil, filter.InvalidParameter("corrupt cuckoo snapshot: %v", err)
	}

	t := &table{
		slots:      slots,
		numBuckets: s.NumBuckets,
		bucketSize: s.BucketSize,
		rng:        newRNG(buildOptions(nil).Seed),
	}
	return &Filter{
		table:    t,
		hasher:   hashing.NewHasher(hashing.Key{s.Keys[0], s.Keys[1]}, hashing.Key{s.Keys[2], s.Keys[3]}),
		fpBits:   s.FingerprintBits,
		maxKicks: s.MaxKicks,
		expected: s.Expected,
		count:    t.occupied(),
	}, nil
}

// WriteFilter serializes f as msgpack.
func WriteFilter(w io.Writer, f *Filter) error {
	return msgpack.NewEncoder(w).Encode(f.snapshot())
}

// ReadFilter deserializes a filter written by WriteFilter.
func ReadFilter(r io.Reader) (*Filter, error) {
	var s filterSnapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return restoreFilter(s)
}

// WriteScalable serializes every generation of sf as msgpack.
func WriteScalable(w io.Writer, sf *ScalableFilter) error {
	s := scalableSnapshot{
		Kind:            common.KindScalableCuckoo,
		Capacity:        sf.capacity,
		FPP:             sf.fpp,
		GrowthFactor:    sf.opts.GrowthFactor,
		TighteningRatio: sf.opts.TighteningRatio,
		Generations:     make([]filterSnapshot, len(sf.generations)),
	}
	for i, g := range sf.generations {
		s.Generations[i] = g.snapshot()
	}
	return msgpack.NewEncoder(w).Encode(&s)
}

// ReadScalable deserializes a filter written by WriteScalable.
func ReadScalable(r io.Reader) (*ScalableFilter, error) {
	var s scalableSnapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	if s.Kind != common.KindScalableCuckoo {
		return nil, filter.InvalidParameter("snapshot holds a %s filter, not %s", s.Kind, common.KindScalableCuckoo)
	}
	if len(s.Generations) == 0 {
		return nil, filter.InvalidParameter("scalable cuckoo snapshot has no generations")
	}
	if err := filter.CheckCapacity(s.Capacity); err != nil {
		return nil, err
	}
	if err := filter.CheckProbability(s.FPP); err != nil {
		return nil, err
	}

	sf := &ScalableFilter{
		capacity:    s.Capacity,
		fpp:         s.FPP,
		generations: make([]*Filter, 0, len(s.Generations)),
	}
	for i, gs := range s.Generations {
		g, err := restoreFilter(gs)
		if err != nil {
			return nil, err
		}
		if i > 0 && g.hasher != sf.generations[0].hasher {
			return nil, filter.InvalidParameter("scalable cuckoo snapshot generations disagree on hasher keys")
		}
		sf.generations = append(sf.generations, g)
	}

	first := sf.generations[0]
	sf.opts = buildOptions([]Option{
		WithBucketSize(first.BucketSize()),
		WithMaxKicks(first.MaxKicks()),
		WithGrowthFactor(s.GrowthFactor),
		WithTighteningRatio(s.TighteningRatio),
		WithHasher(first.hasher),
	})
	if err := sf.opts.validateGrowth(); err != nil {
		return nil, err
	}
	return sf, nil
}
