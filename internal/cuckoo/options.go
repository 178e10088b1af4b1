package cuckoo

import (
	"math"
	"math/rand/v2"

	"amq/internal/filter"
	"amq/internal/hashing"
)

const (
	// maxLoadFactor is the occupancy a (2, b) cuckoo table reaches before
	// eviction chains start failing; tables are sized so the expected item
	// count stays below it.
	maxLoadFactor = 0.95

	minFingerprintBits = 2
	maxFingerprintBits = 64
)

type Options struct {
	BucketSize      int
	MaxKicks        int
	GrowthFactor    float64
	TighteningRatio float64
	Hasher          hashing.Hasher
	// Seed feeds the generator that picks eviction victims. Zero draws a
	// random seed.
	Seed uint64
}

var DefaultOptions = Options{
	BucketSize:      4,
	MaxKicks:        512,
	GrowthFactor:    2,
	TighteningRatio: 0.5,
	Hasher:          hashing.DefaultHasher(),
}

type Option func(*Options)

func WithBucketSize(n int) Option {
	return func(o *Options) {
		o.BucketSize = n
	}
}

func WithMaxKicks(n int) Option {
	return func(o *Options) {
		o.MaxKicks = n
	}
}

// WithGrowthFactor sets how much larger each new generation of a scalable
// filter is than the previous one.
func WithGrowthFactor(f float64) Option {
	return func(o *Options) {
		o.GrowthFactor = f
	}
}

// WithTighteningRatio sets the factor applied to the target false positive
// probability of each new generation of a scalable filter.
func WithTighteningRatio(r float64) Option {
	return func(o *Options) {
		o.TighteningRatio = r
	}
}

func WithHasher(h hashing.Hasher) Option {
	return func(o *Options) {
		o.Hasher = h
	}
}

func WithSeed(seed uint64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	return o
}

func (o Options) validate() error {
	if o.BucketSize < 1 || o.BucketSize > 64 {
		return filter.InvalidParameter("bucket size must be in [1, 64], got %d", o.BucketSize)
	}
	if o.MaxKicks < 0 {
		return filter.InvalidParameter("max kicks must not be negative, got %d", o.MaxKicks)
	}
	return nil
}

func (o Options) validateGrowth() error {
	if !(o.GrowthFactor >= 1) || math.IsInf(o.GrowthFactor, 1) {
		return filter.InvalidParameter("growth factor must be at least 1, got %v", o.GrowthFactor)
	}
	if !(o.TighteningRatio > 0 && o.TighteningRatio <= 1) {
		return filter.InvalidParameter("tightening ratio must be in (0, 1], got %v", o.TighteningRatio)
	}
	return nil
}
