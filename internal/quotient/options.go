package quotient

import "amq/internal/hashing"

const (
	minRemainderBits = 1
	// maxRemainderBits keeps a slot (remainder plus flags) within one word.
	maxRemainderBits = 64 - metadataBits
	maxTotalBits     = 64

	// slotsPerItem sizes NewWithFPP tables for a 75% fill, below which runs
	// and clusters stay short.
	slotsPerItem = 1.33
)

type Options struct {
	Hasher hashing.Hasher
}

var DefaultOptions = Options{
	Hasher: hashing.DefaultHasher(),
}

type Option func(*Options)

func WithHasher(h hashing.Hasher) Option {
	return func(o *Options) {
		o.Hasher = h
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
