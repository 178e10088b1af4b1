// Package registry maps filter kinds to their constructors and snapshot
// codecs, so tools can build, save and load any filter by name or file
// extension.
package registry

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"amq/internal/common"
	"amq/internal/cuckoo"
	"amq/internal/filter"
	"amq/internal/hashing"
	"amq/internal/quotient"
)

// New builds an empty filter of the given kind for capacity items at false
// positive probability fpp.
func New(kind common.Kind, capacity int, fpp float64) (filter.Filter, error) {
	switch kind {
	case common.KindCuckoo:
		f, err := cuckoo.New(capacity, fpp)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindScalableCuckoo:
		f, err := cuckoo.NewScalable(capacity, fpp)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindQuotient:
		f, err := quotient.NewWithFPP(capacity, fpp)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindBloom:
		return filter.NewBloomFilterWithFPP(capacity, fpp, hashing.DefaultHasher())
	default:
		return nil, fmt.Errorf("unknown filter kind %s", kind)
	}
}

// KindOf returns the kind of a filter built by this module.
func KindOf(f filter.Filter) (common.Kind, error) {
	switch f.(type) {
	case *cuckoo.Filter:
		return common.KindCuckoo, nil
	case *cuckoo.ScalableFilter:
		return common.KindScalableCuckoo, nil
	case *quotient.Filter:
		return common.KindQuotient, nil
	}
	if filter.IsBloomFilter(f) {
		return common.KindBloom, nil
	}
	return 0, fmt.Errorf("unsupported filter type %T", f)
}

// Write serializes f in the snapshot format of its kind.
func Write(w io.Writer, f filter.Filter) error {
	switch f := f.(type) {
	case *cuckoo.Filter:
		return cuckoo.WriteFilter(w, f)
	case *cuckoo.ScalableFilter:
		return cuckoo.WriteScalable(w, f)
	case *quotient.Filter:
		return quotient.WriteFilter(w, f)
	}
	if filter.IsBloomFilter(f) {
		_, err := filter.WriteBloomFilter(w, f)
		return err
	}
	return fmt.Errorf("unsupported filter type %T", f)
}

// Read deserializes a snapshot of the given kind.
func Read(r io.Reader, kind common.Kind) (filter.Filter, error) {
	switch kind {
	case common.KindCuckoo:
		f, err := cuckoo.ReadFilter(r)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindScalableCuckoo:
		f, err := cuckoo.ReadScalable(r)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindQuotient:
		f, err := quotient.ReadFilter(r)
		if err != nil {
			return nil, err
		}
		return f, nil
	case common.KindBloom:
		return filter.ReadBloomFilter(r)
	default:
		return nil, fmt.Errorf("unknown filter kind %s", kind)
	}
}

// Save atomically writes f to name plus the extension of its kind and
// returns the path.
func Save(name string, f filter.Filter) (string, error) {
	kind, err := KindOf(f)
	if err != nil {
		return "", err
	}
	path := common.SnapshotPath(name, kind)

	// Atomic write: write to temp file, then rename
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	w := bufio.NewWriter(file)
	if err := Write(w, f); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return path, os.Rename(tmpPath, path)
}

// Load reads a snapshot, choosing the codec from the file extension.
func Load(path string) (filter.Filter, error) {
	kind, err := common.KindFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Read(bufio.NewReader(file), kind)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}
