package main

import (
	"errors"
	"fmt"
	"time"

	"amq/internal/common"
	"amq/internal/filter"
	"amq/internal/quotient"
	"amq/internal/registry"
)

// session is the filter the shell operates on and the parameters it was
// built with.
type session struct {
	kind      common.Kind
	capacity  int
	fpp       float64
	f         filter.Filter
	seedIndex int
}

func newSession(kind common.Kind, capacity int, fpp float64) (*session, error) {
	s := &session{kind: kind, capacity: capacity, fpp: fpp}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// reset replaces the filter with an empty one of the session's kind.
func (s *session) reset() error {
	f, err := registry.New(s.kind, s.capacity, s.fpp)
	if err != nil {
		return err
	}
	s.f = f
	s.seedIndex = 0
	return nil
}

func (s *session) load(path string) error {
	start := time.Now()
	f, err := registry.Load(path)
	if err != nil {
		return err
	}
	kind, err := registry.KindOf(f)
	if err != nil {
		return err
	}
	s.f, s.kind = f, kind
	common.LogDuration(start, "loaded %s", path)
	return nil
}

func (s *session) insert(items []string) {
	for _, item := range items {
		if err := s.f.Insert([]byte(item)); err != nil {
			fmt.Printf("insert %s: %v\n", item, err)
			return
		}
	}
	fmt.Println("ok")
}

func (s *session) remove(item string) {
	rf, ok := s.f.(filter.RemovableFilter)
	if !ok {
		fmt.Printf("remove: %s filters do not support removal\n", s.kind)
		return
	}
	if rf.Remove([]byte(item)) {
		fmt.Println("ok")
	} else {
		fmt.Println("not found")
	}
}

func (s *session) dump() {
	qf, ok := s.f.(*quotient.Filter)
	if !ok {
		fmt.Printf("dump: %s filters have no slot dump, use stats\n", s.kind)
		return
	}
	fmt.Print(qf.String())
}

func (s *session) resize(quotientBits uint) {
	qf, ok := s.f.(*quotient.Filter)
	if !ok {
		fmt.Println("resize: only quotient filters can be resized")
		return
	}
	if err := qf.Resize(quotientBits); err != nil {
		fmt.Printf("resize error: %v\n", err)
	}
}

// probe measures the false positive rate over n items that were never
// inserted.
func (s *session) probe(n int) {
	start := time.Now()
	probes := common.Items("__probe__", 0, n)
	rate := common.FalsePositiveRate(s.f.Contains, probes)
	common.LogDuration(start, "probed %d absent items: measured fpp %.6f, estimated %.6f",
		n, rate, s.f.EstimatedFPP())
}

func isFull(err error) bool {
	return errors.Is(err, filter.ErrFilterFull)
}
