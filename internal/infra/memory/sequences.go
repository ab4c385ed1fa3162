package memory

import (
	"context"
	"sync"
)

// Sequences is an in-process app.SequenceAllocator.
type Sequences struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewSequences() *Sequences {
	return &Sequences{values: make(map[string]int64)}
}

func (s *Sequences) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name]++
	return s.values[name], nil
}

func (s *Sequences) Reset(_ context.Context, name string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}
