package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the table in memory. LoadErr and SaveErr, when set, are
// returned wrapped in a PersistenceError instead of touching the data.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	saves   int

	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store seeded with entries.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	return &MemoryStore{entries: append([]Entry(nil), entries...)}
}

func (s *MemoryStore) Load(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, &PersistenceError{Op: "load", Err: s.LoadErr}
	}
	out := make([]Entry, n)
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return &PersistenceError{Op: "save", Err: s.SaveErr}
	}
	s.entries = append(s.entries[:0:0], entries...)
	s.saves++
	return nil
}

// Entries returns what was last saved.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Saves returns how many saves succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
