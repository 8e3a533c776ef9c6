// Package storage persists the high-score table.
package storage

import (
	"context"
	"fmt"
)

// LeaderboardStore loads and saves a ranked high-score table.
type LeaderboardStore interface {
	// Load returns exactly n entries in rank order. Slots the store has no
	// data for are zero Entries.
	Load(ctx context.Context, n int) ([]Entry, error)

	// Save replaces the stored table with entries.
	Save(ctx context.Context, entries []Entry) error
}

// Entry is one high-score slot.
type Entry struct {
	Name  string `yaml:"name"`
	Score int    `yaml:"score"`
}

// PersistenceError wraps any failure to read or write the table.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: %s leaderboard: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s leaderboard %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
