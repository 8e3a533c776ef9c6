// Package leaderboard keeps the ranked top-N high-score table.
package leaderboard

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/annelo/go-snake/internal/storage"
)

// DefaultSize is the number of ranked slots.
const DefaultSize = 5

// ErrIllegalRank is returned for ranks outside 1..N.
var ErrIllegalRank = errors.New("leaderboard: illegal rank")

// ErrNotRanked is returned when a score does not reach the table.
var ErrNotRanked = errors.New("leaderboard: score does not qualify")

// NameRules bound the names accepted on the table.
type NameRules struct {
	MinLength int    // in runes
	MaxLength int    // in runes
	Delimiter string // must not appear in a name
}

// DefaultNameRules accept 1..16 runes without the default delimiter.
var DefaultNameRules = NameRules{MinLength: 1, MaxLength: 16, Delimiter: storage.DefaultDelimiter}

// ValidationError describes a rejected player name.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leaderboard: invalid name %q: %s", e.Name, e.Reason)
}

// Validate checks name against the rules.
func (r NameRules) Validate(name string) error {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return &ValidationError{Name: name, Reason: "name is empty"}
	case n < r.MinLength:
		return &ValidationError{Name: name, Reason: fmt.Sprintf("shorter than %d characters", r.MinLength)}
	case r.MaxLength > 0 && n > r.MaxLength:
		return &ValidationError{Name: name, Reason: fmt.Sprintf("longer than %d characters", r.MaxLength)}
	case r.Delimiter != "" && strings.Contains(name, r.Delimiter):
		return &ValidationError{Name: name, Reason: fmt.Sprintf("contains %q", r.Delimiter)}
	case strings.ContainsAny(name, "\r\n"):
		return &ValidationError{Name: name, Reason: "contains a line break"}
	}
	return nil
}

// Board is a fixed-size table sorted by score, highest first. It is not
// safe for concurrent use; Manager adds the locking.
type Board struct {
	entries []storage.Entry
	rules   NameRules
}

// NewBoard returns a board of size empty slots. A non-positive size means
// DefaultSize.
func NewBoard(size int, rules NameRules) *Board {
	if size <= 0 {
		size = DefaultSize
	}
	return &Board{entries: make([]storage.Entry, size), rules: rules}
}

// Size returns N.
func (b *Board) Size() int { return len(b.entries) }

// Rules returns the name rules.
func (b *Board) Rules() NameRules { return b.rules }

// Entries returns a copy of the table in rank order.
func (b *Board) Entries() []storage.Entry {
	return append([]storage.Entry(nil), b.entries...)
}

// Rank returns the 1-based rank score would take. Ties go to the newcomer.
// ok is false when the score is below every entry.
func (b *Board) Rank(score int) (rank int, ok bool) {
	for i, e := range b.entries {
		if score >= e.Score {
			return i + 1, true
		}
	}
	return 0, false
}

// UpdateAtRank inserts an entry at rank, shifting the entries below it down
// and dropping the last one.
func (b *Board) UpdateAtRank(rank int, name string, score int) error {
	if rank < 1 || rank > len(b.entries) {
		return fmt.Errorf("%w: %d not in 1..%d", ErrIllegalRank, rank, len(b.entries))
	}
	i := rank - 1
	copy(b.entries[i+1:], b.entries[i:len(b.entries)-1])
	b.entries[i] = storage.Entry{Name: name, Score: score}
	return nil
}

// Replace loads entries into the board, truncating or padding to N.
func (b *Board) Replace(entries []storage.Entry) {
	for i := range b.entries {
		if i < len(entries) {
			b.entries[i] = entries[i]
		} else {
			b.entries[i] = storage.Entry{}
		}
	}
}

// Clear empties every slot.
func (b *Board) Clear() { b.Replace(nil) }
