package leaderboard

import (
	"context"
	"expvar"
	"sync"

	"go.uber.org/zap"

	"github.com/annelo/go-snake/internal/storage"
)

var highscoresSaved = expvar.NewInt("snake_highscores_saved")

// Manager guards a Board and writes every change through to a store.
type Manager struct {
	mu     sync.Mutex
	board  *Board
	store  storage.LeaderboardStore
	logger *zap.SugaredLogger
}

// NewManager wraps board and store. A nil logger discards output.
func NewManager(board *Board, store storage.LeaderboardStore, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{board: board, store: store, logger: logger}
}

// Load replaces the table with the stored one. On error the table is left
// as it was.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.store.Load(ctx, m.board.Size())
	if err != nil {
		return err
	}
	m.board.Replace(entries)
	m.logger.Debugw("leaderboard: loaded", "entries", len(entries))
	return nil
}

// Save writes the current table to the store.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(ctx)
}

// Rank returns the rank score would take; see Board.Rank.
func (m *Manager) Rank(score int) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Rank(score)
}

// Entries returns a copy of the table.
func (m *Manager) Entries() []storage.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Entries()
}

// Size returns N.
func (m *Manager) Size() int { return m.board.Size() }

// ValidateName checks name against the board's rules.
func (m *Manager) ValidateName(name string) error {
	return m.board.Rules().Validate(name)
}

// Submit validates name, inserts the entry at rank and persists the table.
// A failed save keeps the in-memory insert and returns the store error.
func (m *Manager) Submit(ctx context.Context, rank int, name string, score int) error {
	if err := m.ValidateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.board.UpdateAtRank(rank, name, score); err != nil {
		return err
	}
	m.logger.Infow("leaderboard: new entry", "rank", rank, "name", name, "score", score)
	return m.saveLocked(ctx)
}

// SubmitScore ranks score and inserts it in one step. It returns
// ErrNotRanked when the score falls below the table.
func (m *Manager) SubmitScore(ctx context.Context, name string, score int) (int, error) {
	if err := m.ValidateName(name); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rank, ok := m.board.Rank(score)
	if !ok {
		return 0, ErrNotRanked
	}
	if err := m.board.UpdateAtRank(rank, name, score); err != nil {
		return 0, err
	}
	m.logger.Infow("leaderboard: new entry", "rank", rank, "name", name, "score", score)
	return rank, m.saveLocked(ctx)
}

// Reset empties the table and persists it.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.board.Clear()
	m.logger.Info("leaderboard: reset")
	return m.saveLocked(ctx)
}

func (m *Manager) saveLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, m.board.Entries()); err != nil {
		m.logger.Warnw("leaderboard: save failed", "error", err)
		return err
	}
	highscoresSaved.Add(1)
	return nil
}
