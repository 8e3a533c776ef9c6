package service

import (
	"context"
	"errors"

	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/session"
)

// qualify offers a slot when a run with a positive score reaches the table.
// Only the latest offer is kept.
func (s *GameService) qualify(runID string, state session.State, score int) {
	if score <= 0 {
		return
	}
	rank, ok := s.board.Rank(score)
	if !ok {
		s.logger.Debugw("service: score below leaderboard", "run", runID, "score", score)
		return
	}

	q := Qualification{RunID: runID, State: state, Score: score, Rank: rank}
	s.mu.Lock()
	s.pending = &q
	s.mu.Unlock()

	// drop a stale offer nobody has read yet
	select {
	case <-s.qualifications:
	default:
	}
	s.qualifications <- q
	s.logger.Infow("service: high score reached", "run", runID, "score", score, "rank", rank)
}

// Pending returns the offer waiting for a name, if any.
func (s *GameService) Pending() (Qualification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Qualification{}, false
	}
	return *s.pending, true
}

// SubmitHighScore records name for the pending offer and returns the rank
// it took. A *leaderboard.ValidationError keeps the offer open so the player
// can retry. A persistence error still leaves the entry on the in-memory
// table.
func (s *GameService) SubmitHighScore(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return 0, ErrNoQualification
	}
	if err := s.board.ValidateName(name); err != nil {
		return 0, err
	}

	// the table may have changed since the offer was made
	rank, ok := s.board.Rank(s.pending.Score)
	if !ok {
		s.pending = nil
		return 0, leaderboard.ErrNotRanked
	}

	err := s.board.Submit(ctx, rank, name, s.pending.Score)
	var verr *leaderboard.ValidationError
	if errors.As(err, &verr) {
		return 0, err
	}
	s.pending = nil
	return rank, err
}

// DeclineHighScore drops the pending offer.
func (s *GameService) DeclineHighScore() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}
