package service

import (
	"context"
	"errors"
	"io/fs"
)

// Start loads the leaderboard and runs the background routines. A missing
// or unreadable leaderboard is logged and the game continues with an empty
// table.
func (s *GameService) Start(ctx context.Context) {
	if err := s.board.Load(ctx); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Infow("service: no leaderboard yet, starting empty", "error", err)
		} else {
			s.logger.Warnw("service: leaderboard load failed", "error", err)
		}
	} else {
		s.logger.Info("service: leaderboard loaded")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.processEndedRuns(ctx)
}

// processEndedRuns checks finished runs against the leaderboard, off the
// tick goroutine.
func (s *GameService) processEndedRuns(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.ended:
			s.qualify(snap.RunID, snap.State, snap.Score)
		}
	}
}
