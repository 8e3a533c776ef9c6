package gameloop

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop is the tick driver: it sleeps on a ticker between ticks and calls Tick
// on every registered system.
type Loop struct {
	systems []System
	tickDur time.Duration
	logger  *zap.SugaredLogger
}

// NewLoop creates a loop with the given tick period and initialises every
// system once.
func NewLoop(tick time.Duration, deps Dependencies, systems ...System) *Loop {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
		deps.Logger = logger
	}
	for _, s := range systems {
		if err := s.Init(deps); err != nil {
			logger.Warnw("gameloop: system init failed", "system", s.Name(), "error", err)
		}
	}
	return &Loop{systems: systems, tickDur: tick, logger: logger}
}

// TickDuration returns the fixed tick period.
func (l *Loop) TickDuration() time.Duration { return l.tickDur }

// Run ticks until ctx is cancelled. Cancellation is observed at exactly one
// point per iteration, right after the sleep and before any system runs, so
// a cancelled loop never touches system state again.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tickDur)
	defer ticker.Stop()

	l.logger.Debugw("gameloop: started", "tick", l.tickDur)

	last := time.Now()
	for {
		var now time.Time
		select {
		case now = <-ticker.C:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			l.logger.Debug("gameloop: stopped")
			return
		}

		dt := now.Sub(last)
		last = now
		for _, s := range l.systems {
			l.tickSystem(ctx, s, dt)
		}
	}
}

func (l *Loop) tickSystem(ctx context.Context, sys System, dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorw("gameloop: panic in system", "system", sys.Name(), "panic", r)
		}
	}()
	sys.Tick(ctx, dt)
}
