package gameloop

import (
	"context"
	"expvar"
	"sync/atomic"
	"time"
)

var (
	ticksTotal   = expvar.NewInt("snake_ticks_total")
	ticksSkipped = expvar.NewInt("snake_ticks_skipped")
)

// TickCounter counts loop ticks and the ones the game skipped (while paused
// or not running). Counters are readable from any goroutine.
type TickCounter struct {
	skip    func() bool
	ticks   atomic.Int64
	skipped atomic.Int64
}

// NewTickCounter returns a counter; skip reports whether the current tick is
// a no-op for the game.
func NewTickCounter(skip func() bool) *TickCounter {
	return &TickCounter{skip: skip}
}

func (c *TickCounter) Name() string { return "tick_counter" }

func (c *TickCounter) Init(deps Dependencies) error { return nil }

func (c *TickCounter) Tick(ctx context.Context, dt time.Duration) {
	c.ticks.Add(1)
	ticksTotal.Add(1)
	if c.skip != nil && c.skip() {
		c.skipped.Add(1)
		ticksSkipped.Add(1)
	}
}

// Ticks returns the number of ticks seen.
func (c *TickCounter) Ticks() int64 { return c.ticks.Load() }

// Skipped returns the number of ticks the game ignored.
func (c *TickCounter) Skipped() int64 { return c.skipped.Load() }
