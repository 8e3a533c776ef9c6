package gameloop_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/annelo/go-snake/internal/gameloop"
)

type countingSystem struct {
	name    string
	initErr error
	inits   atomic.Int32
	ticks   atomic.Int32
	panics  bool
}

func (s *countingSystem) Name() string { return s.name }

func (s *countingSystem) Init(deps gameloop.Dependencies) error {
	s.inits.Add(1)
	return s.initErr
}

func (s *countingSystem) Tick(ctx context.Context, dt time.Duration) {
	s.ticks.Add(1)
	if s.panics {
		panic("boom")
	}
}

func runAsync(ctx context.Context, l *gameloop.Loop) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	return done
}

func TestLoop_TicksSystemsUntilCancelled(t *testing.T) {
	a := &countingSystem{name: "a"}
	b := &countingSystem{name: "b", initErr: errors.New("init failed")}
	l := gameloop.NewLoop(time.Millisecond, gameloop.Dependencies{Logger: zaptest.NewLogger(t).Sugar()}, a, b)

	assert.Equal(t, int32(1), a.inits.Load())
	assert.Equal(t, int32(1), b.inits.Load(), "an init error is logged, not fatal")
	assert.Equal(t, time.Millisecond, l.TickDuration())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, l)

	assert.Eventually(t, func() bool { return a.ticks.Load() >= 3 && b.ticks.Load() >= 3 },
		time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}

	stopped := a.ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, a.ticks.Load(), "no tick may run after the loop exits")
}

func TestLoop_PanicInSystemIsRecovered(t *testing.T) {
	bad := &countingSystem{name: "bad", panics: true}
	good := &countingSystem{name: "good"}
	l := gameloop.NewLoop(time.Millisecond, gameloop.Dependencies{}, bad, good)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runAsync(ctx, l)

	assert.Eventually(t, func() bool { return good.ticks.Load() >= 2 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, bad.ticks.Load(), int32(2))
}

func TestLoop_CancelledBeforeFirstTick(t *testing.T) {
	sys := &countingSystem{name: "idle"}
	l := gameloop.NewLoop(time.Hour, gameloop.Dependencies{}, sys)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Run(ctx)

	assert.Zero(t, sys.ticks.Load())
}

func TestTickCounter_CountsSkippedTicks(t *testing.T) {
	var paused atomic.Bool
	c := gameloop.NewTickCounter(paused.Load)

	c.Tick(context.Background(), time.Millisecond)
	paused.Store(true)
	c.Tick(context.Background(), time.Millisecond)
	c.Tick(context.Background(), time.Millisecond)

	assert.Equal(t, int64(3), c.Ticks())
	assert.Equal(t, int64(2), c.Skipped())
	assert.Equal(t, "tick_counter", c.Name())
}
