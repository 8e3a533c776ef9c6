// Package session runs one game of snake: setup, the per-tick state machine,
// player commands and the queries a renderer needs.
package session

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/annelo/go-snake/internal/events"
	"github.com/annelo/go-snake/internal/food"
	"github.com/annelo/go-snake/internal/gameloop"
	"github.com/annelo/go-snake/internal/grid"
	"github.com/annelo/go-snake/internal/snake"
)

// InitialLength is the number of segments a fresh snake has.
const InitialLength = 3

// ErrAlreadyRunning is returned by Start while a run is active or paused.
var ErrAlreadyRunning = errors.New("session: game already running")

var runsStarted = expvar.NewInt("snake_runs_started")

// Config describes the board and the rules of one session.
type Config struct {
	Size             grid.Size
	Start            grid.Point
	InitialDirection grid.Direction
	WallCollision    bool
	FoodPoints       int
	Tick             time.Duration
}

// Validate rejects boards a snake cannot be set up on.
func (c Config) Validate() error {
	if c.Size.Width <= 0 || c.Size.Height <= 0 {
		return fmt.Errorf("session: board %dx%d must be positive", c.Size.Width, c.Size.Height)
	}
	if !c.Size.Contains(c.Start) {
		return fmt.Errorf("session: start cell %s outside board %dx%d", c.Start, c.Size.Width, c.Size.Height)
	}
	if !c.InitialDirection.Valid() {
		return fmt.Errorf("session: invalid initial direction %d", c.InitialDirection)
	}
	if c.FoodPoints < 0 {
		return fmt.Errorf("session: food points %d must not be negative", c.FoodPoints)
	}
	if c.Size.Area() < InitialLength {
		return fmt.Errorf("session: board %dx%d cannot hold %d segments", c.Size.Width, c.Size.Height, InitialLength)
	}
	back := c.InitialDirection.Opposite()
	seen := map[grid.Point]bool{c.Start: true}
	p := c.Start
	for i := 1; i < InitialLength; i++ {
		p = back.Offset(p)
		if !c.WallCollision {
			p = c.Size.Wrap(p)
		}
		if !c.Size.Contains(p) || seen[p] {
			return fmt.Errorf("session: start cell %s leaves no room for the body", c.Start)
		}
		seen[p] = true
	}
	return nil
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSpawner replaces the default spawner.
func WithSpawner(sp *food.Spawner) Option {
	return func(s *Session) {
		if sp != nil {
			s.spawner = sp
		}
	}
}

// WithDispatcher shares an existing dispatcher.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(s *Session) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithManualTicks disables the scheduler: Start does not launch a loop and
// the caller advances the game with Step.
func WithManualTicks() Option {
	return func(s *Session) { s.manual = true }
}

// Session is a single-player snake game. Commands may come from any
// goroutine. While a run is active the loop goroutine is the only writer of
// the snake, the food and the committed direction.
type Session struct {
	cfg        Config
	spawner    *food.Spawner
	dispatcher *events.Dispatcher
	logger     *zap.SugaredLogger
	counter    *gameloop.TickCounter
	loop       *gameloop.Loop
	manual     bool

	// owned by the loop goroutine during a run, by ctrl holders otherwise
	snake      *snake.Snake
	food       grid.Point
	boardFull  bool
	needsReset bool
	ticks      uint64
	runID      string
	endRun     context.CancelFunc

	state     atomic.Int32
	direction atomic.Int32
	next      atomic.Int32
	paused    atomic.Bool
	score     atomic.Int64
	snapshot  atomic.Pointer[Snapshot]

	ctrl sync.Mutex
	done chan struct{}
}

// New builds a session in NotStarted with the snake and food already placed.
func New(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:        cfg,
		dispatcher: events.NewDispatcher(),
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.spawner == nil {
		s.spawner = food.NewSeededSpawner(cfg.Size, uint64(time.Now().UnixNano()))
	}
	if !s.manual && cfg.Tick <= 0 {
		return nil, fmt.Errorf("session: tick %s must be positive", cfg.Tick)
	}

	s.counter = gameloop.NewTickCounter(func() bool { return s.State() != Running })
	if !s.manual {
		s.loop = gameloop.NewLoop(cfg.Tick, gameloop.Dependencies{Logger: s.logger}, s.counter, s)
	}

	s.setup()
	s.resetRun()
	s.publish()
	return s, nil
}

// Events returns the dispatcher the session emits on.
func (s *Session) Events() *events.Dispatcher { return s.dispatcher }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Name implements gameloop.System.
func (s *Session) Name() string { return "session" }

// Init implements gameloop.System.
func (s *Session) Init(deps gameloop.Dependencies) error { return nil }

// Tick implements gameloop.System. It must only be called by the loop.
func (s *Session) Tick(ctx context.Context, dt time.Duration) {
	s.step()
}

// Step advances one tick by hand. It is meant for sessions built with
// WithManualTicks and must not race with a running loop.
func (s *Session) Step() {
	s.counter.Tick(context.Background(), 0)
	s.step()
}

// Start begins a run. A session that ended is set up again first.
func (s *Session) Start() error {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	switch s.State() {
	case Running, Paused:
		return ErrAlreadyRunning
	}
	s.stopLocked()

	if s.needsReset {
		s.setup()
	}
	s.resetRun()
	s.runID = uuid.NewString()
	s.state.Store(int32(Running))
	s.publish()
	runsStarted.Add(1)

	s.logger.Infow("session: run started",
		"run", s.runID,
		"board", fmt.Sprintf("%dx%d", s.cfg.Size.Width, s.cfg.Size.Height),
		"wall_collision", s.cfg.WallCollision,
	)
	s.dispatcher.Emit(events.ScoreUpdated)
	s.dispatcher.Emit(events.Started)

	if s.boardFull {
		s.finish(Won, snake.CollisionNone)
		return nil
	}
	if !s.manual {
		s.launchLocked()
	}
	return nil
}

// SetDirection buffers d for the next tick. Reversals onto the committed
// direction and input while paused are ignored; the last accepted call
// before a tick wins.
func (s *Session) SetDirection(d grid.Direction) {
	if !d.Valid() || s.paused.Load() {
		return
	}
	if d == grid.Direction(s.direction.Load()).Opposite() {
		return
	}
	s.next.Store(int32(d))
}

// SetPaused pauses or resumes an active run. It is a no-op otherwise.
func (s *Session) SetPaused(paused bool) {
	if State(s.state.Load()) != Running {
		return
	}
	if s.paused.Swap(paused) != paused {
		s.logger.Debugw("session: pause toggled", "run", s.runID, "paused", paused)
	}
}

// NewGame stops any active run, waits for its loop to exit and sets up a
// fresh board. With autoStart the new run starts immediately.
//
// It blocks on the loop goroutine, so it must not be called from an event
// handler running on that goroutine.
func (s *Session) NewGame(autoStart bool) error {
	s.ctrl.Lock()
	s.stopLocked()
	s.setup()
	s.resetRun()
	s.runID = ""
	s.state.Store(int32(NotStarted))
	s.publish()
	s.ctrl.Unlock()

	s.dispatcher.Emit(events.ScoreUpdated)
	if autoStart {
		return s.Start()
	}
	return nil
}

// Stop cancels the active run, if any, and waits for its loop to exit. The
// state is left as it was.
func (s *Session) Stop() {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	s.stopLocked()
}

// State returns the live state; a running session that is paused reports
// Paused.
func (s *Session) State() State {
	st := State(s.state.Load())
	if st == Running && s.paused.Load() {
		return Paused
	}
	return st
}

// Score returns the current score.
func (s *Session) Score() int { return int(s.score.Load()) }

// Direction returns the committed direction.
func (s *Session) Direction() grid.Direction { return grid.Direction(s.direction.Load()) }

// BufferedDirection returns the direction the next tick will commit.
func (s *Session) BufferedDirection() grid.Direction { return grid.Direction(s.next.Load()) }

// SnakeCells returns a copy of the snake, head first.
func (s *Session) SnakeCells() []grid.Point {
	return append([]grid.Point(nil), s.snapshot.Load().Snake...)
}

// FoodCell returns the food position.
func (s *Session) FoodCell() grid.Point { return s.snapshot.Load().Food }

// Snapshot returns a consistent copy of the last published state, with the
// live state (pause included).
func (s *Session) Snapshot() Snapshot {
	snap := s.snapshot.Load().clone()
	snap.State = s.State()
	return *snap
}

// Ticks returns how many ticks the scheduler fired, skipped ones included.
func (s *Session) Ticks() int64 { return s.counter.Ticks() }

func (s *Session) step() {
	if State(s.state.Load()) != Running || s.paused.Load() {
		return
	}
	s.ticks++

	dir := grid.Direction(s.next.Load())
	s.direction.Store(int32(dir))

	if c := s.snake.Move(dir); c != snake.CollisionNone {
		s.finish(Over, c)
		return
	}
	if s.snake.Head() != s.food {
		s.publish()
		return
	}

	s.score.Add(int64(s.cfg.FoodPoints))
	s.snake.AddBodyPart(s.snake.LastVacatedTail())
	full := !s.respawnFood()
	s.publish()
	s.dispatcher.Emit(events.ScoreUpdated)
	if full {
		s.finish(Won, snake.CollisionNone)
	}
}

// finish moves the run into a terminal state and ends its loop.
func (s *Session) finish(st State, c snake.CollisionType) {
	s.state.Store(int32(st))
	s.needsReset = true
	s.publish()

	s.logger.Infow("session: run ended",
		"run", s.runID,
		"state", st,
		"collision", c,
		"score", s.Score(),
		"length", s.snake.Len(),
		"ticks", s.ticks,
	)

	if st == Won {
		s.dispatcher.Emit(events.Won)
	} else {
		s.dispatcher.Emit(events.Over)
	}
	if s.endRun != nil {
		s.endRun()
	}
}

func (s *Session) setup() {
	sn := snake.New(s.cfg.Start, s.cfg.Size, s.cfg.WallCollision)
	back := s.cfg.InitialDirection.Opposite()
	for i := 1; i < InitialLength; i++ {
		sn.AddBodyPartToward(back)
	}
	s.snake = sn
	s.boardFull = !s.respawnFood()
	s.needsReset = false
}

func (s *Session) resetRun() {
	s.score.Store(0)
	s.paused.Store(false)
	s.direction.Store(int32(s.cfg.InitialDirection))
	s.next.Store(int32(s.cfg.InitialDirection))
	s.ticks = 0
}

// respawnFood places new food and reports false when the board is full.
func (s *Session) respawnFood() bool {
	p, err := s.spawner.Spawn(s.snake.BodyParts())
	if err != nil {
		return false
	}
	s.food = p
	return true
}

func (s *Session) publish() {
	s.snapshot.Store(&Snapshot{
		RunID:     s.runID,
		State:     State(s.state.Load()),
		Score:     s.Score(),
		Direction: grid.Direction(s.direction.Load()),
		Snake:     s.snake.BodyParts(),
		Food:      s.food,
		Tick:      s.ticks,
	})
}

func (s *Session) launchLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.endRun = cancel
	s.done = done

	go func() {
		defer close(done)
		s.loop.Run(ctx)
	}()
}

func (s *Session) stopLocked() {
	if s.done == nil {
		return
	}
	s.endRun()
	<-s.done
	s.endRun = nil
	s.done = nil
}
