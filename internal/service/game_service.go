package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/annelo/go-snake/internal/config"
	"github.com/annelo/go-snake/internal/events"
	"github.com/annelo/go-snake/internal/food"
	"github.com/annelo/go-snake/internal/grid"
	"github.com/annelo/go-snake/internal/leaderboard"
	"github.com/annelo/go-snake/internal/session"
	"github.com/annelo/go-snake/internal/storage"
)

const (
	// endedQueueSize bounds finished runs waiting for the leaderboard worker.
	endedQueueSize = 8
)

// ErrNoQualification is returned by SubmitHighScore when no finished run is
// waiting for a name.
var ErrNoQualification = errors.New("service: no pending high score")

// Qualification offers a leaderboard slot to a finished run.
type Qualification struct {
	RunID string
	State session.State
	Score int
	Rank  int
}

// GameService is the facade the front-ends talk to: game commands and
// queries, event subscriptions and the high-score flow.
type GameService struct {
	logger  *zap.SugaredLogger
	session *session.Session
	board   *leaderboard.Manager

	ended          chan session.Snapshot
	qualifications chan Qualification

	mu      sync.Mutex
	pending *Qualification

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New wires a session and a leaderboard from cfg. A nil store means the
// flat file named in cfg.
func New(cfg config.Config, store storage.LeaderboardStore, logger *zap.SugaredLogger) (*GameService, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if store == nil {
		store = storage.NewFileStore(cfg.Leaderboard.Path, cfg.Leaderboard.Delimiter)
	}

	sc := cfg.Session()
	sess, err := session.New(sc,
		session.WithLogger(logger),
		session.WithSpawner(food.NewSeededSpawner(sc.Size, cfg.Seed())),
	)
	if err != nil {
		return nil, err
	}
	board := leaderboard.NewManager(
		leaderboard.NewBoard(cfg.Leaderboard.Size, cfg.NameRules()),
		store,
		logger,
	)
	return NewGameService(sess, board, logger), nil
}

// NewGameService builds the facade around an existing session and board.
func NewGameService(sess *session.Session, board *leaderboard.Manager, logger *zap.SugaredLogger) *GameService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &GameService{
		logger:         logger,
		session:        sess,
		board:          board,
		ended:          make(chan session.Snapshot, endedQueueSize),
		qualifications: make(chan Qualification, 1),
	}
	sess.Events().Subscribe(events.Over, s.enqueueEnded)
	sess.Events().Subscribe(events.Won, s.enqueueEnded)
	return s
}

// StartGame starts or restarts a run.
func (s *GameService) StartGame() error { return s.session.Start() }

// SetPaused pauses or resumes the active run.
func (s *GameService) SetPaused(paused bool) { s.session.SetPaused(paused) }

// TogglePause flips the pause state of the active run.
func (s *GameService) TogglePause() {
	s.session.SetPaused(s.session.State() == session.Running)
}

// SetDirection steers the snake on the next tick.
func (s *GameService) SetDirection(d grid.Direction) { s.session.SetDirection(d) }

// StartNewGame discards the current run and sets up a fresh board.
func (s *GameService) StartNewGame(autoStart bool) error { return s.session.NewGame(autoStart) }

func (s *GameService) Score() int { return s.session.Score() }

func (s *GameService) State() session.State { return s.session.State() }

func (s *GameService) SnakeCells() []grid.Point { return s.session.SnakeCells() }

func (s *GameService) FoodCell() grid.Point { return s.session.FoodCell() }

// Snapshot returns one consistent view of the board for rendering.
func (s *GameService) Snapshot() session.Snapshot { return s.session.Snapshot() }

// Subscribe registers fn for kind. Handlers run on the emitting goroutine,
// often the tick goroutine, and must return quickly.
func (s *GameService) Subscribe(kind events.Kind, fn events.Handler) {
	s.session.Events().Subscribe(kind, fn)
}

func (s *GameService) OnGameStarted(fn events.Handler)  { s.Subscribe(events.Started, fn) }
func (s *GameService) OnGameOver(fn events.Handler)     { s.Subscribe(events.Over, fn) }
func (s *GameService) OnGameWon(fn events.Handler)      { s.Subscribe(events.Won, fn) }
func (s *GameService) OnScoreUpdated(fn events.Handler) { s.Subscribe(events.ScoreUpdated, fn) }

// Events returns a channel of every event. Events that do not fit in buffer
// are dropped.
func (s *GameService) Events(buffer int) <-chan events.Kind {
	return s.session.Events().Chan(buffer, func(k events.Kind) {
		s.logger.Debugw("service: event dropped", "event", k)
	})
}

// HighScores returns the leaderboard in rank order.
func (s *GameService) HighScores() []storage.Entry { return s.board.Entries() }

// Qualifications delivers a slot offer for each finished run that reached
// the leaderboard.
func (s *GameService) Qualifications() <-chan Qualification { return s.qualifications }

// enqueueEnded runs on the tick goroutine; it hands the finished run to the
// worker without blocking.
func (s *GameService) enqueueEnded() {
	snap := s.session.Snapshot()
	select {
	case s.ended <- snap:
	default:
		s.logger.Warnw("service: finished run dropped", "run", snap.RunID, "score", snap.Score)
	}
}
