package session

import (
	"github.com/annelo/go-snake/internal/grid"
)

// State is the session lifecycle state.
type State int32

const (
	NotStarted State = iota
	Running
	Paused
	Over
	Won
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Over:
		return "over"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has ended.
func (s State) Terminal() bool { return s == Over || s == Won }

// Snapshot is an immutable copy of the session taken at the end of the last
// tick or command. Readers may keep it as long as they like.
type Snapshot struct {
	RunID     string
	State     State
	Score     int
	Direction grid.Direction
	Snake     []grid.Point
	Food      grid.Point
	Tick      uint64
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Snake = append([]grid.Point(nil), s.Snake...)
	return &out
}
