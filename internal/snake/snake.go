// Package snake implements the snake body, its movement and the collision
// rules applied while moving.
package snake

import (
	"github.com/annelo/go-snake/internal/grid"
)

// CollisionType is the outcome of a move attempt.
type CollisionType int

const (
	CollisionNone CollisionType = iota
	CollisionBody
	CollisionWall
)

func (c CollisionType) String() string {
	switch c {
	case CollisionNone:
		return "none"
	case CollisionBody:
		return "body"
	case CollisionWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Snake is an ordered list of segments, head first.
//
// A Snake is not safe for concurrent use; the session's tick goroutine owns
// it and hands out copies through BodyParts.
type Snake struct {
	body          []grid.Point
	bounds        grid.Size
	wallCollision bool

	lastVacatedTail grid.Point
}

// New creates a one-segment snake at head. With wallCollision disabled the
// snake wraps around bounds instead of dying on them.
func New(head grid.Point, bounds grid.Size, wallCollision bool) *Snake {
	return &Snake{
		body:            []grid.Point{head},
		bounds:          bounds,
		wallCollision:   wallCollision,
		lastVacatedTail: head,
	}
}

// Len returns the number of segments.
func (s *Snake) Len() int { return len(s.body) }

// Head returns the first segment.
func (s *Snake) Head() grid.Point { return s.body[0] }

// Tail returns the last segment.
func (s *Snake) Tail() grid.Point { return s.body[len(s.body)-1] }

// WallCollision reports whether leaving the board ends the game.
func (s *Snake) WallCollision() bool { return s.wallCollision }

// BodyParts returns a copy of the segments, head first.
func (s *Snake) BodyParts() []grid.Point {
	out := make([]grid.Point, len(s.body))
	copy(out, s.body)
	return out
}

// Occupies reports whether any segment sits on p.
func (s *Snake) Occupies(p grid.Point) bool {
	for _, part := range s.body {
		if part == p {
			return true
		}
	}
	return false
}

// LastVacatedTail is the cell the tail held before the most recent Move (or
// the tail added by the most recent AddBodyPartToward).
func (s *Snake) LastVacatedTail() grid.Point { return s.lastVacatedTail }

// AddBodyPart appends a segment at p.
func (s *Snake) AddBodyPart(p grid.Point) {
	s.body = append(s.body, p)
}

// AddBodyPartToward appends a segment next to the current tail in direction
// dir, wrapping when wall collision is disabled.
func (s *Snake) AddBodyPartToward(dir grid.Direction) {
	p := s.offset(s.Tail(), dir)
	s.body = append(s.body, p)
	s.lastVacatedTail = p
}

// Move advances the snake one cell towards dir.
//
// The tail is excluded from the self-collision scan because it vacates its
// cell in the same step. A Body or Wall result leaves every segment where it
// was.
func (s *Snake) Move(dir grid.Direction) CollisionType {
	s.lastVacatedTail = s.Tail()

	candidate := s.offset(s.Head(), dir)

	if s.collidesWithBody(candidate) {
		return CollisionBody
	}
	if s.wallCollision && !s.bounds.Contains(candidate) {
		return CollisionWall
	}

	// copy is memmove-safe, so every segment receives its predecessor's
	// pre-move position.
	copy(s.body[1:], s.body[:len(s.body)-1])
	s.body[0] = candidate

	return CollisionNone
}

// collidesWithBody scans segments 1..len-2.
func (s *Snake) collidesWithBody(p grid.Point) bool {
	for i := 1; i < len(s.body)-1; i++ {
		if s.body[i] == p {
			return true
		}
	}
	return false
}

func (s *Snake) offset(p grid.Point, dir grid.Direction) grid.Point {
	next := dir.Offset(p)
	if !s.wallCollision {
		next = s.bounds.Wrap(next)
	}
	return next
}
