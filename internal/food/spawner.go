// Package food places food on the board.
package food

import (
	"errors"

	"golang.org/x/exp/rand"

	"github.com/annelo/go-snake/internal/grid"
)

// ErrBoardFull is returned by Spawn when the snake covers every cell.
var ErrBoardFull = errors.New("food: no free cell left on the board")

// Spawner picks food cells uniformly among the cells the snake does not
// occupy. The free set is recomputed from scratch on every call, which costs
// one pass over the board.
type Spawner struct {
	size grid.Size
	rng  *rand.Rand
}

// NewSpawner returns a spawner drawing from rng.
func NewSpawner(size grid.Size, rng *rand.Rand) *Spawner {
	return &Spawner{size: size, rng: rng}
}

// NewSeededSpawner returns a spawner with its own PCG source, so equal seeds
// produce equal placements.
func NewSeededSpawner(size grid.Size, seed uint64) *Spawner {
	return NewSpawner(size, rand.New(rand.NewSource(seed)))
}

// Size returns the board the spawner covers.
func (s *Spawner) Size() grid.Size { return s.size }

// FreeCells returns every cell not present in occupied, in row-major order.
func (s *Spawner) FreeCells(occupied []grid.Point) []grid.Point {
	taken := make(map[grid.Point]struct{}, len(occupied))
	for _, p := range occupied {
		taken[p] = struct{}{}
	}

	free := make([]grid.Point, 0, s.size.Area()-len(taken))
	for y := 0; y < s.size.Height; y++ {
		for x := 0; x < s.size.Width; x++ {
			p := grid.Point{X: x, Y: y}
			if _, ok := taken[p]; !ok {
				free = append(free, p)
			}
		}
	}
	return free
}

// Spawn returns a uniformly chosen free cell, or ErrBoardFull.
func (s *Spawner) Spawn(occupied []grid.Point) (grid.Point, error) {
	free := s.FreeCells(occupied)
	if len(free) == 0 {
		return grid.Point{}, ErrBoardFull
	}
	return free[s.rng.Intn(len(free))], nil
}
