// Package game implements the snake simulation core.
//
// A Round owns one snake, one apple and the wall ring of a board and advances
// them one Tick at a time. An Engine owns the active Round, drives it from a
// repeating timer and replaces it when a new game starts. State changes are
// reported as typed events delivered through Handlers once each transition has
// completed.
package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimension = errors.New("invalid board dimension")
	ErrNoFreeCell       = errors.New("no free cell left on board")
	ErrUnknownSpeed     = errors.New("unknown speed")
	ErrUnknownDirection = errors.New("unknown direction")
	ErrInvalidInterval  = errors.New("tick interval must be positive")
)

// Minimum board size: a 3-cell snake centred horizontally needs x-2 >= 1,
// and the interior must keep at least one cell free for the apple.
const (
	MinWidth  = 6
	MinHeight = 3
)

// Position is a board cell. (0,0) is the top-left corner; y grows downward.
type Position struct {
	X int
	Y int
}

// Step returns the neighbouring cell in direction d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Dimension is the board size in cells, wall ring included.
type Dimension struct {
	X int
	Y int
}

// Validate rejects boards too small to hold the spawn snake, the wall ring
// and a free apple cell.
func (d Dimension) Validate() error {
	if d.X < MinWidth || d.Y < MinHeight {
		return fmt.Errorf("%w: %dx%d (minimum %dx%d)", ErrInvalidDimension, d.X, d.Y, MinWidth, MinHeight)
	}
	return nil
}

// Interior is the number of cells inside the wall ring.
func (d Dimension) Interior() int {
	return (d.X - 2) * (d.Y - 2)
}

// IsWall reports whether p lies on the border of the board.
func (d Dimension) IsWall(p Position) bool {
	return p.X == 0 || p.Y == 0 || p.X == d.X-1 || p.Y == d.Y-1
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.X, d.Y)
}

// Snapshot is a copy of the observable state of a round.
type Snapshot struct {
	Board      Dimension
	Walls      []Position
	Snake      []Position
	Apple      Position
	Score      int
	Direction  Direction
	HasHitSelf bool
	HasHitWall bool
	BoardFull  bool
}

// Over reports whether the round captured in the snapshot has ended.
func (s Snapshot) Over() bool {
	return s.HasHitSelf || s.HasHitWall || s.BoardFull
}

// Clone performs a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Walls = clonePositions(s.Walls)
	out.Snake = clonePositions(s.Snake)
	return out
}

func clonePositions(ps []Position) []Position {
	if ps == nil {
		return nil
	}
	out := make([]Position, len(ps))
	copy(out, ps)
	return out
}

func containsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
