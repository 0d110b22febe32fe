package game

import (
	"errors"
	"math/rand"
)

// Round is one play session: a fixed wall ring, a snake, an apple and a score.
// A Round is not safe for concurrent use; the Engine serialises access to it.
type Round struct {
	board Dimension
	walls []Position
	snake *Snake
	apple *Apple
	out   outbox

	score      int
	hasHitSelf bool
	hasHitWall bool
	boardFull  bool
}

// NewRound builds the walls, spawns the snake and places the apple. The
// resulting WallCreated, SnakeRespawned and AppleRespawned events wait in the
// round until Drain is called.
func NewRound(board Dimension, rng *rand.Rand, settings SpawnSettings) (*Round, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if settings.MaxAttempts <= 0 {
		settings = DefaultSpawnSettings
	}

	r := &Round{board: board}
	r.walls = wallRing(board)
	r.out.emit(WallCreated{Walls: clonePositions(r.walls)})
	r.snake = newSnake(board, &r.out)

	apple, err := newApple(board, r.snake, rng, settings, &r.out)
	if err != nil {
		return nil, err
	}
	r.apple = apple
	return r, nil
}

// wallRing lists every border cell, column by column.
func wallRing(board Dimension) []Position {
	walls := make([]Position, 0, 2*board.X+2*board.Y-4)
	for x := 0; x < board.X; x++ {
		for y := 0; y < board.Y; y++ {
			p := Position{X: x, Y: y}
			if board.IsWall(p) {
				walls = append(walls, p)
			}
		}
	}
	return walls
}

func (r *Round) Board() Dimension { return r.board }
func (r *Round) Snake() *Snake    { return r.snake }
func (r *Round) Apple() *Apple    { return r.apple }
func (r *Round) Score() int       { return r.score }

func (r *Round) HasHitSelf() bool { return r.hasHitSelf }
func (r *Round) HasHitWall() bool { return r.hasHitWall }
func (r *Round) BoardFull() bool  { return r.boardFull }

// Over reports whether the round has reached a terminal state.
func (r *Round) Over() bool {
	return r.hasHitSelf || r.hasHitWall || r.boardFull
}

// Walls returns a copy of the wall ring.
func (r *Round) Walls() []Position {
	return clonePositions(r.walls)
}

// Drain returns the events recorded since the last call and clears them.
func (r *Round) Drain() []Event {
	return r.out.drain()
}

func (r *Round) ChangeDirection(d Direction) {
	r.snake.ChangeDirection(d)
}

func (r *Round) Snapshot() Snapshot {
	return Snapshot{
		Board:      r.board,
		Walls:      r.Walls(),
		Snake:      r.snake.Body(),
		Apple:      r.apple.Position(),
		Score:      r.score,
		Direction:  r.snake.Direction(),
		HasHitSelf: r.hasHitSelf,
		HasHitWall: r.hasHitWall,
		BoardFull:  r.boardFull,
	}
}

// Tick advances the round by one step.
//
// The next head cell is checked against the body as it is before the move,
// so the snake may not enter the cell its tail is about to leave. On a
// collision the snake stays put and its pending direction stays queued.
func (r *Round) Tick() {
	next := r.snake.NextPosition()
	hitSelf := r.snake.occupies(next)
	hitWall := r.board.IsWall(next)
	ateApple := next == r.apple.Position()

	if !hitSelf && !hitWall {
		r.snake.Move(ateApple)
	}
	if ateApple {
		err := r.apple.Respawn()
		r.score += 100
		r.out.emit(ScoreChanged{Score: r.score})
		if errors.Is(err, ErrNoFreeCell) {
			r.setBoardFull()
		}
	}

	r.setHitSelf(hitSelf)
	r.setHitWall(hitWall)
}

func (r *Round) setHitSelf(v bool) {
	if v && !r.hasHitSelf {
		r.out.emit(SnakeHitSelf{})
	}
	r.hasHitSelf = v
}

func (r *Round) setHitWall(v bool) {
	if v && !r.hasHitWall {
		r.out.emit(SnakeHitWall{})
	}
	r.hasHitWall = v
}

func (r *Round) setBoardFull() {
	if !r.boardFull {
		r.out.emit(BoardFilled{})
	}
	r.boardFull = true
}
