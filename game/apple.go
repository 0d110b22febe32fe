// apple.go implements apple placement for a round.

package game

import (
	"math/rand"
)

// SpawnSettings bounds the apple placement search.
type SpawnSettings struct {
	// MaxAttempts caps rejection sampling before falling back to enumerating
	// free cells.
	MaxAttempts int
	// EnumerateAbove is the snake's share of the interior (0-1) above which
	// free cells are enumerated straight away.
	EnumerateAbove float64
}

var DefaultSpawnSettings = SpawnSettings{MaxAttempts: 64, EnumerateAbove: 0.6}

// Apple is the single food item of a round.
type Apple struct {
	board    Dimension
	snake    *Snake
	rng      *rand.Rand
	settings SpawnSettings
	pos      Position
	out      *outbox
}

func newApple(board Dimension, snake *Snake, rng *rand.Rand, settings SpawnSettings, out *outbox) (*Apple, error) {
	a := &Apple{board: board, snake: snake, rng: rng, settings: settings, out: out}
	if err := a.Respawn(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Apple) Position() Position {
	return a.pos
}

// Respawn moves the apple to a random interior cell not covered by the snake.
// It returns ErrNoFreeCell, leaving the apple where it was, when the snake
// covers the whole interior.
func (a *Apple) Respawn() error {
	p, ok := a.sample()
	if !ok {
		p, ok = a.pickFree()
	}
	if !ok {
		return ErrNoFreeCell
	}
	a.pos = p
	a.out.emit(AppleRespawned{Position: p})
	return nil
}

// sample draws uniformly from the interior and rejects cells on the snake.
func (a *Apple) sample() (Position, bool) {
	interior := a.board.Interior()
	if interior <= 0 {
		return Position{}, false
	}
	if float64(a.snake.Len())/float64(interior) > a.settings.EnumerateAbove {
		return Position{}, false
	}
	for i := 0; i < a.settings.MaxAttempts; i++ {
		p := Position{
			X: 1 + a.rng.Intn(a.board.X-2),
			Y: 1 + a.rng.Intn(a.board.Y-2),
		}
		if !a.snake.occupies(p) {
			return p, true
		}
	}
	return Position{}, false
}

// pickFree enumerates every free interior cell and picks one uniformly.
func (a *Apple) pickFree() (Position, bool) {
	occupied := make(map[Position]bool, a.snake.Len())
	for _, p := range a.snake.body {
		occupied[p] = true
	}

	free := make([]Position, 0, max(a.board.Interior()-len(occupied), 0))
	for y := 1; y < a.board.Y-1; y++ {
		for x := 1; x < a.board.X-1; x++ {
			p := Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return Position{}, false
	}
	return free[a.rng.Intn(len(free))], true
}
