package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Ticker is the repeating timer driving an Engine.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Config configures an Engine.
type Config struct {
	Board Dimension
	Speed Speed
	// TickInterval overrides Speed when positive.
	TickInterval time.Duration
	// Seed for apple placement. Zero picks a time-based seed.
	Seed   int64
	Spawn  SpawnSettings
	Logger *slog.Logger
	// NewTicker replaces time.NewTicker, mainly for tests.
	NewTicker func(time.Duration) Ticker
}

// Engine owns the active Round and the timer that ticks it.
//
// All methods are safe for concurrent use. Handlers are invoked outside the
// engine lock, in the order the events were produced, and may call back into
// the Engine.
type Engine struct {
	mu           sync.Mutex
	board        Dimension
	interval     time.Duration
	running      bool
	replaceRound bool
	round        *Round
	rng          *rand.Rand
	spawn        SpawnSettings
	newTicker    func(time.Duration) Ticker
	log          *slog.Logger

	// gen identifies the current run; timer firings from an older run are
	// ignored.
	gen    uint64
	cancel context.CancelFunc

	handlers   Handlers
	pending    []Event
	delivering bool
}

// NewEngine validates the board, builds the first round and delivers its
// construction events.
func NewEngine(cfg Config, handlers Handlers) (*Engine, error) {
	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = cfg.Speed.Interval()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	newTicker := cfg.NewTicker
	if newTicker == nil {
		newTicker = newTimeTicker
	}
	spawn := cfg.Spawn
	if spawn.MaxAttempts <= 0 {
		spawn = DefaultSpawnSettings
	}

	e := &Engine{
		board:     cfg.Board,
		interval:  interval,
		rng:       rand.New(rand.NewSource(seed)),
		spawn:     spawn,
		newTicker: newTicker,
		log:       logger.With("component", "engine"),
		handlers:  handlers,
	}

	e.mu.Lock()
	err := e.newRoundLocked()
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	e.log.Info("engine ready", "board", cfg.Board.String(), "interval", interval, "seed", seed)
	e.deliver()
	return e, nil
}

func (e *Engine) newRoundLocked() error {
	r, err := NewRound(e.board, e.rng, e.spawn)
	if err != nil {
		return fmt.Errorf("new round: %w", err)
	}
	e.round = r
	e.replaceRound = false
	e.pending = append(e.pending, r.Drain()...)
	return nil
}

// Start begins ticking. A round left over from a previous Stop is replaced
// first. Starting a running engine does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.log.Debug("start ignored, already running")
		return
	}
	if e.replaceRound {
		if err := e.newRoundLocked(); err != nil {
			// The board was validated in NewEngine, so this cannot happen.
			e.mu.Unlock()
			e.log.Error("replace round", "err", err)
			return
		}
	}

	e.running = true
	e.gen++
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.run(ctx, e.gen, e.newTicker(e.interval))

	e.pending = append(e.pending, GameStarted{})
	e.log.Info("game started", "interval", e.interval)
	e.mu.Unlock()
	e.deliver()
}

// Stop cancels the timer and marks the round for replacement on the next
// Start. GameStopped is only emitted when the engine was running.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopLocked()
	e.mu.Unlock()
	e.deliver()
}

func (e *Engine) stopLocked() {
	e.replaceRound = true
	if !e.running {
		return
	}
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.pending = append(e.pending, GameStopped{})
	e.log.Info("game stopped", "score", e.round.Score())
}

// ChangeDirection stages a direction for the next tick.
func (e *Engine) ChangeDirection(d Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.round.ChangeDirection(d)
}

// UpdateTickInterval stores a new interval. A running timer keeps its old
// interval; the new one applies from the next Start.
func (e *Engine) UpdateTickInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interval = d
	e.log.Debug("tick interval updated", "interval", d, "running", e.running)
	return nil
}

func (e *Engine) TickInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) Board() Dimension {
	return e.board
}

// Snapshot copies the state of the active round.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round.Snapshot()
}

func (e *Engine) run(ctx context.Context, gen uint64, t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			e.tick(gen)
		}
	}
}

// tick runs one transition of the active round if gen is still the current
// run. A terminal round stops the engine before any event is delivered.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if !e.running || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.round.Tick()
	e.pending = append(e.pending, e.round.Drain()...)
	if e.round.Over() {
		e.log.Info("round over",
			"hit_self", e.round.HasHitSelf(),
			"hit_wall", e.round.HasHitWall(),
			"board_full", e.round.BoardFull(),
			"length", e.round.Snake().Len())
		e.stopLocked()
	}
	e.mu.Unlock()
	e.deliver()
}

// deliver hands pending events to the handlers. Only one goroutine delivers
// at a time; events queued by a handler calling back into the engine are
// picked up by the same loop. A panicking handler releases the delivery slot.
func (e *Engine) deliver() {
	e.mu.Lock()
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	e.mu.Unlock()

	drained := false
	defer func() {
		if drained {
			return
		}
		e.mu.Lock()
		e.delivering = false
		e.mu.Unlock()
	}()

	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			// Cleared under the same lock that saw the queue empty, so a
			// concurrent emitter either lands in this loop or delivers itself.
			e.delivering = false
			e.mu.Unlock()
			drained = true
			return
		}
		batch := e.pending
		e.pending = nil
		e.mu.Unlock()

		for _, ev := range batch {
			e.handlers.dispatch(ev)
		}
	}
}
