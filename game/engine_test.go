package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTicker struct {
	interval time.Duration
	c        chan time.Time
	stopped  chan struct{}
	once     sync.Once
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { f.once.Do(func() { close(f.stopped) }) }

func (f *fakeTicker) isStopped() bool {
	select {
	case <-f.stopped:
		return true
	default:
		return false
	}
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTicker{interval: d, c: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, ft)
	return ft
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// recorder collects delivered events in order.
type recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan Event
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan Event, 256)}
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.notify <- e
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	for len(r.notify) > 0 {
		<-r.notify
	}
	return out
}

func (r *recorder) waitFor(t *testing.T, name string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-r.notify:
			if EventName(e) == name {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func newTestEngine(t *testing.T, h Handlers) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	e, err := NewEngine(Config{
		Board:     Dimension{X: 20, Y: 14},
		Speed:     Medium,
		Seed:      11,
		NewTicker: clock.NewTicker,
	}, h)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, clock
}

func TestEngine_RejectsInvalidBoardBeforeAnyEvent(t *testing.T) {
	called := false
	_, err := NewEngine(Config{Board: Dimension{X: 4, Y: 4}}, Handlers{
		OnEvent: func(Event) { called = true },
	})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("err=%v want ErrInvalidDimension", err)
	}
	if called {
		t.Fatalf("handler invoked for rejected board")
	}
}

func TestEngine_ConstructionDeliversRoundEvents(t *testing.T) {
	rec := newRecorder()
	var walls []Position
	e, _ := newTestEngine(t, Handlers{
		OnWallCreated: func(w []Position) { walls = w },
		OnEvent:       rec.handle,
	})

	assertEvents(t, rec.take(), "wall-created", "snake-respawn", "apple-respawn")
	if len(walls) != 2*20+2*14-4 {
		t.Fatalf("walls=%d want=%d", len(walls), 2*20+2*14-4)
	}
	if e.IsRunning() {
		t.Fatalf("engine running before Start")
	}
	if e.TickInterval() != 100*time.Millisecond {
		t.Fatalf("interval=%s want=100ms", e.TickInterval())
	}
}

func TestEngine_StartRunsTimerAndTicks(t *testing.T) {
	rec := newRecorder()
	e, clock := newTestEngine(t, Handlers{OnEvent: rec.handle})
	rec.take()

	e.mu.Lock()
	e.round.apple.pos = Position{X: 1, Y: 1}
	e.mu.Unlock()

	e.Start()
	if !e.IsRunning() {
		t.Fatalf("not running after Start")
	}
	assertEvents(t, rec.take(), "game-start")

	ft := clock.last()
	if ft == nil || ft.interval != 100*time.Millisecond {
		t.Fatalf("ticker=%v want one at 100ms", ft)
	}

	ft.c <- time.Now()
	rec.waitFor(t, "snake-move")
	assertBody(t, e.Snapshot().Snake, []Position{{X: 11, Y: 7}, {X: 10, Y: 7}, {X: 9, Y: 7}})

	e.Stop()
	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker not stopped after Stop")
	}
}

func TestEngine_StartTwiceKeepsOneTimer(t *testing.T) {
	rec := newRecorder()
	e, clock := newTestEngine(t, Handlers{OnEvent: rec.handle})
	rec.take()

	e.Start()
	e.Start()
	if clock.count() != 1 {
		t.Fatalf("tickers=%d want=1", clock.count())
	}
	assertEvents(t, rec.take(), "game-start")
	e.Stop()
}

// Scenario B at the engine level: a wall hit stops the engine in the same tick.
func TestEngine_CollisionStopsEngine(t *testing.T) {
	rec := newRecorder()
	hits := 0
	e, clock := newTestEngine(t, Handlers{
		OnSnakeHitWall: func() { hits++ },
		OnEvent:        rec.handle,
	})
	e.Start()
	rec.take()

	e.mu.Lock()
	e.round.snake.body = []Position{{X: 1, Y: 7}, {X: 2, Y: 7}, {X: 3, Y: 7}}
	e.round.snake.current, e.round.snake.next = Left, Left
	e.round.apple.pos = Position{X: 15, Y: 3}
	gen := e.gen
	e.mu.Unlock()

	e.tick(gen)

	if e.IsRunning() {
		t.Fatalf("engine still running after wall hit")
	}
	if hits != 1 {
		t.Fatalf("wall hits reported=%d want=1", hits)
	}
	assertEvents(t, rec.take(), "snake-hit-wall", "game-stop")
	if !e.Snapshot().HasHitWall {
		t.Fatalf("snapshot does not show the wall hit")
	}
	select {
	case <-clock.last().stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker not stopped after collision")
	}

	// A stale firing after the stop does nothing.
	e.tick(gen)
	assertEvents(t, rec.take())
}

func TestEngine_RestartReplacesRound(t *testing.T) {
	rec := newRecorder()
	e, _ := newTestEngine(t, Handlers{OnEvent: rec.handle})
	e.Start()

	e.mu.Lock()
	e.round.apple.pos = Position{X: 11, Y: 7}
	gen := e.gen
	e.mu.Unlock()
	e.tick(gen)
	if e.Snapshot().Score != 100 {
		t.Fatalf("score=%d want=100", e.Snapshot().Score)
	}

	e.Stop()
	rec.take()
	e.Start()

	assertEvents(t, rec.take(), "wall-created", "snake-respawn", "apple-respawn", "game-start")
	snap := e.Snapshot()
	if snap.Score != 0 {
		t.Fatalf("score=%d want=0 after restart", snap.Score)
	}
	assertBody(t, snap.Snake, []Position{{X: 10, Y: 7}, {X: 9, Y: 7}, {X: 8, Y: 7}})
	e.Stop()
}

func TestEngine_StopWhenStoppedMarksRoundOnly(t *testing.T) {
	rec := newRecorder()
	e, _ := newTestEngine(t, Handlers{OnEvent: rec.handle})
	rec.take()

	e.Stop()
	assertEvents(t, rec.take())

	e.Start()
	assertEvents(t, rec.take(), "wall-created", "snake-respawn", "apple-respawn", "game-start")
	e.Stop()
	assertEvents(t, rec.take(), "game-stop")
}

func TestEngine_StaleGenerationIgnored(t *testing.T) {
	rec := newRecorder()
	e, _ := newTestEngine(t, Handlers{OnEvent: rec.handle})
	e.Start()
	old := e.gen
	e.Stop()
	e.Start()
	rec.take()

	before := e.Snapshot().Snake
	e.tick(old)
	assertBody(t, e.Snapshot().Snake, before)
	assertEvents(t, rec.take())
	e.Stop()
}

func TestEngine_UpdateTickIntervalAppliesOnNextStart(t *testing.T) {
	e, clock := newTestEngine(t, Handlers{})
	e.Start()
	running := clock.last()

	if err := e.UpdateTickInterval(Slow.Interval()); err != nil {
		t.Fatalf("UpdateTickInterval: %v", err)
	}
	if e.TickInterval() != 200*time.Millisecond {
		t.Fatalf("interval=%s want=200ms", e.TickInterval())
	}
	if clock.count() != 1 || running.interval != 100*time.Millisecond || running.isStopped() {
		t.Fatalf("running timer was rescheduled")
	}

	e.Stop()
	e.Start()
	if got := clock.last().interval; got != 200*time.Millisecond {
		t.Fatalf("new timer interval=%s want=200ms", got)
	}
	e.Stop()
}

func TestEngine_UpdateTickIntervalRejectsNonPositive(t *testing.T) {
	e, _ := newTestEngine(t, Handlers{})
	if err := e.UpdateTickInterval(0); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err=%v want ErrInvalidInterval", err)
	}
	if e.TickInterval() != 100*time.Millisecond {
		t.Fatalf("interval changed to %s", e.TickInterval())
	}
}

func TestEngine_ChangeDirectionForwardsToRound(t *testing.T) {
	e, _ := newTestEngine(t, Handlers{})
	e.Start()
	e.ChangeDirection(Left)
	e.ChangeDirection(Down)

	e.mu.Lock()
	gen := e.gen
	pending := e.round.snake.PendingDirection()
	e.mu.Unlock()
	if pending != Down {
		t.Fatalf("pending=%s want=down", pending)
	}

	e.tick(gen)
	if d := e.Snapshot().Direction; d != Down {
		t.Fatalf("direction=%s want=down", d)
	}
	e.Stop()
}

func TestEngine_HandlerMayCallBackIntoEngine(t *testing.T) {
	var e *Engine
	rec := newRecorder()
	e, _ = newTestEngine(t, Handlers{
		OnSnakeMove: func(_, _ []Position) { e.Stop() },
		OnEvent:     rec.handle,
	})
	e.Start()
	rec.take()

	e.mu.Lock()
	e.round.apple.pos = Position{X: 1, Y: 1}
	gen := e.gen
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.tick(gen)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tick deadlocked on re-entrant Stop")
	}
	if e.IsRunning() {
		t.Fatalf("engine still running")
	}
	assertEvents(t, rec.take(), "snake-move", "game-stop")
}

func TestEngine_PanickingHandlerDoesNotBlockDelivery(t *testing.T) {
	rec := newRecorder()
	panicked := false
	e, _ := newTestEngine(t, Handlers{
		OnGameStart: func() {
			if !panicked {
				panicked = true
				panic("handler failure")
			}
		},
		OnEvent: rec.handle,
	})
	rec.take()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the handler panic to reach the caller")
			}
		}()
		e.Start()
	}()

	e.Stop()
	assertEvents(t, rec.take(), "game-stop")
}
