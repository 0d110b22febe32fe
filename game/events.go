package game

// Event is a state change reported by a round or an engine.
type Event interface {
	eventName() string
}

type WallCreated struct {
	Walls []Position
}

type SnakeRespawned struct {
	Body []Position
}

type AppleRespawned struct {
	Position Position
}

// SnakeMoved carries the body before and after the move. A growing move keeps
// the old tail, so the two lists differ in length by one.
type SnakeMoved struct {
	Before []Position
	After  []Position
}

type ScoreChanged struct {
	Score int
}

type SnakeHitSelf struct{}

type SnakeHitWall struct{}

// BoardFilled is emitted when the snake covers every interior cell and the
// apple has nowhere left to respawn.
type BoardFilled struct{}

type GameStarted struct{}

type GameStopped struct{}

func (WallCreated) eventName() string    { return "wall-created" }
func (SnakeRespawned) eventName() string { return "snake-respawn" }
func (AppleRespawned) eventName() string { return "apple-respawn" }
func (SnakeMoved) eventName() string     { return "snake-move" }
func (ScoreChanged) eventName() string   { return "score-change" }
func (SnakeHitSelf) eventName() string   { return "snake-hit-self" }
func (SnakeHitWall) eventName() string   { return "snake-hit-wall" }
func (BoardFilled) eventName() string    { return "board-filled" }
func (GameStarted) eventName() string    { return "game-start" }
func (GameStopped) eventName() string    { return "game-stop" }

// EventName returns the notification name of e, e.g. "snake-move".
func EventName(e Event) string {
	if e == nil {
		return ""
	}
	return e.eventName()
}

// Handlers are the subscription points of an Engine. Every field is optional.
// Handlers run synchronously, in emission order, after the transition that
// produced the events has completed; they may call back into the Engine.
type Handlers struct {
	OnWallCreated  func(walls []Position)
	OnSnakeRespawn func(body []Position)
	OnAppleRespawn func(p Position)
	OnSnakeMove    func(before, after []Position)
	OnScoreChange  func(score int)
	OnSnakeHitSelf func()
	OnSnakeHitWall func()
	OnBoardFilled  func()
	OnGameStart    func()
	OnGameStop     func()

	// OnEvent receives every event as a value, after the typed handler.
	OnEvent func(e Event)
}

func (h *Handlers) dispatch(e Event) {
	switch ev := e.(type) {
	case WallCreated:
		if h.OnWallCreated != nil {
			h.OnWallCreated(ev.Walls)
		}
	case SnakeRespawned:
		if h.OnSnakeRespawn != nil {
			h.OnSnakeRespawn(ev.Body)
		}
	case AppleRespawned:
		if h.OnAppleRespawn != nil {
			h.OnAppleRespawn(ev.Position)
		}
	case SnakeMoved:
		if h.OnSnakeMove != nil {
			h.OnSnakeMove(ev.Before, ev.After)
		}
	case ScoreChanged:
		if h.OnScoreChange != nil {
			h.OnScoreChange(ev.Score)
		}
	case SnakeHitSelf:
		if h.OnSnakeHitSelf != nil {
			h.OnSnakeHitSelf()
		}
	case SnakeHitWall:
		if h.OnSnakeHitWall != nil {
			h.OnSnakeHitWall()
		}
	case BoardFilled:
		if h.OnBoardFilled != nil {
			h.OnBoardFilled()
		}
	case GameStarted:
		if h.OnGameStart != nil {
			h.OnGameStart()
		}
	case GameStopped:
		if h.OnGameStop != nil {
			h.OnGameStop()
		}
	}
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// outbox collects events during a transition so they can be delivered once
// the transition is complete.
type outbox struct {
	events []Event
}

func (o *outbox) emit(e Event) {
	o.events = append(o.events, e)
}

func (o *outbox) drain() []Event {
	out := o.events
	o.events = nil
	return out
}
