package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/termsnake/game"
)

// Controller is the part of the engine the UI drives.
type Controller interface {
	Start()
	Stop()
	ChangeDirection(d game.Direction)
	UpdateTickInterval(d time.Duration) error
	Snapshot() game.Snapshot
}

type cell uint8

const (
	cellVoid cell = iota
	cellWall
	cellSnake
	cellApple
)

// Model is the Bubble Tea model of the game screen.
type Model struct {
	ctrl   Controller
	events <-chan game.Event
	log    *slog.Logger

	board        game.Dimension
	grid         [][]cell // column-major: grid[x][y]
	score        int
	speed        game.Speed
	running      bool
	gameOver     bool
	boardCleared bool
}

// NewModel draws the current round of ctrl and listens on events for changes.
func NewModel(ctrl Controller, events <-chan game.Event, speed game.Speed, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		ctrl:   ctrl,
		events: events,
		log:    logger.With("component", "tui"),
		speed:  speed,
	}
	m.reset(ctrl.Snapshot())
	return m
}

// reset redraws the whole board from a snapshot.
func (m *Model) reset(s game.Snapshot) {
	m.board = s.Board
	m.grid = make([][]cell, s.Board.X)
	for x := range m.grid {
		m.grid[x] = make([]cell, s.Board.Y)
	}
	m.paint(s.Walls, cellWall)
	m.set(s.Apple, cellApple)
	m.paint(s.Snake, cellSnake)
	m.score = s.Score
	m.gameOver = s.HasHitSelf || s.HasHitWall
	m.boardCleared = s.BoardFull
}

func (m *Model) set(p game.Position, c cell) {
	if p.X < 0 || p.X >= len(m.grid) || p.Y < 0 || p.Y >= len(m.grid[p.X]) {
		return
	}
	m.grid[p.X][p.Y] = c
}

func (m *Model) paint(ps []game.Position, c cell) {
	for _, p := range ps {
		m.set(p, c)
	}
}

func (m *Model) clearBoard() {
	for x := range m.grid {
		for y := range m.grid[x] {
			m.grid[x][y] = cellVoid
		}
	}
}

func (m Model) cellAt(x, y int) cell {
	if x < 0 || x >= len(m.grid) || y < 0 || y >= len(m.grid[x]) {
		return cellVoid
	}
	return m.grid[x][y]
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case EventMsg:
		m.apply(msg.Event)
		return m, waitForEvent(m.events)
	}
	return m, nil
}

// apply mirrors one engine event onto the board.
func (m *Model) apply(e game.Event) {
	switch ev := e.(type) {
	case game.WallCreated:
		// A new round starts with a fresh board.
		m.clearBoard()
		m.paint(ev.Walls, cellWall)
		m.score = 0
		m.gameOver = false
		m.boardCleared = false
	case game.SnakeRespawned:
		m.paint(ev.Body, cellSnake)
	case game.AppleRespawned:
		m.set(ev.Position, cellApple)
	case game.SnakeMoved:
		m.paint(ev.Before, cellVoid)
		m.paint(ev.After, cellSnake)
	case game.ScoreChanged:
		m.score = ev.Score
	case game.SnakeHitSelf, game.SnakeHitWall:
		m.gameOver = true
	case game.BoardFilled:
		m.boardCleared = true
	case game.GameStarted:
		m.running = true
	case game.GameStopped:
		m.running = false
	}
}

var directionKeys = map[string]game.Direction{
	"w":     game.Up,
	"up":    game.Up,
	"a":     game.Left,
	"left":  game.Left,
	"s":     game.Down,
	"down":  game.Down,
	"d":     game.Right,
	"right": game.Right,
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if d, ok := directionKeys[key]; ok {
		m.ctrl.ChangeDirection(d)
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "e":
		if m.running {
			return m, nil
		}
		next := m.speed.Next()
		if err := m.ctrl.UpdateTickInterval(next.Interval()); err != nil {
			m.log.Error("change speed", "speed", next.String(), "err", err)
			return m, nil
		}
		m.speed = next
		m.score = 0
		m.log.Debug("speed changed", "speed", next.String())
	case "n", "enter":
		if m.running {
			return m, nil
		}
		return m, newGame(m.ctrl)
	}
	return m, nil
}

// newGame restarts the engine off the update loop, so that the events it
// publishes can be drained while it runs.
func newGame(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Stop()
		ctrl.Start()
		return nil
	}
}
