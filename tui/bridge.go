// Package tui is the Bubble Tea front end of the game. It draws the board from
// engine events and turns key presses into engine calls.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/termsnake/game"
)

const bridgeBuffer = 1024

// EventMsg carries one engine event into the Bubble Tea update loop.
type EventMsg struct {
	Event game.Event
}

// Bridge queues engine events for the UI. Engine handlers run on the timer
// goroutine; the UI reads the queue with a command.
type Bridge struct {
	events chan game.Event
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan game.Event, bridgeBuffer),
		done:   make(chan struct{}),
	}
}

// Handlers returns engine handlers that publish into the bridge.
func (b *Bridge) Handlers() game.Handlers {
	return game.Handlers{OnEvent: b.publish}
}

// Events is the queue read by the UI.
func (b *Bridge) Events() <-chan game.Event {
	return b.events
}

// Close releases publishers blocked on a full queue once the UI has gone.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) publish(e game.Event) {
	select {
	case b.events <- e:
	case <-b.done:
	}
}

func waitForEvent(events <-chan game.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}
