package game

import (
	"fmt"
	"strings"
	"time"
)

type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// ParseDirection accepts the lowercase names used on the command line.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Up, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) offset of one step. Up decreases y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Speed is a named tick interval.
type Speed uint8

const (
	Fast Speed = iota
	Medium
	Slow
)

var speedIntervals = map[Speed]time.Duration{
	Fast:   50 * time.Millisecond,
	Medium: 100 * time.Millisecond,
	Slow:   200 * time.Millisecond,
}

// ParseSpeed accepts "fast", "medium" or "slow".
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return Fast, nil
	case "medium":
		return Medium, nil
	case "slow":
		return Slow, nil
	}
	return Fast, fmt.Errorf("%w: %q", ErrUnknownSpeed, s)
}

// SpeedForInterval maps a tick interval back to its named speed.
func SpeedForInterval(d time.Duration) (Speed, bool) {
	for s, iv := range speedIntervals {
		if iv == d {
			return s, true
		}
	}
	return Fast, false
}

func (s Speed) String() string {
	switch s {
	case Fast:
		return "fast"
	case Medium:
		return "medium"
	case Slow:
		return "slow"
	default:
		return "unknown"
	}
}

// Interval returns the tick interval for s. Unknown speeds run as Fast.
func (s Speed) Interval() time.Duration {
	if iv, ok := speedIntervals[s]; ok {
		return iv
	}
	return speedIntervals[Fast]
}

// Next cycles slow -> medium -> fast -> slow.
func (s Speed) Next() Speed {
	switch s {
	case Slow:
		return Medium
	case Medium:
		return Fast
	default:
		return Slow
	}
}

// UnmarshalText lets Speed be read directly from env vars and flags.
func (s *Speed) UnmarshalText(b []byte) error {
	v, err := ParseSpeed(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Speed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
