package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sprites = map[cell]string{
	cellVoid:  " ",
	cellWall:  "x",
	cellSnake: "#",
	cellApple: "@",
}

var (
	wallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	snakeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	appleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func styleFor(c cell) lipgloss.Style {
	switch c {
	case cellSnake:
		return snakeStyle
	case cellApple:
		return appleStyle
	default:
		return wallStyle
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderBoard())
	b.WriteString("\n")
	b.WriteString(m.renderHints())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	if m.gameOver {
		b.WriteString(alertStyle.Render("Game over!"))
		b.WriteString("\n")
	}
	if m.boardCleared {
		b.WriteString(valueStyle.Render("Board cleared!"))
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(m.width(), lipgloss.Center, b.String())
}

// width is the rendered board width; every cell takes two columns.
func (m Model) width() int {
	return m.board.X * 2
}

func (m Model) renderBoard() string {
	var b strings.Builder
	for y := 0; y < m.board.Y; y++ {
		for x := 0; x < m.board.X; x++ {
			c := m.cellAt(x, y)
			b.WriteString(styleFor(c).Render(sprites[c]))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHints() string {
	var hints []string
	if m.running {
		hints = append(hints, "[←↑↓→]/[WASD] Move")
	} else {
		hints = append(hints, "[E] Change Speed", "[N] New Game")
	}
	hints = append(hints, "[Q] Quit")
	return hintStyle.Render(strings.Join(hints, "   "))
}

func (m Model) renderStats() string {
	return fmt.Sprintf("Speed: %s   Score: %s",
		valueStyle.Render(m.speed.String()),
		valueStyle.Render(fmt.Sprint(m.score)))
}
