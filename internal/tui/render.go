package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quiz-engine/internal/domain"
)

type styles struct {
	noColor   bool
	title     lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	score     lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	cursor    lipgloss.Style
}

func newStyles(noColor bool) styles {
	s := styles{
		noColor:   noColor,
		title:     lipgloss.NewStyle().Bold(true),
		heading:   lipgloss.NewStyle().Bold(true).MarginTop(1),
		muted:     lipgloss.NewStyle(),
		score:     lipgloss.NewStyle().MarginTop(1),
		correct:   lipgloss.NewStyle(),
		incorrect: lipgloss.NewStyle(),
		cursor:    lipgloss.NewStyle().Bold(true),
	}
	if noColor {
		return s
	}
	s.title = s.title.Foreground(lipgloss.Color("33"))
	s.muted = s.muted.Foreground(lipgloss.Color("244"))
	s.correct = s.correct.Foreground(lipgloss.Color("42"))
	s.incorrect = s.incorrect.Foreground(lipgloss.Color("196"))
	s.cursor = s.cursor.Foreground(lipgloss.Color("39"))
	return s
}

func (s styles) feedback(text string) string {
	if strings.HasPrefix(text, "Correct") {
		return s.correct.Render(text)
	}
	return s.incorrect.Render(text)
}

func renderChoices(s styles, choices []domain.ChoiceView, cursor int, active bool) string {
	lines := make([]string, 0, len(choices))
	for i, c := range choices {
		pointer := "  "
		if active && i == cursor {
			pointer = "> "
		}
		line := fmt.Sprintf("%s%d. %s", pointer, i+1, c.Text)
		switch c.Mark {
		case domain.MarkCorrect:
			line = s.correct.Render(line + " ✓")
		case domain.MarkIncorrect:
			line = s.incorrect.Render(line + " ✗")
		default:
			switch {
			case active && i == cursor:
				line = s.cursor.Render(line)
			case c.Disabled:
				line = s.muted.Render(line)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
