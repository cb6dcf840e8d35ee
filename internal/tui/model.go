// Package tui plays a quiz in the terminal with Bubble Tea.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
)

// Options configures the terminal model.
type Options struct {
	NoColor bool
	Title   string
}

// Model renders one local quiz session.
type Model struct {
	engine  *engine.Engine
	keys    keyMap
	help    help.Model
	cursor  int
	width   int
	title   string
	noColor bool
}

// NewModel wraps an engine for interactive play.
func NewModel(eng *engine.Engine, opts Options) Model {
	title := opts.Title
	if title == "" {
		title = "Quiz"
	}
	return Model{
		engine:  eng,
		keys:    defaultKeyMap(),
		help:    help.New(),
		title:   title,
		noColor: opts.NoColor,
	}
}

// State exposes the engine state, mainly for tests.
func (m Model) State() domain.QuizState {
	return m.engine.State()
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update maps key presses onto engine operations.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.engine.Restart()
		m.cursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.activeChoices())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Number):
		idx := int(msg.String()[0] - '1')
		if idx < len(m.activeChoices()) {
			m.cursor = idx
			m.answer()
		}
	case key.Matches(msg, m.keys.Choose):
		if m.engine.State().Phase == domain.PhaseFeedback {
			if m.engine.Advance() {
				m.cursor = 0
			}
			return m, nil
		}
		m.answer()
	}
	return m, nil
}

// answer submits the choice under the cursor to whichever question is active.
func (m *Model) answer() {
	choices := m.activeChoices()
	if m.cursor >= len(choices) {
		return
	}
	choice := choices[m.cursor]
	switch m.engine.State().Phase {
	case domain.PhaseAnswering:
		m.engine.SelectAnswer(choice)
	case domain.PhaseBonusPending:
		m.engine.AnswerBonus(choice)
	}
}

func (m Model) activeChoices() []string {
	set := m.engine.QuestionSet()
	switch m.engine.State().Phase {
	case domain.PhaseAnswering, domain.PhaseFeedback:
		q, _ := m.engine.Current()
		return q.Choices
	case domain.PhaseBonusPending, domain.PhaseCompleted:
		if set.Bonus != nil {
			return set.Bonus.Choices
		}
	}
	return nil
}

// View renders the engine's view model.
func (m Model) View() string {
	v := m.engine.View()
	st := newStyles(m.noColor)

	sections := []string{
		st.title.Render(m.title),
		st.heading.Render(v.Heading),
	}

	if v.Prompt != "" {
		sections = append(sections, v.Prompt, renderChoices(st, v.Choices, m.cursor, v.Phase == domain.PhaseAnswering))
	}
	if v.Feedback != "" {
		sections = append(sections, st.feedback(v.Feedback))
	}
	if v.NextLabel != "" {
		sections = append(sections, st.muted.Render("enter: "+v.NextLabel))
	}
	if v.Bonus != nil {
		var bonus []string
		if v.Phase != domain.PhaseBonusPending {
			bonus = append(bonus, st.heading.Render("Bonus Question"))
		}
		bonus = append(bonus, v.Bonus.Prompt,
			renderChoices(st, v.Bonus.Choices, m.cursor, v.Phase == domain.PhaseBonusPending))
		if v.Bonus.Feedback != "" {
			bonus = append(bonus, st.feedback(v.Bonus.Feedback))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, bonus...))
	}

	sections = append(sections, st.score.Render(v.ScoreLine), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}
