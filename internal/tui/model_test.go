package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
)

func TestKeysDriveFullSession(t *testing.T) {
	m := NewModel(engine.New(sampleSet()), Options{NoColor: true})

	m = press(t, m, runes("2")) // "4" is correct
	if st := m.State(); st.Phase != domain.PhaseFeedback || st.Score != 1 {
		t.Fatalf("expected feedback with score 1, got %+v", st)
	}
	if !strings.Contains(m.View(), "Correct!") {
		t.Fatalf("expected feedback in view:\n%s", m.View())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if st := m.State(); st.Phase != domain.PhaseBonusPending {
		t.Fatalf("expected bonus pending, got %+v", st)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // "9"
	st := m.State()
	if !st.Completed || st.Score != 3 {
		t.Fatalf("expected completed with score 3, got %+v", st)
	}
	if !strings.Contains(m.View(), "Your Total Score: 3 / 3") {
		t.Fatalf("expected total score in view:\n%s", m.View())
	}

	m = press(t, m, runes("r"))
	if st := m.State(); st.Phase != domain.PhaseAnswering || st.Score != 0 {
		t.Fatalf("expected restart, got %+v", st)
	}
}

func TestNumberOutOfRangeIsIgnored(t *testing.T) {
	m := NewModel(engine.New(sampleSet()), Options{NoColor: true})
	m = press(t, m, runes("9"))
	if m.State().HasSelection {
		t.Fatalf("expected no selection for a missing choice")
	}
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	m := NewModel(engine.New(sampleSet()), Options{NoColor: true})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewMarksChoicesAfterWrongAnswer(t *testing.T) {
	m := NewModel(engine.New(sampleSet()), Options{NoColor: true})
	m = press(t, m, runes("1"))
	view := m.View()
	if !strings.Contains(view, "1. 3 ✗") || !strings.Contains(view, "2. 4 ✓") {
		t.Fatalf("expected marked choices:\n%s", view)
	}
	if !strings.Contains(view, "Incorrect. The correct answer is 4.") {
		t.Fatalf("expected incorrect feedback:\n%s", view)
	}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleSet() domain.QuestionSet {
	return domain.NewQuestionSet(domain.QuestionSource{
		ID: "sample",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4"}, CorrectAnswer: "4"},
			{Prompt: "3 * 3?", Choices: []string{"6", "9"}, CorrectAnswer: "9", BonusQuestion: true},
		},
	})
}
