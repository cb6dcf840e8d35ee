// Package engine implements the quiz state machine: a fixed main sequence of multiple-choice
// questions, per-question feedback, an optional bonus question and restart.
//
// An Engine is not safe for concurrent use. Hosts that receive input concurrently serialise calls
// per session (see internal/app).
package engine

import "quiz-engine/internal/domain"

// Option configures an Engine.
type Option func(*Engine)

// WithStrictChoices makes SelectAnswer and AnswerBonus ignore answers that are not among the
// active question's choices. Without it any string is accepted and compared for equality.
func WithStrictChoices() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// Engine owns the QuizState of one session.
type Engine struct {
	set    domain.QuestionSet
	state  domain.QuizState
	strict bool
}

// New returns an engine initialised with set.
func New(set domain.QuestionSet, opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.Initialize(set)
	return e
}

// Resume rebuilds an engine around a previously captured state, e.g. a snapshot read back from a
// session store. An index outside the main sequence falls back to the initial state.
func Resume(set domain.QuestionSet, state domain.QuizState, opts ...Option) *Engine {
	e := New(set, opts...)
	if !validFor(set, state) {
		return e
	}
	e.state = state
	return e
}

// Initialize replaces the question set and resets the state to its defaults.
func (e *Engine) Initialize(set domain.QuestionSet) {
	e.set = set
	e.state = initialState(set)
}

// State returns a copy of the current state.
func (e *Engine) State() domain.QuizState {
	return e.state
}

// QuestionSet returns the set the engine was initialised with.
func (e *Engine) QuestionSet() domain.QuestionSet {
	return e.set
}

// Current returns the active main question. It reports false once the main sequence is done.
func (e *Engine) Current() (domain.Question, bool) {
	switch e.state.Phase {
	case domain.PhaseAnswering, domain.PhaseFeedback:
		return e.set.Main[e.state.CurrentIndex], true
	default:
		return domain.Question{}, false
	}
}

// SelectAnswer locks in choice for the active main question and scores it. It returns false and
// leaves the state untouched when no main question is awaiting an answer, including when an
// answer is already locked for the current question.
func (e *Engine) SelectAnswer(choice string) bool {
	if e.state.Phase != domain.PhaseAnswering {
		return false
	}
	q := e.set.Main[e.state.CurrentIndex]
	if e.strict && !q.HasChoice(choice) {
		return false
	}

	e.state.SelectedAnswer = choice
	e.state.HasSelection = true
	e.state.FeedbackVisible = true
	e.state.Phase = domain.PhaseFeedback
	if q.IsCorrect(choice) {
		e.state.Score++
	}
	return true
}

// Advance moves past the feedback of the current main question: to the next question, to the
// pending bonus, or to completion when there is no bonus.
func (e *Engine) Advance() bool {
	if e.state.Phase != domain.PhaseFeedback {
		return false
	}

	if e.state.CurrentIndex < len(e.set.Main)-1 {
		e.state.CurrentIndex++
		e.clearSelection()
		e.state.Phase = domain.PhaseAnswering
		return true
	}

	if e.set.HasBonus() {
		e.clearSelection()
		e.state.Phase = domain.PhaseBonusPending
		return true
	}
	e.state.Phase = domain.PhaseCompleted
	e.state.Completed = true
	return true
}

// AnswerBonus resolves the bonus question: +2 when correct, -1 floored at zero otherwise. The
// session is completed either way.
func (e *Engine) AnswerBonus(choice string) bool {
	if e.state.Phase != domain.PhaseBonusPending || e.set.Bonus == nil {
		return false
	}
	bonus := e.set.Bonus
	if e.strict && !bonus.HasChoice(choice) {
		return false
	}

	if bonus.IsCorrect(choice) {
		e.state.Score += 2
		e.state.Bonus = domain.BonusCorrect
	} else {
		e.state.Score = max(0, e.state.Score-1)
		e.state.Bonus = domain.BonusIncorrect
	}
	e.state.Phase = domain.PhaseCompleted
	e.state.Completed = true
	e.state.FeedbackVisible = true
	e.state.SelectedAnswer = choice
	e.state.HasSelection = true
	return true
}

// Restart discards the current state and starts over from the first question.
func (e *Engine) Restart() {
	e.state = initialState(e.set)
}

func (e *Engine) clearSelection() {
	e.state.SelectedAnswer = ""
	e.state.HasSelection = false
	e.state.FeedbackVisible = false
}

// initialState is the default state, except that a set without main questions starts at the
// bonus (or at completion when there is no bonus either).
func initialState(set domain.QuestionSet) domain.QuizState {
	state := domain.QuizState{Phase: domain.PhaseAnswering}
	if len(set.Main) > 0 {
		return state
	}
	if set.HasBonus() {
		state.Phase = domain.PhaseBonusPending
		return state
	}
	state.Phase = domain.PhaseCompleted
	state.Completed = true
	return state
}

func validFor(set domain.QuestionSet, state domain.QuizState) bool {
	if state.Score < 0 || state.Score > set.MaxScore() {
		return false
	}
	switch state.Phase {
	case domain.PhaseAnswering, domain.PhaseFeedback:
		return state.CurrentIndex >= 0 && state.CurrentIndex < len(set.Main)
	case domain.PhaseBonusPending:
		return set.HasBonus()
	case domain.PhaseCompleted:
		return true
	default:
		return false
	}
}
