package domain

// Phase tags where a session sits in the quiz state machine.
type Phase string

const (
	// PhaseAnswering waits for an answer to the current main question.
	PhaseAnswering Phase = "answering"
	// PhaseFeedback shows the outcome of the current main question until Advance.
	PhaseFeedback Phase = "feedback"
	// PhaseBonusPending means the main sequence is finished and the bonus is offered.
	PhaseBonusPending Phase = "bonus_pending"
	// PhaseCompleted is terminal until Restart.
	PhaseCompleted Phase = "completed"
)

// BonusResult records how the bonus question was resolved.
type BonusResult string

const (
	BonusUnanswered BonusResult = ""
	BonusCorrect    BonusResult = "correct"
	BonusIncorrect  BonusResult = "incorrect"
)

// QuizState is the complete mutable state of one quiz session. It is a comparable value so
// callers can snapshot and compare it directly.
type QuizState struct {
	Phase           Phase       `json:"phase"`
	CurrentIndex    int         `json:"currentIndex"`
	SelectedAnswer  string      `json:"selectedAnswer,omitempty"`
	HasSelection    bool        `json:"hasSelection"`
	Score           int         `json:"score"`
	FeedbackVisible bool        `json:"feedbackVisible"`
	Completed       bool        `json:"completed"`
	Bonus           BonusResult `json:"bonus,omitempty"`
}

// MainDone reports whether the main sequence has been finished. Unlike Completed it is already
// true while the bonus question is still pending.
func (s QuizState) MainDone() bool {
	return s.Phase == PhaseBonusPending || s.Phase == PhaseCompleted
}

// Selection returns the selected answer and whether one is set.
func (s QuizState) Selection() (string, bool) {
	return s.SelectedAnswer, s.HasSelection
}
