package domain

// ChoiceMark is the feedback decoration shown on an answer choice.
type ChoiceMark string

const (
	MarkNone      ChoiceMark = ""
	MarkCorrect   ChoiceMark = "correct"
	MarkIncorrect ChoiceMark = "incorrect"
)

// ChoiceView is one selectable answer as a presentation layer should render it.
type ChoiceView struct {
	Text     string     `json:"text"`
	Mark     ChoiceMark `json:"mark,omitempty"`
	Disabled bool       `json:"disabled"`
}

// BonusView describes the bonus section of the completion screen.
type BonusView struct {
	Prompt   string       `json:"prompt"`
	Choices  []ChoiceView `json:"choices"`
	Feedback string       `json:"feedback,omitempty"`
}

// View is a render-ready projection of a session. It carries no behaviour; presentation layers
// read it and invoke engine operations in response to input.
type View struct {
	Phase          Phase        `json:"phase"`
	Heading        string       `json:"heading"`
	QuestionNumber int          `json:"questionNumber,omitempty"`
	TotalQuestions int          `json:"totalQuestions"`
	Prompt         string       `json:"prompt,omitempty"`
	Choices        []ChoiceView `json:"choices,omitempty"`
	Feedback       string       `json:"feedback,omitempty"`
	NextLabel      string       `json:"nextLabel,omitempty"`
	Score          int          `json:"score"`
	MaxScore       int          `json:"maxScore"`
	ScoreLine      string       `json:"scoreLine"`
	Bonus          *BonusView   `json:"bonus,omitempty"`
	CanRestart     bool         `json:"canRestart"`
}
