package domain

import "slices"

// Question models a multiple-choice question exactly as it appears in a question file.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Choices       []string `json:"choices" yaml:"choices"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	BonusQuestion bool     `json:"bonusQuestion,omitempty" yaml:"bonusQuestion,omitempty"`
}

// IsCorrect compares choice to the correct answer. Comparison is exact.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.CorrectAnswer
}

// HasChoice reports whether choice is one of the listed answers.
func (q Question) HasChoice(choice string) bool {
	return slices.Contains(q.Choices, choice)
}

// QuestionSource is the static, ordered collection a question set is built from.
type QuestionSource struct {
	ID        string     `json:"-" yaml:"-"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// QuestionSet is the engine's view of a source: the main sequence in source order and the
// optional bonus question.
type QuestionSet struct {
	ID    string
	Main  []Question
	Bonus *Question
}

// NewQuestionSet splits a source into main and bonus questions. When several questions carry the
// bonus flag, the first one is the bonus and the rest are dropped.
func NewQuestionSet(src QuestionSource) QuestionSet {
	set := QuestionSet{ID: src.ID, Main: make([]Question, 0, len(src.Questions))}
	for i := range src.Questions {
		q := src.Questions[i]
		if !q.BonusQuestion {
			set.Main = append(set.Main, q)
			continue
		}
		if set.Bonus == nil {
			set.Bonus = &q
		}
	}
	return set
}

// HasBonus reports whether the set carries a bonus question.
func (s QuestionSet) HasBonus() bool {
	return s.Bonus != nil
}

// MaxScore is the displayed ceiling: one point per main question plus the bonus award.
func (s QuestionSet) MaxScore() int {
	return len(s.Main) + 2
}
