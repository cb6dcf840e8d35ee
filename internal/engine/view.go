package engine

import (
	"fmt"

	"quiz-engine/internal/domain"
)

const (
	labelNext     = "Next Question"
	labelFinish   = "Finish Quiz"
	feedbackRight = "Correct!"
)

// View projects the current state onto what a presentation layer should show.
func (e *Engine) View() domain.View {
	st := e.state
	v := domain.View{
		Phase:          st.Phase,
		Score:          st.Score,
		MaxScore:       e.set.MaxScore(),
		TotalQuestions: len(e.set.Main),
	}

	switch st.Phase {
	case domain.PhaseAnswering, domain.PhaseFeedback:
		q := e.set.Main[st.CurrentIndex]
		v.Heading = fmt.Sprintf("Question %d", st.CurrentIndex+1)
		v.QuestionNumber = st.CurrentIndex + 1
		v.Prompt = q.Prompt
		v.Choices = markChoices(q, st.SelectedAnswer, st.FeedbackVisible)
		v.ScoreLine = fmt.Sprintf("Current Score: %d", st.Score)
		if st.FeedbackVisible {
			v.Feedback = feedbackText(q, st.SelectedAnswer)
			v.NextLabel = labelNext
			if st.CurrentIndex == len(e.set.Main)-1 {
				v.NextLabel = labelFinish
			}
		}
		return v

	case domain.PhaseBonusPending:
		v.Heading = "Bonus Question"
		v.ScoreLine = fmt.Sprintf("Current Score: %d", st.Score)

	default:
		v.Heading = "Quiz Completed!"
		v.ScoreLine = fmt.Sprintf("Your Total Score: %d / %d", st.Score, v.MaxScore)
	}

	v.CanRestart = true
	if bonus := e.set.Bonus; bonus != nil {
		answered := st.Bonus != domain.BonusUnanswered
		bv := &domain.BonusView{
			Prompt:  bonus.Prompt,
			Choices: markChoices(*bonus, st.SelectedAnswer, answered),
		}
		if answered {
			bv.Feedback = feedbackText(*bonus, st.SelectedAnswer)
		}
		v.Bonus = bv
	}
	return v
}

func markChoices(q domain.Question, selected string, reveal bool) []domain.ChoiceView {
	out := make([]domain.ChoiceView, 0, len(q.Choices))
	for _, choice := range q.Choices {
		cv := domain.ChoiceView{Text: choice, Disabled: reveal}
		if reveal {
			switch {
			case q.IsCorrect(choice):
				cv.Mark = domain.MarkCorrect
			case choice == selected:
				cv.Mark = domain.MarkIncorrect
			}
		}
		out = append(out, cv)
	}
	return out
}

func feedbackText(q domain.Question, selected string) string {
	if q.IsCorrect(selected) {
		return feedbackRight
	}
	return fmt.Sprintf("Incorrect. The correct answer is %s.", q.CorrectAnswer)
}
