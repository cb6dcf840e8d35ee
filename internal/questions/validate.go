package questions

import (
	"fmt"
	"strings"

	"quiz-engine/internal/domain"
)

// Issue captures a problem with one field of a question source.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationError aggregates the issues that make a source unusable.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation issues one per line.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return domain.ErrInvalidQuestionSet.Error()
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, issue.String())
	}
	return strings.Join(lines, "\n")
}

func (err *ValidationError) Unwrap() error {
	return domain.ErrInvalidQuestionSet
}

// Validate checks the data-integrity rules the engine relies on but does not enforce itself.
func Validate(src domain.QuestionSource) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	firstBonus := -1
	for i, q := range src.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Prompt) == "" {
			add(prefix+".prompt", "is required")
		}
		if len(q.Choices) < 2 {
			add(prefix+".choices", "at least two choices are required")
		}
		seen := make(map[string]struct{}, len(q.Choices))
		for j, choice := range q.Choices {
			if _, dup := seen[choice]; dup {
				add(fmt.Sprintf("%s.choices[%d]", prefix, j), fmt.Sprintf("duplicate choice %q", choice))
			}
			seen[choice] = struct{}{}
		}
		switch {
		case q.CorrectAnswer == "":
			add(prefix+".correctAnswer", "is required")
		case !q.HasChoice(q.CorrectAnswer):
			add(prefix+".correctAnswer", fmt.Sprintf("%q is not one of the choices", q.CorrectAnswer))
		}
		if q.BonusQuestion {
			if firstBonus >= 0 {
				add(prefix+".bonusQuestion", fmt.Sprintf("questions[%d] is already the bonus question", firstBonus))
			} else {
				firstBonus = i
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Warnings lists accepted but degenerate shapes: no main questions or no bonus question.
func Warnings(src domain.QuestionSource) []Issue {
	set := domain.NewQuestionSet(src)
	var warnings []Issue
	if len(set.Main) == 0 {
		warnings = append(warnings, Issue{Field: "questions", Message: "no main questions; sessions start at the bonus or end immediately"})
	}
	if !set.HasBonus() {
		warnings = append(warnings, Issue{Field: "questions", Message: "no bonus question"})
	}
	return warnings
}
