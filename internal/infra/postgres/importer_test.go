package postgres

import (
	"encoding/json"
	"errors"
	"testing"

	"quiz-engine/internal/domain"
)

func TestNewQuestionSetRowEncodesSourceShape(t *testing.T) {
	row, err := newQuestionSetRow(domain.QuestionSource{
		ID: "capitals",
		Questions: []domain.Question{
			{Prompt: "Capital of Italy?", Choices: []string{"Rome", "Milan"}, CorrectAnswer: "Rome"},
			{Prompt: "Capital of Spain?", Choices: []string{"Madrid", "Seville"}, CorrectAnswer: "Madrid", BonusQuestion: true},
		},
	})
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.ID != "capitals" {
		t.Fatalf("unexpected id %q", row.ID)
	}

	var decoded map[string]any
	if err := json.Unmarshal(row.Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded["id"]; ok {
		t.Fatalf("id must not be embedded in the payload")
	}
	items, ok := decoded["questions"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected questions array, got %v", decoded)
	}
	first := items[0].(map[string]any)
	if first["correctAnswer"] != "Rome" {
		t.Fatalf("expected correctAnswer field, got %v", first)
	}
	if _, ok := first["bonusQuestion"]; ok {
		t.Fatalf("expected bonusQuestion omitted on main questions")
	}
}

func TestNewQuestionSetRowRejectsInvalid(t *testing.T) {
	_, err := newQuestionSetRow(domain.QuestionSource{
		ID:        "bad",
		Questions: []domain.Question{{Prompt: "?", Choices: []string{"a", "b"}, CorrectAnswer: "c"}},
	})
	if !errors.Is(err, domain.ErrInvalidQuestionSet) {
		t.Fatalf("expected invalid set, got %v", err)
	}
	if _, err := newQuestionSetRow(domain.QuestionSource{}); err == nil {
		t.Fatalf("expected missing id to fail")
	}
}
