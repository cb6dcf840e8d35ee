package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

func TestSessionLifecycleOverREST(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), nil))
	defer server.Close()

	var started domain.Snapshot
	status := doJSON(t, server, http.MethodPost, "/api/sessions", `{"setId":"set-1"}`, &started)
	if status != http.StatusCreated {
		t.Fatalf("start status = %d, want %d", status, http.StatusCreated)
	}
	if started.SessionID == "" || started.View.Heading != "Question 1" {
		t.Fatalf("unexpected start snapshot %+v", started)
	}
	base := "/api/sessions/" + started.SessionID

	var snap domain.Snapshot
	doJSON(t, server, http.MethodPost, base+"/select", `{"choice":"4"}`, &snap)
	if !snap.Applied || snap.State.Score != 1 || snap.View.Feedback != "Correct!" {
		t.Fatalf("unexpected select snapshot %+v", snap)
	}

	doJSON(t, server, http.MethodPost, base+"/select", `{"choice":"3"}`, &snap)
	if snap.Applied {
		t.Fatalf("expected second select to be ignored")
	}

	doJSON(t, server, http.MethodPost, base+"/advance", "", &snap)
	if snap.State.Phase != domain.PhaseBonusPending || snap.View.Bonus == nil {
		t.Fatalf("expected bonus pending, got %+v", snap.State)
	}

	doJSON(t, server, http.MethodPost, base+"/bonus", `{"choice":"6"}`, &snap)
	if !snap.State.Completed || snap.State.Score != 0 {
		t.Fatalf("expected completed with score 0 after wrong bonus, got %+v", snap.State)
	}
	if snap.View.ScoreLine != "Your Total Score: 0 / 3" {
		t.Fatalf("unexpected score line %q", snap.View.ScoreLine)
	}

	doJSON(t, server, http.MethodPost, base+"/restart", "", &snap)
	if snap.State != started.State {
		t.Fatalf("expected initial state after restart, got %+v", snap.State)
	}

	if status := doJSON(t, server, http.MethodDelete, base, "", nil); status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	if status := doJSON(t, server, http.MethodGet, base, "", nil); status != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", status)
	}
}

func TestSessionErrors(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), nil))
	defer server.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"unknown set", http.MethodPost, "/api/sessions", `{"setId":"missing"}`, http.StatusNotFound},
		{"missing set id", http.MethodPost, "/api/sessions", `{}`, http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/sessions", `{"setId":`, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/sessions/nope", "", http.StatusNotFound},
		{"unknown session select", http.MethodPost, "/api/sessions/nope/select", `{"choice":"4"}`, http.StatusNotFound},
		{"bad choice body", http.MethodPost, "/api/sessions/nope/select", `{"choice":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			status := doJSON(t, server, tt.method, tt.path, tt.body, &body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if body.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestEmptyChoiceCountsAsIncorrect(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), nil))
	defer server.Close()

	var started domain.Snapshot
	doJSON(t, server, http.MethodPost, "/api/sessions", `{"setId":"set-1"}`, &started)

	var snap domain.Snapshot
	status := doJSON(t, server, http.MethodPost, "/api/sessions/"+started.SessionID+"/select", `{"choice":""}`, &snap)
	if status != http.StatusOK {
		t.Fatalf("select status = %d, want %d", status, http.StatusOK)
	}
	if !snap.Applied || snap.State.Score != 0 || snap.State.Phase != domain.PhaseFeedback {
		t.Fatalf("expected empty choice locked in as a wrong answer, got %+v", snap.State)
	}
}

func TestStatusForConflict(t *testing.T) {
	if got := statusFor(fmt.Errorf("save session s-1: %w", domain.ErrSessionConflict)); got != http.StatusConflict {
		t.Fatalf("statusFor(conflict) = %d, want %d", got, http.StatusConflict)
	}
}

func doJSON(t *testing.T, server *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func newTestService() *app.QuizService {
	sets := memory.NewQuestionSetRepository(memory.NewStaticLoader(sampleSource()), time.Minute)
	return app.NewQuizService(memory.NewSessionStore(), sets, app.WithLogger(discardLogger()))
}

func sampleSource() domain.QuestionSource {
	return domain.QuestionSource{
		ID: "set-1",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4", "5"}, CorrectAnswer: "4"},
			{Prompt: "3 * 3?", Choices: []string{"6", "9"}, CorrectAnswer: "9", BonusQuestion: true},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
