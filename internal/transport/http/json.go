package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-engine/internal/domain"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuestionSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuestionSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
