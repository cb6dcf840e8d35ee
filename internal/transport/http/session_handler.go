package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

type StartRequest struct {
	SetID string `json:"setId"`
}

type ChoiceRequest struct {
	Choice string `json:"choice"`
}

// SessionHandler exposes quiz sessions over REST.
type SessionHandler struct {
	service *app.QuizService
	logger  *slog.Logger
}

func NewSessionHandler(service *app.QuizService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.start)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.end)
		r.Post("/select", h.withChoice(h.service.Select))
		r.Post("/bonus", h.withChoice(h.service.AnswerBonus))
		r.Post("/advance", h.action(h.service.Advance))
		r.Post("/restart", h.action(h.service.Restart))
	})
	return r
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SetID = strings.TrimSpace(req.SetID)
	if req.SetID == "" {
		writeError(w, http.StatusBadRequest, "setId is required")
		return
	}

	snap, err := h.service.Start(r.Context(), req.SetID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) end(w http.ResponseWriter, r *http.Request) {
	if err := h.service.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) withChoice(op func(ctx context.Context, sessionID, choice string) (domain.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChoiceRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		snap, err := op(r.Context(), chi.URLParam(r, "id"), req.Choice)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *SessionHandler) action(op func(ctx context.Context, sessionID string) (domain.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := op(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("session request failed", "path", r.URL.Path, "err", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
