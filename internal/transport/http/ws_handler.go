package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type choicePayload struct {
	Choice string `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into a quiz session. A session
// started by the socket (setId) is ended when the socket closes; one attached by sessionId is
// left running.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	setID := r.URL.Query().Get("setId")
	if (sessionID == "") == (setID == "") {
		writeError(w, http.StatusBadRequest, "exactly one of sessionId or setId is required")
		return
	}

	ctx := r.Context()
	owned := false
	if sessionID == "" {
		snap, err := h.service.Start(ctx, setID)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		sessionID = snap.SessionID
		owned = true
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer cancel()
	if owned {
		defer func() {
			if err := h.service.End(context.Background(), sessionID); err != nil {
				h.logger.Debug("end ws session", "session_id", sessionID, "err", err)
			}
		}()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "session_id", sessionID, "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// session ended elsewhere; unblock the reader
					select {
					case send <- outboundMessage[any]{Type: "ended", Payload: struct {
						SessionID string `json:"sessionId"`
					}{sessionID}}:
					case <-closeSignals:
					}
					_ = conn.SetReadDeadline(time.Now())
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		snap, err := h.dispatch(ctx, sessionID, inbound)
		if err != nil {
			push(errorMessage(err.Error()))
			continue
		}
		// applied changes reach the client through the subscription
		if !snap.Applied {
			push(outboundMessage[any]{Type: "state", Payload: snap})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

type wsError string

func (e wsError) Error() string { return string(e) }

func (h *WSHandler) dispatch(ctx context.Context, sessionID string, inbound inboundMessage) (domain.Snapshot, error) {
	switch inbound.Type {
	case "select", "bonus":
		var payload choicePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.Snapshot{}, wsError("invalid " + inbound.Type + " payload")
		}
		if inbound.Type == "select" {
			return h.service.Select(ctx, sessionID, payload.Choice)
		}
		return h.service.AnswerBonus(ctx, sessionID, payload.Choice)
	case "advance":
		return h.service.Advance(ctx, sessionID)
	case "restart":
		return h.service.Restart(ctx, sessionID)
	default:
		return domain.Snapshot{}, wsError("unsupported message type")
	}
}
