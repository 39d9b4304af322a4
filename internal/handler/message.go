package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/service"
)

// MessageHandler exposes message reading, sending, and read-marking. All
// routes sit behind the auth middleware, so the caller's username is always
// in the request context.
type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type sendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// messageSummary is the creation response shape: read_at is omitted, it's
// necessarily null on a fresh message.
type messageSummary struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

type messageResponse struct {
	Message any `json:"message"`
}

// caller extracts the authenticated username from the context. On a
// RequireAuth-protected route this never fails, but be safe.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "valid authentication token required",
		})
		return "", false
	}
	return username, true
}

// HandleGet returns the full detail of one message.
//
// HTTP: GET /messages/{id}
// Auth: caller must be the sender or the recipient → 401 otherwise.
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}

	detail, err := h.messages.Get(r.Context(), chi.URLParam(r, "id"), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: detail})
}

// HandleSend creates a message from the caller.
//
// HTTP: POST /messages
// Body: {to_username, body} → 201 {message: {id, from_username, to_username, body, sent_at}}
//
// The sender is always the authenticated caller. A from_username field in
// the body is ignored — identity comes from the token, not from client
// input.
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid message JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	msg, err := h.messages.Send(r.Context(), username, req.ToUsername, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: messageSummary{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       msg.SentAt,
	}})
}

// HandleMarkRead stamps a message as read.
//
// HTTP: POST /messages/{id}/read
// Auth: caller must be the recipient → 401 otherwise.
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}

	receipt, err := h.messages.MarkRead(r.Context(), chi.URLParam(r, "id"), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: receipt})
}
