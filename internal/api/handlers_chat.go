package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/services"
)

type ChatHandler struct {
	authn
	svc *services.ChatService
}

func NewChatHandler(svc *services.ChatService, authorizer auth.Authorizer) *ChatHandler {
	return &ChatHandler{authn: authn{authorizer}, svc: svc}
}

type sessionRequest struct {
	Title string `json:"title"`
}

// ListSessions GET /api/chat/sessions
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessions, err := h.svc.ListSessions(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions, "count": len(sessions)})
}

// CreateSession POST /api/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in sessionRequest
	if r.ContentLength != 0 && !decode(w, r, &in) {
		return
	}
	cs, err := h.svc.CreateSession(r.Context(), actor.UserID, in.Title)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, cs)
}

// RenameSession PATCH /api/chat/sessions/{sessionId}
func (h *ChatHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in sessionRequest
	if !decode(w, r, &in) {
		return
	}
	cs, err := h.svc.RenameSession(r.Context(), actor.UserID, mux.Vars(r)["sessionId"], in.Title)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, cs)
}

// DeleteSession DELETE /api/chat/sessions/{sessionId}
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(r.Context(), actor.UserID, mux.Vars(r)["sessionId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages GET /api/chat/sessions/{sessionId}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	msgs, err := h.svc.Messages(r.Context(), actor.UserID, mux.Vars(r)["sessionId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs, "count": len(msgs)})
}

// SendMessage POST /api/chat/sessions/{sessionId}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &in) {
		return
	}
	res, err := h.svc.Send(r.Context(), actor.UserID, mux.Vars(r)["sessionId"], in.Content)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, res)
}

// ClearMessages DELETE /api/chat/sessions/{sessionId}/messages
func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.ClearMessages(r.Context(), actor.UserID, mux.Vars(r)["sessionId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"deleted": n})
}
