package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

type ReminderHandler struct {
	authn
	svc         *services.ReminderService
	suggestions *services.SuggestionsService
}

func NewReminderHandler(svc *services.ReminderService, suggestions *services.SuggestionsService, authorizer auth.Authorizer) *ReminderHandler {
	return &ReminderHandler{authn: authn{authorizer}, svc: svc, suggestions: suggestions}
}

// ListReminders GET /api/reminders
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"reminders": list, "count": len(list)})
}

// CreateReminder POST /api/reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in services.ReminderInput
	if !decode(w, r, &in) {
		return
	}
	rem, err := h.svc.Create(r.Context(), actor.UserID, in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, rem)
}

// UpdateReminder PATCH /api/reminders/{reminderId}
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var patch model.ReminderPatch
	if !decode(w, r, &patch) {
		return
	}
	rem, err := h.svc.Update(r.Context(), actor.UserID, mux.Vars(r)["reminderId"], patch)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rem)
}

// DeleteReminder DELETE /api/reminders/{reminderId}
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["reminderId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateReminder POST /api/reminders/generate[?save=true]
func (h *ReminderHandler) GenerateReminder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in promptRequest
	if !decode(w, r, &in) {
		return
	}
	if wantsSave(r) {
		rem, source, err := h.suggestions.CreateReminder(r.Context(), actor.UserID, in.Prompt)
		if err != nil {
			respond.WriteServiceError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusCreated, map[string]any{"reminder": rem, "source": source})
		return
	}
	res, err := h.suggestions.GenerateReminder(r.Context(), in.Prompt)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
