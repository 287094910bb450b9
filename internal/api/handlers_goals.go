package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

type GoalHandler struct {
	authn
	svc         *services.GoalService
	suggestions *services.SuggestionsService
}

func NewGoalHandler(svc *services.GoalService, suggestions *services.SuggestionsService, authorizer auth.Authorizer) *GoalHandler {
	return &GoalHandler{authn: authn{authorizer}, svc: svc, suggestions: suggestions}
}

// ListGoals GET /api/goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	goals, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"goals": goals, "count": len(goals)})
}

// CreateGoal POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in services.GoalInput
	if !decode(w, r, &in) {
		return
	}
	g, err := h.svc.Create(r.Context(), actor.UserID, in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, g)
}

// UpdateGoal PATCH /api/goals/{goalId}
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var patch model.GoalPatch
	if !decode(w, r, &patch) {
		return
	}
	g, err := h.svc.Update(r.Context(), actor.UserID, mux.Vars(r)["goalId"], patch)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, g)
}

// DeleteGoal DELETE /api/goals/{goalId}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["goalId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateGoal POST /api/goals/generate[?save=true]
func (h *GoalHandler) GenerateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in promptRequest
	if !decode(w, r, &in) {
		return
	}
	if wantsSave(r) {
		g, source, err := h.suggestions.CreateGoal(r.Context(), actor.UserID, in.Prompt)
		if err != nil {
			respond.WriteServiceError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusCreated, map[string]any{"goal": g, "source": source})
		return
	}
	res, err := h.suggestions.GenerateGoal(r.Context(), in.Prompt)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
