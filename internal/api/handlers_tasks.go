package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

type TaskHandler struct {
	authn
	svc         *services.TaskService
	suggestions *services.SuggestionsService
}

func NewTaskHandler(svc *services.TaskService, suggestions *services.SuggestionsService, authorizer auth.Authorizer) *TaskHandler {
	return &TaskHandler{authn: authn{authorizer}, svc: svc, suggestions: suggestions}
}

// ListTasks GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	tasks, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

// CreateTask POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in services.TaskInput
	if !decode(w, r, &in) {
		return
	}
	t, err := h.svc.Create(r.Context(), actor.UserID, in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, t)
}

// UpdateTask PATCH /api/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var patch model.TaskPatch
	if !decode(w, r, &patch) {
		return
	}
	t, err := h.svc.Update(r.Context(), actor.UserID, mux.Vars(r)["taskId"], patch)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// DeleteTask DELETE /api/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor.UserID, mux.Vars(r)["taskId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateTask POST /api/tasks/generate[?save=true]
func (h *TaskHandler) GenerateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in promptRequest
	if !decode(w, r, &in) {
		return
	}
	if wantsSave(r) {
		t, source, err := h.suggestions.CreateTask(r.Context(), actor.UserID, in.Prompt)
		if err != nil {
			respond.WriteServiceError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusCreated, map[string]any{"task": t, "source": source})
		return
	}
	res, err := h.suggestions.GenerateTask(r.Context(), in.Prompt)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
