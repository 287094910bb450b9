package api

import (
	"net/http"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/services"
)

// AuthHandler serves sign-up, sign-in and the current user's profile.
type AuthHandler struct {
	authn
	svc *services.UserService
}

func NewAuthHandler(svc *services.UserService, authorizer auth.Authorizer) *AuthHandler {
	return &AuthHandler{authn: authn{authorizer}, svc: svc}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// SignUp POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.svc.SignUp(r.Context(), in.Email, in.Password, in.DisplayName)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, sess)
}

// SignIn POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.svc.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sess)
}

// SignOut POST /api/auth/signout. Tokens are stateless; clients drop theirs.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// UpdateSettings PATCH /api/me/settings
func (h *AuthHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in services.SettingsInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.svc.UpdateSettings(r.Context(), actor.UserID, in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
