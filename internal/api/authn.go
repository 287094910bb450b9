// Package api exposes the StreakedIn services over HTTP and websockets.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/auth"
)

const maxBodyBytes = 1 << 20

// authn resolves the bearer credential on each request.
type authn struct {
	authorizer auth.Authorizer
}

// actor authorizes r and writes a 401 when it fails.
func (a authn) actor(w http.ResponseWriter, r *http.Request) (*auth.ActorInfo, bool) {
	token, err := auth.ExtractBearer(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return nil, false
	}
	actor, err := a.authorizer.Authorize(r.Context(), token)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return nil, false
	}
	return actor, true
}

// decode reads a JSON body into v and writes a 400 when it is malformed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// wantsSave reports whether a generate request should persist its draft.
func wantsSave(r *http.Request) bool {
	switch r.URL.Query().Get("save") {
	case "1", "true", "yes":
		return true
	}
	return false
}
