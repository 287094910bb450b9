package auth

import (
	"net/http"
	"strings"
)

// ExtractBearer reads the token from the Authorization header, falling back
// to the "token" query parameter used by browser websocket clients.
func ExtractBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, nil
		}
		return "", ErrMissingToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
