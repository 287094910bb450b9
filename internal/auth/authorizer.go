// Package auth issues and verifies session tokens and resolves bearer
// credentials into actors.
package auth

import (
	"context"
)

// ActorInfo identifies the authenticated caller.
type ActorInfo struct {
	UserID  string `json:"user_id"`
	KeyType string `json:"key_type"` // "session" or "dev"
}

// Authorizer validates a bearer credential and returns the actor it belongs to.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*ActorInfo, error)
}
