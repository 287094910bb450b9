package auth

import (
	"context"

	"github.com/streakedin/streakedin/internal/config"
)

const (
	// LocalDevAPIKey is the hardcoded bearer token accepted in development mode only.
	LocalDevAPIKey = config.DevAPIKey
	// DevUserID is the actor the dev key resolves to.
	DevUserID = "dev-user"
)

// DevAuthorizer accepts LocalDevAPIKey and defers every other token to next.
type DevAuthorizer struct {
	next Authorizer
}

func NewDevAuthorizer(next Authorizer) *DevAuthorizer {
	return &DevAuthorizer{next: next}
}

func (d *DevAuthorizer) Authorize(ctx context.Context, token string) (*ActorInfo, error) {
	if token == LocalDevAPIKey {
		return &ActorInfo{UserID: DevUserID, KeyType: "dev"}, nil
	}
	if d.next == nil {
		return nil, ErrInvalidToken
	}
	return d.next.Authorize(ctx, token)
}
