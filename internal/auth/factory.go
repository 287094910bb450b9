package auth

import (
	"github.com/streakedin/streakedin/internal/config"
)

// NewAuthorizer builds the JWT authorizer, wrapped so the local dev key is
// also accepted when cfg.DevMode is set.
func NewAuthorizer(cfg *config.Config, issuer *TokenIssuer) Authorizer {
	a := Authorizer(NewJWTAuthorizer(issuer))
	if cfg.DevMode {
		return NewDevAuthorizer(a)
	}
	return a
}
