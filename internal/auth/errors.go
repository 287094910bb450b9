package auth

import "errors"

var (
	// ErrMissingToken is returned when the request carries no credential.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrMalformedHeader is returned when Authorization is not "Bearer <token>".
	ErrMalformedHeader = errors.New("invalid Authorization header format, expected 'Bearer <token>'")

	// ErrInvalidToken is returned for expired, forged or unparseable tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrBadCredentials is returned when email and password do not match.
	ErrBadCredentials = errors.New("invalid email or password")
)
