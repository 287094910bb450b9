package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/config"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)
	tok, exp, err := iss.Issue("u-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	uid, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	tok, _, err := NewTokenIssuer("a", time.Hour).Issue("u-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer("b", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	iss := NewTokenIssuer("secret", time.Minute).WithClock(func() time.Time { return now })
	tok, _, err := iss.Issue("u-1")
	require.NoError(t, err)

	now = start.Add(2 * time.Minute)
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "hunter22"))
	assert.False(t, CheckPassword(h, "hunter23"))
}

func TestNewAuthorizer_DevKeyOnlyInDevMode(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)
	ctx := context.Background()

	cfg := config.NewForTesting()
	cfg.DevMode = true
	actor, err := NewAuthorizer(cfg, iss).Authorize(ctx, LocalDevAPIKey)
	require.NoError(t, err)
	assert.Equal(t, DevUserID, actor.UserID)

	cfg.DevMode = false
	_, err = NewAuthorizer(cfg, iss).Authorize(ctx, LocalDevAPIKey)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, _, _ := iss.Issue("u-9")
	actor, err = NewAuthorizer(cfg, iss).Authorize(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-9", actor.UserID)
	assert.Equal(t, "session", actor.KeyType)
}

func TestExtractBearer(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/goals", nil)
	_, err := ExtractBearer(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Token abc")
	_, err = ExtractBearer(r)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	r.Header.Set("Authorization", "Bearer abc")
	tok, err := ExtractBearer(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	ws := httptest.NewRequest("GET", "/api/ws/goals?token=xyz", nil)
	tok, err = ExtractBearer(ws)
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)
}
