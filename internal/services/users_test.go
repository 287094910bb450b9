package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/model"
)

func TestUserService_SignUpSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	sess, err := env.users.SignUp(ctx, " Ada@Example.com ", "correct horse", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Equal(t, model.ThemeLight, sess.User.Theme)

	_, err = env.users.SignUp(ctx, "ada@example.com", "another pass", "")
	assert.True(t, IsConflictError(err))

	in, err := env.users.SignIn(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, in.User.ID)

	_, err = env.users.SignIn(ctx, "ada@example.com", "wrong")
	assert.True(t, IsUnauthorizedError(err))
	_, err = env.users.SignIn(ctx, "nobody@example.com", "whatever1")
	assert.True(t, IsUnauthorizedError(err))
}

func TestUserService_SignUpValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.SignUp(t.Context(), "not-an-email", "longenough", "")
	assert.True(t, IsValidationError(err))
	_, err = env.users.SignUp(t.Context(), "a@b.co", "short", "")
	assert.True(t, IsValidationError(err))
	_, err = env.users.SignUp(t.Context(), "a@b.co", strings.Repeat("x", 80), "")
	assert.True(t, IsValidationError(err))
	// 24 three-byte runes fill the bcrypt limit exactly
	_, err = env.users.SignUp(t.Context(), "a@b.co", strings.Repeat("€", 24), "")
	assert.NoError(t, err)
}

func TestUserService_UpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	sess, err := env.users.SignUp(ctx, "grace@example.com", "hopper1906", "")
	require.NoError(t, err)

	dark := model.ThemeDark
	u, err := env.users.UpdateSettings(ctx, sess.User.ID, SettingsInput{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, u.Theme)

	bad := model.Theme("neon")
	_, err = env.users.UpdateSettings(ctx, sess.User.ID, SettingsInput{Theme: &bad})
	assert.True(t, IsValidationError(err))

	dev, err := env.users.Get(ctx, auth.DevUserID)
	require.NoError(t, err)
	assert.Equal(t, auth.DevUserID, dev.ID)
}
