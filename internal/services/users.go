package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/store"
)

// Session is returned by sign-up and sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// SettingsInput is a partial profile update.
type SettingsInput struct {
	DisplayName *string      `json:"displayName,omitempty"`
	Theme       *model.Theme `json:"theme,omitempty"`
}

type UserService struct {
	Deps
	tokens *auth.TokenIssuer
}

func NewUserService(d Deps, tokens *auth.TokenIssuer) *UserService {
	return &UserService{Deps: d, tokens: tokens}
}

// SignUp registers email with a bcrypt-hashed password and signs the user in.
func (s *UserService) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Theme:        model.ThemeLight,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.Store.Users().Create(ctx, u)
	if errors.Is(err, store.ErrConflict) {
		return nil, NewConflictError("email", "an account with this email already exists")
	}
	if err != nil {
		s.Log.Error().Stack().Err(err).Msg("create user failed")
		return nil, translate(err, "user", u.ID)
	}
	s.Log.Info().Str("user_id", created.ID).Msg("user signed up")
	return s.session(created)
}

// SignIn checks the password and issues a fresh token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, UnauthorizedError{Message: auth.ErrBadCredentials.Error()}
	}
	if err != nil {
		return nil, translate(err, "user", email)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, UnauthorizedError{Message: auth.ErrBadCredentials.Error()}
	}
	return s.session(u)
}

// Get returns the profile of userID. The dev actor gets a synthetic profile.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.Store.Users().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) && userID == auth.DevUserID {
		return &model.User{ID: userID, Email: "dev@localhost", DisplayName: "Developer", Theme: model.ThemeLight}, nil
	}
	return u, translate(err, "user", userID)
}

func (s *UserService) UpdateSettings(ctx context.Context, userID string, in SettingsInput) (*model.User, error) {
	if in.DisplayName == nil && in.Theme == nil {
		return nil, NewValidationError("body", "no fields to update")
	}
	if in.Theme != nil && !in.Theme.Valid() {
		return nil, NewValidationError("theme", "must be light or dark")
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if len([]rune(name)) > maxTitleLen {
			return nil, NewValidationError("displayName", "must be at most 200 characters")
		}
		in.DisplayName = &name
	}
	u, err := s.Store.Users().UpdateSettings(ctx, userID, in.DisplayName, in.Theme, s.now())
	if err != nil {
		return nil, translate(err, "user", userID)
	}
	s.publish(changefeed.Users, changefeed.OpModified, userID, u.ID, u)
	return u, nil
}

func (s *UserService) session(u *model.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
