package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/config"
	"github.com/streakedin/streakedin/internal/model"
)

func TestClient_SendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+config.DevAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/goals", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"goals": []model.Goal{{ID: "g1", Title: "Ship v1", Progress: 40}},
			"count": 1,
		})
	}))
	defer srv.Close()

	goals, err := NewWithDevMode(srv.URL).ListGoals(context.Background())
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Ship v1", goals[0].Title)
	assert.Equal(t, 40, goals[0].Progress)
}

func TestClient_MapsErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not Found","code":404,"message":"goal not found"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Bad Request","code":400,"message":"must be between 0 and 100","field":"progress"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	progress := 300
	_, err := c.UpdateGoal(context.Background(), "g1", model.GoalPatch{Progress: &progress})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "progress", apiErr.Field)

	err = c.DeleteGoal(context.Background(), "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_SignInAdoptsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/signin":
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"token":"jwt-123","user":{"id":"u1","email":"a@b.co"}}`))
		case "/api/me":
			assert.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.co","theme":"light"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	sess, err := c.SignIn(context.Background(), "a@b.co", "pa55word!")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, me.Theme)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	status, err := New(srv.URL, "", WithRetries(3)).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
	assert.EqualValues(t, 3, calls.Load())
}
