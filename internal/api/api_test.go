package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/config"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
	"github.com/streakedin/streakedin/internal/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := zerolog.Nop()
	cfg := config.NewForTesting()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	gen := ai.NewGenerator(ai.Disabled{}, ai.NewBreaker(ai.BreakerConfig{}), log)
	svc := services.New(services.Deps{Store: st, Feed: changefeed.New(16, log), Log: log}, gen, tokens, cfg.StatsDebounce)

	srv := httptest.NewServer(NewRouter(RouterDeps{
		Services:       svc,
		Authorizer:     auth.NewAuthorizer(cfg, tokens),
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         NewHealthHandler(func() bool { return true }, func() map[string]bool { return map[string]bool{"store": true} }),
		Log:            log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

const dev = auth.LocalDevAPIKey

func TestAPI_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, "GET", "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["message"], "missing bearer token")

	resp, _ = do(t, srv, "GET", "/api/goals", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_GoalLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, created := do(t, srv, "POST", "/api/goals", dev, map[string]any{"title": "Run a marathon", "deadline": "2025-10-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, auth.DevUserID, created["userId"])

	resp, updated := do(t, srv, "PATCH", "/api/goals/"+id, dev, map[string]any{"progress": 25})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 25, updated["progress"])

	resp, body := do(t, srv, "PATCH", "/api/goals/"+id, dev, map[string]any{"progress": 250})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "progress", body["field"])

	resp, list := do(t, srv, "GET", "/api/goals", dev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, list["count"])

	resp, _ = do(t, srv, "DELETE", "/api/goals/"+id, dev, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, "DELETE", "/api/goals/"+id, dev, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, "POST", "/api/goals", dev, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SignUpSignInMe(t *testing.T) {
	srv := newTestServer(t)

	resp, sess := do(t, srv, "POST", "/api/auth/signup", "", map[string]any{"email": "lin@example.com", "password": "pa55word!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := sess["token"].(string)

	resp, _ = do(t, srv, "POST", "/api/auth/signup", "", map[string]any{"email": "lin@example.com", "password": "pa55word!"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, srv, "POST", "/api/auth/signin", "", map[string]any{"email": "lin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, me := do(t, srv, "GET", "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lin@example.com", me["email"])
	assert.NotContains(t, me, "passwordHash")

	resp, me = do(t, srv, "PATCH", "/api/me/settings", token, map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", me["theme"])

	// the user's token only sees the user's data
	_, _ = do(t, srv, "POST", "/api/tasks", dev, map[string]any{"title": "dev task"})
	_, list := do(t, srv, "GET", "/api/tasks", token, nil)
	assert.EqualValues(t, 0, list["count"])
}

func TestAPI_GenerateReminderFallback(t *testing.T) {
	srv := newTestServer(t)

	resp, res := do(t, srv, "POST", "/api/reminders/generate", dev, map[string]any{"prompt": "Remind me to drink water daily"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fallback", res["source"])
	draft := res["draft"].(map[string]any)
	assert.Equal(t, "daily", draft["frequency"])
	assert.Equal(t, "browser", draft["type"])

	resp, saved := do(t, srv, "POST", "/api/goals/generate?save=true", dev, map[string]any{"prompt": "get a promotion at work"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	goal := saved["goal"].(map[string]any)
	assert.Equal(t, true, goal["aiSuggested"])
	assert.Equal(t, "Career", goal["category"])

	resp, status := do(t, srv, "GET", "/api/ai/status", dev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "open", status["state"])

	_, status = do(t, srv, "POST", "/api/ai/reset", dev, nil)
	assert.Equal(t, "closed", status["state"])
}

func TestAPI_ChatAndStats(t *testing.T) {
	srv := newTestServer(t)

	resp, cs := do(t, srv, "POST", "/api/chat/sessions", dev, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "New Chat", cs["title"])
	id := cs["id"].(string)

	resp, sent := do(t, srv, "POST", "/api/chat/sessions/"+id+"/messages", dev, map[string]any{"content": "Help me plan"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "fallback", sent["source"])

	_, sessions := do(t, srv, "GET", "/api/chat/sessions", dev, nil)
	first := sessions["sessions"].([]any)[0].(map[string]any)
	assert.Equal(t, "Help me plan", first["title"])
	assert.EqualValues(t, 2, first["messageCount"])

	resp, cleared := do(t, srv, "DELETE", "/api/chat/sessions/"+id+"/messages", dev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, cleared["deleted"])

	_, task := do(t, srv, "POST", "/api/tasks", dev, map[string]any{"title": "ship it"})
	_, _ = do(t, srv, "PATCH", "/api/tasks/"+task["id"].(string), dev, map[string]any{"completed": true})

	resp, stats := do(t, srv, "GET", "/api/stats", dev, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, stats["completedTasks"])
	assert.EqualValues(t, 1, stats["streakDays"])
	assert.EqualValues(t, 20, stats["productivityScore"])

	resp, _ = do(t, srv, "GET", "/api/analytics?days=abc", dev, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, analytics := do(t, srv, "GET", "/api/analytics?days=7", dev, nil)
	assert.EqualValues(t, 1, analytics["count"])
}

func TestAPI_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/goals", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, srv, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAPI_StreamGoals(t *testing.T) {
	srv := newTestServer(t)
	_, _ = do(t, srv, "POST", "/api/goals", dev, map[string]any{"title": "before"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/goals?token=" + dev
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:3000"}},
	})
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	var snap struct {
		Type  string        `json:"type"`
		Items []*model.Goal `json:"items"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &snap))
	assert.Equal(t, FrameSnapshot, snap.Type)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "before", snap.Items[0].Title)

	_, created := do(t, srv, "POST", "/api/goals", dev, map[string]any{"title": "after"})

	var change struct {
		Type   string            `json:"type"`
		Change changefeed.Change `json:"change"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &change))
	assert.Equal(t, FrameChange, change.Type)
	assert.Equal(t, changefeed.OpAdded, change.Change.Op)
	assert.Equal(t, created["id"], change.Change.ID)
}

func TestAPI_StreamRejectsUnknownCollection(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, srv, "GET", "/api/ws/secrets", dev, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
