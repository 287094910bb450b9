package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/client"
)

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func TestTools_UpdateGoalProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/goals/g1", r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.EqualValues(t, 60, body["progress"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g1","title":"Ship","progress":60,"status":"active"}`))
	}))
	defer srv.Close()

	tools := NewTools(client.NewWithDevMode(srv.URL))
	res, err := tools.handleUpdateGoalProgress(context.Background(), call(map[string]any{
		"goal_id":  "g1",
		"progress": float64(60),
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"progress":60`)
}

func TestTools_ListGoalsIsCompact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"goals":[{"id":"g1","userId":"u","title":"Run","progress":10,"status":"active","category":"Health"}],"count":1}`))
	}))
	defer srv.Close()

	res, err := NewTools(client.NewWithDevMode(srv.URL)).handleListGoals(context.Background(), call(nil))
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "g1", out[0]["goalId"])
	assert.NotContains(t, out[0], "userId")
}

func TestTools_ErrorsBecomeToolErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","code":404,"message":"task not found"}`))
	}))
	defer srv.Close()

	res, err := NewTools(client.NewWithDevMode(srv.URL)).handleCompleteTask(context.Background(), call(map[string]any{"task_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "task not found")
}

func TestTools_MissingRequiredArgument(t *testing.T) {
	res, err := NewTools(client.NewWithDevMode("http://127.0.0.1:1")).handleCreateGoal(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUseStdio_ExplicitTransport(t *testing.T) {
	assert.True(t, useStdio("stdio"))
	assert.False(t, useStdio("http"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLogLevel("DEBUG").String())
	assert.Equal(t, "info", parseLogLevel("loud").String())
}
