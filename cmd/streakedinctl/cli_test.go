package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/goals", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)
			assert.Equal(t, "Read 12 books", in["title"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "g1", "title": in["title"], "status": "active"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"goals": []map[string]any{{"id": "g1", "title": "Read 12 books", "progress": 25, "status": "active"}},
			"count": 1,
		})
	})
	mux.HandleFunc("/api/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "t1", "title": "Water plants", "completed": true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestCLI_Goals(t *testing.T) {
	srv := stubServer(t)

	out := run(t, "--service-url", srv.URL, "goals", "create", "--title", "Read 12 books")
	assert.Contains(t, out, `"id": "g1"`)

	out = run(t, "--service-url", srv.URL, "goals", "list")
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, " 25%")
	assert.Contains(t, out, "Read 12 books")
}

func TestCLI_TaskDone(t *testing.T) {
	srv := stubServer(t)
	out := run(t, "--service-url", srv.URL, "tasks", "done", "t1")
	assert.Equal(t, "completed Water plants\n", out)
}

func TestCLI_SuggestRejectsUnknownKind(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--service-url", "http://127.0.0.1:1", "suggest", "--kind", "poem", "anything"})
	require.Error(t, root.Execute())
}
