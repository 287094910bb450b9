package recovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/api/respond"
)

func TestMiddleware_PanicBecomes500(t *testing.T) {
	h := Middleware(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		var g map[string]int
		g["streak"]++
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 500, body.Code)
	assert.NotContains(t, body.Message, "nil map")
}

func TestMiddleware_PassesThrough(t *testing.T) {
	h := Middleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/goals/g1", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMiddleware_RepanicsAbort(t *testing.T) {
	h := Middleware(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ws/goals", nil))
	})
}
