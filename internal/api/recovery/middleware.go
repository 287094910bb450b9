// Package recovery turns handler panics into 500 responses.
package recovery

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/metrics"
)

// Middleware converts a panic into a logged 500. http.ErrAbortHandler is
// re-raised so net/http can drop the connection quietly.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				metrics.PanicsTotal.Inc()
				log.Error().
					Str("panic", fmt.Sprint(rec)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				respond.WriteInternalError(w, "something went wrong, please try again")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
