package http

import (
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

// RecoveryMiddleware turns a handler panic into an opaque 500 envelope.
// It runs inside TraceIDMiddleware so the log line and the response share
// the request's trace id.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.PanicsRecovered.Inc()
				log.WithFields(r.Context(), logger.Fields{
					"action": "panic_recovered",
					"method": r.Method,
					"path":   r.URL.Path,
				}).Criticalf("panic: %v\n%s", rec, debug.Stack())

				WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, TraceIDFromContext(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
