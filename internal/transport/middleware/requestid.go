package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskcore/task-management/pkg/logger"
)

const traceHeader = "X-Trace-ID"

// RequestID tags each request with a trace id, honoring one supplied by the
// caller, and scopes the context logger to it so every downstream log line
// carries the id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(traceHeader, traceID)

		ctx := logger.With(r.Context(), "traceID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
