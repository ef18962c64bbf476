package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/httputil"
	"patra/pkg/requestcontext"
)

// Recovery turns handler panics into 500 responses and a stack-trace log
// line instead of a dropped connection. http.ErrAbortHandler passes through
// untouched, as the server uses it to abort deliberately.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"request_id", requestcontext.RequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
