package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"patra/pkg/platform/middleware/metadata"
	"patra/pkg/platform/privacy"
	"patra/pkg/requestcontext"
)

// Logger emits one line per request with status, size, duration and client
// metadata. Place it after ClientMetadata in the chain so the device fields
// are populated; IPs are logged in anonymized form only.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			ctx := r.Context()
			attrs := []any{
				"request_id", requestcontext.RequestID(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", privacy.AnonymizeIP(metadata.GetClientIP(ctx)),
			}
			if device := metadata.GetDevice(ctx); device.Browser != "" {
				attrs = append(attrs, "browser", device.Browser, "os", device.OS)
				if device.Bot {
					attrs = append(attrs, "bot", true)
				}
			}
			logger.InfoContext(ctx, "request served", attrs...)
		})
	}
}
