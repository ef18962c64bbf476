// Package auth guards HTTP routes with bearer-token authentication.
//
// Tokens identify API clients (departments, portals), never applicants.
// RequireAuth validates the JWT and stores the client identity in the
// request context; RequireScope layers scope checks on top for admin routes.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"patra/pkg/requestcontext"
)

// Claims are the validated token claims the middleware cares about.
type Claims struct {
	ClientID string
	Scopes   []string
	JTI      string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type contextKeyScopes struct{}

// GetScopes retrieves the authenticated client's scopes from the context.
func GetScopes(ctx context.Context) []string {
	if scopes, ok := ctx.Value(contextKeyScopes{}).([]string); ok {
		return scopes
	}
	return nil
}

// WithScopes injects scopes into a context. For handler tests that bypass
// the middleware.
func WithScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, contextKeyScopes{}, scopes)
}

// HasScope reports whether the context carries the given scope.
func HasScope(ctx context.Context, scope string) bool {
	for _, s := range GetScopes(ctx) {
		if s == scope {
			return true
		}
	}
	return false
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token. On success the
// client id and scopes are placed in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithClientID(ctx, claims.ClientID)
			ctx = WithScopes(ctx, claims.Scopes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope rejects authenticated requests whose token lacks the scope.
// Must be mounted inside RequireAuth.
func RequireScope(scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !HasScope(ctx, scope) {
				logger.WarnContext(ctx, "forbidden - missing scope",
					"scope", scope,
					"client_id", requestcontext.ClientID(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Token does not carry the required scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
