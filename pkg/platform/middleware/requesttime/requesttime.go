// Package requesttime pins one "now" per HTTP request. Eligibility decisions
// compare dates against the evaluation time, so everything inside a request,
// from rule checks to audit timestamps, must agree on what time it is.
package requesttime

import (
	"net/http"
	"time"

	"patra/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context. Services read it through requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
