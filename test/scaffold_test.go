package test

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	clienthandler "patra/internal/clients/handler"
	clientservice "patra/internal/clients/service"
	clientstore "patra/internal/clients/store"
	jwttoken "patra/internal/jwt_token"
	httptransport "patra/internal/transport/http"
	"patra/pkg/testutil"
)

// registrarFunc mounts stub endpoints behind the real middleware stack.
type registrarFunc func(r chi.Router)

func (f registrarFunc) Register(r chi.Router) { f(r) }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwttoken.NewJWTService("scaffold-key", "patra", "patra-api")
	svc := clientservice.New(clientstore.NewInMemory(), jwtService, clientservice.WithLogger(log))

	return httptransport.New(httptransport.Config{
		Logger: log,
		Auth:   jwttoken.NewJWTServiceAdapter(jwtService),
		Token:  clienthandler.New(svc, log),
		Eligibility: registrarFunc(func(r chi.Router) {
			r.Get("/schemes", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		}),
		Health: httptransport.NewHealth(log),
	})
}

func TestRouterScaffold(t *testing.T) {
	testutil.Given(t, "the assembled HTTP router", func(t *testing.T) {
		router := newRouter(t)

		testutil.When(t, "probing GET /healthz", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "it should report alive", func(t *testing.T) {
				testutil.AssertStatusOK(t, rec)
			})
		})

		testutil.When(t, "calling the API without a token", func(t *testing.T) {
			rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/schemes"))

			testutil.Then(t, "it should be rejected as unauthorized", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
			})
		})

		testutil.When(t, "requesting a token with unknown credentials", func(t *testing.T) {
			form := url.Values{
				"grant_type":    {"client_credentials"},
				"client_id":     {"ghost"},
				"client_secret": {"wrong"},
			}
			req := testutil.NewRequestWithBody(t, http.MethodPost, "/auth/token", form.Encode())
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := testutil.DoRequest(router, req)

			testutil.Then(t, "it should not issue a token", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusUnauthorized)
				testutil.AssertJSONHasKey(t, rec, "error")
			})
		})
	})
}
