package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-wallet-verify/internal/config"
	jwtinfra "github.com/go-wallet-verify/internal/infrastructure/jwt"
	"github.com/go-wallet-verify/internal/observability"
	"github.com/go-wallet-verify/internal/transport/http/handler"
	appmiddleware "github.com/go-wallet-verify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the router's dependencies. JWTProvider may be nil, in which case
// the session-management routes are left open (development only).
type Deps struct {
	Service     VerificationService
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — wallets signing challenges have no
	// reason to hammer the submission endpoint.
	verifyRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.Service)
	verifyH := handler.NewVerificationHandler(deps.Service)
	sessionH := handler.NewSessionHandler(deps.Service)
	walletH := handler.NewWalletHandler(deps.Service)

	// ── Public wallet-facing routes ──────────────────────────────────────────
	r.Get("/health", healthH.Health)
	r.Get("/status", verifyH.Status)
	r.With(verifyRL.Limit).Post("/verify", verifyH.Verify)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	// ── Front-end management routes (service token) ──────────────────────────
	r.Route("/v1", func(r chi.Router) {
		r.Use(authMw)

		r.Post("/sessions", sessionH.Create)
		r.Put("/sessions/{id}/origin", sessionH.AttachOrigin)
		r.Delete("/sessions/{id}", sessionH.Cancel)
		r.Get("/wallets/{userId}", walletH.ListByUser)
	})

	return r
}
