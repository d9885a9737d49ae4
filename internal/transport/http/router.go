package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certichain/internal/platform/middleware"
	"certichain/internal/ratelimit"
)

// NewRouter wires all public and issuer-facing endpoints.
func NewRouter(
	certs *CertificateHandler,
	auth *AuthHandler,
	jwtValidator middleware.JWTValidator,
	limits *ratelimit.Middleware,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.ContentTypeJSON).Post("/auth/token", auth.handleToken)

		// Public verification surface.
		r.Group(func(r chi.Router) {
			r.Use(limits.RateLimit)
			r.Get("/certificates/{tokenID}", certs.handleGet)
			r.Get("/certificates/{tokenID}/qrcode", certs.handleQRCode)
			r.With(middleware.ContentTypeJSON).Post("/certificates/{tokenID}/verify", certs.handleVerify)
		})

		// Issuer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtValidator, logger))
			r.With(middleware.ContentTypeJSON).Post("/certificates", certs.handleIssue)
			r.Get("/issuances", certs.handleListIssuances)
		})
	})
	return r
}
