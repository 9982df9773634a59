package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridian/diligence-api/internal/auth"
)

// NewRouter creates and returns a configured Chi router.
func NewRouter(h *Handler, tokens *auth.TokenService) http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// ── Operational endpoints ─────────────────────────────────────────────────
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api/v1", func(r chi.Router) {

		// Public: login and local document arithmetic.
		r.Post("/auth/login", h.Login)
		r.Post("/documents/validate", h.ValidateDocument)

		// Authenticated analysis surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", h.Me)

			r.Route("/analyses", func(r chi.Router) {
				r.Post("/", h.CreateAnalysis)
				r.Post("/stream", h.StreamAnalysis)
				r.Get("/{id}", h.GetAnalysis)
				r.Get("/{id}/report", h.GetReport)
			})

			r.Get("/documents/{document}/analyses", h.ListAnalysesByDocument)

			// Account administration.
			r.Route("/auth/users", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Delete("/{id}", h.DeleteUser)
			})
		})
	})

	return r
}

// requestLogger is a minimal structured-logging middleware.
// It replaces chi's default Logger to emit slog records.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
