package server

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/observability"
	"github.com/clipcal/clipcal/internal/server/handlers"
	servermw "github.com/clipcal/clipcal/internal/server/middleware"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	// Health endpoints
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	extractHandler := handlers.NewExtractHandler(s.controller, s.orchestrator)
	timezoneHandler := handlers.NewTimezoneHandler(s.controller)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(servermw.RequireJSON)

		r.Post("/events/extract", extractHandler.ServeHTTP)
		r.Post("/events/ics", handlers.ICSHandler)
		r.Post("/timezone/validate", timezoneHandler.ServeHTTP)

		s.registerAdminRoutes(r)
	})
}

// registerAdminRoutes optionally registers the operator endpoints. They
// are disabled entirely when no admin token is configured.
func (s *Server) registerAdminRoutes(r chi.Router) {
	logger := observability.ServerLogger

	if s.admin == nil {
		if logger != nil {
			logger.Debug("Admin endpoints disabled (no admin token configured)")
		}
		return
	}

	r.Get("/admin/stats", s.admin.Stats)
	r.Post("/admin/reset", s.admin.Reset)

	if logger != nil {
		logger.Info("Admin endpoints enabled",
			zap.String("auth", "bearer token"))
		logger.Warn("Admin endpoints enabled - ensure this server is not exposed to public internet")
	}
}
