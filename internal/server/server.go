package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/admission"
	"github.com/clipcal/clipcal/internal/config"
	apperrors "github.com/clipcal/clipcal/internal/errors"
	"github.com/clipcal/clipcal/internal/extract"
	"github.com/clipcal/clipcal/internal/observability"
	"github.com/clipcal/clipcal/internal/server/handlers"
	servermw "github.com/clipcal/clipcal/internal/server/middleware"
)

// Server is the HTTP front of the service: admission, extraction, and
// the operational endpoints.
type Server struct {
	router       *chi.Mux
	server       *http.Server
	cfg          config.ServerConfig
	controller   *admission.Controller
	orchestrator *extract.Orchestrator
	admin        *handlers.AdminHandler
	health       *handlers.HealthManager
}

// New creates the HTTP server over the given admission controller and
// extraction orchestrator.
func New(cfg *config.Config, controller *admission.Controller, orchestrator *extract.Orchestrator, version string) *Server {
	r := chi.NewRouter()

	// Standard chi middleware
	r.Use(middleware.RealIP)

	// Custom middleware in order: RequestID → Metrics → Security → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.SecurityHeaders)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router:       r,
		cfg:          cfg.Server,
		controller:   controller,
		orchestrator: orchestrator,
		health:       handlers.NewHealthManager(version),
	}
	if cfg.Admin.Token != "" {
		s.admin = handlers.NewAdminHandler(controller, cfg.Admin.Token)
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()

	return s
}

// RegisterHealthChecker adds a named check to the health endpoints.
func (s *Server) RegisterHealthChecker(name string, checker handlers.HealthChecker) {
	s.health.RegisterChecker(name, checker)
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured server port.
func (s *Server) Port() int {
	return s.cfg.Port
}
