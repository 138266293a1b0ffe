// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and routes.
// It decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → store (mongo or sqlite), TokenService, PasswordService → Server
//
// Server.New() creates: services (from the store's repositories) → handlers.
// The server owns the store from then on and closes it on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/handler"
	"github.com/sakif/module-catalog/internal/middleware"
	"github.com/sakif/module-catalog/internal/repository"
	"github.com/sakif/module-catalog/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port               int
	CORSAllowedOrigins []string
	FrontendDir        string // empty: API only
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	registry  *prometheus.Registry
}

// New creates a Server and wires every route.
//
// Each layer only receives what it needs:
//   - Services get repository interfaces (not the concrete store)
//   - Handlers get services, through the small interfaces they declare
func New(
	cfg Config,
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) (*Server, error) {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		registry:  prometheus.NewRegistry(),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /health/live                    → liveness
//	GET    /health/ready                   → store ping
//	GET    /metrics                        → Prometheus exposition
//	POST   /auth/register, /api/auth/register
//	POST   /auth/login,    /api/auth/login
//	GET    /auth/me,       /api/auth/me     [auth]
//	GET    /api/modules                    → list (filters in query)
//	GET    /api/modules/filter-options
//	GET    /api/modules/{id}
//	POST   /api/modules                    [auth]
//	PUT    /api/modules/{id}               [auth]
//	DELETE /api/modules/{id}               [auth]
//	GET    /api/comments/module/{moduleId}
//	POST   /api/comments                   [auth]
//	DELETE /api/comments/{id}              [auth]
//	GET    /api/favorites                  [auth]
//	POST   /api/favorites/{moduleId}       [auth]
//	GET    /*                              → frontend, when FrontendDir is set
//
// MIDDLEWARE ORDER MATTERS:
// Logger and metrics sit outside Recoverer so a recovered panic is still
// logged and counted as a 500.
func (s *Server) setupRoutes() error {
	metrics := middleware.NewMetrics(s.registry)
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Handler)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// === Services ===
	authService := service.NewAuthService(s.store.Users(), s.tokens, s.passwords, s.logger)
	moduleService := service.NewModuleService(s.store.Modules(), s.logger)
	commentService := service.NewCommentService(s.store.Comments(), s.store.Modules(), s.logger)
	favoriteService := service.NewFavoriteService(s.store.Users(), s.store.Modules(), s.logger)

	// === Handlers ===
	healthHandler := handler.NewHealthHandler(s.store, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	moduleHandler := handler.NewModuleHandler(moduleService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService, s.logger)

	requireAuth := auth.RequireAuth(s.tokens)

	s.router.Get("/health/live", healthHandler.HandleLive)
	s.router.Get("/health/ready", healthHandler.HandleReady)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	authRoutes := func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)
	}
	s.router.Route("/auth", authRoutes)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", authRoutes)

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", moduleHandler.HandleList)
			r.Get("/filter-options", moduleHandler.HandleFilterOptions)
			r.Get("/{id}", moduleHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", moduleHandler.HandleCreate)
				r.Put("/{id}", moduleHandler.HandleUpdate)
				r.Delete("/{id}", moduleHandler.HandleDelete)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/module/{moduleId}", commentHandler.HandleListByModule)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", commentHandler.HandleCreate)
				r.Delete("/{id}", commentHandler.HandleDelete)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", favoriteHandler.HandleList)
			r.Post("/{moduleId}", favoriteHandler.HandleToggle)
		})
	})

	if s.config.FrontendDir != "" {
		spa, err := handler.NewSPAHandler(s.config.FrontendDir, s.logger)
		if err != nil {
			return fmt.Errorf("creating frontend handler: %w", err)
		}
		s.router.Handle("/*", spa)
	}

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store (Mongo disconnect, or SQLite WAL flush)
func (s *Server) Start() error {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("frontend", s.config.FrontendDir != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
