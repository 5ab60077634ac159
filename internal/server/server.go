package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
	"github.com/issuer-networks/wallet-callback/internal/config"
	"github.com/issuer-networks/wallet-callback/internal/server/handlers"
	"github.com/issuer-networks/wallet-callback/internal/server/middleware"
	"github.com/issuer-networks/wallet-callback/internal/version"
)

type Server struct {
	config  *config.ServerEnvironment
	logger  *slog.Logger
	router  *chi.Mux
	service *callbacksig.Service
}

// NewServer wires the verification service into the HTTP router.
// refresher may be nil when the anchor source has no cache to force.
func NewServer(
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
	service *callbacksig.Service,
	refresher handlers.AnchorRefresher,
) *Server {
	server := &Server{
		config:  cfg,
		logger:  logger,
		router:  chi.NewRouter(),
		service: service,
	}

	server.setupMiddleware()
	server.registerRoutes(refresher)

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(s.config.RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
}

func (s *Server) registerRoutes(refresher handlers.AnchorRefresher) {
	s.router.Get("/health", handlers.HandleHealth)

	v := version.Get()
	s.router.Get("/version", handlers.HandleVersion(v.Version, v.BuildDate))

	callbackHandler := handlers.NewCallbackHandler(s.service, refresher)
	s.router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(s.config.MaxRequestSizeBytes))
		r.Post("/callbacks", callbackHandler.HandleCallback)
	})
}

// Router exposes the configured router, used by the httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
