package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"PBNPublisher/internal/config"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/usecase"
	"PBNPublisher/pkg/logger"
)

const sessionCookie = "session"

// Deps bundles the use cases served over HTTP.
type Deps struct {
	Accounts  *usecase.Accounts
	Publisher *usecase.Publisher
	Ingestor  *usecase.Ingestor
	Websites  *usecase.Websites
	Dashboard *usecase.Dashboard
	// Ping reports storage health for /healthz.
	Ping func(ctx context.Context) error
}

// Server exposes the dashboard JSON API.
type Server struct {
	cfg    config.HTTPConfig
	deps   Deps
	logger *slog.Logger
	server *http.Server
}

// New builds the API server; call Run to start listening.
func New(cfg config.HTTPConfig, deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{cfg: cfg, deps: deps, logger: log}
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ErrorLog:          logger.New("http"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.Handle("POST /api/articles/publish", s.authed(s.handlePublish))
	mux.Handle("GET /api/articles", s.authed(s.handleArticles))
	mux.Handle("GET /api/links", s.authed(s.handleLinks))
	mux.Handle("GET /api/dashboard", s.authed(s.handleDashboard))

	mux.Handle("GET /api/websites", s.authed(s.handleListWebsites))
	mux.Handle("POST /api/websites", s.authed(s.handleCreateWebsite))
	mux.Handle("DELETE /api/websites/{id}", s.authed(s.handleDeleteWebsite))
	mux.Handle("POST /api/websites/test", s.authed(s.handleTestWebsite))

	mux.Handle("POST /api/upload", s.authed(s.handleUpload))
	mux.Handle("POST /api/upload/process", s.authed(s.handleProcessUpload))

	return s.requestLog(mux)
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("api server listening", "address", listener.Addr().String())

	select {
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}
