package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/api/routes"
	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP engine and shared dependencies for easier testing.
type Server struct {
	Engine *gin.Engine
	App    *routes.App
	cfg    config.Config
}

// New wires up the HTTP router and registers the routes.
func New(db *gorm.DB, cfg config.Config) (*Server, error) {
	return NewWithOptions(db, cfg, routes.Options{})
}

// NewWithOptions is New with route overrides.
func NewWithOptions(db *gorm.DB, cfg config.Config, opts routes.Options) (*Server, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}

	app, err := routes.RegisterWithOptions(router, db, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return &Server{Engine: router, App: app, cfg: cfg}, nil
}

// NewRouter returns an engine with the request id, logging and recovery
// middleware installed. Forwarded client addresses are only honoured from
// the configured proxies.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())
	return router, nil
}

// Run starts the HTTP server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.HTTPPort),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.App.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Log().WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
