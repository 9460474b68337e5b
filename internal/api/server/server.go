package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/middleware"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ratelimit"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	AdminAPIKeys []string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	handler    *rest.Handler
	verifier   *token.Verifier
	limiter    ratelimit.Limiter
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, handler *rest.Handler, verifier *token.Verifier, limiter ratelimit.Limiter) *Server {
	return &Server{
		config:   cfg,
		handler:  handler,
		verifier: verifier,
		limiter:  limiter,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	rest.SetupRoutes(router, s.handler, s.verifier, s.limiter, s.config.AdminAPIKeys)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: s.config.ReadTimeout,
		// WriteTimeout bounds an entire streamed response, so it must cover
		// the longest allowed inference, not a single write.
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
