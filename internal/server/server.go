// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adekolu/walletguard/internal/algorand"
	"github.com/adekolu/walletguard/internal/analysis"
	"github.com/adekolu/walletguard/internal/config"
	"github.com/adekolu/walletguard/internal/encoder"
	"github.com/adekolu/walletguard/internal/freeze"
	"github.com/adekolu/walletguard/internal/gnn"
	"github.com/adekolu/walletguard/internal/idgen"
	"github.com/adekolu/walletguard/internal/logging"
	"github.com/adekolu/walletguard/internal/metrics"
	"github.com/adekolu/walletguard/internal/ratelimit"
	"github.com/adekolu/walletguard/internal/security"
	"github.com/adekolu/walletguard/internal/traces"
	"github.com/adekolu/walletguard/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies. Everything the request path
// needs (encoder, model, chain client) is constructed once here and shared
// read-only across requests.
type Server struct {
	cfg           *config.Config
	svc           *analysis.Service
	chain         *algorand.Client // nil when the indexer client failed to build
	rateLimiter   *ratelimit.Limiter
	router        *gin.Engine
	httpSrv       *http.Server
	logger        *slog.Logger
	traceShutdown func(context.Context) error
	untrained     bool // model weights were missing at startup

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Label encoder: a missing file is degraded mode (analyze always 503),
	// a malformed file is a startup failure.
	enc, err := encoder.Load(cfg.EncoderPath)
	switch {
	case err == nil:
		s.logger.Info("label encoder loaded", "path", cfg.EncoderPath, "addresses", enc.Len())
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("label encoder not found, analyze requests will be refused", "path", cfg.EncoderPath)
		enc = nil
	default:
		return nil, fmt.Errorf("load encoder: %w", err)
	}

	// Model weights: a missing file falls back to an untrained model. The
	// service stays operative but predictions are arbitrary.
	model, err := gnn.Load(cfg.ModelPath)
	switch {
	case err == nil:
		s.logger.Info("model weights loaded", "path", cfg.ModelPath)
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("model weights not found, using untrained model", "path", cfg.ModelPath)
		model = gnn.New()
		s.untrained = true
	default:
		return nil, fmt.Errorf("load model: %w", err)
	}

	// Chain collaborator. Failure degrades the freeze side effect to
	// log-only; it never blocks startup.
	chain, err := algorand.New(algorand.Config{
		IndexerURL:   cfg.IndexerURL,
		IndexerToken: cfg.IndexerToken,
		Network:      cfg.Network,
	}, logging.Component(s.logger, "algorand"))
	if err != nil {
		s.logger.Warn("failed to create indexer client, freeze actions are log-only", "error", err)
		chain = nil
	}
	s.chain = chain

	dispatcher := freeze.NewDispatcher(freezerOrNil(chain), logging.Component(s.logger, "freeze"), cfg.FreezeTimeout)

	s.svc = analysis.NewService(
		enc,
		model,
		analysis.NewMemoryStore(),
		dispatcher,
		logging.Component(s.logger, "analysis"),
	)

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// freezerOrNil avoids handing the dispatcher a typed-nil interface value.
func freezerOrNil(c *algorand.Client) freeze.Freezer {
	if c == nil {
		return nil
	}
	return c
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.Hex(16)
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	analysisHandler := analysis.NewHandler(s.svc)

	// The analyze endpoint lives at the root: its path is a published
	// contract consumed by existing monitoring integrations.
	s.router.POST("/analyze-wallet", analysisHandler.AnalyzeWallet)

	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// V1 API group: audit surface
	v1 := s.router.Group("/v1")
	analysisHandler.RegisterRoutes(v1)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// healthHandler reports the service as running. No preconditions: a degraded
// service (missing encoder or weights) still answers 200 here; degradation
// shows up on the analyze endpoint and in /health/ready checks.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"network": s.cfg.Network,
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// readinessHandler reports readiness plus informational dependency checks.
// Indexer reachability does not gate readiness: the freeze side effect
// degrades to log-only without it.
func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}

	checks := make(map[string]string)
	if s.untrained {
		checks["model"] = "untrained"
	} else {
		checks["model"] = "loaded"
	}

	if s.chain != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := s.chain.Health(ctx); err != nil {
			checks["indexer"] = "unreachable"
		} else {
			checks["indexer"] = "healthy"
		}
	} else {
		checks["indexer"] = "not_configured"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	shutdown, err := traces.Init(ctx, s.cfg.OTLPEndpoint, s.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.traceShutdown = shutdown

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"network", s.cfg.Network,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.traceShutdown != nil {
		if err := s.traceShutdown(ctx); err != nil {
			s.logger.Error("trace shutdown error", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
