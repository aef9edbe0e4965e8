package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/handy-terminal/internal/api/handlers"
	"github.com/wms-platform/handy-terminal/internal/application/incoming"
	"github.com/wms-platform/handy-terminal/internal/application/picking"
	"github.com/wms-platform/handy-terminal/internal/i18n"
	"github.com/wms-platform/handy-terminal/internal/infrastructure/backend"
	"github.com/wms-platform/handy-terminal/internal/infrastructure/session"
	"github.com/wms-platform/handy-terminal/pkg/config"
	"github.com/wms-platform/handy-terminal/pkg/contracts/schema"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/metrics"
	"github.com/wms-platform/handy-terminal/pkg/middleware"
	"github.com/wms-platform/handy-terminal/pkg/tracing"
)

const serviceName = "handy-terminal"

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(logging.DefaultConfig(serviceName)).WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	// Setup logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(cfg.Logging.Level)
	logConfig.Environment = cfg.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting handy terminal", "addr", cfg.Server.Addr, "backend", cfg.Backend.BaseURL)

	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = cfg.Tracing.Endpoint
	tracingConfig.Environment = cfg.Environment
	tracingConfig.SampleRate = cfg.Tracing.SampleRate
	tracingConfig.Enabled = cfg.Tracing.Enabled

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "enabled", tracingConfig.Enabled, "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	sess, err := session.New(cfg.Backend.APIKey, cfg.Backend.Token)
	if err != nil {
		logger.WithError(err).Error("Failed to read session")
		os.Exit(1)
	}
	if picker, ok := sess.Picker(); ok {
		logger.Info("Session loaded", "picker_id", picker.ID)
	} else {
		logger.Warn("No picker signed in; submissions and the picker's own task list are unavailable")
	}

	catalog := i18n.For(i18n.Locale(cfg.Workflow.Locale))

	clientConfig, err := backendConfig(cfg.Backend, logger, m)
	if err != nil {
		logger.WithError(err).Error("Failed to load backend contract")
		os.Exit(1)
	}
	client := backend.NewClient(clientConfig, sess, catalog.Fallback, logger, m)

	engine := incoming.NewEngine(backend.NewIncomingClient(client), sess, incoming.Config{
		Debounce:       cfg.Workflow.Debounce,
		SuccessDisplay: cfg.Workflow.SuccessDisplay,
		Messages:       catalog,
		Logger:         logger,
		Metrics:        m,
		Clock:          time.Now,
	})
	defer engine.Close()

	board := picking.NewBoard(backend.NewPickingClient(client), sess, picking.Config{
		Messages: catalog,
		Logger:   logger,
		Metrics:  m,
	})

	var documents *schema.DocumentValidator
	if cfg.Server.ValidateDocuments {
		documents, err = schema.NewDocumentValidator()
		if err != nil {
			logger.WithError(err).Error("Failed to load document schemas")
			os.Exit(1)
		}
	}

	// Setup Gin router with middleware
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger)
	middlewareConfig.Metrics = m
	middleware.Setup(router, middlewareConfig)

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, readiness(client, sess, time.Now)))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	api := router.Group("/api/v1")
	handlers.NewIncomingHandler(engine, logger, documents).RegisterRoutes(api)
	handlers.NewPickingHandler(board, logger, documents).RegisterRoutes(api)

	// Start server. No write timeout: the state stream is long-lived.
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	go func() {
		logger.Info("Server started", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
