package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/enroll/internal/adapters/graphql"
	"github.com/okian/enroll/internal/adapters/http/api"
	"github.com/okian/enroll/internal/adapters/http/swagger"
	"github.com/okian/enroll/internal/adapters/mcptools"
	service "github.com/okian/enroll/internal/app"
	"github.com/okian/enroll/internal/config"
	"github.com/okian/enroll/pkg/logger"
	"github.com/okian/enroll/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, err := newHandler(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build handler", logger.Error(err))
		stop()
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		// In-flight backend calls are cancelled when the server stops.
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend_url", cfg.BackendURL),
			logger.Bool("mcp_enabled", cfg.MCPEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newHandler wires the backend client, service and every route for cfg.
func newHandler(cfg *config.Config, l logger.Logger) (http.Handler, error) {
	client, err := graphql.New(graphql.Config{
		Endpoint:     cfg.BackendURL,
		SecretHeader: cfg.BackendSecretHeader,
		Secret:       cfg.BackendSecret,
		Timeout:      cfg.BackendTimeout(),
	}, graphql.WithLogger(l.Named("graphql")))
	if err != nil {
		return nil, err
	}

	svc := service.New(client, service.WithLogger(l.Named("service")))

	mux := http.NewServeMux()
	swagger.Register(mux)

	apiServer := api.NewServer(svc, svc, api.WithLogger(l.Named("api")))
	apiServer.Register(mux)

	if cfg.MCPEnabled {
		mux.Handle("/mcp", mcptools.NewHTTPHandler(svc, l.Named("mcp")))
	}

	mux.Handle("/", apiServer.NotFoundHandler())

	return api.RequestIDMiddleware(mux), nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
