package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/download"
	"github.com/okian/gradebase/internal/adapters/http/api"
	"github.com/okian/gradebase/internal/adapters/http/swagger"
	"github.com/okian/gradebase/internal/adapters/repository"
	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/config"
	"github.com/okian/gradebase/pkg/logger"
	"github.com/okian/gradebase/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> dotenv -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, err := newHandler(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build gateway", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// newHandler wires the backend client, the workflow and the gateway routes.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, error) {
	client, err := backend.New(cfg.BaseURL,
		backend.WithCredentials(backend.NewTokenStore(cfg.Token)),
		backend.WithTimeout(time.Duration(cfg.RequestTimeoutMS)*time.Millisecond),
		backend.WithPageSize(cfg.PageSize),
		backend.WithLogger(log.Named("backend")),
	)
	if err != nil {
		return nil, err
	}

	svc := service.New(client,
		service.WithLogger(log.Named("workflow")),
		service.WithStore(repository.NewRowStore()),
		service.WithMLMinRows(cfg.MLMinRows),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithLogger(log.Named("api")),
		api.WithSaver(download.NewSaver(cfg.ExportDir, download.WithLogger(log))),
	).Register(ctx, mux)
	return mux, nil
}

// startSystemMetricsUpdater refreshes process gauges until ctx is done.
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

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
