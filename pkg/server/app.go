package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BundleScope/internal/domain/repository"
	"BundleScope/pkg/cache"
	"BundleScope/pkg/config"
	xhttp "BundleScope/pkg/http"
	applogger "BundleScope/pkg/logger"
	"BundleScope/pkg/queue"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	store       repository.ReportStore
	publisher   repository.Publisher
	cache       cache.Service
	sink        *queue.RedisQueue
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	store repository.ReportStore,
	publisher repository.Publisher,
	cacheSvc cache.Service,
	sink *queue.RedisQueue,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger.Component("app"),
		httpHandler: handler,
		store:       store,
		publisher:   publisher,
		cache:       cacheSvc,
		sink:        sink,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx := context.Background()

	if a.store != nil {
		if err := a.store.Init(ctx); err != nil {
			return err
		}
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(a.logger, time.Second),
	)

	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops the server and closes infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Stop(shutdownCtx); err != nil {
			a.logger.Warn("queue stop error", applogger.Error(err))
		}
	}
	// Flush aggregated error logs while the publisher is still up.
	a.logger.RemoveCollector()
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("report store close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
