// Package server wires the storage backend, services, realtime hub and the
// HTTP and gRPC transports into one runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	gs "github.com/dmitrijs2005/tasksync/internal/server/grpc"
	"github.com/dmitrijs2005/tasksync/internal/server/httpapi"
	"github.com/dmitrijs2005/tasksync/internal/server/metrics"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
	"github.com/dmitrijs2005/tasksync/internal/server/tracing"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	repos           repomanager.RepositoryManager
	hub             *realtime.Hub
	httpServer      *httpapi.HTTPServer
	grpcServer      *gs.GRPCServer
	shutdownTracing tracing.ShutdownFunc
}

func openStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageBackend {
	case config.BackendMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	default:
		m, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := m.RunMigrations(ctx); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		return m, nil
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	shutdownTracing, err := tracing.Init("tasksync", c.TraceExporter, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	repos, err := openStorage(ctx, c)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	m := metrics.New()
	hub := realtime.NewHub(logger, realtime.WithMetrics(m), realtime.WithSendBuffer(c.WSSendBuffer))

	activities := services.NewActivityService(repos, hub, logger)
	deps := httpapi.Deps{
		Users:      services.NewUserService(repos, activities, c, logger),
		Tasks:      services.NewTaskService(repos, activities, hub, logger),
		Activities: activities,
		Hub:        hub,
		Metrics:    m,
		Storage:    repos,
	}

	return &App{
		config:          c,
		logger:          logger,
		repos:           repos,
		hub:             hub,
		httpServer:      httpapi.NewHTTPServer(c, logger, deps),
		grpcServer:      gs.NewGRPCServer(c.GRPCAddr, logger),
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run serves both transports until ctx is cancelled, a termination signal
// arrives, or one of them fails. Resources are released before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(gctx) })
	g.Go(func() error { return app.grpcServer.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		app.hub.Close()
		return nil
	})

	err := g.Wait()

	cleanupCtx := context.WithoutCancel(ctx)
	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(cleanupCtx, "storage close failed", "error", cerr)
	}
	if terr := app.shutdownTracing(cleanupCtx); terr != nil {
		app.logger.Error(cleanupCtx, "tracing shutdown failed", "error", terr)
	}

	app.logger.Info(cleanupCtx, "App stopped")
	return err
}
