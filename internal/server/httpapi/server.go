// Package httpapi exposes the task, auth and activity services over HTTP
// using gin, and mounts the realtime socket, health and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/metrics"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Pinger reports storage liveness for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Users      *services.UserService
	Tasks      *services.TaskService
	Activities *services.ActivityService
	Hub        *realtime.Hub
	Metrics    *metrics.Metrics
	Storage    Pinger
}

type HTTPServer struct {
	address string
	cfg     *config.Config
	deps    Deps
	logger  logging.Logger
	router  *gin.Engine
	limiter *ipLimiter
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, deps Deps) *HTTPServer {
	s := &HTTPServer{
		address: cfg.HTTPAddr,
		cfg:     cfg,
		deps:    deps,
		logger:  l.With("module", "http_server"),
		limiter: newIPLimiter(rate.Limit(float64(cfg.LoginRatePerMinute)/60), cfg.LoginRateBurst),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the configured router; tests drive it through httptest.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func (s *HTTPServer) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("tasksync"))
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware())
	}
	r.Use(s.requestLogger(), s.cors())
	s.setupRoutes(r)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
