package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
)

func (s *HTTPServer) setupRoutes(router *gin.Engine) {
	router.GET("/health", s.health)
	if s.deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	router.GET("/ws", s.deps.Hub.Handler(s.verifySocketToken, realtime.HandlerOptions{
		RequireToken:  true,
		AllowedOrigin: s.cfg.AllowedOrigin,
		PingInterval:  s.cfg.WSPingInterval,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.rateLimit(), s.register)
			authGroup.POST("/login", s.rateLimit(), s.login)
			authGroup.POST("/refresh", s.refresh)

			private := authGroup.Group("", s.authRequired())
			private.POST("/logout", s.logout)
			private.GET("/me", s.profile)
			private.PUT("/password", s.changePassword)
			private.PUT("/details", s.updateDetails)
		}

		tasks := api.Group("/tasks", s.authRequired())
		{
			tasks.POST("/create", s.createTask)
			tasks.GET("/list", s.listTasks)
			tasks.GET("/stats", s.taskStats)
			tasks.GET("/upcoming", s.upcomingTasks)
			tasks.GET("/:id", s.getTask)
			tasks.PUT("/:id", s.updateTask)
			tasks.DELETE("/:id", s.deleteTask)
		}

		activities := api.Group("/activities", s.authRequired())
		{
			activities.GET("", s.listActivities)
			activities.DELETE("", s.clearActivities)
		}
	}
}

func (s *HTTPServer) verifySocketToken(ctx context.Context, token string) (string, error) {
	u, err := s.deps.Users.ResolveCaller(ctx, token)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *HTTPServer) health(c *gin.Context) {
	if s.deps.Storage != nil {
		if err := s.deps.Storage.Ping(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "storage ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
