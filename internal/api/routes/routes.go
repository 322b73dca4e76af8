package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/api/handlers"
	"github.com/wardle-dev/lookout/internal/api/middleware"
	"github.com/wardle-dev/lookout/internal/config"
	"github.com/wardle-dev/lookout/internal/scheduler"
	"github.com/wardle-dev/lookout/internal/services"
)

// Deps carries the shared collaborators the routes need.
type Deps struct {
	DB        *gorm.DB
	Config    config.Config
	Scheduler *scheduler.Scheduler
	Liveness  scheduler.LivenessSignal
	Registry  *prometheus.Registry
}

// Register wires up API routes.
func Register(router *gin.Engine, deps Deps) {
	authService := services.NewAuthService(deps.DB, deps.Config.JWTSecret)
	monitorService := services.NewMonitorService(deps.DB)
	uptimeService := services.NewUptimeService(deps.DB)

	authHandler := handlers.NewAuthHandler(authService)
	monitorHandler := handlers.NewMonitorHandler(monitorService, uptimeService, deps.Scheduler)
	settingsHandler := handlers.NewSettingsHandler(deps.DB, deps.Config)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Liveness)

	router.GET("/api/health", healthHandler.Health)

	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		protected.GET("/monitors", monitorHandler.List)
		protected.POST("/monitors", monitorHandler.Create)
		protected.GET("/monitors/:id", monitorHandler.Get)
		protected.PUT("/monitors/:id", monitorHandler.Update)
		protected.DELETE("/monitors/:id", monitorHandler.Delete)
		protected.POST("/monitors/:id/check", monitorHandler.CheckNow)
		protected.GET("/monitors/:id/uptime", monitorHandler.Uptime)
		protected.GET("/monitors/:id/checks", monitorHandler.Checks)

		protected.GET("/settings/notifications", settingsHandler.Get)
		protected.PUT("/settings/notifications", settingsHandler.Update)
	}
}
