// Package httpserver assembles the gin.Engine that fronts the render
// dispatcher: a handful of explicit boundary routes (health, metrics,
// admin API, dashboard) layered with the teacher's middleware stack, and a
// NoRoute fallthrough into the dispatcher for everything else.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/api/handler"
	"github.com/volcanion-labs/ssr-dispatcher/internal/auth"
	"github.com/volcanion-labs/ssr-dispatcher/internal/benchstore"
	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/dispatcher"
	"github.com/volcanion-labs/ssr-dispatcher/internal/metrics"
	"github.com/volcanion-labs/ssr-dispatcher/internal/middleware"
	"github.com/volcanion-labs/ssr-dispatcher/internal/resultviewer"
	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

// Deps bundles everything the router needs to wire a route to a component.
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Collector  *metrics.Collector
	Dispatcher *dispatcher.Dispatcher
	Pool       *workerpool.Pool
	BenchStore benchstore.Store

	JWTService    *auth.JWTService
	APIKeyService *auth.APIKeyService
	UserRepo      auth.UserRepository

	// DashboardPath mounts the embedded results dashboard. Defaults to
	// "/dashboard" when empty.
	DashboardPath string
}

// New builds the gin.Engine for the boundary: middleware chain, explicit
// routes, and the dispatcher fallthrough.
func New(deps Deps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dashboardPath := deps.DashboardPath
	if dashboardPath == "" {
		dashboardPath = "/dashboard"
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RecoveryMiddleware(deps.Logger))
	r.Use(middleware.LoggingMiddleware(deps.Logger))
	r.Use(middleware.CORSMiddleware(deps.Config))
	if deps.Collector != nil {
		r.Use(middleware.MetricsMiddleware(deps.Collector))
	}

	if deps.Config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(deps.Config.RateLimitPerSecond, int(deps.Config.RateLimitPerSecond)*2)
		r.Use(middleware.RateLimitMiddleware(limiter))
	}

	r.GET("/healthz", healthHandler(deps))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	statusHandler := handler.NewStatusHandler(deps.Config, deps.Pool)
	r.GET("/api/metrics", statusHandler.Metrics)
	r.GET("/api/server-info", statusHandler.ServerInfo)

	adminHandler := handler.NewAdminHandler(deps.Pool)
	adminGroup := r.Group("/api/admin/pool")
	if deps.Config.AuthEnabled {
		adminGroup.Use(middleware.AuthMiddleware(deps.JWTService, deps.APIKeyService))
		adminGroup.Use(middleware.RequireRole(auth.RoleAdmin))
	}
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.POST("/shutdown", adminHandler.Shutdown)

	authHandler := handler.NewAuthHandler(deps.JWTService, deps.APIKeyService, deps.UserRepo)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)

		protected := authGroup.Group("")
		if deps.Config.AuthEnabled {
			protected.Use(middleware.AuthMiddleware(deps.JWTService, deps.APIKeyService))
		}
		protected.POST("/api-keys", authHandler.CreateAPIKey)
		protected.GET("/api-keys", authHandler.ListAPIKeys)
		protected.DELETE("/api-keys/:id", authHandler.RevokeAPIKey)
	}

	benchRunHandler := handler.NewBenchRunHandler(deps.BenchStore)
	benchGroup := r.Group("/api/bench-runs")
	{
		benchGroup.GET("", benchRunHandler.List)
		benchGroup.GET("/:runId", benchRunHandler.Get)

		writes := benchGroup.Group("")
		if deps.Config.AuthEnabled {
			writes.Use(middleware.AuthMiddleware(deps.JWTService, deps.APIKeyService))
			writes.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleUser))
		}
		writes.POST("", benchRunHandler.Submit)
		writes.DELETE("/:runId", benchRunHandler.Delete)
	}

	r.GET(dashboardPath+"/*filepath", resultviewer.Handler(dashboardPath))

	r.NoRoute(deps.Dispatcher.Handler())

	return r
}

func healthHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"mode":   deps.Config.SSRMode,
		})
	}
}
