package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/services/health"
	"pathfinder-backend/internal/shared/config"
	"pathfinder-backend/internal/shared/metrics"
	"pathfinder-backend/internal/shared/server/middleware"
	"pathfinder-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api/v1.
type RouterDeps struct {
	Config   config.Config
	Health   *health.Service
	Colleges RouteRegistrar
	Advisor  RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, deps.Config.LLMProvider)
	}
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	if deps.Colleges != nil {
		deps.Colleges.RegisterRoutes(api)
	}
	if deps.Advisor != nil {
		deps.Advisor.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

// GenerateRateLimit returns the per-client limiter for the advisor generation
// route, or nil when disabled.
func GenerateRateLimit(perMinute float64) gin.HandlerFunc {
	rule := middleware.PerMinute(perMinute)
	if rule.Burst == 0 {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: "GENERATE",
		KeyFor:       middleware.ClientIPKey,
		Rules:        map[string]middleware.RateLimitRule{"GENERATE": rule},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
