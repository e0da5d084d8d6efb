// Package api assembles the HTTP router: middleware, health and metrics endpoints,
// and the /api/v1 routes with their role requirements.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dexhub/hr-portal/internal/api/dashboard"
	"github.com/dexhub/hr-portal/internal/api/leaves"
	"github.com/dexhub/hr-portal/internal/api/overtime"
	"github.com/dexhub/hr-portal/internal/api/users"
	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// Handlers groups the route handlers.
type Handlers struct {
	Users     *users.Handler
	Leaves    *leaves.Handler
	Overtime  *overtime.Handler
	Dashboard *dashboard.Handler
}

// DatabasePinger reports database reachability.
type DatabasePinger interface {
	Health() error
}

// CachePinger reports cache reachability.
type CachePinger interface {
	Health(ctx context.Context) error
}

// Dependencies is everything NewRouter wires together.
type Dependencies struct {
	Config   *config.Config
	Handlers Handlers
	Auth     *auth.Middleware
	DB       DatabasePinger
	// Cache is optional.
	Cache CachePinger
	Log   *logger.Logger
}

// NewRouter builds the gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(deps.Log))
	if cfg.Metrics.Enabled {
		router.Use(Metrics())
	}
	if len(cfg.CORS.Origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.Origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", healthHandler(deps.DB, deps.Cache))
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	h := deps.Handlers
	approver := auth.RequireRole(models.RoleManager, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.POST("/login/access-token", h.Users.Login)

	authed := v1.Group("", deps.Auth.Authenticate())
	{
		authed.GET("/users/me", h.Users.Me)
		authed.GET("/users", approver, h.Users.List)
		authed.GET("/users/team", approver, h.Users.Team)
		authed.POST("/users", approver, h.Users.Create)
		authed.PUT("/users/:id", approver, h.Users.Update)
		authed.DELETE("/users/:id", auth.RequireRole(models.RoleAdmin), h.Users.Delete)

		authed.GET("/leaves/types", h.Leaves.ListTypes)
		authed.POST("/leaves/types", approver, h.Leaves.CreateType)
		authed.PUT("/leaves/types/:id", approver, h.Leaves.UpdateType)
		authed.DELETE("/leaves/types/:id", approver, h.Leaves.DeleteType)
		authed.GET("/leaves/holidays", h.Leaves.ListHolidays)
		authed.POST("/leaves/holidays", approver, h.Leaves.CreateHoliday)
		authed.DELETE("/leaves/holidays/:id", approver, h.Leaves.DeleteHoliday)

		authed.POST("/leaves", h.Leaves.Submit)
		authed.GET("/leaves", h.Leaves.List)
		authed.GET("/leaves/approvals", approver, h.Leaves.Approvals)
		authed.PUT("/leaves/:id", approver, h.Leaves.Decide)

		authed.POST("/ot", h.Overtime.Submit)
		authed.GET("/ot", h.Overtime.List)
		authed.GET("/ot/approvals", approver, h.Overtime.Approvals)
		authed.PUT("/ot/:id", approver, h.Overtime.Decide)

		authed.GET("/dashboard/stats", approver, h.Dashboard.GetStats)
	}

	return router
}

func healthHandler(db DatabasePinger, cache CachePinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy", "database": "up", "timestamp": time.Now().UTC()}

		if err := db.Health(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "down"
		}
		if cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			body["cache"] = "up"
			if err := cache.Health(ctx); err != nil {
				body["cache"] = "down"
				if status == http.StatusOK {
					body["status"] = "degraded"
				}
			}
		}

		c.JSON(status, body)
	}
}
