package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"extractor-backend/internal/shared/config"
	"extractor-backend/internal/shared/metrics"
	"extractor-backend/internal/shared/server/middleware"
)

// Registrar is implemented by feature handlers that attach their routes.
type Registrar interface {
	Register(r gin.IRouter)
}

// RouterDeps carries the wired feature handlers into the router.
type RouterDeps struct {
	Handlers []Registrar
}

// NewRouter assembles the gin engine: middleware chain, health and metrics
// endpoints, then the feature routes.
func NewRouter(cfg config.Config, deps RouterDeps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			// Extraction runs render workbooks; keep uploads tighter than reads.
			"extract": {Rate: 0.5, Burst: 3},
			"read":    {Rate: 10, Burst: 30},
		},
		DefaultGroup: "read",
		GroupFor: func(c *gin.Context) string {
			if strings.HasPrefix(c.FullPath(), "/extract/") {
				return "extract"
			}
			return "read"
		},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}

// Addr returns the listen address for the configured port.
func Addr(cfg config.Config) string {
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
