// Package http wires the gin engine: routes, middleware, probes and the
// prometheus scrape endpoint.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appdedup "github.com/phytokg/termlink/internal/application/dedup"
	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/metrics"
	"github.com/phytokg/termlink/internal/interfaces/http/handlers"
	"github.com/phytokg/termlink/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Resolution appres.Service
	Dedup      appdedup.Service
	Index      *ontology.Index
	Logger     logging.Logger
	Metrics    *metrics.Metrics
	Version    string
	Checkers   []handlers.HealthChecker
	Mode       string // gin mode: "debug" | "release" | "test"
}

// NewRouter builds the gin engine with the full middleware chain and all
// API routes mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.RequestMetrics(deps.Metrics))
	}

	handlers.NewHealthHandler(deps.Version, deps.Checkers...).RegisterRoutes(r)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	if deps.Resolution != nil {
		handlers.NewResolutionHandler(deps.Resolution).RegisterRoutes(v1)
	}
	if deps.Dedup != nil {
		handlers.NewFactHandler(deps.Dedup).RegisterRoutes(v1)
	}
	if deps.Index != nil {
		handlers.NewTermHandler(deps.Index).RegisterRoutes(v1)
	}

	return r
}
