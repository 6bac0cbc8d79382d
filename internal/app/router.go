package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jestelle/slash-podcast/internal/app/diagnostics"
	"github.com/jestelle/slash-podcast/internal/app/middleware"
	"github.com/jestelle/slash-podcast/internal/config"
	"github.com/jestelle/slash-podcast/internal/domain/episode"
	"github.com/jestelle/slash-podcast/internal/domain/gauth"
	"github.com/jestelle/slash-podcast/internal/infrastructure/ratelimit"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config            *config.Config
	EpisodeHandler    *episode.Handler
	AuthHandler       *gauth.Handler
	Diagnostics       *diagnostics.Handler
	Logger            *zap.Logger
	LogBuffer         *diagnostics.LogBuffer
	IPLimiter         ratelimit.Limiter
	GenerationLimiter ratelimit.Limiter
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.Cors))
	}
	if deps.Config == nil || deps.Config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.IPLimiter))
	}
	r.Use(middleware.RequestLogger(deps.Logger, deps.LogBuffer))

	// Callback path is registered with Google and lives outside /api/v1.
	deps.AuthHandler.RegisterCallback(r)

	api := r.Group("/api/v1")
	deps.Diagnostics.RegisterPublic(api)
	deps.AuthHandler.RegisterRoutes(api)

	generationMW := middleware.GenerationLimit(deps.GenerationLimiter)
	deps.EpisodeHandler.RegisterRoutes(api, generationMW)

	operatorToken := ""
	if deps.Config != nil {
		operatorToken = deps.Config.Diagnostics.OperatorToken
	}
	debug := r.Group("/api/v1")
	debug.Use(middleware.OperatorOnly(operatorToken))
	deps.Diagnostics.RegisterProtected(debug)

	if deps.Config == nil || deps.Config.Monitoring.PrometheusEnabled {
		metrics := r.Group("/api/v1")
		metrics.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}
