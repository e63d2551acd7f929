package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/contractor-payments/internal/http/middleware"
	"github.com/nurpe/contractor-payments/internal/metrics"
)

// Middlewares are the per-group gates. Nil entries are skipped.
type Middlewares struct {
	Profile     gin.HandlerFunc
	Admin       gin.HandlerFunc
	Idempotency gin.HandlerFunc
	RateLimit   gin.HandlerFunc
}

func NewRouter(handler *Handler, mw Middlewares, environment string, corsOrigins []string, log zerolog.Logger) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(corsOrigins)))
	router.Use(chain(mw.RateLimit)...)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	handler.Register(router, mw)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"profile_id",
			middleware.IdempotencyKeyHeader,
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			middleware.RequestIDHeader,
			middleware.ReplayedHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	result := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			result = append(result, h)
		}
	}
	return result
}
