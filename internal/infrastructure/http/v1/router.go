package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fischerwulf/map-dev/internal/infrastructure/http/v1/handler"
	"github.com/fischerwulf/map-dev/pkg/logger"
	"github.com/fischerwulf/map-dev/pkg/telemetry"
)

func NewRouter(handler *handler.Handler, l logger.Logger, telemetryEnabled bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())

	if telemetryEnabled {
		r.Use(telemetry.GinMiddleware("map-dev"))
	}

	r.Use(ginZapLogger(l))

	api := r.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/tiles/:style/:source/:z/:x/:file", handler.Tile)
	v1.GET("/cache/stats", handler.CacheStats)
	v1.DELETE("/cache/:key", handler.InvalidateCache)

	v1.GET("/styles", handler.Styles)
	v1.GET("/styles/:name", handler.Style)
	v1.GET("/sprites/:sprite", handler.Sprite)
	v1.GET("/glyphs/:style/:fontstack/:range", handler.Glyphs)

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("logger", l)

		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		latency := time.Since(start)

		l.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
