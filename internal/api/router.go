// Package api exposes the sky engine over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/litescript/ls-daynight/internal/config"
	"github.com/litescript/ls-daynight/internal/logging"
	"github.com/litescript/ls-daynight/internal/metrics"
)

// NewRouter wires the handlers and middleware. stream may be nil to leave
// the websocket route out.
func NewRouter(handler *Handler, stream http.Handler, logger *logging.Logger, trustProxy bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = logging.Discard()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		metrics.Middleware(),
		requestLogger(logger, trustProxy),
		errorHandlingMiddleware(logger),
	)
	router.NoRoute(notFound)

	router.GET("/healthz", handler.Healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/solar", handler.Solar)
		api.GET("/orbit", handler.Orbit)
		api.GET("/moon/phase", handler.MoonPhase)
		api.GET("/moon/riseset", handler.MoonRiseSet)
		api.GET("/moon/path", handler.MoonPath)
		api.GET("/sky", handler.Sky)
		api.GET("/frame", handler.Frame)
		api.GET("/passes", handler.Passes)
		api.GET("/locations", handler.Locations)
		if stream != nil {
			api.GET("/stream", gin.WrapH(stream))
		}
	}

	return router
}

// NewServer wraps the router in an http.Server configured from cfg.
func NewServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
