package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/litescript/ls-daynight/internal/httputil"
	"github.com/litescript/ls-daynight/internal/logging"
)

func errorHandlingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// probePath reports health and metrics scrapes, which log at debug.
func probePath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

func requestLogger(logger *logging.Logger, trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_ip", httputil.ClientIP(c.Request, trustProxy),
		}
		if probePath(c.Request.URL.Path) {
			logger.Debug("http request", args...)
			return
		}
		logger.Info("http request", args...)
	}
}

func notFound(c *gin.Context) {
	abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no such route", nil))
}
