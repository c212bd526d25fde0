// Package middleware holds the gin middleware chain of the HTTP API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
)

// skipPaths are high-frequency probe paths that would only add log noise.
var skipPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// slowThreshold is the duration above which a request is logged at Warn.
const slowThreshold = 3 * time.Second

// RequestLogging logs one line per request with method, path, status and
// duration. 5xx responses log at Error, 4xx and slow requests at Warn.
func RequestLogging(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", elapsed),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("remote_addr", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400 || elapsed > slowThreshold:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
