package enclaveserver

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds how long a single request may run before the
// transport layer gives up on it, per the per-request deadline policy.
const RequestTimeout = 30 * time.Second

// LoggerMiddleware logs every request with its method, path, status code,
// duration, and request ID.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
			slog.String("request_id", c.Writer.Header().Get("X-Request-Id")),
		)
	}
}
