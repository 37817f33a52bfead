package enclaveserver

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware builds a CORS middleware from a comma-separated origin
// list, or returns nil if disabled or unconfigured. CORS is off by default:
// this is a server-to-server enclave API with no browser-facing caller.
// Callers enable it only if a browser-based caller needs direct /encrypt
// access.
func NewCORSMiddleware(enabled bool, allowOriginsCSV string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsCSV)
	if len(origins) == 0 {
		logger.Warn("cors enabled but no origins configured, cors will not be applied")
		return nil
	}

	logger.Info("cors enabled", slog.Int("origin_count", len(origins)))

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Content-Type", "X-Schema-Name"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func parseOrigins(originsCSV string) []string {
	if originsCSV == "" {
		return nil
	}

	parts := strings.Split(originsCSV, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
