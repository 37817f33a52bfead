package enclaveserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/enclaved/internal/apperr"
	"github.com/allisson/enclaved/internal/pipeline"
	"github.com/allisson/enclaved/internal/telemetry"
)

// encryptRequest is the POST /encrypt request body: an arbitrary JSON value
// under "payload". json.RawMessage defers parsing to the pipeline, which
// needs the raw bytes anyway.
type encryptRequest struct {
	Payload json.RawMessage `json:"payload"`
}

type encryptResponse struct {
	Payload json.RawMessage `json:"payload"`
}

// EncryptHandler handles POST /encrypt: it resolves the schema named by the
// configured header, borrows the current DEK, and returns the payload with
// every PII path replaced by its encrypted token form. metrics records the
// "encrypt" business operation's outcome and latency; it may be nil in tests
// that don't care about metrics.
func EncryptHandler(state *State, logger *slog.Logger, metrics telemetry.BusinessMetrics) gin.HandlerFunc {
	if metrics == nil {
		metrics = telemetry.NewNoOpBusinessMetrics()
	}

	return func(c *gin.Context) {
		start := time.Now()

		headerValue := c.GetHeader(state.SchemaHeaderName)
		if headerValue == "" {
			recordEncrypt(c, metrics, start, "error")
			writeError(c, apperr.Wrap(apperr.ErrBadRequest,
				fmt.Sprintf("missing %s header", state.SchemaHeaderName)), logger)
			return
		}
		if !isASCII(headerValue) {
			recordEncrypt(c, metrics, start, "error")
			writeError(c, apperr.Wrap(apperr.ErrBadRequest,
				fmt.Sprintf("%s header contains non-ASCII characters", state.SchemaHeaderName)), logger)
			return
		}

		var req encryptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			recordEncrypt(c, metrics, start, "error")
			writeError(c, apperr.Wrap(apperr.ErrBadRequest, "malformed request body"), logger)
			return
		}

		transformed, err := pipeline.Encrypt(state.SchemaCache, state.DekStore, headerValue, req.Payload)
		if err != nil {
			recordEncrypt(c, metrics, start, "error")
			writeError(c, err, logger)
			return
		}

		recordEncrypt(c, metrics, start, "success")
		c.JSON(http.StatusOK, encryptResponse{Payload: transformed})
	}
}

func recordEncrypt(c *gin.Context, metrics telemetry.BusinessMetrics, start time.Time, status string) {
	metrics.RecordOperation(c.Request.Context(), "encrypt", status)
	metrics.RecordDuration(c.Request.Context(), "encrypt", time.Since(start), status)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

type healthResponse struct {
	Status        string `json:"status"`
	DekReady      bool   `json:"dek_ready"`
	SchemasLoaded int    `json:"schemas_loaded"`
}

// HealthHandler handles GET /health: 200 with status "ok" once the DEK is
// loaded and at least one schema is cached, 503 with status "degraded"
// otherwise. Concurrent probes collapse onto a single state read via
// singleflight.
func HealthHandler(state *State, group *singleflight.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _, _ := group.Do("health", func() (interface{}, error) {
			dekReady := state.DekStore.IsReady()
			schemasLoaded := state.SchemaCache.Len()

			statusText := "ok"
			if !dekReady || schemasLoaded == 0 {
				statusText = "degraded"
			}

			return healthResponse{
				Status:        statusText,
				DekReady:      dekReady,
				SchemasLoaded: schemasLoaded,
			}, nil
		})

		body := v.(healthResponse)
		status := http.StatusOK
		if body.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

// NotFoundHandler handles any request to an unregistered route.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorResponse{
		Code:    "not_found",
		Message: "the requested resource does not exist",
	})
}
