package enclaveserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/enclaved/internal/apperr"
)

// errorResponse is the body shape for every non-2xx response: {"code": ..., "message": ...}.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err to one of the four request-path error kinds and
// writes the corresponding status and machine tag. Anything that isn't a
// recognized sentinel is treated as Internal, and its message is never
// forwarded to the client.
func writeError(c *gin.Context, err error, logger *slog.Logger) {
	status, code, message := http.StatusInternalServerError, "internal_error", "an internal error occurred"

	switch {
	case apperr.Is(err, apperr.ErrBadRequest):
		status, code, message = http.StatusBadRequest, "bad_request", err.Error()
	case apperr.Is(err, apperr.ErrUnavailable):
		status, code, message = http.StatusServiceUnavailable, "service_unavailable", "DEK not yet initialized"
	case apperr.Is(err, apperr.ErrEncryptionFailure):
		status, code, message = http.StatusInternalServerError, "internal_error", "encryption failed"
	}

	if logger != nil {
		logger.Warn("request failed",
			slog.Int("status", status),
			slog.String("code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(status, errorResponse{Code: code, Message: message})
}
