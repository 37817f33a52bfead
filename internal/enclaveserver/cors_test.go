package enclaveserver_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/enclaved/internal/enclaveserver"
	"github.com/allisson/enclaved/internal/telemetry"
)

func TestCORS_DisabledByDefault(t *testing.T) {
	logger := telemetry.NewLogger("error")
	require.Nil(t, enclaveserver.NewCORSMiddleware(false, "https://example.com", logger))
}

func TestCORS_EnabledWithNoOriginsIsNoOp(t *testing.T) {
	logger := telemetry.NewLogger("error")
	require.Nil(t, enclaveserver.NewCORSMiddleware(true, "", logger))
}

func TestCORS_EnabledAppliesOriginHeader(t *testing.T) {
	state := newTestState(t, true, true)
	logger := telemetry.NewLogger("error")
	router := enclaveserver.NewRouter(state, logger, nil, nil, enclaveserver.RouterConfig{
		CORSEnabled:      true,
		CORSAllowOrigins: "https://app.example.com",
	})

	rec := doRequest(router, http.MethodOptions, "/encrypt", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	}, nil)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
