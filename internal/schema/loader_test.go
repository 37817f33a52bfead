package schema_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/enclaved/internal/capability/capabilitytest"
	"github.com/allisson/enclaved/internal/schema"
	"github.com/allisson/enclaved/internal/telemetry"
)

const orderYAML = `
openapi: 3.1.0
components:
  schemas:
    Order:
      type: object
      properties:
        cardNumber:
          type: string
          x-pii: true
`

const invoiceJSON = `{
  "openapi": "3.1.0",
  "components": {
    "schemas": {
      "Invoice": {
        "type": "object",
        "properties": {
          "taxId": {"type": "string", "x-pii": true}
        }
      }
    }
  }
}`

func TestLoadAll_ParsesYAMLAndJSON(t *testing.T) {
	store := capabilitytest.NewObjectStore()
	store.Put("schemas/order.yaml", []byte(orderYAML))
	store.Put("schemas/invoice.json", []byte(invoiceJSON))

	cache := schema.NewCache()
	logger := telemetry.NewLogger("error")

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))

	assert.Equal(t, 2, cache.Len())

	order, err := cache.Get("order")
	require.NoError(t, err)
	assert.Contains(t, order.Paths, "cardNumber")

	invoice, err := cache.Get("invoice")
	require.NoError(t, err)
	assert.Contains(t, invoice.Paths, "taxId")
}

func TestLoadAll_EmptyBucketIsNotAnError(t *testing.T) {
	store := capabilitytest.NewObjectStore()
	cache := schema.NewCache()
	logger := telemetry.NewLogger("error")

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))
	assert.True(t, cache.IsEmpty())
}

func TestLoadAll_AbandonsRefreshOnUnparseableDocument(t *testing.T) {
	store := capabilitytest.NewObjectStore()
	store.Put("schemas/order.yaml", []byte(orderYAML))

	cache := schema.NewCache()
	logger := telemetry.NewLogger("error")

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))
	require.Equal(t, 1, cache.Len())

	store.Put("schemas/broken.yaml", []byte("not: [valid: yaml"))

	err := schema.LoadAll(context.Background(), store, "schemas/", cache, logger)
	assert.Error(t, err)

	// the previous good table must survive a failed refresh untouched.
	assert.Equal(t, 1, cache.Len())
	_, err = cache.Get("order")
	assert.NoError(t, err)
}

func TestLoadAll_ReplacesEntireTableOnEachCall(t *testing.T) {
	store := capabilitytest.NewObjectStore()
	store.Put("schemas/order.yaml", []byte(orderYAML))

	cache := schema.NewCache()
	logger := telemetry.NewLogger("error")

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))
	assert.Equal(t, 1, cache.Len())

	store.Delete("schemas/order.yaml")
	store.Put("schemas/invoice.json", []byte(invoiceJSON))

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))

	assert.Equal(t, 1, cache.Len())
	_, err := cache.Get("order")
	assert.Error(t, err)
	_, err = cache.Get("invoice")
	assert.NoError(t, err)
}

func TestRunRefreshLoop_PicksUpNewSchemas(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := capabilitytest.NewObjectStore()
	store.Put("schemas/order.yaml", []byte(orderYAML))

	cache := schema.NewCache()
	logger := telemetry.NewLogger("error")

	require.NoError(t, schema.LoadAll(context.Background(), store, "schemas/", cache, logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		_ = schema.RunRefreshLoop(ctx, store, "schemas/", cache, 10*time.Millisecond, logger, nil)
		close(done)
	}()

	store.Put("schemas/invoice.json", []byte(invoiceJSON))

	require.Eventually(t, func() bool {
		return cache.Len() == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
