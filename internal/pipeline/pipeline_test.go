package pipeline_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/enclaved/internal/apperr"
	"github.com/allisson/enclaved/internal/dek"
	"github.com/allisson/enclaved/internal/fieldcrypt"
	"github.com/allisson/enclaved/internal/openapi"
	"github.com/allisson/enclaved/internal/pipeline"
	"github.com/allisson/enclaved/internal/schema"
)

func testKey() []byte {
	k := make([]byte, fieldcrypt.KeyLen)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func storeWithKey(t *testing.T) *dek.Store {
	t.Helper()
	s := dek.NewStore()
	require.NoError(t, s.Store(testKey()))
	return s
}

func cacheWithSchema(t *testing.T, name string, doc *openapi.Document) *schema.Cache {
	t.Helper()
	c := schema.NewCache()
	c.ReplaceAll(map[string]*openapi.Document{name: doc})
	return c
}

func TestEncrypt_SimpleField(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Customer": {
					Properties: map[string]*openapi.Schema{
						"email": {XPii: true},
					},
				},
			},
		},
	}

	cache := cacheWithSchema(t, "Customer", doc)
	store := storeWithKey(t)

	payload := []byte(`{"email": "jane@example.com", "age": 30}`)

	out, err := pipeline.Encrypt(cache, store, "Customer", payload)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(out, &result))

	assert.Contains(t, result["email"], "v1.")
	assert.Equal(t, float64(30), result["age"])
}

func TestEncrypt_NestedAndArrayFields(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Account": {
					Properties: map[string]*openapi.Schema{
						"address": {
							Properties: map[string]*openapi.Schema{
								"line1": {XPii: true},
							},
						},
						"cards": {
							Items: &openapi.Schema{XPii: true},
						},
					},
				},
			},
		},
	}

	cache := cacheWithSchema(t, "Account", doc)
	store := storeWithKey(t)

	payload := []byte(`{
		"address": {"line1": "221B Baker Street", "city": "London"},
		"cards": ["4111-1111-1111-1111", "5500-0000-0000-0004"]
	}`)

	out, err := pipeline.Encrypt(cache, store, "Account", payload)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(out, &result))

	address := result["address"].(map[string]any)
	assert.Contains(t, address["line1"], "v1.")
	assert.Equal(t, "London", address["city"])

	cards := result["cards"].([]any)
	for _, c := range cards {
		assert.Contains(t, c, "v1.")
	}
}

func TestEncrypt_MissingFieldInPayloadIsIgnored(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Customer": {
					Properties: map[string]*openapi.Schema{
						"ssn": {XPii: true},
					},
				},
			},
		},
	}

	cache := cacheWithSchema(t, "Customer", doc)
	store := storeWithKey(t)

	payload := []byte(`{"name": "Jane"}`)

	out, err := pipeline.Encrypt(cache, store, "Customer", payload)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "Jane", result["name"])
}

func TestEncrypt_UnknownSchemaIsBadRequest(t *testing.T) {
	cache := schema.NewCache()
	store := storeWithKey(t)

	_, err := pipeline.Encrypt(cache, store, "Ghost", []byte(`{}`))
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestEncrypt_DekNotReadyIsUnavailable(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Customer": {Properties: map[string]*openapi.Schema{"email": {XPii: true}}},
			},
		},
	}
	cache := cacheWithSchema(t, "Customer", doc)
	store := dek.NewStore()

	_, err := pipeline.Encrypt(cache, store, "Customer", []byte(`{"email": "a@b.com"}`))
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestEncrypt_ZeroPiiPathsLeavesPayloadUntouched(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Empty": {Properties: map[string]*openapi.Schema{"note": {}}},
			},
		},
	}
	cache := cacheWithSchema(t, "Empty", doc)
	store := storeWithKey(t)

	payload := []byte(`{"note": "nothing sensitive here"}`)
	out, err := pipeline.Encrypt(cache, store, "Empty", payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(out))
}

func TestEncrypt_NonStringLeafUntouched(t *testing.T) {
	doc := &openapi.Document{
		Components: &openapi.Components{
			Schemas: map[string]*openapi.Schema{
				"Customer": {Properties: map[string]*openapi.Schema{"score": {XPii: true}}},
			},
		},
	}
	cache := cacheWithSchema(t, "Customer", doc)
	store := storeWithKey(t)

	payload := []byte(`{"score": 42}`)
	out, err := pipeline.Encrypt(cache, store, "Customer", payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 42}`, string(out))
}
