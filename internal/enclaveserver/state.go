// Package enclaveserver wires the DEK store and schema cache to an HTTP
// surface: POST /encrypt, GET /health, and a 404 fallback, using Gin.
package enclaveserver

import (
	"github.com/allisson/enclaved/internal/dek"
	"github.com/allisson/enclaved/internal/schema"
)

// State is the shared dependency set every handler reads from. It holds no
// mutable state of its own beyond what dek.Store and schema.Cache already
// synchronize internally, so it's safe to share a single *State across all
// goroutines Gin spawns per request.
type State struct {
	DekStore         *dek.Store
	SchemaCache      *schema.Cache
	SchemaHeaderName string
}

// NewState builds a State. schemaHeaderName defaults to "X-Schema-Name" when empty.
func NewState(dekStore *dek.Store, schemaCache *schema.Cache, schemaHeaderName string) *State {
	if schemaHeaderName == "" {
		schemaHeaderName = "X-Schema-Name"
	}
	return &State{
		DekStore:         dekStore,
		SchemaCache:      schemaCache,
		SchemaHeaderName: schemaHeaderName,
	}
}
