package pipeline

import (
	"encoding/json"

	"github.com/allisson/enclaved/internal/apperr"
	"github.com/allisson/enclaved/internal/dek"
	"github.com/allisson/enclaved/internal/schema"
)

// Encrypt implements the five-step encryption pipeline: look up the named
// schema, borrow the current DEK, and encrypt every PII path the schema
// declares within payload, returning the transformed JSON.
func Encrypt(cache *schema.Cache, store *dek.Store, schemaName string, payload []byte) ([]byte, error) {
	entry, err := cache.Get(schemaName)
	if err != nil {
		return nil, err
	}

	key, err := store.Current()
	if err != nil {
		return nil, err
	}
	defer dek.ZeroKey(key)

	var root any
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, apperr.Wrap(apperr.ErrBadRequest, "invalid json payload")
	}

	for path := range entry.Paths {
		segments := parsePath(path)

		replaced, err := encryptAtPath(root, segments, key)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrEncryptionFailure, "encrypt field at path "+path)
		}
		root = replaced
	}

	out, err := json.Marshal(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "marshal transformed payload")
	}

	return out, nil
}
