// Package capability defines the narrow external-world interfaces the
// enclave depends on: fetching the wrapped DEK, unwrapping it through an
// attested KMS, and listing/reading OpenAPI schema documents from an object
// store. Each is backed by a sibling package in the gocloud.dev portfolio so
// swapping providers (AWS, GCP, Azure, Vault, local) is a URL change, not a
// code change.
package capability

import "context"

// SecretFetcher retrieves an opaque secret blob by name. It backs the fetch
// of the wrapped (still-encrypted) DEK from a secret store.
type SecretFetcher interface {
	FetchSecret(ctx context.Context) ([]byte, error)
}

// KeyUnwrapper decrypts a wrapped key through an external, attested KMS.
type KeyUnwrapper interface {
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)
}

// ObjectLister lists object keys under a prefix in a bucket.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectFetcher reads a single object's bytes.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// ObjectStore combines listing and fetching for the schema bucket.
type ObjectStore interface {
	ObjectLister
	ObjectFetcher
}
