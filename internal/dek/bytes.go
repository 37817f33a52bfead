// Package dek manages the enclave's single active data encryption key: its
// redacted in-memory representation, the reader-preferring store that
// serves it to every /encrypt request, and the background rotation loop
// that periodically refreshes it from the wrapped secret.
package dek

import (
	"fmt"
	"runtime"

	"github.com/allisson/enclaved/internal/apperr"
	"github.com/allisson/enclaved/internal/fieldcrypt"
)

// Bytes holds a plaintext DEK on the heap. Callers always handle *Bytes,
// never a copy of the struct, so a single Zero() (called by Store.Store
// when it replaces the key) reliably clears the one backing array.
// Borrowers never see a *Bytes: Store.Current hands out an independent
// []byte copy, which they clear with ZeroKey.
// A finalizer is registered as a defense-in-depth backstop for the case
// where a *Bytes is dropped without Zero having been called.
type Bytes struct {
	raw []byte
}

// NewBytes validates key is exactly fieldcrypt.KeyLen bytes and copies it
// into a freshly heap-allocated Bytes.
func NewBytes(key []byte) (*Bytes, error) {
	if len(key) != fieldcrypt.KeyLen {
		return nil, apperr.Wrap(apperr.ErrInternal, fmt.Sprintf("invalid dek length: %d", len(key)))
	}

	b := &Bytes{raw: append([]byte(nil), key...)}
	runtime.SetFinalizer(b, func(b *Bytes) { b.Zero() })
	return b, nil
}

// Key returns the raw key bytes for use by the cipher. Callers must not
// retain the returned slice past the borrow's lifetime.
func (b *Bytes) Key() []byte {
	return b.raw
}

// Zero overwrites the key material with zeros. Safe to call more than once.
func (b *Bytes) Zero() {
	for i := range b.raw {
		b.raw[i] = 0
	}
}

// ZeroKey overwrites a key slice borrowed from Store.Current with zeros. A
// caller should defer this immediately after borrowing, so a per-request
// copy never outlives the request that copied it.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}

// String redacts the key material so a Bytes can never render into logs.
func (b *Bytes) String() string {
	return "Bytes([REDACTED])"
}

// GoString redacts the key material for %#v formatting too.
func (b *Bytes) GoString() string {
	return b.String()
}
