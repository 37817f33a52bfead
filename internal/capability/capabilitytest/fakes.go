// Package capabilitytest provides in-memory fakes for the capability
// interfaces, used by the dek and schema packages' own tests so they never
// need network access to a real secret store, KMS, or object store.
package capabilitytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SecretFetcher is a fake capability.SecretFetcher returning a fixed value,
// or an error when Err is set. Call SetValue (or SetErr) to simulate
// rotation.
type SecretFetcher struct {
	mu    sync.Mutex
	Value []byte
	Err   error
}

func NewSecretFetcher(value []byte) *SecretFetcher {
	return &SecretFetcher{Value: value}
}

func (f *SecretFetcher) FetchSecret(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Value, nil
}

func (f *SecretFetcher) SetValue(value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Value = value
}

func (f *SecretFetcher) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// KeyUnwrapper is a fake capability.KeyUnwrapper that XORs the wrapped
// bytes against a fixed pad, deterministic and reversible so tests can
// assert the exact unwrapped value without real KMS round-tripping.
type KeyUnwrapper struct {
	Err error
}

func NewKeyUnwrapper() *KeyUnwrapper {
	return &KeyUnwrapper{}
}

func (u *KeyUnwrapper) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	if u.Err != nil {
		return nil, u.Err
	}
	out := make([]byte, len(wrapped))
	for i, b := range wrapped {
		out[i] = b ^ 0xAA
	}
	return out, nil
}

// Wrap is the inverse of Unwrap, used by tests to build fixtures.
func Wrap(plaintext []byte) []byte {
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[i] = b ^ 0xAA
	}
	return out
}

// ObjectStore is a fake capability.ObjectStore backed by an in-memory map.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string][]byte{}}
}

func (o *ObjectStore) Put(key string, data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = data
}

func (o *ObjectStore) Delete(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, key)
}

func (o *ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var keys []string
	for k := range o.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (o *ObjectStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, ok := o.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return data, nil
}
