package dek

import (
	"sync"

	"github.com/allisson/enclaved/internal/apperr"
)

// Store holds the single active DEK behind a sync.RWMutex. Under normal
// load (many concurrent /encrypt reads, one rotation write roughly every
// hour) writers are never starved: a writer only ever waits for in-flight
// reads to finish, never for new reads to stop arriving.
type Store struct {
	mu      sync.RWMutex
	current *Bytes
}

// NewStore returns an empty, not-yet-ready Store.
func NewStore() *Store {
	return &Store{}
}

// IsReady reports whether a DEK has been stored at least once.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Store installs key as the current DEK, replacing and zeroing whatever was
// there before.
func (s *Store) Store(key []byte) error {
	b, err := NewBytes(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.current
	s.current = b

	if previous != nil {
		previous.Zero()
	}

	return nil
}

// Current returns a fresh copy of the active DEK's key bytes, leaving the
// store's own backing array untouched. Copying under the read lock is what
// makes the borrow safe across a concurrent rotation: Store() zeroes the
// previous Bytes' backing array after swapping it out, so a caller holding
// a reference into that array rather than a copy would silently start
// encrypting with a zeroed key mid-request. It returns apperr.ErrUnavailable
// if no DEK has been stored yet. Callers must Zero the returned slice (via
// dek.ZeroKey) once they're done with it, per the per-request redaction
// discipline.
func (s *Store) Current() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, apperr.Wrap(apperr.ErrUnavailable, "dek not initialised")
	}

	return append([]byte(nil), s.current.Key()...), nil
}
