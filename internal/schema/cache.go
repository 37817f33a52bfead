package schema

import (
	"sync/atomic"

	"github.com/allisson/enclaved/internal/apperr"
	"github.com/allisson/enclaved/internal/openapi"
)

// Entry bundles a parsed OpenAPI document with its precomputed PII path
// set, so the resolver runs once per refresh rather than once per request.
type Entry struct {
	Doc   *openapi.Document
	Paths PathSet
}

// Cache is a lock-free, atomically-swapped table of schema name to Entry.
// Reads never block and never take a lock: they only ever dereference an
// atomic.Pointer load and then operate on an immutable map. Writes build
// an entirely new map and swap the pointer in one atomic store; nothing
// ever mutates a map a reader might be holding.
type Cache struct {
	table atomic.Pointer[map[string]Entry]
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	c := &Cache{}
	empty := map[string]Entry{}
	c.table.Store(&empty)
	return c
}

// Get returns the cached Entry for name, or apperr.ErrBadRequest wrapping
// "unknown schema: <name>" if absent.
func (c *Cache) Get(name string) (Entry, error) {
	table := *c.table.Load()
	entry, ok := table[name]
	if !ok {
		return Entry{}, apperr.Wrap(apperr.ErrBadRequest, "unknown schema: "+name)
	}
	return entry, nil
}

// Len returns the number of schemas currently cached.
func (c *Cache) Len() int {
	return len(*c.table.Load())
}

// IsEmpty reports whether the cache currently holds no schemas.
func (c *Cache) IsEmpty() bool {
	return c.Len() == 0
}

// ReplaceAll computes a fresh PII path set for every document in docs and
// installs an entirely new table atomically. Readers already holding a
// reference to the previous table (via a completed Get) are unaffected;
// new Gets see the new table the instant this call returns.
//
// A single writer (the schema refresh loop) is assumed; concurrent
// ReplaceAll calls would both succeed but race harmlessly on which write
// wins.
func (c *Cache) ReplaceAll(docs map[string]*openapi.Document) {
	next := make(map[string]Entry, len(docs))
	for name, doc := range docs {
		next[name] = Entry{
			Doc:   doc,
			Paths: Resolve(doc),
		}
	}
	c.table.Store(&next)
}
