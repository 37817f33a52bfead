package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/allisson/enclaved/internal/capability"
	"github.com/allisson/enclaved/internal/openapi"
	"github.com/allisson/enclaved/internal/telemetry"
)

var schemaFileSuffixes = []string{".yaml", ".yml", ".json"}

// LoadAll lists every object under prefix in store, parses each as an
// OpenAPI document (YAML first, JSON as a fallback - see parseDocument),
// and replaces the entire cache in one atomic swap. An empty bucket is not
// an error - it logs a warning and leaves the cache empty, since a freshly
// provisioned enclave may not have any schemas uploaded yet.
//
// Any single object's fetch or parse failure abandons the whole refresh:
// the cache is left untouched and the failure is returned to the caller.
// A partial table would silently drop a schema - and its PII protection -
// from the live cache over a transient or corrupt object, so the previous
// good table is kept instead of installing a subset.
func LoadAll(ctx context.Context, store capability.ObjectStore, prefix string, cache *Cache, logger *slog.Logger) error {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		logger.Warn("no schema objects found under prefix", slog.String("prefix", prefix))
		cache.ReplaceAll(map[string]*openapi.Document{})
		return nil
	}

	docs := make(map[string]*openapi.Document, len(keys))

	for _, key := range keys {
		name, ok := schemaNameFromKey(key, prefix)
		if !ok {
			continue
		}

		data, err := store.Fetch(ctx, key)
		if err != nil {
			return fmt.Errorf("fetch schema object %s: %w", key, err)
		}

		doc, err := parseDocument(data)
		if err != nil {
			return fmt.Errorf("parse schema document %s: %w", key, err)
		}

		docs[name] = doc
	}

	cache.ReplaceAll(docs)
	return nil
}

// schemaNameFromKey strips prefix and one recognized extension from key,
// returning ok=false for objects that don't look like a schema document
// (e.g. a stray non-matching file under the same prefix).
func schemaNameFromKey(key, prefix string) (string, bool) {
	name := strings.TrimPrefix(key, prefix)
	for _, suffix := range schemaFileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}

// parseDocument tries YAML first and falls back to JSON only when the
// bytes are malformed on both counts. goccy/go-yaml accepts valid JSON (a
// strict subset of YAML), so in practice the JSON fallback only fires on
// documents that are neither valid YAML nor valid JSON.
func parseDocument(data []byte) (*openapi.Document, error) {
	var doc openapi.Document
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return &doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RunRefreshLoop periodically reloads every schema from store every
// interval, until ctx is canceled. The caller is expected to call LoadAll
// once synchronously before starting this loop; time.Ticker waits a full
// interval before its first send, so that startup load is never
// immediately repeated.
// metrics may be nil, in which case refresh outcomes are not recorded.
func RunRefreshLoop(
	ctx context.Context,
	store capability.ObjectStore,
	prefix string,
	cache *Cache,
	interval time.Duration,
	logger *slog.Logger,
	metrics telemetry.BusinessMetrics,
) error {
	if metrics == nil {
		metrics = telemetry.NewNoOpBusinessMetrics()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := LoadAll(ctx, store, prefix, cache, logger); err != nil {
				logger.Warn("schema refresh failed, retaining previous table", slog.Any("error", err))
				metrics.RecordOperation(ctx, "schema_refresh", "error")
				metrics.RecordDuration(ctx, "schema_refresh", time.Since(start), "error")
				continue
			}
			logger.Info("schemas refreshed", slog.Int("count", cache.Len()))
			metrics.RecordOperation(ctx, "schema_refresh", "success")
			metrics.RecordDuration(ctx, "schema_refresh", time.Since(start), "success")
		}
	}
}
