package dek

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/enclaved/internal/capability"
	"github.com/allisson/enclaved/internal/telemetry"
)

// FetchAndStore fetches the wrapped DEK from fetcher, unwraps it through
// unwrapper, and installs the result in store. A single attempt; the
// caller (the rotation loop, or the startup path) decides how to react to
// failure.
func FetchAndStore(
	ctx context.Context,
	fetcher capability.SecretFetcher,
	unwrapper capability.KeyUnwrapper,
	store *Store,
) error {
	wrapped, err := fetcher.FetchSecret(ctx)
	if err != nil {
		return err
	}

	plaintext, err := unwrapper.Unwrap(ctx, wrapped)
	if err != nil {
		return err
	}

	return store.Store(plaintext)
}

// RunRotationLoop periodically re-fetches and unwraps the DEK every
// interval, until ctx is canceled. The caller is expected to have already
// called FetchAndStore once synchronously at startup; time.Ticker waits a
// full interval before its first send, so that initial fetch is never
// immediately repeated.
//
// A failed rotation logs a warning and retains whatever DEK is already
// installed; it never clears the store on failure; the service keeps
// serving traffic with the previous key until a rotation succeeds.
// metrics may be nil, in which case rotation outcomes are not recorded.
func RunRotationLoop(
	ctx context.Context,
	fetcher capability.SecretFetcher,
	unwrapper capability.KeyUnwrapper,
	store *Store,
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
			if err := FetchAndStore(ctx, fetcher, unwrapper, store); err != nil {
				logger.Warn("dek rotation failed, retaining previous key", slog.Any("error", err))
				metrics.RecordOperation(ctx, "dek_rotation", "error")
				metrics.RecordDuration(ctx, "dek_rotation", time.Since(start), "error")
				continue
			}

			logger.Info("dek rotated")
			metrics.RecordOperation(ctx, "dek_rotation", "success")
			metrics.RecordDuration(ctx, "dek_rotation", time.Since(start), "success")
		}
	}
}
