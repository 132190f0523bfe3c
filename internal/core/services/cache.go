package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

type fetchFunc[T any] func(ctx context.Context) (T, error)

// addTTLJitter spreads expirations by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	return ttl + time.Duration(rand.IntN(30)-15)*time.Second
}

// findAndCache is a read-through cache lookup. Concurrent misses for the
// same key share one fetch. Cache failures degrade to a direct fetch.
func findAndCache[T any](
	ctx context.Context,
	c ports.Cache,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *slog.Logger,
	fn fetchFunc[T],
) (T, error) {
	var zero T
	if c == nil {
		return fn(ctx)
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", "key", key)
		return cached, nil
	case errors.Is(err, apperrors.ErrCacheMiss):
		logger.Debug("cache miss", "key", key)
	default:
		logger.Warn("cache get error (treating as miss)", "key", key, "error", err)
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, value, addTTLJitter(ttl)); err != nil {
			logger.Warn("failed to set cache on miss", "key", key, "error", err)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", "key", key)
	}
	return value, nil
}
