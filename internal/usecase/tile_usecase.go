package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fischerwulf/map-dev/internal/repository/cache"
	"github.com/fischerwulf/map-dev/internal/upstream"
	"github.com/fischerwulf/map-dev/pkg/logger"
	"github.com/fischerwulf/map-dev/pkg/metrics"
)

const (
	CacheStatusHit  = "HIT"
	CacheStatusMiss = "MISS"
)

// TileResult is a resolved tile ready to serve.
type TileResult struct {
	Data        []byte
	ContentType string
	Headers     map[string]string
	CacheStatus string
}

// TileUseCase orchestrates one tile request: cache lookup, source
// resolution, upstream fetch, cache write.
//
// Concurrent misses for the same key are not coordinated: both fetch
// and both write, and the second write overwrites the first with
// equivalent bytes. Duplicate upstream work, not a correctness hazard.
type TileUseCase struct {
	cache    cache.TileCache
	resolver *SourceResolver
	fetcher  *upstream.Fetcher
	ttl      time.Duration
	logger   logger.Logger
}

func NewTileUseCase(c cache.TileCache, r *SourceResolver, f *upstream.Fetcher, ttl time.Duration, l logger.Logger) *TileUseCase {
	return &TileUseCase{
		cache:    c,
		resolver: r,
		fetcher:  f,
		ttl:      ttl,
		logger:   l,
	}
}

func (uc *TileUseCase) GetTile(ctx context.Context, styleName, sourceName string, z, x, y int, format cache.Format) (TileResult, error) {
	metrics.TileRequests.Inc()

	key := cache.TileCacheKey{
		StyleSource: styleName + "_" + sourceName,
		Z:           z,
		X:           x,
		Y:           y,
		Format:      format,
	}

	artifact, exists, err := uc.cache.Get(key)
	if err != nil {
		// Cache faults degrade to a miss; the request proceeds upstream.
		uc.logger.Warn("cache lookup failed, treating as miss", "key", key.String(), "error", err)
	}
	if exists {
		metrics.CacheHits.Inc()
		uc.logger.Debug("tile from cache", "key", key.String(), "size", len(artifact.Data))
		return TileResult{
			Data:        artifact.Data,
			ContentType: artifact.ContentType,
			Headers:     artifact.Headers,
			CacheStatus: CacheStatusHit,
		}, nil
	}

	metrics.CacheMisses.Inc()

	descriptor, err := uc.resolver.Resolve(styleName, sourceName)
	if err != nil {
		return TileResult{}, err
	}

	targetURL, err := upstream.BuildTileURL(descriptor.Template, z, x, y, descriptor.Auth)
	if err != nil {
		return TileResult{}, err
	}

	data, contentType, err := uc.fetcher.Fetch(ctx, targetURL, descriptor.Provider)
	if err != nil {
		// Nothing is cached on a failed fetch; the next request retries
		// upstream.
		return TileResult{}, err
	}

	if contentType == "" {
		contentType = format.ContentType()
	}

	err = uc.cache.Set(key, cache.Artifact{
		Data:        data,
		ContentType: contentType,
		Headers:     map[string]string{},
		TTL:         uc.ttl,
	})
	if err != nil {
		// A failed store leaves no valid artifact behind; still serve
		// the fetched bytes.
		uc.logger.Error("failed to cache tile", "key", key.String(), "error", err)
	} else {
		metrics.CacheStores.Inc()
	}

	uc.logger.Info("tile fetched and cached", "key", key.String(), "size", len(data))

	return TileResult{
		Data:        data,
		ContentType: contentType,
		CacheStatus: CacheStatusMiss,
	}, nil
}

// CacheStats aggregates size and count per style/source key.
func (uc *TileUseCase) CacheStats() (cache.Stats, error) {
	return uc.cache.Stats()
}

// InvalidateCache removes everything under one style/source key, or the
// whole cache when key is empty. Returns the number of removed entries.
func (uc *TileUseCase) InvalidateCache(key string) (int, error) {
	count, err := uc.cache.Invalidate(key)
	if err != nil {
		return 0, fmt.Errorf("cache invalidation failed: %w", err)
	}
	metrics.CacheInvalidations.Add(float64(count))
	uc.logger.Info("cache invalidated", "key", key, "count", count)
	return count, nil
}
