package cache

import (
	"sync"
	"time"
)

// MapCache is an in-process cache used in tests and single-instance
// development setups. Contents do not survive a restart.
type MapCache struct {
	m   *TypedSyncMap
	now func() time.Time
}

type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(k TileCacheKey) (Artifact, bool) {
	v, exists := c.m.Load(k)
	if !exists {
		return Artifact{}, false
	}
	return v.(Artifact), exists
}

func (c *TypedSyncMap) Store(k TileCacheKey, a Artifact) {
	c.m.Store(k, a)
}

func (c *TypedSyncMap) Range(f func(k TileCacheKey, a Artifact) bool) {
	c.m.Range(func(key, value any) bool {
		return f(key.(TileCacheKey), value.(Artifact))
	})
}

func (c *TypedSyncMap) Delete(k TileCacheKey) {
	c.m.Delete(k)
}

func NewMapCache() *MapCache {
	return &MapCache{
		m:   &TypedSyncMap{},
		now: time.Now,
	}
}

var _ TileCache = (*MapCache)(nil)

func (c *MapCache) Get(k TileCacheKey) (Artifact, bool, error) {
	a, exists := c.m.Load(k)
	if !exists || !a.Fresh(c.now()) {
		return Artifact{}, false, nil
	}
	return a, true, nil
}

func (c *MapCache) Set(k TileCacheKey, a Artifact) error {
	a.CachedAt = c.now()
	c.m.Store(k, a)
	return nil
}

func (c *MapCache) Invalidate(styleSourcePrefix string) (int, error) {
	count := 0
	c.m.Range(func(k TileCacheKey, _ Artifact) bool {
		if styleSourcePrefix == "" || k.StyleSource == styleSourcePrefix {
			c.m.Delete(k)
			count++
		}
		return true
	})
	return count, nil
}

func (c *MapCache) Stats() (Stats, error) {
	stats := Stats{ByKey: map[string]KeyStats{}}
	c.m.Range(func(k TileCacheKey, a Artifact) bool {
		keyStats := stats.ByKey[k.StyleSource]
		keyStats.SizeBytes += int64(len(a.Data))
		keyStats.FileCount++
		stats.ByKey[k.StyleSource] = keyStats
		stats.TotalSizeBytes += int64(len(a.Data))
		stats.TotalFiles++
		return true
	})
	return stats, nil
}
