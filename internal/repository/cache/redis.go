package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fischerwulf/map-dev/pkg/logger"
)

const redisKeyPrefix = "tile:"

// redisArtifact is the stored representation. Data round-trips through
// base64 via encoding/json.
type redisArtifact struct {
	Data        []byte            `json:"data"`
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
	TTLSeconds  int64             `json:"ttl"`
	CachedAt    int64             `json:"cached_at"`
}

// RedisCache shares one keyspace between several proxy instances.
// Expiry is enforced twice: redis evicts the key after the TTL, and Get
// re-checks freshness against the stored write time.
type RedisCache struct {
	client *redis.Client
	logger logger.Logger
	now    func() time.Time
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(cfg RedisConfig, l logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	l.Info("redis cache initialized", "addr", cfg.Addr)

	return &RedisCache{
		client: client,
		logger: l,
		now:    time.Now,
	}, nil
}

var _ TileCache = (*RedisCache)(nil)

func (c *RedisCache) keyFor(k TileCacheKey) string {
	return fmt.Sprintf("%s%s:%d:%d:%d:%s", redisKeyPrefix, k.StyleSource, k.Z, k.X, k.Y, k.Format)
}

func (c *RedisCache) Get(k TileCacheKey) (Artifact, bool, error) {
	ctx := context.Background()

	data, err := c.client.Get(ctx, c.keyFor(k)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Artifact{}, false, nil
		}
		return Artifact{}, false, fmt.Errorf("redis get error: %w", err)
	}

	var stored redisArtifact
	if err := json.Unmarshal(data, &stored); err != nil {
		c.logger.Warn("corrupt cache record, treating as miss", "key", k.String(), "error", err)
		return Artifact{}, false, nil
	}

	a := Artifact{
		Data:        stored.Data,
		ContentType: stored.ContentType,
		Headers:     stored.Headers,
		TTL:         time.Duration(stored.TTLSeconds) * time.Second,
		CachedAt:    time.Unix(stored.CachedAt, 0),
	}
	if !a.Fresh(c.now()) {
		return Artifact{}, false, nil
	}

	return a, true, nil
}

func (c *RedisCache) Set(k TileCacheKey, a Artifact) error {
	ctx := context.Background()

	stored := redisArtifact{
		Data:        a.Data,
		ContentType: a.ContentType,
		Headers:     a.Headers,
		TTLSeconds:  int64(a.TTL / time.Second),
		CachedAt:    c.now().Unix(),
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode cache record for %s: %w", k.String(), err)
	}

	if err := c.client.Set(ctx, c.keyFor(k), data, a.TTL).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (c *RedisCache) Invalidate(styleSourcePrefix string) (int, error) {
	ctx := context.Background()

	match := redisKeyPrefix + "*"
	if styleSourcePrefix != "" {
		match = redisKeyPrefix + styleSourcePrefix + ":*"
	}

	count := 0
	iter := c.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return count, fmt.Errorf("redis del error: %w", err)
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("redis scan error: %w", err)
	}

	return count, nil
}

func (c *RedisCache) Stats() (Stats, error) {
	ctx := context.Background()

	stats := Stats{ByKey: map[string]KeyStats{}}
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		// tile:{styleSource}:{z}:{x}:{y}:{format}
		rest := strings.TrimPrefix(key, redisKeyPrefix)
		styleSource, _, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}

		size, err := c.client.StrLen(ctx, key).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("redis strlen error: %w", err)
		}

		keyStats := stats.ByKey[styleSource]
		keyStats.SizeBytes += size
		keyStats.FileCount++
		stats.ByKey[styleSource] = keyStats
		stats.TotalSizeBytes += size
		stats.TotalFiles++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("redis scan error: %w", err)
	}

	return stats, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
