package cache

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/fischerwulf/map-dev/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteCache keeps the whole keyspace in a single database file.
// Useful when the tile count would otherwise produce millions of small
// files on disk.
type SQLiteCache struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewSQLiteCache(path string, l logger.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	c := &SQLiteCache{
		db:     db,
		logger: l,
		now:    time.Now,
	}

	err = c.runMigrations()
	if err != nil {
		return nil, err
	}

	l.Info("sqlite cache initialized", "path", path)

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(c.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ TileCache = (*SQLiteCache)(nil)

func (c *SQLiteCache) Get(k TileCacheKey) (Artifact, bool, error) {
	query := `SELECT tile_data, content_type, headers, ttl_seconds, cached_at
	FROM tile_cache
	WHERE style_source = ? AND z = ? AND x = ? AND y = ? AND format = ?`

	var (
		a           Artifact
		headersJSON []byte
		ttlSeconds  int64
		cachedAt    int64
	)
	err := c.db.QueryRow(query, k.StyleSource, k.Z, k.X, k.Y, string(k.Format)).
		Scan(&a.Data, &a.ContentType, &headersJSON, &ttlSeconds, &cachedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Artifact{}, false, nil
		}
		c.logger.Error("sqlite cache get failed", "key", k.String(), "error", err)
		return Artifact{}, false, err
	}

	if err := json.Unmarshal(headersJSON, &a.Headers); err != nil {
		c.logger.Warn("corrupt cache headers, treating as miss", "key", k.String(), "error", err)
		return Artifact{}, false, nil
	}

	a.TTL = time.Duration(ttlSeconds) * time.Second
	a.CachedAt = time.Unix(cachedAt, 0)

	if !a.Fresh(c.now()) {
		return Artifact{}, false, nil
	}

	return a, true, nil
}

func (c *SQLiteCache) Set(k TileCacheKey, a Artifact) error {
	headersJSON, err := json.Marshal(a.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode cache headers for %s: %w", k.String(), err)
	}

	query := `INSERT INTO tile_cache (style_source, z, x, y, format, tile_data, content_type, headers, ttl_seconds, cached_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(style_source, z, x, y, format) DO UPDATE SET
		tile_data = excluded.tile_data,
		content_type = excluded.content_type,
		headers = excluded.headers,
		ttl_seconds = excluded.ttl_seconds,
		cached_at = excluded.cached_at`

	_, err = c.db.Exec(query, k.StyleSource, k.Z, k.X, k.Y, string(k.Format),
		a.Data, a.ContentType, headersJSON, int64(a.TTL/time.Second), c.now().Unix())
	if err != nil {
		c.logger.Error("sqlite cache set failed", "key", k.String(), "error", err)
		return err
	}

	return nil
}

func (c *SQLiteCache) Invalidate(styleSourcePrefix string) (int, error) {
	var (
		res sql.Result
		err error
	)
	if styleSourcePrefix == "" {
		res, err = c.db.Exec(`DELETE FROM tile_cache`)
	} else {
		res, err = c.db.Exec(`DELETE FROM tile_cache WHERE style_source = ?`, styleSourcePrefix)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite cache invalidate failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (c *SQLiteCache) Stats() (Stats, error) {
	rows, err := c.db.Query(`SELECT style_source, SUM(LENGTH(tile_data)), COUNT(*)
	FROM tile_cache GROUP BY style_source`)
	if err != nil {
		return Stats{}, fmt.Errorf("sqlite cache stats failed: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByKey: map[string]KeyStats{}}
	for rows.Next() {
		var (
			key      string
			keyStats KeyStats
		)
		if err := rows.Scan(&key, &keyStats.SizeBytes, &keyStats.FileCount); err != nil {
			return Stats{}, err
		}
		stats.ByKey[key] = keyStats
		stats.TotalSizeBytes += keyStats.SizeBytes
		stats.TotalFiles += keyStats.FileCount
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}
