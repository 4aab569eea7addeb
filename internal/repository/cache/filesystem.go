package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fischerwulf/map-dev/pkg/logger"
)

const metaSuffix = ".meta"

// metaRecord is the sidecar metadata file written next to every tile
// payload: {y}.{ext}.meta. The payload file plus this record together
// form one artifact.
type metaRecord struct {
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
	TTLSeconds  int64             `json:"ttl"`
	CachedAt    int64             `json:"cached_at"`
}

// FilesystemCache stores tiles under {root}/{styleSource}/{z}/{x}/{y}.{ext}.
type FilesystemCache struct {
	root   string
	logger logger.Logger
	now    func() time.Time
}

var _ TileCache = (*FilesystemCache)(nil)

func NewFilesystemCache(root string, l logger.Logger) (*FilesystemCache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache root %s: %w", root, err)
	}

	l.Info("filesystem cache initialized", "root", root)

	return &FilesystemCache{
		root:   root,
		logger: l,
		now:    time.Now,
	}, nil
}

func (c *FilesystemCache) tilePath(k TileCacheKey) string {
	return filepath.Join(c.root, k.StyleSource, strconv.Itoa(k.Z), strconv.Itoa(k.X),
		fmt.Sprintf("%d.%s", k.Y, k.Format))
}

func (c *FilesystemCache) Get(k TileCacheKey) (Artifact, bool, error) {
	tilePath := c.tilePath(k)
	metaPath := tilePath + metaSuffix

	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("unreadable cache metadata, treating as miss", "key", k.String(), "error", err)
		}
		return Artifact{}, false, nil
	}

	var meta metaRecord
	if err := json.Unmarshal(metaData, &meta); err != nil {
		c.logger.Warn("corrupt cache metadata, treating as miss", "key", k.String(), "error", err)
		return Artifact{}, false, nil
	}

	artifact := Artifact{
		ContentType: meta.ContentType,
		Headers:     meta.Headers,
		TTL:         time.Duration(meta.TTLSeconds) * time.Second,
		CachedAt:    time.Unix(meta.CachedAt, 0),
	}

	if !artifact.Fresh(c.now()) {
		return Artifact{}, false, nil
	}

	data, err := os.ReadFile(tilePath)
	if err != nil {
		// Metadata without payload: a torn write. Degrade to a miss so
		// the caller refetches.
		c.logger.Warn("cache payload unreadable, treating as miss", "key", k.String(), "error", err)
		return Artifact{}, false, nil
	}

	artifact.Data = data
	return artifact, true, nil
}

func (c *FilesystemCache) Set(k TileCacheKey, a Artifact) error {
	tilePath := c.tilePath(k)
	metaPath := tilePath + metaSuffix

	if err := os.MkdirAll(filepath.Dir(tilePath), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", k.String(), err)
	}

	// Payload first, metadata second. A lookup racing this write either
	// sees the old metadata or none at all; it never reports a
	// half-written payload as fresh.
	if err := writeFileAtomic(tilePath, a.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache payload for %s: %w", k.String(), err)
	}

	meta := metaRecord{
		ContentType: a.ContentType,
		Headers:     a.Headers,
		TTLSeconds:  int64(a.TTL / time.Second),
		CachedAt:    c.now().Unix(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode cache metadata for %s: %w", k.String(), err)
	}

	if err := writeFileAtomic(metaPath, metaData, 0o644); err != nil {
		return fmt.Errorf("failed to write cache metadata for %s: %w", k.String(), err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *FilesystemCache) Invalidate(styleSourcePrefix string) (int, error) {
	if styleSourcePrefix == "" {
		entries, err := os.ReadDir(c.root)
		if err != nil {
			return 0, fmt.Errorf("failed to read cache root: %w", err)
		}
		total := 0
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			count, err := c.removeKeyDir(entry.Name())
			if err != nil {
				return total, err
			}
			total += count
		}
		return total, nil
	}

	if err := validateKeyPrefix(styleSourcePrefix); err != nil {
		return 0, err
	}
	return c.removeKeyDir(styleSourcePrefix)
}

func (c *FilesystemCache) removeKeyDir(name string) (int, error) {
	dir := filepath.Join(c.root, name)
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan cache key %s: %w", name, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("failed to remove cache key %s: %w", name, err)
	}

	c.logger.Info("cache key invalidated", "key", name, "files", count)
	return count, nil
}

// validateKeyPrefix rejects prefixes that would escape the cache root.
func validateKeyPrefix(prefix string) error {
	if strings.ContainsAny(prefix, `/\`) || prefix == "." || prefix == ".." {
		return fmt.Errorf("invalid cache key prefix %q", prefix)
	}
	return nil
}

func (c *FilesystemCache) Stats() (Stats, error) {
	stats := Stats{ByKey: map[string]KeyStats{}}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return Stats{}, fmt.Errorf("failed to read cache root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		var keyStats KeyStats
		err := filepath.WalkDir(filepath.Join(c.root, entry.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// Metadata sidecars are bookkeeping, not cached content.
			if d.IsDir() || strings.HasSuffix(path, metaSuffix) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			keyStats.SizeBytes += info.Size()
			keyStats.FileCount++
			return nil
		})
		if err != nil {
			return Stats{}, fmt.Errorf("failed to scan cache key %s: %w", entry.Name(), err)
		}

		stats.ByKey[entry.Name()] = keyStats
		stats.TotalSizeBytes += keyStats.SizeBytes
		stats.TotalFiles += keyStats.FileCount
	}

	return stats, nil
}
