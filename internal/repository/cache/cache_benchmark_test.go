package cache

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/fischerwulf/map-dev/pkg/logger"
)

const (
	smallTileSize = 1024      // 1KB
	largeTileSize = 50 * 1024 // 50KB
)

func generateTileData(size int) []byte {
	data := make([]byte, size)
	rand.Read(data)
	return data
}

func benchmarkKey(i int) TileCacheKey {
	return TileCacheKey{
		StyleSource: "bench-style_src",
		Z:           i % 20,
		X:           i % 1000,
		Y:           (i * 7) % 1000,
		Format:      FormatVector,
	}
}

func benchmarkArtifact(size int) Artifact {
	return Artifact{
		Data:        generateTileData(size),
		ContentType: "application/x-protobuf",
		Headers:     map[string]string{},
		TTL:         24 * time.Hour,
	}
}

func setupBenchFilesystemCache(b *testing.B) *FilesystemCache {
	b.Helper()
	c, err := NewFilesystemCache(b.TempDir(), logger.NewNoOp())
	if err != nil {
		b.Fatalf("failed to create filesystem cache: %v", err)
	}
	return c
}

func setupBenchSQLiteCache(b *testing.B) *SQLiteCache {
	b.Helper()
	c, err := NewSQLiteCache(filepath.Join(b.TempDir(), "bench.db"), logger.NewNoOp())
	if err != nil {
		b.Fatalf("failed to create sqlite cache: %v", err)
	}
	b.Cleanup(func() { c.Close() })
	return c
}

func benchmarkSet(b *testing.B, c TileCache, size int) {
	a := benchmarkArtifact(size)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Set(benchmarkKey(i), a); err != nil {
			b.Fatalf("set failed: %v", err)
		}
	}
}

func benchmarkGet(b *testing.B, c TileCache, size int) {
	a := benchmarkArtifact(size)
	for i := 0; i < 100; i++ {
		if err := c.Set(benchmarkKey(i), a); err != nil {
			b.Fatalf("set failed: %v", err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := c.Get(benchmarkKey(i % 100)); err != nil {
			b.Fatalf("get failed: %v", err)
		}
	}
}

func BenchmarkSet_Map_Small(b *testing.B)        { benchmarkSet(b, NewMapCache(), smallTileSize) }
func BenchmarkSet_Map_Large(b *testing.B)        { benchmarkSet(b, NewMapCache(), largeTileSize) }
func BenchmarkSet_Filesystem_Small(b *testing.B) { benchmarkSet(b, setupBenchFilesystemCache(b), smallTileSize) }
func BenchmarkSet_Filesystem_Large(b *testing.B) { benchmarkSet(b, setupBenchFilesystemCache(b), largeTileSize) }
func BenchmarkSet_SQLite_Small(b *testing.B)     { benchmarkSet(b, setupBenchSQLiteCache(b), smallTileSize) }
func BenchmarkSet_SQLite_Large(b *testing.B)     { benchmarkSet(b, setupBenchSQLiteCache(b), largeTileSize) }

func BenchmarkGet_Map_Small(b *testing.B)        { benchmarkGet(b, NewMapCache(), smallTileSize) }
func BenchmarkGet_Filesystem_Small(b *testing.B) { benchmarkGet(b, setupBenchFilesystemCache(b), smallTileSize) }
func BenchmarkGet_SQLite_Small(b *testing.B)     { benchmarkGet(b, setupBenchSQLiteCache(b), smallTileSize) }
