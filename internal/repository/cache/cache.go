package cache

import (
	"fmt"
	"time"
)

// Format is the tile payload format, doubling as the file extension in
// the cache keyspace.
type Format string

const (
	FormatVector  Format = "pbf"
	FormatRaster  Format = "png"
	FormatTerrain Format = "webp"
)

// ParseFormat maps a request file extension to a Format.
func ParseFormat(ext string) (Format, error) {
	switch Format(ext) {
	case FormatVector, FormatRaster, FormatTerrain:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("unsupported tile format %q", ext)
	}
}

// ContentType is the fallback MIME type used when the upstream response
// carries no Content-Type header.
func (f Format) ContentType() string {
	switch f {
	case FormatVector:
		return "application/x-protobuf"
	case FormatRaster:
		return "image/png"
	case FormatTerrain:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// TileCacheKey addresses a cached tile. The five-tuple is the sole
// identity of an artifact; no content hashing is involved.
type TileCacheKey struct {
	StyleSource string
	Z           int
	X           int
	Y           int
	Format      Format
}

func (k TileCacheKey) String() string {
	return fmt.Sprintf("%s/%d/%d/%d.%s", k.StyleSource, k.Z, k.X, k.Y, k.Format)
}

// Artifact is a cached tile payload with its metadata. Immutable once
// written; superseded only by whole-artifact overwrite.
type Artifact struct {
	Data        []byte
	ContentType string
	Headers     map[string]string
	TTL         time.Duration
	CachedAt    time.Time
}

// Fresh reports whether the artifact is still within its TTL at the
// given instant. A TTL of zero is expired as soon as any time passes.
func (a Artifact) Fresh(now time.Time) bool {
	return now.Sub(a.CachedAt) <= a.TTL
}

type KeyStats struct {
	SizeBytes int64 `json:"size_bytes"`
	FileCount int   `json:"file_count"`
}

type Stats struct {
	TotalSizeBytes int64               `json:"total_size_bytes"`
	TotalFiles     int                 `json:"total_files"`
	ByKey          map[string]KeyStats `json:"by_key"`
}

// TileCache stores tile artifacts under a hierarchical keyspace.
//
// Get reports expired, missing, and unreadable entries as absent rather
// than failing; the caller refetches on absent. Set overwrites any
// prior value for the key unconditionally. Invalidate with an empty
// prefix removes everything and returns the number of removed entries.
type TileCache interface {
	Get(k TileCacheKey) (Artifact, bool, error)
	Set(k TileCacheKey, a Artifact) error
	Invalidate(styleSourcePrefix string) (int, error)
	Stats() (Stats, error)
}
