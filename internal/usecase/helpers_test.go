package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/internal/repository/style"
)

type styleFixture struct {
	name     string
	provider string
	sprite   string
	glyphs   string
	sources  map[string]string
}

func writeStyleFixture(t *testing.T, dir string, f styleFixture) {
	t.Helper()

	doc := map[string]any{
		"version": 8,
		"sources": map[string]any{},
		"_meta": map[string]any{
			"source":             "scraped",
			"original_sprite":    f.sprite,
			"original_glyphs":    f.glyphs,
			"tile_auth_provider": f.provider,
			"tile_sources":       f.sources,
		},
	}
	for name := range f.sources {
		doc["sources"].(map[string]any)[name] = map[string]any{
			"type":  "vector",
			"tiles": []any{"/api/v1/tiles/" + f.name + "/" + name + "/{z}/{x}/{y}.pbf"},
		}
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(dir, "scraped", f.name+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func newTestResolver(t *testing.T, dir string, auth map[string]map[string]string) *SourceResolver {
	t.Helper()
	repo := style.NewRepository(dir, validator.New())
	return NewSourceResolver(repo, provider.NewAuthTable(auth))
}
