package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/fischerwulf/map-dev/internal/infrastructure/http/v1/handler"
	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/internal/repository/cache"
	"github.com/fischerwulf/map-dev/internal/repository/style"
	"github.com/fischerwulf/map-dev/internal/upstream"
	"github.com/fischerwulf/map-dev/internal/usecase"
	"github.com/fischerwulf/map-dev/pkg/logger"
)

func newTestRouter(t *testing.T, upstreamHandler http.HandlerFunc) http.Handler {
	t.Helper()

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	doc := map[string]any{
		"version": 8,
		"sources": map[string]any{
			"planet": map[string]any{
				"type":  "vector",
				"tiles": []any{"/api/v1/tiles/maptiler-outdoor/planet/{z}/{x}/{y}.pbf"},
			},
		},
		"_meta": map[string]any{
			"source":             "scraped",
			"tile_auth_provider": "maptiler",
			"tile_sources": map[string]string{
				"planet": server.URL + "/tiles/{z}/{x}/{y}.pbf",
			},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scraped"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scraped", "maptiler-outdoor.json"), data, 0o644))

	l := logger.NewNoOp()
	validate := validator.New()
	styles := style.NewRepository(dir, validate)
	resolver := usecase.NewSourceResolver(styles, provider.NewAuthTable(nil))
	fetcher := upstream.NewFetcher(5*time.Second, l)
	tileCache := cache.NewMapCache()

	tileUC := usecase.NewTileUseCase(tileCache, resolver, fetcher, 24*time.Hour, l)
	styleUC := usecase.NewStyleUseCase(styles, l)
	assetUC := usecase.NewAssetUseCase(resolver, fetcher, l)

	return NewRouter(handler.NewHandler(validate, tileUC, styleUC, assetUC), l, false)
}

func doRequest(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTileRoute_MissThenHit(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write([]byte("tile bytes"))
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tiles/maptiler-outdoor/planet/5/10/12.pbf")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "MISS", w.Header().Get("X-Cache"))
	require.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	require.Equal(t, "application/x-protobuf", w.Header().Get("Content-Type"))
	require.Equal(t, "tile bytes", w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/v1/tiles/maptiler-outdoor/planet/5/10/12.pbf")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "HIT", w.Header().Get("X-Cache"))
	require.Equal(t, "tile bytes", w.Body.String())
}

func TestTileRoute_BadCoordinates(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called for an invalid request")
	})

	for _, target := range []string{
		"/api/v1/tiles/maptiler-outdoor/planet/abc/10/12.pbf",
		"/api/v1/tiles/maptiler-outdoor/planet/5/abc/12.pbf",
		"/api/v1/tiles/maptiler-outdoor/planet/5/10/abc.pbf",
		"/api/v1/tiles/maptiler-outdoor/planet/5/10/12.gif",
		"/api/v1/tiles/maptiler-outdoor/planet/5/10/12",
	} {
		w := doRequest(t, router, http.MethodGet, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestTileRoute_UnknownStyleIs404(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called for an unknown style")
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tiles/nope/planet/5/10/12.pbf")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTileRoute_UpstreamStatusPassesThrough(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tiles/maptiler-outdoor/planet/5/10/12.pbf")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCacheStatsAndInvalidateRoutes(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tile"))
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/tiles/maptiler-outdoor/planet/1/2/3.pbf")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalFiles)
	require.Contains(t, stats.ByKey, "maptiler-outdoor_planet")

	w = doRequest(t, router, http.MethodDelete, "/api/v1/cache/maptiler-outdoor_planet")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"invalidated":1,"key":"maptiler-outdoor_planet"}`, w.Body.String())

	w = doRequest(t, router, http.MethodDelete, "/api/v1/cache/all")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"invalidated":0,"key":"all"}`, w.Body.String())
}

func TestStyleRoute_RebasesOntoRequestHost(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("styles are served locally")
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/styles/maptiler-outdoor")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	source := doc["sources"].(map[string]any)["planet"].(map[string]any)
	require.Equal(t,
		"http://example.com/api/v1/tiles/maptiler-outdoor/planet/{z}/{x}/{y}.pbf",
		source["tiles"].([]any)[0])
}

func TestStylesListRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("styles are served locally")
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/styles")
	require.Equal(t, http.StatusOK, w.Code)

	var infos []style.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	require.Equal(t, "maptiler-outdoor", infos[0].Name)
}

func TestHealthzRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("healthz never reaches upstream")
	})

	w := doRequest(t, router, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
}
