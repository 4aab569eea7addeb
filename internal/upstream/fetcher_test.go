package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/pkg/logger"
)

func TestFetcher_Success(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write([]byte("tile payload"))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, logger.NewNoOp())
	data, contentType, err := f.Fetch(context.Background(), server.URL, provider.MapTiler)
	require.NoError(t, err)
	require.Equal(t, []byte("tile payload"), data)
	require.Equal(t, "application/x-protobuf", contentType)

	require.Equal(t, provider.DesktopUserAgent, gotHeaders.Get("User-Agent"))
	require.Equal(t, "https://www.maptiler.com/", gotHeaders.Get("Referer"))
	require.Equal(t, "https://www.maptiler.com", gotHeaders.Get("Origin"))
}

func TestFetcher_NoSpoofHeadersForUnknownProvider(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, logger.NewNoOp())
	_, _, err := f.Fetch(context.Background(), server.URL, provider.None)
	require.NoError(t, err)
	require.Empty(t, gotHeaders.Get("Referer"))
	require.Empty(t, gotHeaders.Get("Origin"))
}

func TestFetcher_EmptyContentTypePassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress Go's content-type sniffing.
		w.Header()["Content-Type"] = nil
		w.Write([]byte{0x1a, 0x2b})
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, logger.NewNoOp())
	_, contentType, err := f.Fetch(context.Background(), server.URL, provider.None)
	require.NoError(t, err)
	require.Empty(t, contentType)
}

func TestFetcher_NonOKStatusIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, logger.NewNoOp())
	_, _, err := f.Fetch(context.Background(), server.URL, provider.MapTiler)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusForbidden, upstreamErr.Status)
}

func TestFetcher_RefusedConnectionIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := NewFetcher(time.Second, logger.NewNoOp())
	_, _, err := f.Fetch(context.Background(), server.URL, provider.None)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestFetcher_CanceledContextAbandonsFetch(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	f := NewFetcher(30*time.Second, logger.NewNoOp())
	_, _, err := f.Fetch(ctx, server.URL, provider.None)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestFetcher_FollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("redirected payload"))
	}))
	defer target.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, logger.NewNoOp())
	data, _, err := f.Fetch(context.Background(), server.URL, provider.None)
	require.NoError(t, err)
	require.Equal(t, []byte("redirected payload"), data)
}
