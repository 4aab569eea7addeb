package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/pkg/logger"
	"github.com/fischerwulf/map-dev/pkg/metrics"
)

// Fetcher performs outbound tile and asset requests. It attaches a
// desktop-browser user agent plus the provider's Referer/Origin spoof
// headers, follows redirects, and classifies failures. It never
// retries; the browser's own retry behavior applies at the client.
type Fetcher struct {
	client *http.Client
	logger logger.Logger
}

func NewFetcher(timeout time.Duration, l logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: l,
	}
}

// Fetch retrieves url and returns the payload with the upstream's
// Content-Type (empty when the upstream omitted one). A non-200 status
// yields *UpstreamError; a network failure yields *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string, p provider.Provider) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create upstream request: %w", err)
	}

	req.Header.Set("User-Agent", provider.DesktopUserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range p.SpoofHeaders() {
		req.Header.Set(k, v)
	}

	metrics.UpstreamRequests.WithLabelValues(p.String()).Inc()

	start := time.Now()
	resp, err := f.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(p.String()).Inc()
		f.logger.Error("upstream fetch failed",
			"url", url,
			"provider", p.String(),
			"duration", duration,
			"error", err,
		)
		return nil, "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamLatency.Observe(duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		metrics.UpstreamErrors.WithLabelValues(p.String()).Inc()
		f.logger.Warn("upstream returned non-200",
			"url", url,
			"provider", p.String(),
			"status", resp.StatusCode,
			"duration", duration,
		)
		return nil, "", &UpstreamError{Status: resp.StatusCode, Message: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(p.String()).Inc()
		return nil, "", &TransportError{Err: err}
	}

	f.logger.Debug("fetched from upstream",
		"url", url,
		"provider", p.String(),
		"size", len(data),
		"duration", duration,
	)

	return data, resp.Header.Get("Content-Type"), nil
}
