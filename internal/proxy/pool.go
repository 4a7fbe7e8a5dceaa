package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"NewswireScanner/internal/domain"
	"NewswireScanner/internal/ports"
)

const (
	probeTimeout = 8 * time.Second
	probeAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/60.0.3112.113 Safari/537.36"
)

// Pool rotates through candidate proxy endpoints. Rotation is a plain cursor
// into the slice; a full traversal forces a refresh, so a stale list is
// self-correcting. Not safe for concurrent use: the pipeline runs one fetch
// at a time.
type Pool struct {
	source      ports.ProxySource
	logger      *slog.Logger
	endpoints   []string
	cursor      int
	probeTarget string
}

// NewPool wires the pool to its endpoint source. The cursor starts absent.
func NewPool(source ports.ProxySource, log *slog.Logger) *Pool {
	return &Pool{
		source:      source,
		logger:      log,
		cursor:      -1,
		probeTarget: "https://www.google.com",
	}
}

// Refresh replaces the endpoint slice from the source and resets the cursor.
// Prior state is fully discarded, never merged.
func (p *Pool) Refresh(ctx context.Context) error {
	endpoints, err := p.source.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProxySourceUnavailable, err)
	}

	p.endpoints = endpoints
	p.cursor = -1

	if p.logger != nil {
		p.logger.Debug("proxy list refreshed", "endpoints", len(p.endpoints))
	}
	return nil
}

// Next returns the endpoint after the current cursor. An absent cursor starts
// at the head; advancing past the tail triggers an implicit Refresh and wraps
// to the head of the new list.
func (p *Pool) Next(ctx context.Context) (string, error) {
	if p.cursor >= 0 && p.cursor < len(p.endpoints)-1 {
		p.cursor++
		return p.endpoints[p.cursor], nil
	}

	if p.cursor == -1 && len(p.endpoints) > 0 {
		p.cursor = 0
		return p.endpoints[0], nil
	}

	if err := p.Refresh(ctx); err != nil {
		return "", err
	}
	if len(p.endpoints) == 0 {
		return "", domain.ErrPoolExhausted
	}

	p.cursor = 0
	return p.endpoints[0], nil
}

// Probe checks whether an endpoint forwards traffic by requesting a
// well-known target through it. Diagnostics only; the retry loop never
// calls this.
func (p *Pool) Probe(ctx context.Context, endpoint string) (int, error) {
	proxyURL, err := url.Parse("http://" + endpoint)
	if err != nil {
		return 0, fmt.Errorf("parse endpoint %s: %w", endpoint, err)
	}

	client := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		Timeout:   probeTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.probeTarget, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("User-Agent", probeAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
