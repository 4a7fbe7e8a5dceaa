package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewswireScanner/internal/domain"
)

// Policy bounds the retry loop around a single proxied GET. Proxy-class and
// transient failures share the attempt budget, but only proxy-class failures
// drive pool refresh: proxy lists degrade faster than origin servers.
type Policy struct {
	MaxAttempts           int
	Delay                 time.Duration
	ProxyFailureThreshold int
}

// DefaultPolicy mirrors the production settings: six attempts, ten seconds
// between them, refresh after every fourth consecutive proxy failure.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:           6,
		Delay:                 10 * time.Second,
		ProxyFailureThreshold: 4,
	}
}

// ProxyRotor is the slice of the pool the retry loop needs.
type ProxyRotor interface {
	Next(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// ProxyError marks a failure attributable to the forwarding proxy rather
// than the origin server.
type ProxyError struct {
	Endpoint string
	Err      error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxy %s: %v", e.Endpoint, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// Client performs HTTPS GETs through rotating proxies with bounded retries.
type Client struct {
	pool   ProxyRotor
	policy Policy
	logger *slog.Logger

	// injected for tests
	do    func(ctx context.Context, rawURL, endpoint string) ([]byte, error)
	sleep func(d time.Duration)
}

// NewClient wires a pool and a policy; zero policy fields fall back to defaults.
func NewClient(pool ProxyRotor, policy Policy, log *slog.Logger) *Client {
	def := DefaultPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Delay <= 0 {
		policy.Delay = def.Delay
	}
	if policy.ProxyFailureThreshold <= 0 {
		policy.ProxyFailureThreshold = def.ProxyFailureThreshold
	}

	return &Client{
		pool:   pool,
		policy: policy,
		logger: log,
		do:     proxiedGet,
		sleep:  time.Sleep,
	}
}

// Fetch resolves rawURL to its response body, rotating proxies across
// attempts. A link without a usable scheme fails immediately with
// ErrInvalidLink and consumes no attempts.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidLink, rawURL)
	}

	var lastErr error
	proxyFailures := 0

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		endpoint, err := c.pool.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain proxy: %w", err)
		}

		body, err := c.do(ctx, rawURL, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var proxyErr *ProxyError
		if errors.As(err, &proxyErr) {
			proxyFailures++
			c.warn("proxy failure, trying the next one", "endpoint", endpoint, "attempt", attempt, "error", err)

			if proxyFailures >= c.policy.ProxyFailureThreshold {
				if refreshErr := c.pool.Refresh(ctx); refreshErr != nil {
					return nil, fmt.Errorf("refresh pool: %w", refreshErr)
				}
				proxyFailures = 0
			}
		} else {
			proxyFailures = 0
			c.warn("transient fetch failure", "url", rawURL, "attempt", attempt, "error", err)
		}

		if attempt < c.policy.MaxAttempts {
			c.sleep(c.policy.Delay)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrFetchExhausted, c.policy.MaxAttempts, lastErr)
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func proxiedGet(ctx context.Context, rawURL, endpoint string) ([]byte, error) {
	proxyURL, err := url.Parse("http://" + endpoint)
	if err != nil {
		return nil, &ProxyError{Endpoint: endpoint, Err: err}
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyURL(proxyURL),
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		if isProxyClass(err) {
			return nil, &ProxyError{Endpoint: endpoint, Err: err}
		}
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read article body: %w", err)
	}

	return body, nil
}

// isProxyClass attributes an error to the forwarding proxy: CONNECT
// failures (the transport prefixes those with "proxyconnect"), timeouts,
// and TLS handshake breakage.
func isProxyClass(err error) bool {
	if strings.Contains(err.Error(), "proxyconnect") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "proxyconnect" {
		return true
	}

	return false
}
