package proxylist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewswireScanner/internal/ports"
)

const (
	defaultMaxRows = 300
	httpsColumn    = 6
)

// Source scrapes a free-proxy-list style HTML table. Each row carries IP and
// port in the first two columns and an HTTPS-support flag in column 6.
type Source struct {
	url     string
	client  *http.Client
	logger  *slog.Logger
	maxRows int
}

var _ ports.ProxySource = (*Source)(nil)

// New builds a source for the given list URL; a nil client gets a 20s timeout default.
func New(listURL string, client *http.Client, log *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{
		url:     listURL,
		client:  client,
		logger:  log,
		maxRows: defaultMaxRows,
	}
}

// Scrape fetches the list page and returns "host:port" endpoints that
// advertise HTTPS support.
func (s *Source) Scrape(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request proxy list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy list returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse proxy list: %w", err)
	}

	var endpoints []string
	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			// column headers
			return true
		}
		if i >= s.maxRows {
			return false
		}

		cols := row.Find("td")
		if cols.Length() <= httpsColumn {
			return true
		}

		if strings.TrimSpace(cols.Eq(httpsColumn).Text()) != "yes" {
			return true
		}

		ip := strings.TrimSpace(cols.Eq(0).Text())
		port := strings.TrimSpace(cols.Eq(1).Text())
		if ip == "" || port == "" {
			return true
		}

		endpoints = append(endpoints, ip+":"+port)
		return true
	})

	if s.logger != nil {
		s.logger.Debug("scraped proxy list", "url", s.url, "endpoints", len(endpoints))
	}

	return endpoints, nil
}
