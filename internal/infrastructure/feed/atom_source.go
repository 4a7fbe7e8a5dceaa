package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewswireScanner/internal/domain"
	"NewswireScanner/internal/ports"
)

// feedTimeLayout matches the feed's updated field: naive UTC with a literal Z.
const feedTimeLayout = "2006-01-02T15:04:05Z"

// AtomSource pulls the newest press-release entries from the newswire Atom
// feed. The feed lists entries newest-first; FetchLatest returns them
// oldest-first so the pipeline processes them in publication order.
type AtomSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ ports.EntrySource = (*AtomSource)(nil)

// NewAtomSource wires an HTTP client; a nil client gets a 20s timeout default.
func NewAtomSource(feedURL string, client *http.Client, log *slog.Logger) *AtomSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &AtomSource{url: feedURL, client: client, logger: log}
}

// FetchLatest returns up to limit of the most recent entries, oldest-to-newest.
func (s *AtomSource) FetchLatest(ctx context.Context, limit int) ([]domain.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewswireScanner/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var entries []domain.FeedEntry
	doc.Find("entry").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if limit > 0 && len(entries) >= limit {
			return false
		}

		link := strings.TrimSpace(sel.Find("id").First().Text())
		headline := strings.TrimSpace(sel.Find("title").First().Text())
		updated := strings.TrimSpace(sel.Find("updated").First().Text())

		publishedAt, err := time.Parse(feedTimeLayout, updated)
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("skip entry with unparseable timestamp", "link", link, "updated", updated)
			}
			return true
		}

		if link == "" {
			return true
		}

		entries = append(entries, domain.FeedEntry{
			Link:        link,
			Headline:    headline,
			PublishedAt: publishedAt,
		})
		return true
	})

	// oldest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if s.logger != nil {
		s.logger.Debug("feed fetched", "entries", len(entries))
	}

	return entries, nil
}
