package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewswireScanner/internal/domain"
	"NewswireScanner/internal/ports"
)

const (
	headlineSelector = "h1.article-headline"
	bodySelector     = "span.article-body"
)

// PageFetcher obtains raw markup for a link.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ArticleFetcher resolves feed entries into parsed articles using the
// newswire's structural selectors.
type ArticleFetcher struct {
	pages  PageFetcher
	logger *slog.Logger
}

var _ ports.ArticleFetcher = (*ArticleFetcher)(nil)

// NewArticleFetcher wires the page fetcher (usually the retrying Client).
func NewArticleFetcher(pages PageFetcher, log *slog.Logger) *ArticleFetcher {
	return &ArticleFetcher{pages: pages, logger: log}
}

// Fetch downloads and parses the article behind the entry's link. A page
// missing the expected headline or body element is a shape mismatch, not a
// transient failure, and is surfaced without retry.
func (f *ArticleFetcher) Fetch(ctx context.Context, entry domain.FeedEntry) (domain.Article, error) {
	raw, err := f.pages.Fetch(ctx, entry.Link)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch %s: %w", entry.Link, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse article markup: %w", err)
	}

	headline := doc.Find(headlineSelector).First()
	if headline.Length() == 0 {
		return domain.Article{}, fmt.Errorf("%w: %s", domain.ErrMissingHeadline, entry.Link)
	}

	body := doc.Find(bodySelector).First()
	if body.Length() == 0 {
		return domain.Article{}, fmt.Errorf("%w: %s", domain.ErrMissingBody, entry.Link)
	}

	if f.logger != nil {
		f.logger.Debug("article fetched", "link", entry.Link)
	}

	return domain.Article{
		Headline: strings.TrimSpace(headline.Text()),
		Body:     body.Text(),
	}, nil
}
