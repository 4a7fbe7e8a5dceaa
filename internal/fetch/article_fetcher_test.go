package fetch

import (
	"context"
	"errors"
	"testing"

	"NewswireScanner/internal/domain"
)

type fakePages struct {
	body []byte
	err  error
}

func (f *fakePages) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f.body, f.err
}

func TestArticleFetcherExtractsFields(t *testing.T) {
	t.Parallel()

	page := `
	<html><body>
	  <h1 class="article-headline">
	    Acme Corp Announces Results
	  </h1>
	  <span class="article-body">Acme Corp (Nasdaq: ACME) today reported earnings.</span>
	</body></html>`

	fetcher := NewArticleFetcher(&fakePages{body: []byte(page)}, nil)

	article, err := fetcher.Fetch(context.Background(), domain.FeedEntry{Link: "https://example.com/a"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if article.Headline != "Acme Corp Announces Results" {
		t.Fatalf("unexpected headline: %q", article.Headline)
	}
	if article.Body != "Acme Corp (Nasdaq: ACME) today reported earnings." {
		t.Fatalf("unexpected body: %q", article.Body)
	}
}

func TestArticleFetcherMissingHeadline(t *testing.T) {
	t.Parallel()

	page := `<html><body><span class="article-body">text</span></body></html>`
	fetcher := NewArticleFetcher(&fakePages{body: []byte(page)}, nil)

	_, err := fetcher.Fetch(context.Background(), domain.FeedEntry{Link: "https://example.com/a"})
	if !errors.Is(err, domain.ErrMissingHeadline) {
		t.Fatalf("expected ErrMissingHeadline, got %v", err)
	}
}

func TestArticleFetcherMissingBody(t *testing.T) {
	t.Parallel()

	page := `<html><body><h1 class="article-headline">Headline</h1></body></html>`
	fetcher := NewArticleFetcher(&fakePages{body: []byte(page)}, nil)

	_, err := fetcher.Fetch(context.Background(), domain.FeedEntry{Link: "https://example.com/a"})
	if !errors.Is(err, domain.ErrMissingBody) {
		t.Fatalf("expected ErrMissingBody, got %v", err)
	}
}

func TestArticleFetcherPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetcher := NewArticleFetcher(&fakePages{err: domain.ErrFetchExhausted}, nil)

	_, err := fetcher.Fetch(context.Background(), domain.FeedEntry{Link: "https://example.com/a"})
	if !errors.Is(err, domain.ErrFetchExhausted) {
		t.Fatalf("expected ErrFetchExhausted, got %v", err)
	}
}
