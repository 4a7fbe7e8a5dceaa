package ports

import (
	"context"
	"time"

	"NewswireScanner/internal/domain"
)

// EntrySource pulls the most recent feed entries from the upstream newswire.
type EntrySource interface {
	FetchLatest(ctx context.Context, limit int) ([]domain.FeedEntry, error)
}

// ProxySource supplies candidate proxy endpoints as "host:port" strings,
// already filtered to HTTPS-capable ones.
type ProxySource interface {
	Scrape(ctx context.Context) ([]string, error)
}

// ArticleFetcher resolves a feed entry into a parsed article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, entry domain.FeedEntry) (domain.Article, error)
}

// RecordRepository persists finished records and answers dedup lookups.
type RecordRepository interface {
	SaveRecord(ctx context.Context, rec domain.Record) error
	SeenHeadlines(ctx context.Context, headlines []string) (map[string]bool, error)
}

// HeadlineCache tracks headlines already processed across runs.
type HeadlineCache interface {
	Seen(ctx context.Context, headline string) (bool, error)
	MarkSeen(ctx context.Context, headline string) error
}

// Notifier announces newly recorded tickers to an outbound channel.
type Notifier interface {
	PublishTicker(ctx context.Context, rec domain.Record) error
}

// Scheduler controls when batches execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
