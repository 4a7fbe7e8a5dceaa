package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewswireScanner/internal/domain"
	"NewswireScanner/internal/ports"
	"NewswireScanner/internal/ticker"
)

const defaultBatchSize = 10

// PipelineDeps wires all driven adapters into the batch pipeline. Repository,
// Cache and Notifier are optional.
type PipelineDeps struct {
	Source     ports.EntrySource
	Fetcher    ports.ArticleFetcher
	Repository ports.RecordRepository
	Cache      ports.HeadlineCache
	Notifier   ports.Notifier
	Logger     *slog.Logger
	BatchSize  int
}

// Pipeline implements the fetch-extract-persist workflow for one batch of
// feed entries. Entries are processed sequentially, oldest first; a failed
// entry is skipped with a log line and never re-queued.
type Pipeline struct {
	source     ports.EntrySource
	fetcher    ports.ArticleFetcher
	repository ports.RecordRepository
	cache      ports.HeadlineCache
	notifier   ports.Notifier
	logger     *slog.Logger
	batchSize  int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	batchSize := deps.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Pipeline{
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		repository: deps.Repository,
		cache:      deps.Cache,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		batchSize:  batchSize,
	}
}

// ProcessBatch fetches the latest entries, drops the ones already recorded,
// and runs fetch-then-extract-then-persist on each remaining entry in order.
func (p *Pipeline) ProcessBatch(ctx context.Context) error {
	if p.source == nil || p.fetcher == nil {
		return nil
	}

	entries, err := p.source.FetchLatest(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("fetch entries: %w", err)
	}

	entries, err = p.dropRecorded(ctx, entries)
	if err != nil {
		return err
	}

	var saved, skipped int
	for _, entry := range entries {
		if p.cachedSeen(ctx, entry.Headline) {
			continue
		}

		rec, ok := p.processEntry(ctx, entry)
		if !ok {
			skipped++
			continue
		}

		if p.repository != nil {
			if err := p.repository.SaveRecord(ctx, rec); err != nil {
				p.log().Error("persist record", "link", entry.Link, "error", err)
				skipped++
				continue
			}
		}
		saved++

		if p.cache != nil {
			if err := p.cache.MarkSeen(ctx, entry.Headline); err != nil {
				p.log().Warn("mark headline seen", "headline", entry.Headline, "error", err)
			}
		}

		if p.notifier != nil && rec.Ticker != nil {
			if err := p.notifier.PublishTicker(ctx, rec); err != nil {
				p.log().Warn("publish ticker alert", "ticker", *rec.Ticker, "error", err)
			}
		}
	}

	p.log().Info("batch complete", "entries", len(entries), "saved", saved, "skipped", skipped)
	return nil
}

// processEntry resolves one entry to a finished record. Any failure skips
// the entry; the batch carries on with the next one.
func (p *Pipeline) processEntry(ctx context.Context, entry domain.FeedEntry) (domain.Record, bool) {
	article, err := p.fetcher.Fetch(ctx, entry)
	if err != nil {
		p.log().Warn("skip entry", "link", entry.Link, "error", err)
		return domain.Record{}, false
	}

	symbol, found, err := ticker.Extract(article.Body)
	if err != nil {
		p.log().Warn("skip entry", "link", entry.Link, "error", err)
		return domain.Record{}, false
	}

	rec := domain.Record{
		Headline:    article.Headline,
		PublishedAt: entry.PublishedAt,
		Link:        entry.Link,
		ArticleText: article.Body,
	}
	if found {
		rec.Ticker = &symbol
	}
	return rec, true
}

func (p *Pipeline) dropRecorded(ctx context.Context, entries []domain.FeedEntry) ([]domain.FeedEntry, error) {
	if p.repository == nil || len(entries) == 0 {
		return entries, nil
	}

	headlines := make([]string, len(entries))
	for i, entry := range entries {
		headlines[i] = entry.Headline
	}

	seen, err := p.repository.SeenHeadlines(ctx, headlines)
	if err != nil {
		return nil, fmt.Errorf("load seen headlines: %w", err)
	}

	fresh := entries[:0]
	for _, entry := range entries {
		if seen[entry.Headline] {
			continue
		}
		fresh = append(fresh, entry)
	}
	return fresh, nil
}

func (p *Pipeline) cachedSeen(ctx context.Context, headline string) bool {
	if p.cache == nil {
		return false
	}
	seen, err := p.cache.Seen(ctx, headline)
	if err != nil {
		p.log().Warn("headline cache lookup", "headline", headline, "error", err)
		return false
	}
	return seen
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
