package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewswireScanner/internal/domain"
)

type fakeEntrySource struct {
	entries []domain.FeedEntry
	err     error
	limit   int
}

func (f *fakeEntrySource) FetchLatest(ctx context.Context, limit int) ([]domain.FeedEntry, error) {
	f.limit = limit
	return f.entries, f.err
}

type fakeFetcher struct {
	bodies map[string]string
	errs   map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, entry domain.FeedEntry) (domain.Article, error) {
	if err := f.errs[entry.Link]; err != nil {
		return domain.Article{}, err
	}
	return domain.Article{Headline: entry.Headline, Body: f.bodies[entry.Link]}, nil
}

type fakeRepository struct {
	saved    []domain.Record
	seen     map[string]bool
	seenErr  error
	failLink string
}

func (f *fakeRepository) SaveRecord(ctx context.Context, rec domain.Record) error {
	if f.failLink != "" && rec.Link == f.failLink {
		return errors.New("insert failed")
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepository) SeenHeadlines(ctx context.Context, headlines []string) (map[string]bool, error) {
	if f.seenErr != nil {
		return nil, f.seenErr
	}
	if f.seen == nil {
		return map[string]bool{}, nil
	}
	return f.seen, nil
}

type fakeCache struct {
	seen   map[string]bool
	marked []string
}

func (f *fakeCache) Seen(ctx context.Context, headline string) (bool, error) {
	return f.seen[headline], nil
}

func (f *fakeCache) MarkSeen(ctx context.Context, headline string) error {
	f.marked = append(f.marked, headline)
	return nil
}

type fakeNotifier struct {
	published []domain.Record
}

func (f *fakeNotifier) PublishTicker(ctx context.Context, rec domain.Record) error {
	f.published = append(f.published, rec)
	return nil
}

func twoEntries() []domain.FeedEntry {
	at := time.Date(2026, time.August, 27, 10, 0, 0, 0, time.UTC)
	return []domain.FeedEntry{
		{Link: "https://example.com/1", Headline: "Acme Results", PublishedAt: at},
		{Link: "https://example.com/2", Headline: "Widget Update", PublishedAt: at.Add(time.Minute)},
	}
}

func TestProcessBatchSavesRecordsAndNotifies(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	cache := &fakeCache{}
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeEntrySource{entries: twoEntries()},
		Fetcher: &fakeFetcher{bodies: map[string]string{
			"https://example.com/1": "Acme Corp (Nasdaq: ACME) reported earnings.",
			"https://example.com/2": "Widget Inc announced a partnership.",
		}},
		Repository: repo,
		Cache:      cache,
		Notifier:   notifier,
	})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 saved records, got %d", len(repo.saved))
	}

	first := repo.saved[0]
	if first.Ticker == nil || *first.Ticker != "ACME" {
		t.Fatalf("expected ticker ACME on first record, got %v", first.Ticker)
	}
	if first.Headline != "Acme Results" || first.Link != "https://example.com/1" {
		t.Fatalf("unexpected first record: %+v", first)
	}

	if repo.saved[1].Ticker != nil {
		t.Fatalf("expected nil ticker on second record, got %v", *repo.saved[1].Ticker)
	}

	if len(notifier.published) != 1 {
		t.Fatalf("expected 1 ticker alert, got %d", len(notifier.published))
	}
	if len(cache.marked) != 2 {
		t.Fatalf("expected 2 headlines marked seen, got %d", len(cache.marked))
	}
}

func TestProcessBatchSkipsFailedEntry(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeEntrySource{entries: twoEntries()},
		Fetcher: &fakeFetcher{
			bodies: map[string]string{"https://example.com/2": "plain text"},
			errs:   map[string]error{"https://example.com/1": domain.ErrMissingHeadline},
		},
		Repository: repo,
	})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(repo.saved))
	}
	if repo.saved[0].Link != "https://example.com/2" {
		t.Fatalf("wrong record survived: %s", repo.saved[0].Link)
	}
}

func TestProcessBatchDropsRecordedHeadlines(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{seen: map[string]bool{"Acme Results": true}}
	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeEntrySource{entries: twoEntries()},
		Fetcher: &fakeFetcher{bodies: map[string]string{
			"https://example.com/1": "text",
			"https://example.com/2": "text",
		}},
		Repository: repo,
	})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.saved) != 1 || repo.saved[0].Headline != "Widget Update" {
		t.Fatalf("expected only the unseen entry saved, got %+v", repo.saved)
	}
}

func TestProcessBatchSkipsCachedHeadlines(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	cache := &fakeCache{seen: map[string]bool{"Widget Update": true}}
	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeEntrySource{entries: twoEntries()},
		Fetcher: &fakeFetcher{bodies: map[string]string{
			"https://example.com/1": "text",
			"https://example.com/2": "text",
		}},
		Repository: repo,
		Cache:      cache,
	})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.saved) != 1 || repo.saved[0].Headline != "Acme Results" {
		t.Fatalf("expected only the uncached entry saved, got %+v", repo.saved)
	}
}

func TestProcessBatchContinuesAfterPersistFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{failLink: "https://example.com/1"}
	cache := &fakeCache{}
	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeEntrySource{entries: twoEntries()},
		Fetcher: &fakeFetcher{bodies: map[string]string{
			"https://example.com/1": "text",
			"https://example.com/2": "text",
		}},
		Repository: repo,
		Cache:      cache,
	})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if len(repo.saved) != 1 || repo.saved[0].Link != "https://example.com/2" {
		t.Fatalf("expected the batch to continue past the failed record, got %+v", repo.saved)
	}
	if len(cache.marked) != 1 || cache.marked[0] != "Widget Update" {
		t.Fatalf("failed record must not be marked seen, got %v", cache.marked)
	}
}

func TestProcessBatchPropagatesSourceError(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Source:  &fakeEntrySource{err: errors.New("feed unreachable")},
		Fetcher: &fakeFetcher{},
	})

	if err := pipeline.ProcessBatch(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestProcessBatchUsesConfiguredBatchSize(t *testing.T) {
	t.Parallel()

	source := &fakeEntrySource{}
	pipeline := NewPipeline(PipelineDeps{Source: source, Fetcher: &fakeFetcher{}, BatchSize: 25})

	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if source.limit != 25 {
		t.Fatalf("expected batch size 25, got %d", source.limit)
	}

	source = &fakeEntrySource{}
	pipeline = NewPipeline(PipelineDeps{Source: source, Fetcher: &fakeFetcher{}})
	if err := pipeline.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if source.limit != defaultBatchSize {
		t.Fatalf("expected default batch size %d, got %d", defaultBatchSize, source.limit)
	}
}
