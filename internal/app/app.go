package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"NewswireScanner/internal/config"
	"NewswireScanner/internal/fetch"
	"NewswireScanner/internal/infrastructure/cache"
	"NewswireScanner/internal/infrastructure/feed"
	"NewswireScanner/internal/infrastructure/proxylist"
	"NewswireScanner/internal/infrastructure/scheduler"
	"NewswireScanner/internal/infrastructure/storage"
	"NewswireScanner/internal/infrastructure/telegram"
	"NewswireScanner/internal/logging"
	"NewswireScanner/internal/ports"
	"NewswireScanner/internal/proxy"
	"NewswireScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	headlines *cache.HeadlineCache
	logger    *slog.Logger
}

// New builds a runnable application instance from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	proxySource := proxylist.New(cfg.Proxies.ListURL, nil, baseLogger.With("component", "proxylist"))
	pool := proxy.NewPool(proxySource, baseLogger.With("component", "proxypool"))

	policy := fetch.Policy{
		MaxAttempts:           cfg.Fetch.MaxAttempts,
		Delay:                 time.Duration(cfg.Fetch.DelaySeconds) * time.Second,
		ProxyFailureThreshold: cfg.Fetch.ProxyFailureThreshold,
	}
	pages := fetch.NewClient(pool, policy, baseLogger.With("component", "fetch"))
	fetcher := fetch.NewArticleFetcher(pages, baseLogger.With("component", "fetcher"))

	source := feed.NewAtomSource(cfg.Feed.URL, nil, baseLogger.With("component", "feed"))

	app := &Application{cfg: cfg, logger: baseLogger}

	var repository ports.RecordRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		app.db = db
		repository = storage.NewPostgresRepository(db)
	}

	var headlines ports.HeadlineCache
	if cfg.Redis.URL != "" {
		hc, err := cache.NewHeadlineCache(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		if err := hc.Ping(ctx); err != nil {
			baseLogger.Warn("headline cache unreachable, continuing without it", "error", err)
			_ = hc.Close()
		} else {
			app.headlines = hc
			headlines = hc
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Fetcher:    fetcher,
		Repository: repository,
		Cache:      headlines,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
		BatchSize:  cfg.Feed.BatchSize,
	})

	if cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute)
		app.scheduler = usecase.NewScheduler(driver, app.pipeline)
	}

	return app, nil
}

// Run executes one batch, or keeps batching on the configured interval until
// the context is cancelled when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return a.scheduler.Stop(context.Background())
	}

	return a.pipeline.ProcessBatch(ctx)
}

// Close releases database and cache handles.
func (a *Application) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
	if a.headlines != nil {
		if err := a.headlines.Close(); err != nil {
			a.logger.Warn("close headline cache", "error", err)
		}
	}
}
