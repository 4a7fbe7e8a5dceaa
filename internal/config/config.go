package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWSWIRE_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	redisURLEnv       = "REDIS_URL"
	feedURLEnv        = "FEED_URL"
	proxyListURLEnv   = "PROXY_LIST_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Feed          FeedConfig         `yaml:"feed"`
	Proxies       ProxyConfig        `yaml:"proxies"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig points at the optional headline dedup cache.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// FeedConfig describes the upstream newswire Atom feed.
type FeedConfig struct {
	URL       string `yaml:"url"`
	BatchSize int    `yaml:"batchSize"`
}

// ProxyConfig points the pool at its endpoint source.
type ProxyConfig struct {
	ListURL string `yaml:"listUrl"`
}

// FetchConfig bounds the retry loop around proxied article fetches.
type FetchConfig struct {
	MaxAttempts           int `yaml:"maxAttempts"`
	DelaySeconds          int `yaml:"delaySeconds"`
	ProxyFailureThreshold int `yaml:"proxyFailureThreshold"`
}

// SchedulerConfig enables resident operation on a fixed interval. When
// disabled the process runs a single batch and exits.
type SchedulerConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"intervalMinutes"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send ticker alerts.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(redisURLEnv); v != "" {
		c.Redis.URL = v
	}

	if v := os.Getenv(feedURLEnv); v != "" {
		c.Feed.URL = v
	}

	if v := os.Getenv(proxyListURLEnv); v != "" {
		c.Proxies.ListURL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Redis.URL != "" {
		base.Redis = override.Redis
	}

	if override.Feed.URL != "" {
		base.Feed.URL = override.Feed.URL
	}
	if override.Feed.BatchSize > 0 {
		base.Feed.BatchSize = override.Feed.BatchSize
	}

	if override.Proxies.ListURL != "" {
		base.Proxies = override.Proxies
	}

	if override.Fetch.MaxAttempts > 0 {
		base.Fetch.MaxAttempts = override.Fetch.MaxAttempts
	}
	if override.Fetch.DelaySeconds > 0 {
		base.Fetch.DelaySeconds = override.Fetch.DelaySeconds
	}
	if override.Fetch.ProxyFailureThreshold > 0 {
		base.Fetch.ProxyFailureThreshold = override.Fetch.ProxyFailureThreshold
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Redis:    RedisConfig{URL: ""},
		Feed: FeedConfig{
			URL:       "https://www.globenewswire.com/Atom/search/srvpLA0OZACn9KBGWOftivocEmgym4Tjxh69n0TAmMM%3d",
			BatchSize: 10,
		},
		Proxies: ProxyConfig{ListURL: "https://free-proxy-list.net/"},
		Fetch: FetchConfig{
			MaxAttempts:           6,
			DelaySeconds:          10,
			ProxyFailureThreshold: 4,
		},
		Scheduler: SchedulerConfig{Enabled: false, IntervalMinutes: 5},
	}
}
