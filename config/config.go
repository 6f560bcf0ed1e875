package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/subosito/gotenv"

	"github.com/spacesedan/tweetflow/internal/models"
)

// Tweet source and classifier engine selectors. SourceAuto tries the live
// Twitter client first and falls back to the sample generator when the client
// is unavailable or fails.
const (
	SourceAuto = "auto"

	EngineVADER       = "vader"
	EngineTransformer = "transformer"
)

const databaseFile = "tweets.db"

// Config carries every runtime setting for the service. Values come from the
// OS environment, optionally seeded from config/envs/.env.<APP_ENV>.
type Config struct {
	AppEnv string

	Host string
	Port string

	DataDir string

	DefaultKeyword string
	MaxTweets      int
	DaysBack       int
	Source         string

	ClassifierEngine string
	ModelDir         string

	TwitterBearerToken string
	TwitterAPIKey      string
	TwitterAPISecret   string

	SampleSeed   int64
	FetchTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// LoadEnv seeds the OS environment from config/envs/.env.<env> when the file
// exists. Missing files are not an error so containerized deployments can rely
// on real environment variables alone.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment")
	}
}

// Load builds a Config from the environment and validates it. Invalid values
// fail here, at startup, rather than at first use.
func Load() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	LoadEnv(appEnv)

	maxTweets, err := getEnvInt("MAX_TWEETS", 100)
	if err != nil {
		return nil, err
	}
	daysBack, err := getEnvInt("DAYS_BACK", 7)
	if err != nil {
		return nil, err
	}
	sampleSeed, err := getEnvInt64("SAMPLE_SEED", 42)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getEnvDuration("FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             appEnv,
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		DefaultKeyword:     getEnv("DEFAULT_KEYWORD", "Meghalaya Govt"),
		MaxTweets:          maxTweets,
		DaysBack:           daysBack,
		Source:             getEnv("TWEET_SOURCE", SourceAuto),
		ClassifierEngine:   getEnv("CLASSIFIER_ENGINE", EngineVADER),
		ModelDir:           getEnv("MODEL_DIR", "./models"),
		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		TwitterAPIKey:      getEnv("TWITTER_API_KEY", ""),
		TwitterAPISecret:   getEnv("TWITTER_API_SECRET", ""),
		SampleSeed:         sampleSeed,
		FetchTimeout:       fetchTimeout,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that has a constrained domain.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: invalid PORT %q", c.Port)
	}
	if c.DefaultKeyword == "" {
		return fmt.Errorf("config: DEFAULT_KEYWORD must not be empty")
	}
	if c.MaxTweets < 1 || c.MaxTweets > models.MaxIngestLimit {
		return fmt.Errorf("config: MAX_TWEETS must be between 1 and %d, got %d", models.MaxIngestLimit, c.MaxTweets)
	}
	if c.DaysBack < 1 || c.DaysBack > 30 {
		return fmt.Errorf("config: DAYS_BACK must be between 1 and 30, got %d", c.DaysBack)
	}
	switch c.Source {
	case SourceAuto, models.SourceTwitter, models.SourceSample:
	default:
		return fmt.Errorf("config: unknown TWEET_SOURCE %q", c.Source)
	}
	switch c.ClassifierEngine {
	case EngineVADER, EngineTransformer:
	default:
		return fmt.Errorf("config: unknown CLASSIFIER_ENGINE %q", c.ClassifierEngine)
	}
	if c.Source == models.SourceTwitter && !c.TwitterConfigured() {
		return fmt.Errorf("config: TWEET_SOURCE=twitter requires TWITTER_BEARER_TOKEN or TWITTER_API_KEY and TWITTER_API_SECRET")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config: FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	return nil
}

// TwitterConfigured reports whether enough credentials are present to build
// the live source, either a bearer token or an API key pair.
func (c *Config) TwitterConfigured() bool {
	return c.TwitterBearerToken != "" || (c.TwitterAPIKey != "" && c.TwitterAPISecret != "")
}

// Addr is the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DatabasePath is the location of the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseFile)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return d, nil
}
