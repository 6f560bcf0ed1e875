package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HOST", "PORT", "DATA_DIR", "DEFAULT_KEYWORD",
		"MAX_TWEETS", "DAYS_BACK", "TWEET_SOURCE", "CLASSIFIER_ENGINE",
		"MODEL_DIR", "TWITTER_BEARER_TOKEN", "TWITTER_API_KEY",
		"TWITTER_API_SECRET", "SAMPLE_SEED", "FETCH_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "Meghalaya Govt", cfg.DefaultKeyword)
	assert.Equal(t, 100, cfg.MaxTweets)
	assert.Equal(t, 7, cfg.DaysBack)
	assert.Equal(t, SourceAuto, cfg.Source)
	assert.Equal(t, EngineVADER, cfg.ClassifierEngine)
	assert.Equal(t, int64(42), cfg.SampleSeed)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "data/tweets.db", cfg.DatabasePath())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_KEYWORD", "assembly session")
	t.Setenv("MAX_TWEETS", "250")
	t.Setenv("DAYS_BACK", "14")
	t.Setenv("TWEET_SOURCE", "sample")
	t.Setenv("CLASSIFIER_ENGINE", "transformer")
	t.Setenv("SAMPLE_SEED", "7")
	t.Setenv("FETCH_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "assembly session", cfg.DefaultKeyword)
	assert.Equal(t, 250, cfg.MaxTweets)
	assert.Equal(t, 14, cfg.DaysBack)
	assert.Equal(t, "sample", cfg.Source)
	assert.Equal(t, EngineTransformer, cfg.ClassifierEngine)
	assert.Equal(t, int64(7), cfg.SampleSeed)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "notaport"},
		{"port out of range", "PORT", "70000"},
		{"max tweets zero", "MAX_TWEETS", "0"},
		{"max tweets over cap", "MAX_TWEETS", "9000"},
		{"max tweets not a number", "MAX_TWEETS", "lots"},
		{"days back zero", "DAYS_BACK", "0"},
		{"days back too large", "DAYS_BACK", "90"},
		{"unknown source", "TWEET_SOURCE", "mastodon"},
		{"unknown engine", "CLASSIFIER_ENGINE", "llm"},
		{"bad timeout", "FETCH_TIMEOUT", "soon"},
		{"negative timeout", "FETCH_TIMEOUT", "-5s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestTwitterSourceRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWEET_SOURCE", "twitter")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWITTER_BEARER_TOKEN")

	// Half a key pair is still unusable.
	t.Setenv("TWITTER_API_KEY", "key-123")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("TWITTER_API_SECRET", "secret-123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "twitter", cfg.Source)
	assert.True(t, cfg.TwitterConfigured())

	clearEnv(t)
	t.Setenv("TWEET_SOURCE", "twitter")
	t.Setenv("TWITTER_BEARER_TOKEN", "token-123")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.TwitterConfigured())
}
