package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/tweetflow/config"
	"github.com/spacesedan/tweetflow/internal/collector"
	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/pipeline"
	"github.com/spacesedan/tweetflow/internal/sentiment"
)

// buildPipeline assembles the classifier, the sources and the ingestion
// pipeline from config. Callers must Close the returned classifier; the
// transformer engine holds native ONNX resources.
func buildPipeline(cfg *config.Config, store *db.Store) (*pipeline.Pipeline, sentiment.Classifier, error) {
	classifier, err := sentiment.New(sentiment.Config{
		Engine:   cfg.ClassifierEngine,
		ModelDir: cfg.ModelDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing classifier: %w", err)
	}

	var live collector.Source
	if cfg.TwitterConfigured() {
		twitterSource, err := collector.NewTwitterSource(collector.Credentials{
			BearerToken: cfg.TwitterBearerToken,
			APIKey:      cfg.TwitterAPIKey,
			APISecret:   cfg.TwitterAPISecret,
		})
		if err != nil {
			classifier.Close()
			return nil, nil, fmt.Errorf("initializing twitter source: %w", err)
		}
		live = twitterSource
	} else {
		slog.Warn("[Main] No Twitter credentials set, live source disabled, runs will use synthetic data")
	}

	pipe, err := pipeline.New(pipeline.Options{
		Classifier:      classifier,
		Live:            live,
		Sample:          collector.NewSampleSource(cfg.SampleSeed),
		Store:           store,
		DefaultKeyword:  cfg.DefaultKeyword,
		DefaultLimit:    cfg.MaxTweets,
		DefaultDaysBack: cfg.DaysBack,
		DefaultSource:   cfg.Source,
		FetchTimeout:    cfg.FetchTimeout,
	})
	if err != nil {
		classifier.Close()
		return nil, nil, err
	}
	return pipe, classifier, nil
}

// parseTimeFlag accepts RFC3339 or a bare date. Bare dates are read as UTC
// midnight; with endOfDay set the value covers the whole day.
func parseTimeFlag(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not RFC3339 or YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC(), nil
}
