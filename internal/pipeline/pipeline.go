// Package pipeline runs the fetch, classify, store cycle for one keyword at
// a time. Posts flow through one by one; a failure on any single post never
// aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/tweetflow/config"
	"github.com/spacesedan/tweetflow/internal/collector"
	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/metrics"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/sentiment"
)

// Store is the slice of the persistence layer the pipeline writes through.
type Store interface {
	InsertTweet(ctx context.Context, t *models.Tweet) error
}

// Options wires a Pipeline. Classifier, Sample and Store are required; Live
// may be nil when no Twitter credentials are configured.
type Options struct {
	Classifier sentiment.Classifier
	Live       collector.Source
	Sample     collector.Source
	Store      Store
	Clock      clockwork.Clock

	DefaultKeyword  string
	DefaultLimit    int
	DefaultDaysBack int
	// DefaultSource is the mode used when a request does not name one:
	// config.SourceAuto, models.SourceTwitter or models.SourceSample.
	DefaultSource string
	FetchTimeout  time.Duration
}

// Pipeline is safe for sequential use; callers wanting concurrent ingestion
// must serialize access (the HTTP layer holds a mutex).
type Pipeline struct {
	classifier sentiment.Classifier
	live       collector.Source
	sample     collector.Source
	store      Store
	clock      clockwork.Clock

	defaultKeyword  string
	defaultLimit    int
	defaultDaysBack int
	defaultSource   string
	fetchTimeout    time.Duration
}

func New(opts Options) (*Pipeline, error) {
	if opts.Classifier == nil {
		return nil, errors.New("pipeline: classifier is required")
	}
	if opts.Sample == nil {
		return nil, errors.New("pipeline: sample source is required")
	}
	if opts.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DefaultKeyword == "" {
		return nil, errors.New("pipeline: default keyword is required")
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > models.MaxIngestLimit {
		return nil, fmt.Errorf("pipeline: default limit must be between 1 and %d", models.MaxIngestLimit)
	}
	if opts.DefaultDaysBack <= 0 {
		opts.DefaultDaysBack = 7
	}
	if opts.DefaultSource == "" {
		opts.DefaultSource = config.SourceAuto
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}

	return &Pipeline{
		classifier:      opts.Classifier,
		live:            opts.Live,
		sample:          opts.Sample,
		store:           opts.Store,
		clock:           opts.Clock,
		defaultKeyword:  opts.DefaultKeyword,
		defaultLimit:    opts.DefaultLimit,
		defaultDaysBack: opts.DefaultDaysBack,
		defaultSource:   opts.DefaultSource,
		fetchTimeout:    opts.FetchTimeout,
	}, nil
}

// Request describes one ingestion run. Zero values fall back to the
// pipeline defaults.
type Request struct {
	Keyword string
	Limit   int
	// Window bounds the run explicitly. When zero it is derived from
	// DaysBack (or the default days back) ending now.
	Window   models.Window
	DaysBack int
	// Source overrides the default mode for this run.
	Source string
}

// ValidationError marks a request the caller can fix; the HTTP layer maps it
// to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type resolvedRequest struct {
	keyword string
	limit   int
	window  models.Window
	source  string
}

func (p *Pipeline) resolve(req Request) (resolvedRequest, error) {
	r := resolvedRequest{
		keyword: strings.TrimSpace(req.Keyword),
		limit:   req.Limit,
		source:  req.Source,
	}

	if r.keyword == "" {
		r.keyword = p.defaultKeyword
	}
	if r.keyword == "" {
		return r, &ValidationError{Field: "keyword", Reason: "must not be empty"}
	}

	if r.limit == 0 {
		r.limit = p.defaultLimit
	}
	if r.limit < 0 || r.limit > models.MaxIngestLimit {
		return r, &ValidationError{
			Field:  "limit",
			Reason: fmt.Sprintf("must be between 1 and %d", models.MaxIngestLimit),
		}
	}

	switch {
	case !req.Window.Start.IsZero() || !req.Window.End.IsZero():
		if err := req.Window.Validate(); err != nil {
			return r, &ValidationError{Field: "window", Reason: err.Error()}
		}
		r.window = req.Window
	default:
		days := req.DaysBack
		if days == 0 {
			days = p.defaultDaysBack
		}
		if days < 1 || days > 30 {
			return r, &ValidationError{Field: "days_back", Reason: "must be between 1 and 30"}
		}
		r.window = models.WindowDaysBack(p.clock.Now(), days)
	}

	if r.source == "" {
		r.source = p.defaultSource
	}
	switch r.source {
	case config.SourceAuto, models.SourceTwitter, models.SourceSample:
	default:
		return r, &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", r.source)}
	}

	return r, nil
}

// Ingest fetches posts for the request, classifies them one at a time and
// stores the results. The returned report is accurate even on partial
// completion; the error is non-nil only when the run as a whole could not
// proceed (validation, no posts obtainable, cancelled context).
func (p *Pipeline) Ingest(ctx context.Context, req Request) (models.IngestionReport, error) {
	r, err := p.resolve(req)
	if err != nil {
		return models.IngestionReport{}, err
	}

	started := p.clock.Now()
	report := models.IngestionReport{
		RunID:     uuid.NewString(),
		Keyword:   r.keyword,
		Window:    r.window,
		StartedAt: started,
	}

	slog.Info("[Pipeline] Starting ingestion run",
		slog.String("run_id", report.RunID),
		slog.String("keyword", r.keyword),
		slog.Int("limit", r.limit),
		slog.String("window", r.window.String()),
		slog.String("source", r.source))

	posts, source, degraded, err := p.fetch(ctx, r)
	if err != nil {
		metrics.IngestRunsTotal.WithLabelValues(r.source, "error").Inc()
		report.Elapsed = p.clock.Since(started)
		return report, err
	}
	report.Source = source.Name()
	report.Degraded = degraded
	report.Fetched = len(posts)

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			p.finish(&report, started, "error")
			return report, err
		}
		p.process(ctx, &report, post, source.Name(), r.window)
	}

	p.finish(&report, started, "ok")
	if degraded {
		metrics.IngestDegradedRunsTotal.Inc()
	}

	slog.Info("[Pipeline] Run complete",
		slog.String("run_id", report.RunID),
		slog.String("source", report.Source),
		slog.Bool("degraded", report.Degraded),
		slog.Int("fetched", report.Fetched),
		slog.Int("stored", report.Stored),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("skipped", report.Skipped),
		slog.Duration("elapsed", report.Elapsed))
	return report, nil
}

// fetch picks the working source for the run. Sample mode goes straight to
// the generator; twitter and auto modes try the live source first and fall
// back to synthetic data, marking the run degraded.
func (p *Pipeline) fetch(ctx context.Context, r resolvedRequest) ([]models.Post, collector.Source, bool, error) {
	if r.source == models.SourceSample {
		posts, err := p.sample.Search(ctx, r.keyword, r.limit, r.window)
		if err != nil {
			return nil, nil, false, fmt.Errorf("generating sample posts: %w", err)
		}
		return capPosts(posts, r.limit), p.sample, false, nil
	}

	if p.live != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
		posts, err := p.live.Search(fetchCtx, r.keyword, r.limit, r.window)
		cancel()
		switch {
		case err != nil:
			slog.Warn("[Pipeline] Live fetch failed, falling back to sample data",
				slog.String("error", err.Error()))
		case len(posts) == 0:
			slog.Warn("[Pipeline] Live fetch returned no posts, falling back to sample data",
				slog.String("keyword", r.keyword))
		default:
			return capPosts(posts, r.limit), p.live, false, nil
		}
	} else {
		slog.Warn("[Pipeline] No live source configured, falling back to sample data")
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, false, err
	}

	posts, err := p.sample.Search(ctx, r.keyword, r.limit, r.window)
	if err != nil {
		return nil, nil, false, fmt.Errorf("generating fallback posts: %w", err)
	}
	return capPosts(posts, r.limit), p.sample, true, nil
}

// process handles a single post: window check, classification, insert.
func (p *Pipeline) process(ctx context.Context, report *models.IngestionReport, post models.Post, source string, window models.Window) {
	if !window.Contains(post.CreatedAt) {
		report.Skipped++
		metrics.IngestTweetsTotal.WithLabelValues("skipped").Inc()
		slog.Debug("[Pipeline] Dropping post outside window",
			slog.String("post_id", post.PostID),
			slog.Time("created_at", post.CreatedAt))
		return
	}

	classifyStart := p.clock.Now()
	result, err := p.classifier.Classify(ctx, post.Content)
	metrics.ClassificationDuration.WithLabelValues(p.classifier.Name()).
		Observe(p.clock.Since(classifyStart).Seconds())
	if err != nil {
		report.Skipped++
		metrics.IngestTweetsTotal.WithLabelValues("skipped").Inc()
		slog.Warn("[Pipeline] Classification failed, skipping post",
			slog.String("post_id", post.PostID),
			slog.String("error", err.Error()))
		return
	}
	report.Classified++
	metrics.ClassificationResultsTotal.WithLabelValues(string(result.Label)).Inc()

	tweet := models.NewTweet(post, result, source, p.clock.Now())
	if err := p.store.InsertTweet(ctx, &tweet); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			report.Duplicates++
			metrics.IngestTweetsTotal.WithLabelValues("duplicate").Inc()
			return
		}
		report.Skipped++
		metrics.IngestTweetsTotal.WithLabelValues("skipped").Inc()
		slog.Error("[Pipeline] Failed to store tweet",
			slog.String("post_id", post.PostID),
			slog.String("error", err.Error()))
		return
	}
	report.Stored++
	metrics.IngestTweetsTotal.WithLabelValues("stored").Inc()
}

func (p *Pipeline) finish(report *models.IngestionReport, started time.Time, result string) {
	report.Elapsed = p.clock.Since(started)
	metrics.IngestRunsTotal.WithLabelValues(report.Source, result).Inc()
	metrics.IngestRunDuration.Observe(report.Elapsed.Seconds())
}

// capPosts enforces the run limit even against a misbehaving source.
func capPosts(posts []models.Post, limit int) []models.Post {
	if len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
