package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spacesedan/tweetflow/internal/models"
)

const defaultQueryLimit = 100

// Filter narrows reads to a keyword, label and time range. The zero value
// matches everything.
type Filter struct {
	// Keyword is matched as a substring of the stored keyword column.
	Keyword string
	// Label restricts rows to one sentiment class when set.
	Label models.Label
	// Start and End bound created_at, inclusive on both ends.
	Start time.Time
	End   time.Time
	// Limit caps QueryTweets results; zero means defaultQueryLimit.
	// ExportCSV streams every matching row when Limit is zero.
	Limit int
	// Order is "asc" or "desc" by created_at. Empty means "desc".
	Order string
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Keyword != "" {
		conds = append(conds, `keyword LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Keyword)+"%")
	}
	if f.Label != "" {
		conds = append(conds, "sentiment = ?")
		args = append(args, string(f.Label))
	}
	if !f.Start.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Start.UTC().Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.End.UTC().Format(time.RFC3339))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE wildcards so the keyword is matched as a
// literal substring.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (f Filter) orderClause() string {
	if strings.EqualFold(f.Order, "asc") {
		return " ORDER BY created_at ASC"
	}
	return " ORDER BY created_at DESC"
}

const tweetColumns = `id, tweet_id, content, username, created_at, keyword,
	sentiment, sentiment_score, positive_score, negative_score, neutral_score,
	source, content_hash, scraped_at`

// InsertTweet stores one classified tweet and assigns its row ID. A tweet
// whose content hash or source ID already exists returns ErrDuplicate and
// leaves the store unchanged.
func (s *Store) InsertTweet(ctx context.Context, t *models.Tweet) error {
	if t.ContentHash == "" {
		t.ContentHash = models.ContentHash(t.Content, t.CreatedAt, t.Keyword)
	}
	scrapedAt := t.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tweets (tweet_id, content, username, created_at, keyword,
			sentiment, sentiment_score, positive_score, negative_score,
			neutral_score, source, content_hash, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PostID, t.Content, t.Username, t.CreatedAt.UTC().Format(time.RFC3339),
		t.Keyword, string(t.Sentiment), t.SentimentScore, t.PositiveScore,
		t.NegativeScore, t.NeutralScore, t.Source, t.ContentHash,
		scrapedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting tweet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted id: %w", err)
	}
	t.ID = id
	t.ScrapedAt = scrapedAt
	return nil
}

// QueryTweets returns tweets matching the filter, newest first unless the
// filter asks for ascending order.
func (s *Store) QueryTweets(ctx context.Context, f Filter) ([]models.Tweet, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > models.MaxIngestLimit {
		limit = models.MaxIngestLimit
	}

	where, args := f.where()
	query := "SELECT " + tweetColumns + " FROM tweets" + where + f.orderClause() + " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tweets: %w", err)
	}
	defer rows.Close()

	var results []models.Tweet
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTweet(row rowScanner) (models.Tweet, error) {
	var t models.Tweet
	var sentiment, createdAt, scrapedAt string
	if err := row.Scan(&t.ID, &t.PostID, &t.Content, &t.Username, &createdAt,
		&t.Keyword, &sentiment, &t.SentimentScore, &t.PositiveScore,
		&t.NegativeScore, &t.NeutralScore, &t.Source, &t.ContentHash,
		&scrapedAt); err != nil {
		return models.Tweet{}, fmt.Errorf("scanning tweet: %w", err)
	}

	t.Sentiment = models.Label(sentiment)

	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Tweet{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.ScrapedAt, err = time.Parse(time.RFC3339, scrapedAt); err != nil {
		return models.Tweet{}, fmt.Errorf("parsing scraped_at: %w", err)
	}
	return t, nil
}

// Aggregate holds per-label counts and mean confidence over a filtered set.
type Aggregate struct {
	Total         int                      `json:"total"`
	Counts        map[models.Label]int     `json:"counts"`
	AvgConfidence map[models.Label]float64 `json:"avg_confidence"`
}

// Aggregate computes the sentiment distribution for tweets matching the
// filter. Labels with no rows are present with zero values so callers can
// render all three classes.
func (s *Store) Aggregate(ctx context.Context, f Filter) (Aggregate, error) {
	where, args := f.where()
	query := `SELECT sentiment, COUNT(*), AVG(sentiment_score) FROM tweets` +
		where + ` GROUP BY sentiment`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregating tweets: %w", err)
	}
	defer rows.Close()

	agg := Aggregate{
		Counts:        make(map[models.Label]int, len(models.Labels)),
		AvgConfidence: make(map[models.Label]float64, len(models.Labels)),
	}
	for _, label := range models.Labels {
		agg.Counts[label] = 0
		agg.AvgConfidence[label] = 0
	}

	for rows.Next() {
		var sentiment string
		var count int
		var avg float64
		if err := rows.Scan(&sentiment, &count, &avg); err != nil {
			return Aggregate{}, fmt.Errorf("scanning aggregate row: %w", err)
		}
		label := models.Label(sentiment)
		agg.Counts[label] = count
		agg.AvgConfidence[label] = avg
		agg.Total += count
	}
	return agg, rows.Err()
}

// TimelineBucket is one day of sentiment counts for one label.
type TimelineBucket struct {
	Date          string       `json:"date"`
	Label         models.Label `json:"label"`
	Count         int          `json:"count"`
	AvgConfidence float64      `json:"avg_confidence"`
}

// Timeline returns per-day, per-label counts and mean confidence in
// ascending date order.
func (s *Store) Timeline(ctx context.Context, f Filter) ([]TimelineBucket, error) {
	where, args := f.where()
	query := `SELECT DATE(created_at), sentiment, COUNT(*), AVG(sentiment_score)
		FROM tweets` + where + `
		GROUP BY DATE(created_at), sentiment
		ORDER BY DATE(created_at) ASC, sentiment ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	var buckets []TimelineBucket
	for rows.Next() {
		var b TimelineBucket
		var sentiment string
		if err := rows.Scan(&b.Date, &sentiment, &b.Count, &b.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scanning timeline row: %w", err)
		}
		b.Label = models.Label(sentiment)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Count returns the total number of stored tweets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tweets").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tweets: %w", err)
	}
	return n, nil
}

// DistinctKeywords lists every keyword that has at least one stored tweet.
func (s *Store) DistinctKeywords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT keyword FROM tweets ORDER BY keyword ASC")
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// Reset deletes every stored tweet. The schema stays in place.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tweets"); err != nil {
		return fmt.Errorf("resetting tweets: %w", err)
	}
	// Restart AUTOINCREMENT. sqlite_sequence exists only after the first
	// insert, so this is best effort.
	_, _ = s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'tweets'")
	return nil
}
