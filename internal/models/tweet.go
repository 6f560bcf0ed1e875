package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Label is one of the three sentiment classes produced by the classifier.
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Labels lists every valid label in display order.
var Labels = []Label{LabelNegative, LabelNeutral, LabelPositive}

func (l Label) Valid() bool {
	switch l {
	case LabelNegative, LabelNeutral, LabelPositive:
		return true
	}
	return false
}

func (l Label) String() string { return string(l) }

// ParseLabel normalizes a raw label string to one of the three classes.
// It accepts the canonical names plus the index-style aliases emitted by
// some pretrained checkpoints (LABEL_0/LABEL_1/LABEL_2).
func ParseLabel(raw string) (Label, error) {
	switch raw {
	case "negative", "NEGATIVE", "Negative", "LABEL_0":
		return LabelNegative, nil
	case "neutral", "NEUTRAL", "Neutral", "LABEL_1":
		return LabelNeutral, nil
	case "positive", "POSITIVE", "Positive", "LABEL_2":
		return LabelPositive, nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", raw)
}

// Source identifies where a post came from.
const (
	SourceTwitter = "twitter"
	SourceSample  = "sample"
)

// Post is a raw social-media post as returned by a collector, before
// classification.
type Post struct {
	PostID       string    `json:"post_id"`
	Content      string    `json:"content"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"created_at"`
	Keyword      string    `json:"keyword"`
	URL          string    `json:"url,omitempty"`
	RetweetCount int       `json:"retweet_count"`
	LikeCount    int       `json:"like_count"`
}

// Result is the outcome of classifying a single text: the winning label,
// its confidence (the labeled class's probability) and the full class
// distribution. Positive+Negative+Neutral sums to 1.
type Result struct {
	Label      Label   `json:"sentiment_label"`
	Confidence float64 `json:"confidence"`
	Positive   float64 `json:"positive_score"`
	Negative   float64 `json:"negative_score"`
	Neutral    float64 `json:"neutral_score"`
}

// NeutralResult is the documented default for text that is empty after
// cleaning: neutral with an even class distribution.
func NeutralResult() Result {
	return Result{
		Label:      LabelNeutral,
		Confidence: 0.5,
		Positive:   0.33,
		Negative:   0.33,
		Neutral:    0.34,
	}
}

// Tweet is one classified post as persisted in the store. Rows are
// immutable after insertion.
type Tweet struct {
	ID             int64     `json:"id"`
	PostID         string    `json:"post_id"`
	Content        string    `json:"content"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"created_at"`
	Keyword        string    `json:"keyword"`
	Sentiment      Label     `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	PositiveScore  float64   `json:"positive_score"`
	NegativeScore  float64   `json:"negative_score"`
	NeutralScore   float64   `json:"neutral_score"`
	Source         string    `json:"source"`
	ContentHash    string    `json:"-"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// NewTweet builds a Tweet from a collected post and its classification,
// computing the de-duplication hash.
func NewTweet(post Post, result Result, source string, scrapedAt time.Time) Tweet {
	return Tweet{
		PostID:         post.PostID,
		Content:        post.Content,
		Username:       post.Username,
		CreatedAt:      post.CreatedAt.UTC(),
		Keyword:        post.Keyword,
		Sentiment:      result.Label,
		SentimentScore: result.Confidence,
		PositiveScore:  result.Positive,
		NegativeScore:  result.Negative,
		NeutralScore:   result.Neutral,
		Source:         source,
		ContentHash:    ContentHash(post.Content, post.CreatedAt, post.Keyword),
		ScrapedAt:      scrapedAt.UTC(),
	}
}

// ContentHash is the uniqueness key for a record: hex SHA-256 over
// content, creation time and keyword. Re-ingesting an overlapping window
// produces the same hash and therefore no duplicate row.
func ContentHash(content string, createdAt time.Time, keyword string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", content, createdAt.UTC().Format(time.RFC3339), keyword)
	return hex.EncodeToString(h.Sum(nil))
}
