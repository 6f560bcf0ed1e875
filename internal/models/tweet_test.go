package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	cases := map[string]Label{
		"negative": LabelNegative,
		"NEUTRAL":  LabelNeutral,
		"Positive": LabelPositive,
		"LABEL_0":  LabelNegative,
		"LABEL_1":  LabelNeutral,
		"LABEL_2":  LabelPositive,
	}
	for raw, want := range cases {
		got, err := ParseLabel(raw)
		require.NoError(t, err, "ParseLabel(%q)", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseLabel("ecstatic")
	assert.Error(t, err)
}

func TestLabelValid(t *testing.T) {
	for _, l := range Labels {
		assert.True(t, l.Valid())
	}
	assert.False(t, Label("angry").Valid())
	assert.False(t, Label("").Valid())
}

func TestContentHashStable(t *testing.T) {
	ts := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	h1 := ContentHash("some post", ts, "Meghalaya Govt")
	h2 := ContentHash("some post", ts, "Meghalaya Govt")
	assert.Equal(t, h1, h2)

	// Any component changing must change the key.
	assert.NotEqual(t, h1, ContentHash("other post", ts, "Meghalaya Govt"))
	assert.NotEqual(t, h1, ContentHash("some post", ts.Add(time.Second), "Meghalaya Govt"))
	assert.NotEqual(t, h1, ContentHash("some post", ts, "Shillong"))
}

func TestContentHashIgnoresLocation(t *testing.T) {
	utc := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	ist := utc.In(time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t,
		ContentHash("post", utc, "kw"),
		ContentHash("post", ist, "kw"),
	)
}

func TestWindowValidate(t *testing.T) {
	now := time.Now()

	ok := Window{Start: now.Add(-time.Hour), End: now}
	assert.NoError(t, ok.Validate())

	same := Window{Start: now, End: now}
	assert.NoError(t, same.Validate())

	inverted := Window{Start: now, End: now.Add(-time.Hour)}
	assert.Error(t, inverted.Validate())

	assert.Error(t, Window{}.Validate())
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 8, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(w.Start.Add(36*time.Hour)))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}

func TestNewTweetCarriesClassification(t *testing.T) {
	post := Post{
		PostID:    "123",
		Content:   "Great initiative!",
		Username:  "shillong_resident",
		CreatedAt: time.Date(2023, 6, 2, 9, 30, 0, 0, time.UTC),
		Keyword:   "Meghalaya Govt",
	}
	res := Result{Label: LabelPositive, Confidence: 0.91, Positive: 0.91, Negative: 0.04, Neutral: 0.05}
	scraped := time.Date(2023, 6, 3, 0, 0, 0, 0, time.UTC)

	tw := NewTweet(post, res, SourceSample, scraped)

	assert.Equal(t, LabelPositive, tw.Sentiment)
	assert.Equal(t, 0.91, tw.SentimentScore)
	assert.Equal(t, SourceSample, tw.Source)
	assert.Equal(t, scraped, tw.ScrapedAt)
	assert.Equal(t, ContentHash(post.Content, post.CreatedAt, post.Keyword), tw.ContentHash)
}
