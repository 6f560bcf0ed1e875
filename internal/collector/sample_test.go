package collector

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetflow/internal/models"
)

func testWindow() models.Window {
	end := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	return models.Window{Start: end.Add(-7 * 24 * time.Hour), End: end}
}

func TestSampleSourceDeterministic(t *testing.T) {
	window := testWindow()

	first, err := NewSampleSource(42).Search(context.Background(), "Meghalaya Govt", 25, window)
	require.NoError(t, err)
	second, err := NewSampleSource(42).Search(context.Background(), "Meghalaya Govt", 25, window)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSampleSourceSeedChangesOutput(t *testing.T) {
	window := testWindow()

	a, err := NewSampleSource(1).Search(context.Background(), "roads", 25, window)
	require.NoError(t, err)
	b, err := NewSampleSource(2).Search(context.Background(), "roads", 25, window)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSampleSourceCountAndWindow(t *testing.T) {
	window := testWindow()

	posts, err := NewSampleSource(42).Search(context.Background(), "roads", 50, window)
	require.NoError(t, err)
	require.Len(t, posts, 50)

	for _, p := range posts {
		assert.True(t, window.Contains(p.CreatedAt), "post %s outside window: %s", p.PostID, p.CreatedAt)
		assert.Equal(t, "roads", p.Keyword)
		assert.NotEmpty(t, p.Username)
		assert.Contains(t, p.Content, "roads")
	}
}

func TestSampleSourceUniquePostIDs(t *testing.T) {
	posts, err := NewSampleSource(42).Search(context.Background(), "roads", 100, testWindow())
	require.NoError(t, err)

	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		_, dup := seen[p.PostID]
		assert.False(t, dup, "duplicate post id %s", p.PostID)
		seen[p.PostID] = struct{}{}
	}
}

func TestSampleSourceIDsDifferAcrossWindows(t *testing.T) {
	w1 := testWindow()
	w2 := models.Window{Start: w1.Start.Add(-24 * time.Hour), End: w1.End.Add(-24 * time.Hour)}

	a, err := NewSampleSource(42).Search(context.Background(), "roads", 1, w1)
	require.NoError(t, err)
	b, err := NewSampleSource(42).Search(context.Background(), "roads", 1, w2)
	require.NoError(t, err)

	assert.NotEqual(t, a[0].PostID, b[0].PostID)
	assert.True(t, strings.HasPrefix(a[0].PostID, "sample_0_"))
}

func TestSampleSourceZeroSpanWindow(t *testing.T) {
	instant := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	window := models.Window{Start: instant, End: instant}

	posts, err := NewSampleSource(42).Search(context.Background(), "roads", 5, window)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for _, p := range posts {
		assert.Equal(t, instant, p.CreatedAt)
	}
}

func TestSampleSourceSentimentMix(t *testing.T) {
	posts, err := NewSampleSource(42).Search(context.Background(), "roads", 300, testWindow())
	require.NoError(t, err)

	templateSets := map[string][]string{
		"positive": positiveTemplates,
		"negative": negativeTemplates,
		"neutral":  neutralTemplates,
	}
	counts := map[string]int{}
	for _, p := range posts {
		for kind, templates := range templateSets {
			for _, tpl := range templates {
				if p.Content == sprintfTemplate(tpl, "roads") {
					counts[kind]++
				}
			}
		}
	}

	total := counts["positive"] + counts["negative"] + counts["neutral"]
	assert.Equal(t, 300, total, "every post should come from a known template")
	// Weighted mix leaves generous room: positive 40%, others 30% each.
	assert.Greater(t, counts["positive"], 60)
	assert.Greater(t, counts["negative"], 40)
	assert.Greater(t, counts["neutral"], 40)
}

func sprintfTemplate(tpl, keyword string) string {
	return strings.Replace(tpl, "%s", keyword, 1)
}

func TestSampleSourceName(t *testing.T) {
	assert.Equal(t, models.SourceSample, NewSampleSource(1).Name())
}
