package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/pipeline"
)

// --- Mock Ingester ---

type mockIngester struct {
	ingestFn func(ctx context.Context, req pipeline.Request) (models.IngestionReport, error)
}

func (m *mockIngester) Ingest(ctx context.Context, req pipeline.Request) (models.IngestionReport, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, req)
	}
	return models.IngestionReport{
		RunID:   "run-test",
		Keyword: req.Keyword,
		Source:  models.SourceSample,
	}, nil
}

// --- fixture ---

func newTestServer(t *testing.T) (*Server, *db.Store, *mockIngester) {
	t.Helper()

	store, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ing := &mockIngester{}
	srv, err := New(Options{
		Store:           store,
		Pipeline:        ing,
		Engine:          "vader",
		DefaultKeyword:  "Meghalaya Govt",
		DefaultLimit:    100,
		DefaultDaysBack: 7,
		Version:         "test",
	})
	require.NoError(t, err)
	return srv, store, ing
}

func seedTweet(t *testing.T, store *db.Store, postID, keyword, content string, createdAt time.Time, label models.Label, score float64) {
	t.Helper()

	tweet := models.NewTweet(models.Post{
		PostID:    postID,
		Content:   content,
		Username:  "tester",
		CreatedAt: createdAt,
		Keyword:   keyword,
	}, models.Result{
		Label:      label,
		Confidence: score,
		Positive:   0.3,
		Negative:   0.3,
		Neutral:    0.4,
	}, models.SourceSample, createdAt.Add(time.Minute))
	require.NoError(t, store.InsertTweet(context.Background(), &tweet))
}
