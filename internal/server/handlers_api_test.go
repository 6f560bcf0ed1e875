package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/pipeline"
)

var apiTestDay = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

func decodeEnvelope(t *testing.T, body string) (string, string) {
	t.Helper()
	var resp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp.Error.Message, resp.Error.Type
}

func TestIngestEndpoint(t *testing.T) {
	srv, _, ing := newTestServer(t)

	var got pipeline.Request
	ing.ingestFn = func(_ context.Context, req pipeline.Request) (models.IngestionReport, error) {
		got = req
		return models.IngestionReport{
			RunID:   "run-42",
			Keyword: req.Keyword,
			Source:  models.SourceSample,
			Fetched: 10,
			Stored:  10,
		}, nil
	}

	body := `{"keyword":"roads","limit":10,"days_back":3,"source":"sample"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "roads", got.Keyword)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 3, got.DaysBack)
	assert.Equal(t, models.SourceSample, got.Source)

	var report models.IngestionReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "run-42", report.RunID)
	assert.Equal(t, 10, report.Stored)
}

func TestIngestEndpointExplicitWindow(t *testing.T) {
	srv, _, ing := newTestServer(t)

	var got pipeline.Request
	ing.ingestFn = func(_ context.Context, req pipeline.Request) (models.IngestionReport, error) {
		got = req
		return models.IngestionReport{RunID: "run-window"}, nil
	}

	body := `{"keyword":"roads","start":"2026-08-10","end":"2026-08-16"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), got.Window.Start)
	assert.Equal(t, time.Date(2026, 8, 16, 23, 59, 59, 0, time.UTC), got.Window.End)
}

func TestIngestEndpointRejectsBadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"keyword":`},
		{"start without end", `{"start":"2026-08-10"}`},
		{"unparseable start", `{"start":"not-a-date","end":"2026-08-16"}`},
		{"unparseable end", `{"start":"2026-08-10","end":"soonish"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(tc.body))
			srv.Handler().ServeHTTP(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			_, errType := decodeEnvelope(t, rr.Body.String())
			assert.Equal(t, "invalid_request_error", errType)
		})
	}
}

func TestIngestEndpointMapsValidationErrors(t *testing.T) {
	srv, _, ing := newTestServer(t)
	ing.ingestFn = func(context.Context, pipeline.Request) (models.IngestionReport, error) {
		return models.IngestionReport{}, &pipeline.ValidationError{Field: "limit", Reason: "must be between 1 and 500"}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`{"limit":9999}`))
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	msg, errType := decodeEnvelope(t, rr.Body.String())
	assert.Equal(t, "invalid_request_error", errType)
	assert.Contains(t, msg, "limit")
}

func TestIngestEndpointMapsInternalErrors(t *testing.T) {
	srv, _, ing := newTestServer(t)
	ing.ingestFn = func(context.Context, pipeline.Request) (models.IngestionReport, error) {
		return models.IngestionReport{}, errors.New("store exploded")
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`{}`))
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	_, errType := decodeEnvelope(t, rr.Body.String())
	assert.Equal(t, "api_error", errType)
}

func TestListTweetsEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedTweet(t, store, "p1", "roads", "good roads", apiTestDay, models.LabelPositive, 0.9)
	seedTweet(t, store, "p2", "roads", "bad roads", apiTestDay.Add(time.Hour), models.LabelNegative, 0.8)
	seedTweet(t, store, "p3", "schools", "fine schools", apiTestDay, models.LabelNeutral, 0.5)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets?keyword=roads&label=positive", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Tweets     []models.Tweet `json:"tweets"`
		TotalCount int            `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "p1", resp.Tweets[0].PostID)
	assert.Equal(t, models.LabelPositive, resp.Tweets[0].Sentiment)
}

func TestListTweetsEndpointEmptyIsArray(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tweets":[]`)
}

func TestListTweetsEndpointRejectsBadParams(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name  string
		query string
	}{
		{"unknown label", "label=angry"},
		{"bad start", "start=yesterday"},
		{"bad end", "end=2026-13-99"},
		{"negative limit", "limit=-5"},
		{"non-numeric limit", "limit=ten"},
		{"unknown order", "order=sideways"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets?"+tc.query, nil)
			srv.Handler().ServeHTTP(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			_, errType := decodeEnvelope(t, rr.Body.String())
			assert.Equal(t, "invalid_request_error", errType)
		})
	}
}

func TestDistributionEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedTweet(t, store, "p1", "roads", "great work", apiTestDay, models.LabelPositive, 0.8)
	seedTweet(t, store, "p2", "roads", "excellent job", apiTestDay.Add(time.Hour), models.LabelPositive, 0.6)
	seedTweet(t, store, "p3", "roads", "terrible mess", apiTestDay.Add(2*time.Hour), models.LabelNegative, 0.9)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment/distribution", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Total         int                      `json:"total"`
		Counts        map[models.Label]int     `json:"counts"`
		AvgConfidence map[models.Label]float64 `json:"avg_confidence"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Counts[models.LabelPositive])
	assert.Equal(t, 1, resp.Counts[models.LabelNegative])
	assert.Equal(t, 0, resp.Counts[models.LabelNeutral])
	assert.InDelta(t, 0.7, resp.AvgConfidence[models.LabelPositive], 1e-9)
}

func TestTimelineEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedTweet(t, store, "p1", "roads", "good", apiTestDay, models.LabelPositive, 0.8)
	seedTweet(t, store, "p2", "roads", "bad", apiTestDay.AddDate(0, 0, 1), models.LabelNegative, 0.7)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment/timeline", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Timeline []struct {
			Date  string       `json:"date"`
			Label models.Label `json:"label"`
			Count int          `json:"count"`
		} `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Timeline, 2)
	assert.Equal(t, "2026-08-20", resp.Timeline[0].Date)
	assert.Equal(t, "2026-08-21", resp.Timeline[1].Date)
}

func TestTopWordsEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedTweet(t, store, "p1", "roads", "bridge bridge tunnel", apiTestDay, models.LabelNeutral, 0.5)
	seedTweet(t, store, "p2", "roads", "bridge tunnel highway", apiTestDay.Add(time.Hour), models.LabelNeutral, 0.5)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/keywords/top?limit=2", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Words []struct {
			Word  string `json:"word"`
			Count int    `json:"count"`
		} `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Words, 2)
	assert.Equal(t, "bridge", resp.Words[0].Word)
	assert.Equal(t, 3, resp.Words[0].Count)
	assert.Equal(t, "tunnel", resp.Words[1].Word)
}

func TestResetEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedTweet(t, store, "p1", "roads", "one", apiTestDay, models.LabelNeutral, 0.5)
	seedTweet(t, store, "p2", "roads", "two", apiTestDay.Add(time.Hour), models.LabelNeutral, 0.5)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Status  string `json:"status"`
		Deleted int    `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "reset", resp.Status)
	assert.Equal(t, 2, resp.Deleted)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
