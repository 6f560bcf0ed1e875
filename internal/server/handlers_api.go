package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB

type ingestRequest struct {
	Keyword  string `json:"keyword"`
	Limit    int    `json:"limit"`
	DaysBack int    `json:"days_back"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Source   string `json:"source"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	preq := pipeline.Request{
		Keyword:  req.Keyword,
		Limit:    req.Limit,
		DaysBack: req.DaysBack,
		Source:   req.Source,
	}
	if req.Start != "" || req.End != "" {
		if req.Start == "" || req.End == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "start and end must be given together")
			return
		}
		start, err := parseTimeParam(req.Start, false)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid start: %v", err)
			return
		}
		end, err := parseTimeParam(req.End, true)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid end: %v", err)
			return
		}
		preq.Window = models.Window{Start: start, End: end}
	}

	// One run at a time; concurrent requests queue here rather than
	// hammering the classifier and the single-writer store.
	s.ingestMu.Lock()
	report, err := s.pipeline.Ingest(r.Context(), preq)
	s.ingestMu.Unlock()
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", verr)
			return
		}
		slog.Error("[Server] Ingestion run failed", slog.String("error", err.Error()))
		httpError(w, http.StatusInternalServerError, "api_error", "ingestion failed: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListTweets(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	tweets, err := s.store.QueryTweets(r.Context(), f)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "querying tweets: %v", err)
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tweets":      tweets,
		"total_count": len(tweets),
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	agg, err := s.store.Aggregate(r.Context(), f)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "aggregating sentiment: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	buckets, err := s.store.Timeline(r.Context(), f)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "building timeline: %v", err)
		return
	}
	if buckets == nil {
		buckets = []db.TimelineBucket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"timeline": buckets})
}

func (s *Server) handleTopWords(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	words, err := s.store.TopWords(r.Context(), f, f.Limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "counting words: %v", err)
		return
	}
	if words == nil {
		words = []db.WordCount{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.Count(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "counting tweets: %v", err)
		return
	}
	if err := s.store.Reset(r.Context()); err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "resetting store: %v", err)
		return
	}

	slog.Info("[Server] Store reset", slog.Int("deleted", deleted))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reset",
		"deleted": deleted,
	})
}

// filterFromQuery builds a store filter from the shared query parameters:
// keyword, label, start, end, limit, order.
func filterFromQuery(r *http.Request) (db.Filter, error) {
	q := r.URL.Query()
	f := db.Filter{
		Keyword: strings.TrimSpace(q.Get("keyword")),
		Order:   q.Get("order"),
	}

	if raw := q.Get("label"); raw != "" {
		label, err := models.ParseLabel(raw)
		if err != nil {
			return f, fmt.Errorf("invalid label: %w", err)
		}
		f.Label = label
	}

	if raw := q.Get("start"); raw != "" {
		t, err := parseTimeParam(raw, false)
		if err != nil {
			return f, fmt.Errorf("invalid start: %w", err)
		}
		f.Start = t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := parseTimeParam(raw, true)
		if err != nil {
			return f, fmt.Errorf("invalid end: %w", err)
		}
		f.End = t
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return f, fmt.Errorf("invalid limit: must be a non-negative integer")
		}
		f.Limit = limit
	}

	switch f.Order {
	case "", "asc", "desc":
	default:
		return f, fmt.Errorf("invalid order: must be asc or desc")
	}

	return f, nil
}

// parseTimeParam accepts RFC3339 or a bare date. Bare dates are read as
// UTC midnight; with endOfDay set the value is pushed to the last second
// of that day so date-only range ends stay inclusive.
func parseTimeParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("[Server] Failed to encode response", slog.String("error", err.Error()))
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
