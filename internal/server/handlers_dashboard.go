package server

import (
	"log/slog"
	"net/http"

	"github.com/spacesedan/tweetflow/internal/models"
)

type dashboardData struct {
	DefaultKeyword  string
	DefaultLimit    int
	DefaultDaysBack int
	MaxLimit        int
	Engine          string
	Version         string
	Keywords        []string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.DistinctKeywords(r.Context())
	if err != nil {
		// The page works without the suggestion list.
		slog.Warn("[Server] Failed to load keyword suggestions", slog.String("error", err.Error()))
		keywords = nil
	}

	data := dashboardData{
		DefaultKeyword:  s.defaultKeyword,
		DefaultLimit:    s.defaultLimit,
		DefaultDaysBack: s.defaultDaysBack,
		MaxLimit:        models.MaxIngestLimit,
		Engine:          s.engine,
		Version:         s.version,
		Keywords:        keywords,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.dashboardTmpl.Execute(w, data); err != nil {
		slog.Error("[Server] Failed to render dashboard", slog.String("error", err.Error()))
	}
}
