package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/tweetflow/internal/metrics"
)

// handleExportCSV streams matching rows straight to the response body.
// Rows are written as they are scanned, so the export never buffers the
// full result set; errors after the first row can only be logged because
// the status line is already on the wire.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	filename := fmt.Sprintf("tweets_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	rows, err := s.store.ExportCSV(r.Context(), f, w)
	if err != nil {
		slog.Error("[Server] CSV export aborted",
			slog.String("error", err.Error()),
			slog.Int("rows_written", rows))
		return
	}

	metrics.ExportRowsTotal.Add(float64(rows))
	slog.Info("[Server] CSV export complete",
		slog.String("filename", filename),
		slog.Int("rows", rows))
}
