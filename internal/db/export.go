package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader is the stable export contract; downstream spreadsheets key on
// these column names.
var csvHeader = []string{"id", "keyword", "timestamp", "text", "sentiment_label", "confidence"}

// ExportCSV streams tweets matching the filter as CSV. Unlike QueryTweets it
// applies no default row cap; a zero filter limit exports everything. Returns
// the number of data rows written.
func (s *Store) ExportCSV(ctx context.Context, f Filter, w io.Writer) (int, error) {
	where, args := f.where()
	query := `SELECT id, keyword, created_at, content, sentiment, sentiment_score
		FROM tweets` + where + f.orderClause()
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("querying export rows: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}

	count := 0
	for rows.Next() {
		var id int64
		var keyword, createdAt, content, sentiment string
		var confidence float64
		if err := rows.Scan(&id, &keyword, &createdAt, &content, &sentiment, &confidence); err != nil {
			return count, fmt.Errorf("scanning export row: %w", err)
		}

		// Normalize stored timestamps through time.Parse so every exported
		// value is guaranteed RFC3339.
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			createdAt = t.UTC().Format(time.RFC3339)
		}

		record := []string{
			strconv.FormatInt(id, 10),
			keyword,
			createdAt,
			content,
			sentiment,
			strconv.FormatFloat(confidence, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return count, fmt.Errorf("writing csv row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("flushing csv: %w", err)
	}
	return count, nil
}
