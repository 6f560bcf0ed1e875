package models

import (
	"fmt"
	"time"
)

// MaxIngestLimit is the hard upper bound on posts per ingestion run,
// capping the cost of a single fetch+classify batch.
const MaxIngestLimit = 500

// Window is the time range an ingestion run covers, inclusive on both ends.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowDaysBack is the window ending now and reaching back the given
// number of days. Bounds are truncated to whole seconds to match the
// RFC3339 precision timestamps are stored with.
func WindowDaysBack(now time.Time, days int) Window {
	end := now.UTC().Truncate(time.Second)
	return Window{Start: end.Add(-time.Duration(days) * 24 * time.Hour), End: end}
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("window start and end must be set")
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("window start %s is after end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// IngestionReport summarizes a single pipeline run. Counts are always
// accurate even when the run completed partially: Fetched posts were
// retrieved or generated, Classified passed the classifier, Skipped were
// dropped per-item (classification failure, out-of-window timestamp or a
// storage error), Stored were inserted, Duplicates hit the de-duplication
// key.
//
// Source and Degraded distinguish real from synthetic data: Degraded is
// true when a live source was wanted but the run fell back to the sample
// generator. Consumers must never treat degraded output as live signal.
type IngestionReport struct {
	RunID      string        `json:"run_id"`
	Keyword    string        `json:"keyword"`
	Window     Window        `json:"window"`
	Source     string        `json:"source"`
	Degraded   bool          `json:"degraded"`
	Fetched    int           `json:"fetched"`
	Classified int           `json:"classified"`
	Skipped    int           `json:"skipped"`
	Stored     int           `json:"stored"`
	Duplicates int           `json:"duplicates"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (r IngestionReport) String() string {
	return fmt.Sprintf("run %s keyword=%q source=%s degraded=%t fetched=%d classified=%d skipped=%d stored=%d duplicates=%d elapsed=%s",
		r.RunID, r.Keyword, r.Source, r.Degraded, r.Fetched, r.Classified, r.Skipped, r.Stored, r.Duplicates, r.Elapsed)
}
