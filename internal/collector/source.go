// Package collector produces posts for the ingestion pipeline, either from
// the live X API or from a deterministic synthetic generator.
package collector

import (
	"context"

	"github.com/spacesedan/tweetflow/internal/models"
)

// Source yields posts mentioning a keyword inside a time window.
type Source interface {
	// Search returns up to limit posts created inside window, newest first
	// where the backend supports ordering. An empty result with nil error
	// means the source worked but found nothing.
	Search(ctx context.Context, keyword string, limit int, window models.Window) ([]models.Post, error)
	// Name identifies the source, models.SourceTwitter or models.SourceSample.
	Name() string
}
