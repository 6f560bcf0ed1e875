package sentiment

import (
	"context"
	"fmt"

	"github.com/spacesedan/tweetflow/internal/models"
)

// Engine names accepted by New.
const (
	EngineVADER       = "vader"
	EngineTransformer = "transformer"
)

// Classifier scores a single piece of text into a three class sentiment
// distribution. Implementations are safe for use from a single goroutine;
// callers that share one across goroutines must serialize access.
type Classifier interface {
	// Classify returns the sentiment of text. Empty or whitespace-only input
	// yields the neutral default without invoking the engine.
	Classify(ctx context.Context, text string) (models.Result, error)
	// Name reports which engine produced the results.
	Name() string
	// Close releases engine resources. Safe to call once.
	Close() error
}

// Config selects and parameterizes a classifier engine.
type Config struct {
	// Engine is one of EngineVADER or EngineTransformer. Empty selects VADER.
	Engine string
	// ModelDir is where transformer model files are cached.
	ModelDir string
}

// New builds the configured classifier. Engine construction fails fast so a
// missing model or runtime surfaces at startup, not on the first tweet.
func New(cfg Config) (Classifier, error) {
	switch cfg.Engine {
	case EngineVADER, "":
		return NewVADERClassifier(), nil
	case EngineTransformer:
		return NewTransformerClassifier(cfg.ModelDir)
	default:
		return nil, fmt.Errorf("sentiment: unknown engine %q", cfg.Engine)
	}
}
