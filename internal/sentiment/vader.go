package sentiment

import (
	"context"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/tweetflow/internal/models"
)

// Compound score cutoffs used to bucket VADER output into discrete labels.
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

// VADERClassifier is the lexicon based engine. It needs no model files, runs
// anywhere and is the default.
type VADERClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVADERClassifier() *VADERClassifier {
	return &VADERClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (c *VADERClassifier) Name() string { return EngineVADER }

func (c *VADERClassifier) Close() error { return nil }

func (c *VADERClassifier) Classify(_ context.Context, text string) (models.Result, error) {
	plainText := CleanText(text)
	if plainText == "" {
		return models.NeutralResult(), nil
	}

	scores := c.analyzer.PolarityScores(plainText)

	// The compound score picks the label; the labeled class's own
	// probability is the reported confidence.
	label := models.LabelNeutral
	confidence := scores.Neutral
	if scores.Compound >= positiveThreshold {
		label = models.LabelPositive
		confidence = scores.Positive
	} else if scores.Compound <= negativeThreshold {
		label = models.LabelNegative
		confidence = scores.Negative
	}

	return models.Result{
		Label:      label,
		Confidence: confidence,
		Positive:   scores.Positive,
		Negative:   scores.Negative,
		Neutral:    scores.Neutral,
	}, nil
}
