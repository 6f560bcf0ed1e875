package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/tweetflow/internal/models"
)

// defaultModelName is a RoBERTa checkpoint fine tuned for three class tweet
// sentiment, the same label set the rest of the system speaks.
const defaultModelName = "cardiffnlp/twitter-roberta-base-sentiment-latest"

// TransformerClassifier runs an ONNX sentiment model through hugot. The model
// is downloaded on first use and cached under the configured directory.
type TransformerClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewTransformerClassifier(modelDir string) (*TransformerClassifier, error) {
	if modelDir == "" {
		modelDir = "./models"
	}
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("sentiment: create model directory: %w", err)
	}

	modelPath, err := ensureModel(modelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("sentiment: initialize onnx runtime: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "tweetSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("sentiment: initialize sentiment pipeline: %w", err)
	}

	return &TransformerClassifier{session: session, pipeline: pipeline}, nil
}

func ensureModel(modelDir string) (string, error) {
	cached := filepath.Join(modelDir, strings.ReplaceAll(defaultModelName, "/", "_"))
	if _, err := os.Stat(cached); err == nil {
		slog.Info("[Transformer] Using existing model", slog.String("path", cached))
		return cached, nil
	}

	slog.Info("[Transformer] Model not found, downloading...",
		slog.String("model", defaultModelName))
	modelPath, err := hugot.DownloadModel(defaultModelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("sentiment: download model: %w", err)
	}
	slog.Info("[Transformer] Model downloaded successfully", slog.String("path", modelPath))
	return modelPath, nil
}

func (c *TransformerClassifier) Name() string { return EngineTransformer }

func (c *TransformerClassifier) Close() error {
	return c.session.Destroy()
}

func (c *TransformerClassifier) Classify(ctx context.Context, text string) (models.Result, error) {
	plainText := CleanText(text)
	if plainText == "" {
		return models.NeutralResult(), nil
	}
	if err := ctx.Err(); err != nil {
		return models.Result{}, err
	}

	output, err := c.pipeline.RunPipeline([]string{plainText})
	if err != nil {
		return models.Result{}, fmt.Errorf("sentiment: run pipeline: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return models.Result{}, fmt.Errorf("sentiment: pipeline returned no classifications")
	}

	return resultFromOutputs(output.ClassificationOutputs[0]), nil
}

// resultFromOutputs converts raw pipeline classifications into a Result.
// Single label pipelines emit only the winning class, so any classes the
// model did not report share the remaining probability mass evenly.
func resultFromOutputs(outputs []pipelines.ClassificationOutput) models.Result {
	dist := make(map[models.Label]float64, len(models.Labels))
	best := models.LabelNeutral
	bestScore := -1.0

	for _, out := range outputs {
		label, err := models.ParseLabel(out.Label)
		if err != nil {
			continue
		}
		score := float64(out.Score)
		dist[label] = score
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	if len(dist) == 0 {
		return models.NeutralResult()
	}

	if missing := len(models.Labels) - len(dist); missing > 0 {
		remainder := 1.0
		for _, score := range dist {
			remainder -= score
		}
		if remainder < 0 {
			remainder = 0
		}
		share := remainder / float64(missing)
		for _, label := range models.Labels {
			if _, ok := dist[label]; !ok {
				dist[label] = share
			}
		}
	}

	return models.Result{
		Label:      best,
		Confidence: bestScore,
		Positive:   dist[models.LabelPositive],
		Negative:   dist[models.LabelNegative],
		Neutral:    dist[models.LabelNeutral],
	}
}
