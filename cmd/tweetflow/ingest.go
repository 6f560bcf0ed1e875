package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/tweetflow/config"
	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/logging"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/pipeline"
)

var (
	ingestKeyword string
	ingestLimit   int
	ingestDays    int
	ingestFrom    string
	ingestTo      string
	ingestSource  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one fetch, classify, store cycle and print the report",
	Long: `Run one ingestion cycle against the configured store.

Examples:
  tweetflow ingest --keyword "Meghalaya Govt" --limit 100 --days 7
  tweetflow ingest --keyword roads --from 2026-08-01 --to 2026-08-15
  tweetflow ingest --source sample --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest()
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestKeyword, "keyword", "", "keyword to search for (default from config)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "maximum tweets to ingest (default from config)")
	ingestCmd.Flags().IntVar(&ingestDays, "days", 0, "days back from now (default from config)")
	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "window start, RFC3339 or YYYY-MM-DD")
	ingestCmd.Flags().StringVar(&ingestTo, "to", "", "window end, RFC3339 or YYYY-MM-DD")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source mode: auto, twitter or sample")
}

func runIngest() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	pipe, classifier, err := buildPipeline(cfg, store)
	if err != nil {
		return err
	}
	defer classifier.Close()

	req := pipeline.Request{
		Keyword:  ingestKeyword,
		Limit:    ingestLimit,
		DaysBack: ingestDays,
		Source:   ingestSource,
	}
	if ingestFrom != "" || ingestTo != "" {
		if ingestFrom == "" || ingestTo == "" {
			return fmt.Errorf("--from and --to must be given together")
		}
		start, err := parseTimeFlag(ingestFrom, false)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		end, err := parseTimeFlag(ingestTo, true)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		req.Window = models.Window{Start: start, End: end}
	}

	report, err := pipe.Ingest(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(report)
	if report.Degraded {
		fmt.Println("warning: live source unavailable, stored synthetic data")
	}
	return nil
}
