package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/tweetflow/config"
	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/logging"
	"github.com/spacesedan/tweetflow/internal/models"
)

var (
	exportKeyword string
	exportFrom    string
	exportTo      string
	exportLabel   string
	exportLimit   int
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored tweets as CSV",
	Long: `Export stored tweets as CSV to a file or stdout.

Examples:
  tweetflow export --keyword roads --out roads.csv
  tweetflow export --from 2026-08-01 --to 2026-08-15 --label negative
  tweetflow export > all.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportKeyword, "keyword", "", "filter by keyword substring")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "window start, RFC3339 or YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "window end, RFC3339 or YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportLabel, "label", "", "filter by sentiment label")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "maximum rows, 0 exports everything")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file, empty or - writes to stdout")
}

func runExport() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := db.Filter{
		Keyword: exportKeyword,
		Limit:   exportLimit,
	}
	if exportLabel != "" {
		label, err := models.ParseLabel(exportLabel)
		if err != nil {
			return fmt.Errorf("invalid --label: %w", err)
		}
		f.Label = label
	}
	if exportFrom != "" {
		f.Start, err = parseTimeFlag(exportFrom, false)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}
	if exportTo != "" {
		f.End, err = parseTimeFlag(exportTo, true)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}

	store, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	out := os.Stdout
	if exportOut != "" && exportOut != "-" {
		file, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	rows, err := store.ExportCSV(ctx, f, out)
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	fmt.Fprintf(os.Stderr, "exported %d tweets\n", rows)
	return nil
}
