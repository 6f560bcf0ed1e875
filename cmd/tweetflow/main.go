package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tweetflow",
	Short: "Tweet sentiment dashboard for Meghalaya government topics",
	Long: `tweetflow collects tweets for a keyword (from the X API or a
deterministic synthetic generator), classifies their sentiment and serves
a dashboard with charts, word frequencies and CSV export on top of a
single-file SQLite store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tweetflow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tweetflow %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, ingestCmd, exportCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
