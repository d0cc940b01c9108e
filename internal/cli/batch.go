package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/report"
	"github.com/ppiankov/citetrace/internal/worker"
)

var (
	batchConcurrency  int
	batchOutputDir    string
	batchTimeout      time.Duration
	batchResultsFiles []string
	batchComposer     string
	batchOffline      bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run multiple queries from a file",
	Long: `Batch reads queries from a file (one per line, # comments allowed)
and runs each through the full pipeline, writing one Markdown report
per query. Already-completed queries resolve from the cache instead
of re-running.

Example:
  citetrace batch queries.txt
  citetrace batch queries.txt --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "number of concurrent query runs")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./citetrace-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringArrayVar(&batchResultsFiles, "results-file", nil, "YAML results file acting as a search provider (repeatable)")
	batchCmd.Flags().StringVar(&batchComposer, "composer", "", "answer composer: openai or extractive")
	batchCmd.Flags().BoolVar(&batchOffline, "offline", false, "no network providers; requires --results-file")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, buildOptions{
		resultsFiles: batchResultsFiles,
		composerName: batchComposer,
		offline:      batchOffline,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(rt.pipe, batchConcurrency)
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	successCount, failureCount := 0, 0
	for _, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %q: %v\n", res.Query, res.Error)
			continue
		}
		successCount++

		mdPath := filepath.Join(batchOutputDir, querySlug(res.Query)+".md")
		if err := renderer.RenderMarkdown(res.Bundle, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %q: write report: %v\n", res.Query, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %q -> %s (%d cited)\n",
			res.Query, mdPath, len(res.Bundle.CitedSourceIDs()))
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d ok, %d failed, reports in %s\n",
		successCount, failureCount, batchOutputDir)
	return nil
}

// querySlug turns a query into a safe filename.
func querySlug(query string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	if slug == "" {
		slug = "query"
	}
	return slug
}
