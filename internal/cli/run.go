package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/report"
)

var (
	runOutJSON      string
	runOutMD        string
	runOutCSV       string
	runTarget       int
	runDomainCap    int
	runResultsFiles []string
	runComposer     string
	runOffline      bool
	runNoCache      bool
	runTimeout      time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Execute the full citation pipeline for a query",
	Long: `Run discovers sources from all configured providers, deduplicates
them with cross-provider consensus tracking, fetches and scores the
candidates, selects the cited subset and links every answer sentence
to its supporting sources.

Repeating a query on the same pipeline version returns the existing
run instead of re-executing.

Example:
  citetrace run "effects of intermittent fasting"
  citetrace run "go garbage collector" --json out.json --md report.md
  citetrace run "solar panel efficiency" --results-file recorded.yaml --offline`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOutJSON, "json", "", "output JSON bundle path (optional)")
	runCmd.Flags().StringVar(&runOutMD, "md", "", "output Markdown report path (optional)")
	runCmd.Flags().StringVar(&runOutCSV, "csv", "", "output per-source CSV path (optional)")
	runCmd.Flags().IntVar(&runTarget, "target", 0, "target citation count (default: derived from query)")
	runCmd.Flags().IntVar(&runDomainCap, "domain-cap", 0, "max cited sources per domain")
	runCmd.Flags().StringArrayVar(&runResultsFiles, "results-file", nil, "YAML results file acting as a search provider (repeatable)")
	runCmd.Flags().StringVar(&runComposer, "composer", "", "answer composer: openai or extractive")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "no network providers; requires --results-file")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "bypass the bundle cache (force a fresh run)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 3*time.Minute, "overall run timeout")
}

func runRun(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runTarget > 0 {
		cfg.Selection.TargetCitations = runTarget
	}
	if runDomainCap > 0 {
		cfg.Selection.DomainCap = runDomainCap
	}

	rt, err := newRuntime(cfg, buildOptions{
		resultsFiles: runResultsFiles,
		composerName: runComposer,
		offline:      runOffline,
		noCache:      runNoCache,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	bundle, err := rt.pipe.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if runOutJSON != "" {
		if err := renderer.RenderJSON(bundle, runOutJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", runOutJSON)
		}
	}
	if runOutMD != "" {
		if err := renderer.RenderMarkdown(bundle, runOutMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", runOutMD)
		}
	}
	if runOutCSV != "" {
		if err := report.ExportSourcesCSV(bundle, runOutCSV); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", runOutCSV)
		}
	}

	printRunSummary(bundle)
	return nil
}
