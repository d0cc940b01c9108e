package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/analysis"
	"github.com/ppiankov/citetrace/internal/model"
)

// traceCmd represents the trace command
var traceCmd = &cobra.Command{
	Use:   "trace <run_id>",
	Short: "Show the selection funnel and evidence trace of a run",
	Long: `Trace prints how a completed run narrowed its sources: the
proposed -> fetched -> cited funnel, per-claim coverage and the
claim-to-source coverage matrix.

Example:
  citetrace trace run_4f9c...`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openReadOnly(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	bundle, err := rt.lookupBundle(args[0])
	if err != nil {
		return err
	}

	a := bundle.Analysis
	if a == nil {
		a = analysis.Analyze(bundle)
	}

	fmt.Printf("Query: %s\n", bundle.Run.Query)
	fmt.Printf("Run:   %s (pipeline v%s)\n\n", bundle.Run.RunID, bundle.Run.PipelineVersion)
	fmt.Printf("Funnel: proposed %d -> fetched %d -> cited %d\n",
		a.Funnel.Proposed, a.Funnel.Fetched, a.Funnel.Cited)
	fmt.Printf("Selector/composer overlap: %.0f%%\n\n", a.SelectorOverlap*100)

	fmt.Println("Claims:")
	claimText := make(map[string]string, len(bundle.Claims))
	for _, c := range bundle.Claims {
		claimText[c.ClaimID] = c.Text
	}
	claimIDs := make([]string, 0, len(a.CoveragePerClaim))
	for id := range a.CoveragePerClaim {
		claimIDs = append(claimIDs, id)
	}
	sort.Slice(claimIDs, func(i, j int) bool {
		return claimOrder(bundle, claimIDs[i]) < claimOrder(bundle, claimIDs[j])
	})
	for _, id := range claimIDs {
		n := a.CoveragePerClaim[id]
		marker := "✓"
		if n == 0 {
			marker = "✗"
		}
		fmt.Printf("  %s [%d] %s\n", marker, n, truncate(claimText[id], 90))
	}

	if len(a.Matrix.SourceIDs) > 0 {
		fmt.Println("\nCoverage matrix (claims x cited sources):")
		fmt.Printf("       %s\n", strings.Join(shortIDs(a.Matrix.SourceIDs), " "))
		for i, claimID := range a.Matrix.ClaimIDs {
			row := make([]string, len(a.Matrix.SourceIDs))
			for j := range a.Matrix.SourceIDs {
				row[j] = "  .  "
				if a.Matrix.Cells[i][j] {
					row[j] = "  x  "
				}
			}
			fmt.Printf("  c%-3d %s\n", claimOrder(bundle, claimID)+1, strings.Join(row, " "))
		}
	}
	return nil
}

func claimOrder(b *model.Bundle, claimID string) int {
	for _, c := range b.Claims {
		if c.ClaimID == claimID {
			return c.AnswerSentenceIndex
		}
	}
	return 0
}

func shortIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if len(id) > 9 {
			id = id[:9]
		}
		out[i] = id
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
