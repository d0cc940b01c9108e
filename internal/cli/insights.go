package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/analysis"
)

var (
	insightsLimit int
	insightsJSON  bool
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Aggregate citation behavior across stored runs",
	Long: `Insights summarizes the run history: how many sources runs
discover versus cite, which domains get cited most, and how cited
domains break down by category.

Example:
  citetrace insights
  citetrace insights --limit 5 --json`,
	RunE: runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().IntVar(&insightsLimit, "limit", 10, "max domains per list")
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "print as JSON")
}

func runInsights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openReadOnly(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	insights, err := rt.store.Insights(insightsLimit)
	if err != nil {
		return fmt.Errorf("aggregate insights: %w", err)
	}
	if bundles, err := rt.store.RecentBundles(50); err == nil && len(bundles) > 0 {
		insights.AvgSelectorOverlap = analysis.Aggregate(bundles).AvgSelectorOverlap
	}

	if insightsJSON {
		data, err := json.MarshalIndent(insights, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Runs: %d\n", insights.Runs)
	fmt.Printf("Sources: %d discovered, %d cited (avg citation rate %.0f%%)\n",
		insights.Totals.TotalSources, insights.Totals.TotalCitedSources,
		insights.Totals.AvgCitationRate*100)
	fmt.Printf("Selector/composer agreement: %.0f%%\n\n", insights.AvgSelectorOverlap*100)

	if len(insights.DomainsTop) > 0 {
		fmt.Println("Top cited domains:")
		for _, dc := range insights.DomainsTop {
			fmt.Printf("  %-40s %d\n", dc.Domain, dc.Count)
		}
		fmt.Println()
	}

	if len(insights.DomainsByCategory) > 0 {
		cats := make([]string, 0, len(insights.DomainsByCategory))
		for cat := range insights.DomainsByCategory {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		fmt.Println("By category:")
		for _, cat := range cats {
			fmt.Printf("  %s:\n", cat)
			for _, dc := range insights.DomainsByCategory[cat] {
				fmt.Printf("    %-38s %d\n", dc.Domain, dc.Count)
			}
		}
	}

	recent, err := rt.store.ListRecent(10)
	if err == nil && len(recent) > 0 {
		fmt.Println("\nRecent runs:")
		for _, r := range recent {
			fmt.Printf("  %s  %2d/%2d cited  %s\n", r.RunID, r.Cited, r.Sources, truncate(r.Query, 60))
		}
	}
	return nil
}
