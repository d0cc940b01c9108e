package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/explain"
	"github.com/ppiankov/citetrace/internal/report"
)

var explainUncitedOnly bool

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <run_id>",
	Short: "Explain why each source was cited or passed over",
	Long: `Explain derives a rule-based verdict for every source in a run:
cited sources get up to four tags naming their strengths, uncited
sources get the single strongest reason they lost out. The rules run
over already-computed scores only, so explaining a run twice always
prints the same text.

Example:
  citetrace explain run_4f9c...
  citetrace explain run_4f9c... --uncited`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().BoolVar(&explainUncitedOnly, "uncited", false, "show only uncited sources")
}

func runExplain(cmd *cobra.Command, args []string) error {
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

	explanations := explain.NewExplainer().Explain(bundle)
	if explainUncitedOnly {
		var filtered []explain.Explanation
		for _, ex := range explanations {
			if !ex.Cited {
				filtered = append(filtered, ex)
			}
		}
		explanations = filtered
	}

	fmt.Print(report.ExplanationsMarkdown(bundle, explanations))
	return nil
}
