package cli

import (
	"fmt"

	"github.com/ppiankov/citetrace/internal/model"
)

// printRunSummary writes the human-facing run result to stdout.
func printRunSummary(b *model.Bundle) {
	cited := b.CitedSourceIDs()

	fmt.Println()
	fmt.Println(b.Answer.Text)
	fmt.Println()

	fmt.Println("Sources:")
	for i := range b.Sources {
		src := &b.Sources[i]
		if !cited[src.SourceID] {
			continue
		}
		title := src.Title
		if title == "" {
			title = src.URL
		}
		fmt.Printf("  [%s] %s — %s (band %s, consensus %d)\n",
			src.SourceID, title, src.Domain, src.Credibility.Band, src.ConsensusCount)
	}

	if b.Analysis != nil {
		f := b.Analysis.Funnel
		fmt.Printf("\nFunnel: proposed %d -> fetched %d -> cited %d\n", f.Proposed, f.Fetched, f.Cited)
	}
	fmt.Printf("Run id: %s\n", b.Run.RunID)
}
