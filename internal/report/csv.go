package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ppiankov/citetrace/internal/model"
)

// ExportSourcesCSV writes one row per source with its scores and citation
// status, for spreadsheet-side analysis.
func ExportSourcesCSV(b *model.Bundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"source_id", "url", "domain", "title", "category", "consensus_count",
		"fetched", "paywalled", "credibility_score", "credibility_band",
		"relevance", "quality", "structure", "citation_score", "cited",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cited := b.CitedSourceIDs()
	for i := range b.Sources {
		src := &b.Sources[i]
		row := []string{
			src.SourceID, src.URL, src.Domain, src.Title, src.Category,
			strconv.Itoa(src.ConsensusCount),
			strconv.FormatBool(src.Fetched),
			strconv.FormatBool(src.Paywalled),
			formatScore(src.Credibility.Score),
			src.Credibility.Band,
			formatScore(src.Passage.Relevance),
			formatScore(src.Passage.Quality),
			formatScore(src.Passage.Structure),
			formatScore(src.CitationScore),
			strconv.FormatBool(cited[src.SourceID]),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
