package analysis

import (
	"sort"

	"github.com/ppiankov/citetrace/internal/dedup"
	"github.com/ppiankov/citetrace/internal/model"
)

// TopDomains caps the domains_top list.
const TopDomains = 10

// Analyze aggregates a completed bundle. It is pure counting and grouping
// over data the pipeline already computed; no new scores are produced, so
// analyzing the same bundle twice always yields identical output.
func Analyze(b *model.Bundle) *model.Analysis {
	return &model.Analysis{
		Funnel:           funnel(b),
		CoveragePerClaim: coveragePerClaim(b),
		Matrix:           matrix(b),
		Mix:              mix(b),
		SelectorOverlap:  selectorOverlap(b),
	}
}

// funnel counts unique URLs at each attrition stage. Raw provider result
// lists contain duplicates across providers, so counting rows would overstate
// the proposed stage and could break the proposed >= fetched ordering.
func funnel(b *model.Bundle) model.Funnel {
	proposed := make(map[string]bool)
	for _, r := range b.ProviderResults {
		if canonical := dedup.CanonicalURL(r.URL); canonical != "" {
			proposed[canonical] = true
		}
	}
	// Sources exist even when provider results were not retained.
	for i := range b.Sources {
		proposed[b.Sources[i].CanonicalURL] = true
	}

	fetched := 0
	for i := range b.Sources {
		if b.Sources[i].Fetched {
			fetched++
		}
	}

	return model.Funnel{
		Proposed: len(proposed),
		Fetched:  fetched,
		Cited:    len(b.CitedSourceIDs()),
	}
}

// coveragePerClaim counts evidence links per claim. Every claim appears in
// the map, uncited ones with zero.
func coveragePerClaim(b *model.Bundle) map[string]int {
	out := make(map[string]int, len(b.Claims))
	for _, c := range b.Claims {
		out[c.ClaimID] = 0
	}
	for _, e := range b.Evidence {
		if _, ok := out[e.ClaimID]; ok {
			out[e.ClaimID]++
		}
	}
	return out
}

// matrix builds the claim x cited-source boolean grid. Claims keep answer
// order; sources are ordered by first citation in the evidence list.
func matrix(b *model.Bundle) model.CoverageMatrix {
	var claimIDs []string
	claimIdx := make(map[string]int, len(b.Claims))
	for _, c := range b.Claims {
		claimIdx[c.ClaimID] = len(claimIDs)
		claimIDs = append(claimIDs, c.ClaimID)
	}

	var sourceIDs []string
	sourceIdx := make(map[string]int)
	for _, e := range b.Evidence {
		if _, ok := sourceIdx[e.SourceID]; !ok {
			sourceIdx[e.SourceID] = len(sourceIDs)
			sourceIDs = append(sourceIDs, e.SourceID)
		}
	}

	cells := make([][]bool, len(claimIDs))
	for i := range cells {
		cells[i] = make([]bool, len(sourceIDs))
	}
	for _, e := range b.Evidence {
		ci, ok1 := claimIdx[e.ClaimID]
		si, ok2 := sourceIdx[e.SourceID]
		if ok1 && ok2 {
			cells[ci][si] = true
		}
	}

	return model.CoverageMatrix{ClaimIDs: claimIDs, SourceIDs: sourceIDs, Cells: cells}
}

// mix describes the composition of the cited sources: top domains, media
// types and credibility bands.
func mix(b *model.Bundle) model.Mix {
	cited := b.CitedSourceIDs()

	domains := make(map[string]int)
	media := make(map[string]int)
	bands := make(map[string]int)
	for i := range b.Sources {
		src := &b.Sources[i]
		if !cited[src.SourceID] {
			continue
		}
		domains[src.Domain]++
		mt := src.MediaType
		if mt == "" {
			mt = "web"
		}
		media[mt]++
		if src.Credibility.Band != "" {
			bands[src.Credibility.Band]++
		}
	}

	return model.Mix{
		DomainsTop:      topDomains(domains, TopDomains),
		MediaType:       media,
		CredibilityBand: bands,
	}
}

// topDomains sorts by count descending, domain ascending for determinism.
func topDomains(counts map[string]int, limit int) []model.DomainCount {
	out := make([]model.DomainCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, model.DomainCount{Domain: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// selectorOverlap measures agreement between the selector's proposal and the
// composer's actual citations as Jaccard similarity. Two empty sets agree
// perfectly.
func selectorOverlap(b *model.Bundle) float64 {
	cited := b.CitedSourceIDs()
	if len(b.Selected) == 0 && len(cited) == 0 {
		return 1
	}

	union := make(map[string]bool, len(cited)+len(b.Selected))
	for id := range cited {
		union[id] = true
	}
	both := 0
	for _, id := range b.Selected {
		if cited[id] {
			both++
		}
		union[id] = true
	}
	if len(union) == 0 {
		return 1
	}
	return float64(both) / float64(len(union))
}
