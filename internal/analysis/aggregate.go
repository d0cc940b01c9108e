package analysis

import "github.com/ppiankov/citetrace/internal/model"

// Aggregate summarizes citation behavior across several completed runs. The
// citation rate averages per-run cited/total ratios rather than dividing the
// grand totals, so a single huge run cannot drown out the others.
func Aggregate(bundles []*model.Bundle) model.AggregateInsights {
	var out model.AggregateInsights
	out.Runs = len(bundles)
	out.DomainsByCategory = make(map[string][]model.DomainCount)

	domains := make(map[string]int)
	byCategory := make(map[string]map[string]int)
	rateSum := 0.0
	ratedRuns := 0
	overlapSum := 0.0

	for _, b := range bundles {
		cited := b.CitedSourceIDs()
		out.Totals.TotalSources += len(b.Sources)
		out.Totals.TotalCitedSources += len(cited)
		if len(b.Sources) > 0 {
			rateSum += float64(len(cited)) / float64(len(b.Sources))
			ratedRuns++
		}
		if b.Analysis != nil {
			overlapSum += b.Analysis.SelectorOverlap
		} else {
			overlapSum += selectorOverlap(b)
		}

		for i := range b.Sources {
			src := &b.Sources[i]
			if !cited[src.SourceID] {
				continue
			}
			domains[src.Domain]++
			cat := src.Category
			if cat == "" {
				cat = "web"
			}
			if byCategory[cat] == nil {
				byCategory[cat] = make(map[string]int)
			}
			byCategory[cat][src.Domain]++
		}
	}

	if ratedRuns > 0 {
		out.Totals.AvgCitationRate = rateSum / float64(ratedRuns)
	}
	if len(bundles) > 0 {
		out.AvgSelectorOverlap = overlapSum / float64(len(bundles))
	}
	out.DomainsTop = topDomains(domains, TopDomains)
	for cat, counts := range byCategory {
		out.DomainsByCategory[cat] = topDomains(counts, TopDomains)
	}
	return out
}
