package dedup

import (
	"regexp"
	"strings"

	"github.com/ppiankov/citetrace/internal/model"
)

// TitleSimilarityThreshold is the token-overlap ratio above which two
// same-domain results are treated as the same source even when their URLs
// differ (print views, AMP pages, syndicated paths).
const TitleSimilarityThreshold = 0.85

// Merger folds raw provider results into unique sources while preserving
// cross-provider consensus: how many independent providers surfaced each
// source is a selection signal downstream, not noise to discard.
type Merger struct{}

// NewMerger creates a consensus merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge deduplicates provider results into Source records in first-seen
// order. An empty input (all providers failed or returned nothing) yields an
// empty slice, never an error.
func (m *Merger) Merge(results []model.ProviderResult) []model.Source {
	var sources []model.Source
	byCanonical := make(map[string]int)

	for _, r := range results {
		if r.URL == "" {
			continue
		}

		canonical := CanonicalURL(r.URL)
		idx := -1
		if i, ok := byCanonical[canonical]; ok {
			idx = i
		} else {
			idx = m.findTitleMatch(sources, r)
		}

		if idx >= 0 {
			src := &sources[idx]
			if !src.HasProvider(r.Provider) {
				src.Providers = append(src.Providers, r.Provider)
				src.ConsensusCount = len(src.Providers)
			}
			// First-seen title and snippet win; later variants add nothing
			// beyond their provider attribution.
			byCanonical[canonical] = idx
			continue
		}

		src := model.Source{
			SourceID:       SourceID(canonical),
			URL:            r.URL,
			CanonicalURL:   canonical,
			Domain:         Domain(r.URL),
			Title:          r.Title,
			Snippet:        r.Snippet,
			MediaType:      "web",
			PublishedAt:    r.PublishedAt,
			Providers:      []string{r.Provider},
			ConsensusCount: 1,
		}
		byCanonical[canonical] = len(sources)
		sources = append(sources, src)
	}

	return sources
}

// findTitleMatch returns the index of an existing source on the same domain
// whose normalized title overlaps the incoming one at or above the
// threshold, or -1.
func (m *Merger) findTitleMatch(sources []model.Source, r model.ProviderResult) int {
	if strings.TrimSpace(r.Title) == "" {
		return -1
	}
	domain := Domain(r.URL)
	if domain == "" {
		return -1
	}
	incoming := titleTokens(r.Title)
	if len(incoming) == 0 {
		return -1
	}

	for i := range sources {
		if sources[i].Domain != domain {
			continue
		}
		if TitleSimilarity(incoming, titleTokens(sources[i].Title)) >= TitleSimilarityThreshold {
			return i
		}
	}
	return -1
}

// ConsensusBoost returns the multiplicative boost earned by cross-provider
// consensus: nothing for a single provider, 15% for two, 25% for three or
// more. Monotonically non-decreasing in the provider count.
func ConsensusBoost(providerCount int) float64 {
	switch {
	case providerCount >= 3:
		return 0.25
	case providerCount == 2:
		return 0.15
	default:
		return 0.0
	}
}

// MaxConsensusBoost is the ceiling of ConsensusBoost, used to normalize the
// boost into [0,1] for the selector's weighted sum.
const MaxConsensusBoost = 0.25

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

func titleTokens(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(title), -1) {
		tokens[w] = true
	}
	return tokens
}

// TitleSimilarity computes the token-overlap ratio between two token sets:
// |intersection| / |smaller set|. Empty sets never match.
func TitleSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller := a
	if len(b) < len(a) {
		smaller = b
	}
	overlap := 0
	for w := range a {
		if b[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(smaller))
}
