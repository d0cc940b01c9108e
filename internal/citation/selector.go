package citation

import (
	"sort"
	"strings"

	"github.com/ppiankov/citetrace/internal/credibility"
	"github.com/ppiankov/citetrace/internal/dedup"
	"github.com/ppiankov/citetrace/internal/model"
)

// Weights of the citation score. Fixed design constants; they must sum to
// exactly 1.00 (checked in tests).
const (
	WeightRelevance = 0.45
	WeightQuality   = 0.25
	WeightStructure = 0.20
	WeightConsensus = 0.10
)

// Target citation counts by query type. The selector proposes between
// MinTargetCitations and MaxTargetCitations sources.
const (
	MinTargetCitations     = 3
	DefaultTargetCitations = 5
	MaxTargetCitations     = 10

	// DefaultDomainCap limits how many selected sources may share one
	// domain, preventing single-publisher dominance.
	DefaultDomainCap = 2
)

// Selector ranks sources by the weighted citation score and picks the cited
// subset. Its output is a ranking proposal: the composer's actual citation
// markers remain the ground truth for evidence linking, and the gap between
// the two is a tracked metric.
type Selector struct {
	target    int
	domainCap int
}

// NewSelector creates a selector with the given target citation count and
// per-domain cap; zero values fall back to the defaults.
func NewSelector(target, domainCap int) *Selector {
	if target <= 0 {
		target = DefaultTargetCitations
	}
	if target < MinTargetCitations {
		target = MinTargetCitations
	}
	if target > MaxTargetCitations {
		target = MaxTargetCitations
	}
	if domainCap <= 0 {
		domainCap = DefaultDomainCap
	}
	return &Selector{target: target, domainCap: domainCap}
}

// TargetForQuery adjusts the citation target by query type: breaking-news
// style queries need fewer sources, research-style queries more.
func TargetForQuery(query string) int {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, "latest", "breaking", "today", "right now"):
		return MinTargetCitations
	case containsAny(lower, "research", "in-depth", "comprehensive", "literature"):
		return MaxTargetCitations
	default:
		return DefaultTargetCitations
	}
}

// Score computes the weighted citation score for one source. The consensus
// boost is normalized into [0,1] by its ceiling before weighting.
func Score(src *model.Source) float64 {
	consensusNorm := dedup.ConsensusBoost(src.ConsensusCount) / dedup.MaxConsensusBoost
	return WeightRelevance*src.Passage.Relevance +
		WeightQuality*src.Passage.Quality +
		WeightStructure*src.Passage.Structure +
		WeightConsensus*consensusNorm
}

// Rank scores all sources in place and returns the indexes of eligible
// sources in ranking order. Sources with no extractable passage are scored
// zero and excluded regardless of credibility. Ties break by higher
// credibility band, then by earlier discovery order (the sort is stable and
// input order is discovery order).
func (s *Selector) Rank(sources []model.Source) []int {
	var ranked []int
	for i := range sources {
		if !sources[i].Eligible() {
			sources[i].CitationScore = 0
			continue
		}
		sources[i].CitationScore = Score(&sources[i])
		ranked = append(ranked, i)
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		sa, sb := &sources[ranked[a]], &sources[ranked[b]]
		if sa.CitationScore != sb.CitationScore {
			return sa.CitationScore > sb.CitationScore
		}
		return credibility.BandRank(sa.Credibility.Band) > credibility.BandRank(sb.Credibility.Band)
	})
	return ranked
}

// Select ranks the sources and returns the ids of the proposed cited subset,
// honoring the target count and the per-domain diversity cap.
func (s *Selector) Select(sources []model.Source) []string {
	ranked := s.Rank(sources)

	var selected []string
	domainCounts := make(map[string]int)
	for _, idx := range ranked {
		if len(selected) >= s.target {
			break
		}
		domain := sources[idx].Domain
		if domainCounts[domain] >= s.domainCap {
			continue
		}
		domainCounts[domain]++
		selected = append(selected, sources[idx].SourceID)
	}
	return selected
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
