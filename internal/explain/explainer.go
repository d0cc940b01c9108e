package explain

import (
	"strings"
	"time"

	"github.com/ppiankov/citetrace/internal/credibility"
	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/passage"
)

// Cited tags, in the fixed priority order they are evaluated and emitted.
const (
	TagHighCoverage   = "High claim coverage"
	TagAuthoritative  = "Authoritative source"
	TagFresh          = "Fresh and up-to-date"
	TagMatchesIntent  = "Matches user intent"
	TagUnique         = "Unique contribution"
	TagWellStructured = "Well-structured content"
	TagBestFit        = "Best relative fit vs alternatives"
)

// Uncited reasons, first match wins.
const (
	ReasonNotAccessible  = "Paywalled / not accessible"
	ReasonThinContent    = "Content too thin to extract from"
	ReasonPromotional    = "Promotional or low-signal content"
	ReasonNoPassages     = "No extractable passages matched the query"
	ReasonWeakRelevance  = "Weak passage relevance to the query"
	ReasonPoorStructure  = "Poorly structured content"
	ReasonOutdated       = "Outdated relative to the query"
	ReasonDomainDup      = "Another source from the same domain was cited"
	ReasonWeakerPassages = "Weaker passages vs. cited sources"
)

const (
	maxCitedTags = 4

	highCoverageLinks = 2
	highCoverageAvg   = 0.70
	authoritativeMin  = 0.80
	freshWindow       = 3 * 365 * 24 * time.Hour
	staleWindow       = 5 * 365 * 24 * time.Hour
	wellStructuredMin = 0.60
	thinContentChars  = 500
	weakRelevanceMax  = 0.20
)

// Explanation is the per-source verdict: either why it was cited or why not.
type Explanation struct {
	SourceID string   `json:"source_id"`
	Cited    bool     `json:"cited"`
	Tags     []string `json:"tags,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Explainer produces deterministic rule-based explanations from a bundle's
// already-computed scores and links. It never re-scores and never calls a
// model, so the same bundle always explains identically.
type Explainer struct {
	now func() time.Time
}

// NewExplainer creates an explainer.
func NewExplainer() *Explainer {
	return &Explainer{now: time.Now}
}

// Explain returns one explanation per source, in source order.
func (e *Explainer) Explain(b *model.Bundle) []Explanation {
	cited := b.CitedSourceIDs()
	evidenceBySource := make(map[string][]model.Evidence)
	for _, ev := range b.Evidence {
		evidenceBySource[ev.SourceID] = append(evidenceBySource[ev.SourceID], ev)
	}
	claimSoleSource := soleSourceClaims(b)
	citedDomains := make(map[string]bool)
	for i := range b.Sources {
		if cited[b.Sources[i].SourceID] {
			citedDomains[b.Sources[i].Domain] = true
		}
	}
	queryTerms := passage.QueryTerms(b.Run.Query)

	out := make([]Explanation, 0, len(b.Sources))
	for i := range b.Sources {
		src := &b.Sources[i]
		if cited[src.SourceID] {
			out = append(out, Explanation{
				SourceID: src.SourceID,
				Cited:    true,
				Tags:     e.citedTags(src, evidenceBySource[src.SourceID], claimSoleSource, queryTerms),
			})
		} else {
			out = append(out, Explanation{
				SourceID: src.SourceID,
				Cited:    false,
				Reason:   e.uncitedReason(src, citedDomains),
			})
		}
	}
	return out
}

// citedTags collects tags in fixed priority order, capped at four. A cited
// source that trips no rule still gets the fallback tag.
func (e *Explainer) citedTags(src *model.Source, links []model.Evidence, sole map[string]bool, queryTerms map[string]bool) []string {
	var tags []string
	add := func(tag string) {
		if len(tags) < maxCitedTags {
			tags = append(tags, tag)
		}
	}

	if len(links) >= highCoverageLinks || avgCoverage(links) >= highCoverageAvg {
		add(TagHighCoverage)
	}
	if src.Credibility.Score >= authoritativeMin {
		add(TagAuthoritative)
	}
	if src.PublishedAt != nil && e.now().Sub(*src.PublishedAt) <= freshWindow {
		add(TagFresh)
	}
	if titleMatchesQuery(src.Title, queryTerms) {
		add(TagMatchesIntent)
	}
	if isSoleSource(links, sole) {
		add(TagUnique)
	}
	if src.Passage.Structure >= wellStructuredMin {
		add(TagWellStructured)
	}

	if len(tags) == 0 {
		tags = append(tags, TagBestFit)
	}
	return tags
}

// uncitedReason picks the first matching exclusion reason. Ordering runs from
// hard access failures to soft relative losses; the final reason is the
// honest default when a source simply ranked below the cut.
func (e *Explainer) uncitedReason(src *model.Source, citedDomains map[string]bool) string {
	switch {
	case src.Paywalled || !src.Fetched:
		return ReasonNotAccessible
	case len(strings.TrimSpace(src.RawText)) < thinContentChars:
		return ReasonThinContent
	case src.Category == credibility.CategoryBlog || credibility.BlogPattern(src.URL):
		return ReasonPromotional
	case src.Passage.Relevance == 0:
		return ReasonNoPassages
	case src.Passage.Relevance < weakRelevanceMax:
		return ReasonWeakRelevance
	case countSentences(src.RawText) < 3:
		return ReasonPoorStructure
	case src.PublishedAt != nil && e.now().Sub(*src.PublishedAt) > staleWindow:
		return ReasonOutdated
	case citedDomains[src.Domain]:
		return ReasonDomainDup
	default:
		return ReasonWeakerPassages
	}
}

// soleSourceClaims maps claim ids covered by exactly one source.
func soleSourceClaims(b *model.Bundle) map[string]bool {
	counts := make(map[string]int)
	for _, ev := range b.Evidence {
		counts[ev.ClaimID]++
	}
	sole := make(map[string]bool)
	for id, c := range counts {
		if c == 1 {
			sole[id] = true
		}
	}
	return sole
}

func isSoleSource(links []model.Evidence, sole map[string]bool) bool {
	for _, ev := range links {
		if sole[ev.ClaimID] {
			return true
		}
	}
	return false
}

func avgCoverage(links []model.Evidence) float64 {
	if len(links) == 0 {
		return 0
	}
	sum := 0.0
	for _, ev := range links {
		sum += ev.CoverageScore
	}
	return sum / float64(len(links))
}

func titleMatchesQuery(title string, terms map[string]bool) bool {
	for _, tok := range passage.Tokenize(title) {
		if terms[tok] {
			return true
		}
	}
	return false
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	return n
}
