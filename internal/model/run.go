package model

import "time"

// Run identifies a single query execution. Immutable once created; all other
// entities are scoped to exactly one run.
type Run struct {
	RunID     string    `json:"run_id"`
	Query     string    `json:"query"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	PipelineVersion string   `json:"pipeline_version,omitempty"`
	Providers       []string `json:"providers,omitempty"`
	ComposerModel   string   `json:"composer_model,omitempty"`
}

// Answer is the composer's output: the final text plus its sentence-level
// citation markers. The composer's markers are ground truth for the evidence
// linker, even where they diverge from the selector's own ranking.
type Answer struct {
	Text      string           `json:"text"`
	Sentences []AnswerSentence `json:"sentences"`
}

// AnswerSentence is one sentence with the source ids it cites.
type AnswerSentence struct {
	Text      string   `json:"text"`
	SourceIDs []string `json:"source_ids"`
}

// Bundle is the complete, immutable result of a run. Once computed it is
// cached by run_id and repeated reads must return it unchanged.
type Bundle struct {
	Run             Run              `json:"run"`
	Sources         []Source         `json:"sources"`
	Claims          []Claim          `json:"claims"`
	Evidence        []Evidence       `json:"evidence"`
	Answer          Answer           `json:"answer"`
	ProviderResults []ProviderResult `json:"provider_results,omitempty"`
	FetchedDocs     []FetchedDoc     `json:"fetched_docs,omitempty"`
	Analysis        *Analysis        `json:"analysis,omitempty"`

	// Selected holds the selector's ranking proposal (source ids in rank
	// order). Comparing it with the evidence set yields the
	// selector-vs-composer divergence metric.
	Selected []string `json:"selected,omitempty"`
}

// SourceByID returns the source with the given id, or nil.
func (b *Bundle) SourceByID(id string) *Source {
	for i := range b.Sources {
		if b.Sources[i].SourceID == id {
			return &b.Sources[i]
		}
	}
	return nil
}

// CitedSourceIDs returns the set of unique source ids appearing in Evidence.
func (b *Bundle) CitedSourceIDs() map[string]bool {
	cited := make(map[string]bool, len(b.Evidence))
	for _, e := range b.Evidence {
		if e.SourceID != "" {
			cited[e.SourceID] = true
		}
	}
	return cited
}

// Analysis is the pure aggregation over a bundle: funnel counts, per-claim
// coverage and source-mix statistics. No new scoring happens here.
type Analysis struct {
	Funnel           Funnel           `json:"funnel"`
	CoveragePerClaim map[string]int   `json:"coverage_per_claim"`
	Matrix           CoverageMatrix   `json:"matrix"`
	Mix              Mix              `json:"mix"`
	SelectorOverlap  float64          `json:"selector_overlap"`
}

// Funnel is the Proposed -> Fetched -> Cited attrition sequence.
// Invariant: Proposed >= Fetched >= Cited >= 0.
type Funnel struct {
	Proposed int `json:"proposed"`
	Fetched  int `json:"fetched"`
	Cited    int `json:"cited"`
}

// CoverageMatrix is the boolean claim x source grid; Cells[i][j] is true iff
// an Evidence record links ClaimIDs[i] to SourceIDs[j].
type CoverageMatrix struct {
	ClaimIDs  []string `json:"claim_ids"`
	SourceIDs []string `json:"source_ids"`
	Cells     [][]bool `json:"cells"`
}

// DomainCount is one entry of the domains_top frequency list.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Mix describes the composition of the run's sources.
type Mix struct {
	DomainsTop      []DomainCount  `json:"domains_top"`
	MediaType       map[string]int `json:"media_type"`
	CredibilityBand map[string]int `json:"credibility_band"`
}

// AggregateInsights summarizes citation behavior across multiple runs.
type AggregateInsights struct {
	Runs   int `json:"runs"`
	Totals struct {
		TotalSources      int     `json:"total_sources"`
		TotalCitedSources int     `json:"total_cited_sources"`
		AvgCitationRate   float64 `json:"avg_citation_rate"`
	} `json:"totals"`
	DomainsTop        []DomainCount            `json:"domains_top"`
	DomainsByCategory map[string][]DomainCount `json:"domains_by_category"`

	// AvgSelectorOverlap is the mean selector-vs-composer agreement across
	// the aggregated runs.
	AvgSelectorOverlap float64 `json:"avg_selector_overlap"`
}
