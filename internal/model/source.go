package model

import "time"

// Source represents a unique discovered document after consensus deduplication.
// It is created by the deduplicator and progressively enriched by the
// credibility scorer, passage scorer and citation selector. Sources are never
// deleted: "not cited" is the absence of Evidence, not a flag.
type Source struct {
	SourceID     string    `json:"source_id"`
	RunID        string    `json:"run_id,omitempty"`
	URL          string    `json:"url"`
	CanonicalURL string    `json:"canonical_url"`
	Domain       string    `json:"domain"`
	Title        string    `json:"title"`
	Snippet      string    `json:"snippet,omitempty"`
	Author       string    `json:"author,omitempty"`
	MediaType    string    `json:"media_type,omitempty"`
	RawText      string    `json:"raw_text,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	AccessedAt   *time.Time `json:"accessed_at,omitempty"`
	Paywalled    bool      `json:"paywalled,omitempty"`
	Fetched      bool      `json:"fetched"`

	// Providers lists the discovery providers that surfaced this source,
	// in first-seen order. ConsensusCount == len(Providers).
	Providers      []string `json:"providers"`
	ConsensusCount int      `json:"consensus_count"`

	Category    string      `json:"category,omitempty"`
	Credibility Credibility `json:"credibility"`
	Passage     Passage     `json:"passage"`

	// CitationScore is the selector's final weighted ranking score.
	CitationScore float64 `json:"citation_score"`
}

// Credibility is a prior derived from domain heuristics and content signals.
// It is one signal among several and never gates citation eligibility on its
// own.
type Credibility struct {
	Score float64 `json:"score"`
	Band  string  `json:"band"`
}

// Passage holds the best-matching extracted passage and its scores.
type Passage struct {
	BestSnippet string  `json:"best_snippet,omitempty"`
	Relevance   float64 `json:"relevance"`
	Quality     float64 `json:"quality"`
	Structure   float64 `json:"structure"`
}

// Eligible reports whether the source can be cited at all. Sources with no
// extractable passage are excluded from ranking regardless of credibility.
func (s *Source) Eligible() bool {
	return s.Fetched && (s.Passage.Relevance > 0 || s.Passage.BestSnippet != "")
}

// HasProvider reports whether the given provider surfaced this source.
func (s *Source) HasProvider(name string) bool {
	for _, p := range s.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// ProviderResult is a raw, pre-dedup discovery record. Retained only for
// funnel counting; never mutated after ingestion.
type ProviderResult struct {
	Provider    string     `json:"provider"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// FetchedDoc is a raw fetched-document record, retained for funnel counting.
type FetchedDoc struct {
	URL         string     `json:"url"`
	RawText     string     `json:"raw_text"`
	Title       string     `json:"title,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Paywalled   bool       `json:"paywalled,omitempty"`
}
