package analysis

import (
	"testing"

	"github.com/ppiankov/citetrace/internal/model"
)

func testBundle() *model.Bundle {
	return &model.Bundle{
		Run: model.Run{RunID: "run_test", Query: "test"},
		ProviderResults: []model.ProviderResult{
			{Provider: "alpha", URL: "https://a.com/1"},
			{Provider: "beta", URL: "https://a.com/1?utm_source=x"}, // same page
			{Provider: "alpha", URL: "https://b.org/2"},
			{Provider: "alpha", URL: "https://c.net/3"},
		},
		Sources: []model.Source{
			{SourceID: "src_a", CanonicalURL: "https://a.com/1", Domain: "a.com", MediaType: "web",
				Fetched: true, Credibility: model.Credibility{Band: "A"}},
			{SourceID: "src_b", CanonicalURL: "https://b.org/2", Domain: "b.org", MediaType: "web",
				Fetched: true, Credibility: model.Credibility{Band: "B"}},
			{SourceID: "src_c", CanonicalURL: "https://c.net/3", Domain: "c.net", MediaType: "web",
				Fetched: false, Credibility: model.Credibility{Band: "C"}},
		},
		Claims: []model.Claim{
			{ClaimID: "c1_aaaa", AnswerSentenceIndex: 0},
			{ClaimID: "c2_bbbb", AnswerSentenceIndex: 1},
		},
		Evidence: []model.Evidence{
			{ClaimID: "c1_aaaa", SourceID: "src_a", CoverageScore: 0.8},
			{ClaimID: "c1_aaaa", SourceID: "src_b", CoverageScore: 0.5},
		},
		Selected: []string{"src_a", "src_b"},
	}
}

func TestAnalyze_FunnelInvariant(t *testing.T) {
	a := Analyze(testBundle())

	f := a.Funnel
	if f.Proposed != 3 {
		t.Errorf("expected 3 unique proposed URLs, got %d", f.Proposed)
	}
	if f.Fetched != 2 {
		t.Errorf("expected 2 fetched, got %d", f.Fetched)
	}
	if f.Cited != 2 {
		t.Errorf("expected 2 cited, got %d", f.Cited)
	}
	if !(f.Proposed >= f.Fetched && f.Fetched >= f.Cited && f.Cited >= 0) {
		t.Errorf("funnel ordering violated: %+v", f)
	}
}

func TestAnalyze_CoveragePerClaimIncludesUncovered(t *testing.T) {
	a := Analyze(testBundle())

	if got := a.CoveragePerClaim["c1_aaaa"]; got != 2 {
		t.Errorf("expected 2 sources for c1, got %d", got)
	}
	if got, ok := a.CoveragePerClaim["c2_bbbb"]; !ok || got != 0 {
		t.Errorf("uncovered claim must appear with zero, got %d (present %v)", got, ok)
	}
}

func TestAnalyze_MatrixMatchesEvidence(t *testing.T) {
	a := Analyze(testBundle())
	m := a.Matrix

	if len(m.ClaimIDs) != 2 || len(m.SourceIDs) != 2 {
		t.Fatalf("unexpected matrix shape: %d x %d", len(m.ClaimIDs), len(m.SourceIDs))
	}
	if !m.Cells[0][0] || !m.Cells[0][1] {
		t.Errorf("claim 1 should cover both cited sources")
	}
	if m.Cells[1][0] || m.Cells[1][1] {
		t.Errorf("claim 2 has no evidence and must stay empty")
	}
}

func TestAnalyze_MixCitedOnly(t *testing.T) {
	a := Analyze(testBundle())

	if len(a.Mix.DomainsTop) != 2 {
		t.Fatalf("expected 2 cited domains, got %d", len(a.Mix.DomainsTop))
	}
	// Equal counts order alphabetically for determinism.
	if a.Mix.DomainsTop[0].Domain != "a.com" || a.Mix.DomainsTop[1].Domain != "b.org" {
		t.Errorf("unexpected domain order: %+v", a.Mix.DomainsTop)
	}
	if a.Mix.CredibilityBand["A"] != 1 || a.Mix.CredibilityBand["B"] != 1 {
		t.Errorf("unexpected band mix: %+v", a.Mix.CredibilityBand)
	}
	if a.Mix.CredibilityBand["C"] != 0 {
		t.Errorf("uncited source leaked into the mix")
	}
}

func TestAnalyze_SelectorOverlap(t *testing.T) {
	b := testBundle()
	if got := Analyze(b).SelectorOverlap; got != 1.0 {
		t.Errorf("identical sets overlap fully, got %v", got)
	}

	b.Selected = []string{"src_a", "src_c"}
	got := Analyze(b).SelectorOverlap
	// intersection {src_a}, union {src_a, src_b, src_c}
	if got < 0.33 || got > 0.34 {
		t.Errorf("expected Jaccard 1/3, got %v", got)
	}
}

func TestAnalyze_ZeroEvidenceRun(t *testing.T) {
	b := testBundle()
	b.Evidence = nil
	b.Selected = nil

	a := Analyze(b)
	if a.Funnel.Cited != 0 {
		t.Errorf("expected zero cited, got %d", a.Funnel.Cited)
	}
	if len(a.Matrix.SourceIDs) != 0 {
		t.Errorf("matrix should have no source columns")
	}
	if len(a.Mix.DomainsTop) != 0 {
		t.Errorf("mix should be empty")
	}
	if a.SelectorOverlap != 1.0 {
		t.Errorf("two empty sets agree perfectly, got %v", a.SelectorOverlap)
	}
	for id, n := range a.CoveragePerClaim {
		if n != 0 {
			t.Errorf("claim %s should have zero coverage", id)
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	b := testBundle()
	a1 := Analyze(b)
	a2 := Analyze(b)

	if a1.Funnel != a2.Funnel || a1.SelectorOverlap != a2.SelectorOverlap {
		t.Errorf("analysis differs between identical runs")
	}
	for i := range a1.Mix.DomainsTop {
		if a1.Mix.DomainsTop[i] != a2.Mix.DomainsTop[i] {
			t.Errorf("domain order differs at %d", i)
		}
	}
}

func TestAggregate_AcrossRuns(t *testing.T) {
	b1 := testBundle()
	b2 := testBundle()
	b2.Run.RunID = "run_other"
	b2.Evidence = b2.Evidence[:1] // only src_a cited

	got := Aggregate([]*model.Bundle{b1, b2})
	if got.Runs != 2 {
		t.Errorf("expected 2 runs, got %d", got.Runs)
	}
	if got.Totals.TotalSources != 6 {
		t.Errorf("expected 6 total sources, got %d", got.Totals.TotalSources)
	}
	if got.Totals.TotalCitedSources != 3 {
		t.Errorf("expected 3 cited, got %d", got.Totals.TotalCitedSources)
	}
	// (2/3 + 1/3) / 2 = 0.5
	if got.Totals.AvgCitationRate < 0.49 || got.Totals.AvgCitationRate > 0.51 {
		t.Errorf("expected avg rate 0.5, got %v", got.Totals.AvgCitationRate)
	}
	if len(got.DomainsTop) == 0 || got.DomainsTop[0].Domain != "a.com" || got.DomainsTop[0].Count != 2 {
		t.Errorf("unexpected top domains: %+v", got.DomainsTop)
	}
	// b1: cited == selected; b2: cited {src_a}, selected {src_a, src_b}.
	// (1 + 1/2) / 2 = 0.75
	if got.AvgSelectorOverlap < 0.74 || got.AvgSelectorOverlap > 0.76 {
		t.Errorf("expected avg overlap 0.75, got %v", got.AvgSelectorOverlap)
	}
}
