package dedup

import (
	"testing"

	"github.com/ppiankov/citetrace/internal/model"
)

func TestMerger_Merge_ExactURLConsensus(t *testing.T) {
	merger := NewMerger()
	results := []model.ProviderResult{
		{Provider: "alpha", URL: "https://example.com/article", Title: "The Article"},
		{Provider: "beta", URL: "http://www.example.com/article/?utm_source=feed", Title: "The Article"},
	}

	sources := merger.Merge(results)
	if len(sources) != 1 {
		t.Fatalf("expected 1 merged source, got %d", len(sources))
	}

	src := sources[0]
	if src.ConsensusCount != 2 {
		t.Errorf("expected consensus_count 2, got %d", src.ConsensusCount)
	}
	if len(src.Providers) != 2 || src.Providers[0] != "alpha" || src.Providers[1] != "beta" {
		t.Errorf("unexpected providers: %v", src.Providers)
	}
	if src.Title != "The Article" {
		t.Errorf("unexpected title: %q", src.Title)
	}
}

func TestMerger_Merge_SameProviderCountsOnce(t *testing.T) {
	merger := NewMerger()
	results := []model.ProviderResult{
		{Provider: "alpha", URL: "https://example.com/a", Title: "A"},
		{Provider: "alpha", URL: "https://example.com/a?utm_source=x", Title: "A"},
	}

	sources := merger.Merge(results)
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].ConsensusCount != 1 {
		t.Errorf("same provider twice should count once, got %d", sources[0].ConsensusCount)
	}
}

func TestMerger_Merge_TitleMatchSameDomain(t *testing.T) {
	merger := NewMerger()
	results := []model.ProviderResult{
		{Provider: "alpha", URL: "https://news.example.com/story-123", Title: "Major Climate Report Released Today"},
		{Provider: "beta", URL: "https://news.example.com/amp/story-123", Title: "Major Climate Report Released Today"},
		{Provider: "gamma", URL: "https://other.com/story", Title: "Major Climate Report Released Today"},
	}

	sources := merger.Merge(results)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources (same-domain title match merges, cross-domain does not), got %d", len(sources))
	}
	if sources[0].ConsensusCount != 2 {
		t.Errorf("expected consensus 2 on merged source, got %d", sources[0].ConsensusCount)
	}
	if sources[1].ConsensusCount != 1 {
		t.Errorf("cross-domain source should keep consensus 1, got %d", sources[1].ConsensusCount)
	}
}

func TestMerger_Merge_FirstSeenOrderPreserved(t *testing.T) {
	merger := NewMerger()
	results := []model.ProviderResult{
		{Provider: "alpha", URL: "https://a.com/1", Title: "First"},
		{Provider: "alpha", URL: "https://b.com/2", Title: "Second"},
		{Provider: "beta", URL: "https://a.com/1", Title: "First again"},
		{Provider: "beta", URL: "https://c.com/3", Title: "Third"},
	}

	sources := merger.Merge(results)
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	wantDomains := []string{"a.com", "b.com", "c.com"}
	for i, want := range wantDomains {
		if sources[i].Domain != want {
			t.Errorf("position %d: expected %s, got %s", i, want, sources[i].Domain)
		}
	}
	// First-seen title wins on merge.
	if sources[0].Title != "First" {
		t.Errorf("expected first-seen title to win, got %q", sources[0].Title)
	}
}

func TestMerger_Merge_EmptyInput(t *testing.T) {
	sources := NewMerger().Merge(nil)
	if len(sources) != 0 {
		t.Errorf("expected no sources for empty input, got %d", len(sources))
	}
}

func TestConsensusBoost_Monotonic(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0.0},
		{1, 0.0},
		{2, 0.15},
		{3, 0.25},
		{5, 0.25},
	}
	prev := -1.0
	for _, tt := range tests {
		got := ConsensusBoost(tt.count)
		if got != tt.want {
			t.Errorf("ConsensusBoost(%d) = %v, want %v", tt.count, got, tt.want)
		}
		if got < prev {
			t.Errorf("ConsensusBoost not monotonic at count %d", tt.count)
		}
		prev = got
	}
	if ConsensusBoost(100) > MaxConsensusBoost {
		t.Errorf("boost exceeds ceiling")
	}
}
