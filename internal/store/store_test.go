package store

import (
	"testing"
	"time"

	"github.com/ppiankov/citetrace/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storedBundle(runID, query string, createdAt time.Time) *model.Bundle {
	return &model.Bundle{
		Run: model.Run{
			RunID:           runID,
			Query:           query,
			CreatedAt:       createdAt,
			PipelineVersion: "v1",
			Providers:       []string{"openai"},
		},
		Sources: []model.Source{
			{
				SourceID: "src_aaaaaaaaaaaa", URL: "https://energy.gov/r", CanonicalURL: "https://energy.gov/r",
				Domain: "energy.gov", Category: "gov", Fetched: true,
				Credibility: model.Credibility{Score: 0.9, Band: "A"},
			},
			{
				SourceID: "src_bbbbbbbbbbbb", URL: "https://blog.example.com/p", CanonicalURL: "https://blog.example.com/p",
				Domain: "blog.example.com", Category: "blog", Fetched: true,
				Credibility: model.Credibility{Score: 0.3, Band: "D"},
			},
		},
		Claims: []model.Claim{
			{ClaimID: "c1_aaaa", RunID: runID, AnswerSentenceIndex: 0, Text: "A claim."},
		},
		Evidence: []model.Evidence{
			{ClaimID: "c1_aaaa", SourceID: "src_aaaaaaaaaaaa", CoverageScore: 0.7, Snippet: "sup"},
		},
	}
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := storedBundle("run_1", "solar adoption", time.Now().UTC())
	if err := s.SaveBundle(want); err != nil {
		t.Fatalf("SaveBundle() error: %v", err)
	}

	got, err := s.GetBundle("run_1")
	if err != nil {
		t.Fatalf("GetBundle() error: %v", err)
	}
	if got.Run.Query != "solar adoption" || len(got.Sources) != 2 || len(got.Claims) != 1 || len(got.Evidence) != 1 {
		t.Errorf("bundle did not round-trip: %+v", got.Run)
	}

	if _, err := s.GetBundle("run_missing"); err == nil {
		t.Error("expected error for unknown run id")
	}
}

func TestStore_SaveBundleReplaces(t *testing.T) {
	s := openTestStore(t)

	b := storedBundle("run_1", "solar adoption", time.Now().UTC())
	if err := s.SaveBundle(b); err != nil {
		t.Fatalf("SaveBundle() error: %v", err)
	}
	b.Sources = b.Sources[:1]
	b.Evidence = nil
	if err := s.SaveBundle(b); err != nil {
		t.Fatalf("SaveBundle() replace error: %v", err)
	}

	list, err := s.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("replace must not duplicate runs, got %d", len(list))
	}
	if list[0].Sources != 1 || list[0].Cited != 0 {
		t.Errorf("normalized rows not replaced: %+v", list[0])
	}
}

func TestStore_FindByQueryHash(t *testing.T) {
	s := openTestStore(t)

	older := storedBundle("run_old", "solar adoption", time.Now().UTC().Add(-time.Hour))
	newer := storedBundle("run_new", "solar adoption", time.Now().UTC())
	if err := s.SaveBundle(older); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBundle(newer); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindByQueryHash(QueryHash("solar adoption", "v1"))
	if err != nil {
		t.Fatalf("FindByQueryHash() error: %v", err)
	}
	if got != "run_new" {
		t.Errorf("expected the most recent run, got %q", got)
	}

	got, err = s.FindByQueryHash(QueryHash("unknown query", "v1"))
	if err != nil {
		t.Fatalf("FindByQueryHash() error: %v", err)
	}
	if got != "" {
		t.Errorf("unknown hash should return empty, got %q", got)
	}
}

func TestStore_ListRecentCounts(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveBundle(storedBundle("run_1", "q1", time.Now().UTC().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBundle(storedBundle("run_2", "q2", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list))
	}
	if list[0].RunID != "run_2" {
		t.Errorf("newest run first, got %s", list[0].RunID)
	}
	if list[0].Sources != 2 || list[0].Cited != 1 {
		t.Errorf("unexpected counts: %+v", list[0])
	}
}

func TestStore_Insights(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveBundle(storedBundle("run_1", "q1", time.Now().UTC().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	b2 := storedBundle("run_2", "q2", time.Now().UTC())
	b2.Evidence = append(b2.Evidence, model.Evidence{
		ClaimID: "c1_aaaa", SourceID: "src_bbbbbbbbbbbb", CoverageScore: 0.4,
	})
	if err := s.SaveBundle(b2); err != nil {
		t.Fatal(err)
	}

	got, err := s.Insights(10)
	if err != nil {
		t.Fatalf("Insights() error: %v", err)
	}
	if got.Runs != 2 {
		t.Errorf("expected 2 runs, got %d", got.Runs)
	}
	if got.Totals.TotalSources != 4 || got.Totals.TotalCitedSources != 3 {
		t.Errorf("unexpected totals: %+v", got.Totals)
	}
	// (1/2 + 2/2) / 2 = 0.75
	if got.Totals.AvgCitationRate < 0.74 || got.Totals.AvgCitationRate > 0.76 {
		t.Errorf("expected avg rate 0.75, got %v", got.Totals.AvgCitationRate)
	}
	if len(got.DomainsTop) == 0 || got.DomainsTop[0].Domain != "energy.gov" || got.DomainsTop[0].Count != 2 {
		t.Errorf("unexpected top domains: %+v", got.DomainsTop)
	}
	if len(got.DomainsByCategory["gov"]) != 1 || got.DomainsByCategory["gov"][0].Domain != "energy.gov" {
		t.Errorf("unexpected category domains: %+v", got.DomainsByCategory)
	}
	if len(got.DomainsByCategory["blog"]) != 1 {
		t.Errorf("cited blog source missing from categories: %+v", got.DomainsByCategory)
	}
}

func TestQueryHash_Deterministic(t *testing.T) {
	if QueryHash("q", "v1") != QueryHash("q", "v1") {
		t.Error("hash must be stable")
	}
	if QueryHash("q", "v1") == QueryHash("q", "v2") {
		t.Error("hash must vary with pipeline version")
	}
	if QueryHash("a", "v1") == QueryHash("b", "v1") {
		t.Error("hash must vary with query")
	}
}
