package explain

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/citetrace/internal/credibility"
	"github.com/ppiankov/citetrace/internal/model"
)

func fixedExplainer(now time.Time) *Explainer {
	e := NewExplainer()
	e.now = func() time.Time { return now }
	return e
}

func longText() string {
	return strings.Repeat("The report covers methodology, findings and limitations in detail. ", 12)
}

func explainBundle() *model.Bundle {
	published := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	return &model.Bundle{
		Run: model.Run{RunID: "run_x", Query: "renewable energy adoption"},
		Sources: []model.Source{
			{
				SourceID:    "src_cited000001",
				Domain:      "energy.gov",
				Title:       "Renewable energy adoption report",
				Fetched:     true,
				RawText:     longText(),
				PublishedAt: &published,
				Credibility: model.Credibility{Score: 0.90, Band: "A"},
				Passage:     model.Passage{BestSnippet: "adoption rose", Relevance: 0.9, Quality: 0.7, Structure: 0.8},
			},
			{
				SourceID: "src_uncited0001",
				Domain:   "other.com",
				Fetched:  true,
				RawText:  longText(),
				Passage:  model.Passage{BestSnippet: "some text", Relevance: 0.5, Quality: 0.6, Structure: 0.5},
			},
		},
		Claims: []model.Claim{
			{ClaimID: "c1_aaaa"},
			{ClaimID: "c2_bbbb"},
		},
		Evidence: []model.Evidence{
			{ClaimID: "c1_aaaa", SourceID: "src_cited000001", CoverageScore: 0.8},
			{ClaimID: "c2_bbbb", SourceID: "src_cited000001", CoverageScore: 0.75},
		},
	}
}

func TestExplain_CitedTagsCappedAndOrdered(t *testing.T) {
	b := explainBundle()
	out := fixedExplainer(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)).Explain(b)

	if len(out) != 2 {
		t.Fatalf("expected one explanation per source, got %d", len(out))
	}
	got := out[0]
	if !got.Cited || got.Reason != "" {
		t.Fatalf("first source is cited, got %+v", got)
	}
	if len(got.Tags) == 0 || len(got.Tags) > 4 {
		t.Fatalf("tags must be 1..4, got %v", got.Tags)
	}
	// This source trips more than four rules; the first four in priority
	// order win.
	want := []string{TagHighCoverage, TagAuthoritative, TagFresh, TagMatchesIntent}
	for i, tag := range want {
		if got.Tags[i] != tag {
			t.Errorf("tag %d: got %q, want %q", i, got.Tags[i], tag)
		}
	}
}

func TestExplain_CitedFallbackTag(t *testing.T) {
	b := explainBundle()
	src := &b.Sources[0]
	src.Title = "unrelated"
	src.PublishedAt = nil
	src.Credibility.Score = 0.5
	src.Passage.Structure = 0.1
	b.Evidence = []model.Evidence{
		{ClaimID: "c1_aaaa", SourceID: "src_cited000001", CoverageScore: 0.1},
		// second source on the same claim so the claim is not sole-covered
		{ClaimID: "c1_aaaa", SourceID: "src_uncited0001", CoverageScore: 0.1},
	}

	out := fixedExplainer(time.Now()).Explain(b)
	for _, ex := range out {
		if ex.SourceID != "src_cited000001" {
			continue
		}
		if len(ex.Tags) != 1 || ex.Tags[0] != TagBestFit {
			t.Errorf("cited source tripping no rule gets the fallback tag, got %v", ex.Tags)
		}
	}
}

func TestExplain_UncitedReasonFirstMatchWins(t *testing.T) {
	old := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		src  model.Source
		want string
	}{
		{
			name: "paywalled beats everything",
			src:  model.Source{SourceID: "src_p", Fetched: true, Paywalled: true},
			want: ReasonNotAccessible,
		},
		{
			name: "unfetched",
			src:  model.Source{SourceID: "src_u", Fetched: false, RawText: longText()},
			want: ReasonNotAccessible,
		},
		{
			name: "thin content",
			src:  model.Source{SourceID: "src_t", Fetched: true, RawText: "tiny."},
			want: ReasonThinContent,
		},
		{
			name: "blog category regardless of quality",
			src: model.Source{
				SourceID: "src_b", Fetched: true, RawText: longText(),
				Category: credibility.CategoryBlog,
				Passage:  model.Passage{BestSnippet: "buy now", Relevance: 0.5, Quality: 0.6},
			},
			want: ReasonPromotional,
		},
		{
			name: "blog pattern in url path",
			src: model.Source{
				SourceID: "src_bp", Fetched: true, RawText: longText(),
				URL: "https://acme.com/blog/why-we-win", Domain: "acme.com",
				Category: credibility.CategoryCorporate,
				Passage:  model.Passage{BestSnippet: "x", Relevance: 0.5, Quality: 0.6},
			},
			want: ReasonPromotional,
		},
		{
			name: "no passages",
			src:  model.Source{SourceID: "src_n", Fetched: true, RawText: longText()},
			want: ReasonNoPassages,
		},
		{
			name: "no query match despite snippet",
			src: model.Source{
				SourceID: "src_s", Fetched: true, RawText: longText(),
				Passage: model.Passage{BestSnippet: "representative excerpt", Relevance: 0},
			},
			want: ReasonNoPassages,
		},
		{
			name: "weak relevance",
			src: model.Source{
				SourceID: "src_w", Fetched: true, RawText: longText(),
				Passage: model.Passage{BestSnippet: "x", Relevance: 0.1, Quality: 0.5},
			},
			want: ReasonWeakRelevance,
		},
		{
			name: "outdated",
			src: model.Source{
				SourceID: "src_o", Fetched: true, RawText: longText(), PublishedAt: &old,
				Passage: model.Passage{BestSnippet: "x", Relevance: 0.5, Quality: 0.5},
			},
			want: ReasonOutdated,
		},
		{
			name: "weaker passages default",
			src: model.Source{
				SourceID: "src_d", Fetched: true, RawText: longText(),
				Passage: model.Passage{BestSnippet: "x", Relevance: 0.5, Quality: 0.5},
			},
			want: ReasonWeakerPassages,
		},
	}

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &model.Bundle{
				Run:     model.Run{RunID: "run_x", Query: "q"},
				Sources: []model.Source{tc.src},
			}
			out := fixedExplainer(now).Explain(b)
			if out[0].Cited {
				t.Fatal("source without evidence must be uncited")
			}
			if out[0].Reason != tc.want {
				t.Errorf("got %q, want %q", out[0].Reason, tc.want)
			}
		})
	}
}

func TestExplain_DomainDuplicate(t *testing.T) {
	b := explainBundle()
	b.Sources[1].Domain = "energy.gov"
	b.Sources[1].Passage = model.Passage{BestSnippet: "x", Relevance: 0.5, Quality: 0.5}

	out := fixedExplainer(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)).Explain(b)
	if out[1].Reason != ReasonDomainDup {
		t.Errorf("expected domain duplicate reason, got %q", out[1].Reason)
	}
}

func TestExplain_Idempotent(t *testing.T) {
	b := explainBundle()
	e := fixedExplainer(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	first := e.Explain(b)
	second := e.Explain(b)
	if len(first) != len(second) {
		t.Fatalf("explanation count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].SourceID != second[i].SourceID ||
			first[i].Cited != second[i].Cited ||
			first[i].Reason != second[i].Reason ||
			strings.Join(first[i].Tags, "|") != strings.Join(second[i].Tags, "|") {
			t.Errorf("explanation %d differs between runs", i)
		}
	}
}
