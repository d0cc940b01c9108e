package evidence

import (
	"strings"
	"testing"

	"github.com/ppiankov/citetrace/internal/model"
)

func testRun() *model.Run {
	return &model.Run{RunID: "run_test", Query: "solar efficiency"}
}

func testSources() []model.Source {
	return []model.Source{
		{
			SourceID: "src_aaaaaaaaaaaa",
			Fetched:  true,
			RawText:  strings.Repeat("Solar panel efficiency has improved steadily over the decade. ", 10),
			Passage:  model.Passage{BestSnippet: "Solar panel efficiency has improved steadily."},
		},
		{
			SourceID: "src_bbbbbbbbbbbb",
			Fetched:  true,
			RawText:  strings.Repeat("Manufacturing costs continue to fall across the industry. ", 10),
			Passage:  model.Passage{BestSnippet: "Manufacturing costs continue to fall."},
		},
	}
}

func TestLinker_Link_OneClaimPerSentence(t *testing.T) {
	answer := &model.Answer{
		Text: "Efficiency improved. Costs fell. Nothing cites this.",
		Sentences: []model.AnswerSentence{
			{Text: "Efficiency improved.", SourceIDs: []string{"src_aaaaaaaaaaaa"}},
			{Text: "Costs fell.", SourceIDs: []string{"src_bbbbbbbbbbbb"}},
			{Text: "Nothing cites this.", SourceIDs: nil},
		},
	}

	claims, links := NewLinker().Link(testRun(), answer, testSources())

	if len(claims) != 3 {
		t.Fatalf("expected a claim per sentence including uncited ones, got %d", len(claims))
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 evidence links, got %d", len(links))
	}
	for i, c := range claims {
		if c.AnswerSentenceIndex != i {
			t.Errorf("claim %d carries index %d", i, c.AnswerSentenceIndex)
		}
		if !strings.HasPrefix(c.ClaimID, "c") {
			t.Errorf("unexpected claim id %s", c.ClaimID)
		}
		if c.RunID != "run_test" {
			t.Errorf("claim %d missing run id", i)
		}
	}
}

func TestLinker_Link_UnknownSourceIDsDropped(t *testing.T) {
	answer := &model.Answer{
		Sentences: []model.AnswerSentence{
			{Text: "A sentence.", SourceIDs: []string{"src_aaaaaaaaaaaa", "src_missing00000", "src_aaaaaaaaaaaa"}},
		},
	}

	_, links := NewLinker().Link(testRun(), answer, testSources())
	if len(links) != 1 {
		t.Fatalf("unknown and duplicate ids must be dropped, got %d links", len(links))
	}
	if links[0].SourceID != "src_aaaaaaaaaaaa" {
		t.Errorf("unexpected link target %s", links[0].SourceID)
	}
}

func TestLinker_Link_UnfetchedSourceSkipped(t *testing.T) {
	sources := append(testSources(), model.Source{
		SourceID: "src_cccccccccccc",
		Fetched:  false,
		Snippet:  "A discovery snippet for a page that was never retrieved.",
	})
	answer := &model.Answer{
		Sentences: []model.AnswerSentence{
			{Text: "A sentence.", SourceIDs: []string{"src_cccccccccccc", "src_aaaaaaaaaaaa"}},
		},
	}

	_, links := NewLinker().Link(testRun(), answer, sources)
	if len(links) != 1 {
		t.Fatalf("unfetched sources must not be cited, got %d links", len(links))
	}
	if links[0].SourceID != "src_aaaaaaaaaaaa" {
		t.Errorf("unexpected link target %s", links[0].SourceID)
	}
}

func TestLinker_Link_CoverageBounded(t *testing.T) {
	answer := &model.Answer{
		Sentences: []model.AnswerSentence{
			{Text: "Solar panel efficiency improved steadily.", SourceIDs: []string{"src_aaaaaaaaaaaa"}},
		},
	}

	_, links := NewLinker().Link(testRun(), answer, testSources())
	if len(links) != 1 {
		t.Fatal("expected one link")
	}
	cov := links[0].CoverageScore
	if cov <= 0 || cov >= 1 {
		t.Errorf("coverage should fall strictly between 0 and 1 for matching text, got %v", cov)
	}
}

func TestLinker_Link_InlineMarkerFallback(t *testing.T) {
	answer := &model.Answer{
		Text: "Efficiency improved [src_aaaaaaaaaaaa]. Costs fell [src_bbbbbbbbbbbb].",
	}

	claims, links := NewLinker().Link(testRun(), answer, testSources())
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims from plain text, got %d", len(claims))
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links from inline markers, got %d", len(links))
	}
	for _, c := range claims {
		if strings.Contains(c.Text, "[src_") {
			t.Errorf("marker not stripped from claim text: %q", c.Text)
		}
	}
}

func TestLinker_Link_Deterministic(t *testing.T) {
	answer := &model.Answer{
		Sentences: []model.AnswerSentence{
			{Text: "Efficiency improved.", SourceIDs: []string{"src_aaaaaaaaaaaa"}},
		},
	}

	claims1, _ := NewLinker().Link(testRun(), answer, testSources())
	claims2, _ := NewLinker().Link(testRun(), answer, testSources())
	if claims1[0].ClaimID != claims2[0].ClaimID {
		t.Errorf("claim ids must be stable across repeated linking: %s vs %s",
			claims1[0].ClaimID, claims2[0].ClaimID)
	}
}
