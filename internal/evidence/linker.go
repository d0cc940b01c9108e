package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/passage"
)

var markerRe = regexp.MustCompile(`\[(src_[0-9a-f]{12})\]`)

// Linker turns a composed answer into claims and claim-to-source evidence
// links. Claims come from the composer's sentence list; when the composer
// returned plain text instead, sentences are recovered from inline source
// markers.
type Linker struct{}

// NewLinker creates a linker.
func NewLinker() *Linker {
	return &Linker{}
}

// Link extracts one claim per answer sentence, including sentences the
// composer left uncited, and builds evidence rows for every cited source the
// run actually knows about. Markers pointing at unknown or unfetched source
// ids are dropped: a document that was never retrieved cannot support a
// claim, and counting it cited would break the fetched >= cited funnel
// ordering.
func (l *Linker) Link(run *model.Run, answer *model.Answer, sources []model.Source) ([]model.Claim, []model.Evidence) {
	sentences := answer.Sentences
	if len(sentences) == 0 {
		sentences = sentencesFromText(answer.Text)
	}

	byID := make(map[string]*model.Source, len(sources))
	for i := range sources {
		byID[sources[i].SourceID] = &sources[i]
	}

	var claims []model.Claim
	var links []model.Evidence
	for idx, sent := range sentences {
		text := strings.TrimSpace(markerRe.ReplaceAllString(sent.Text, ""))
		if text == "" {
			continue
		}
		claim := model.Claim{
			ClaimID:             claimID(run.RunID, idx, text),
			RunID:               run.RunID,
			AnswerSentenceIndex: idx,
			Text:                text,
		}
		claims = append(claims, claim)

		scorer := passage.NewScorer(text)
		seen := make(map[string]bool)
		for _, sid := range sent.SourceIDs {
			src, ok := byID[sid]
			if !ok || !src.Fetched || seen[sid] {
				continue
			}
			seen[sid] = true
			links = append(links, model.Evidence{
				ClaimID:       claim.ClaimID,
				SourceID:      sid,
				CoverageScore: coverage(scorer, src),
				Snippet:       src.Passage.BestSnippet,
			})
		}
	}
	return claims, links
}

// coverage re-scores the source's text against the single claim and bounds
// the raw score into [0,1) with s/(1+s), which preserves ordering.
func coverage(scorer *passage.Scorer, src *model.Source) float64 {
	text := src.RawText
	if text == "" {
		text = src.Passage.BestSnippet
	}
	raw, _ := scorer.BestPassage(text)
	if raw == 0 {
		// Short texts have no splittable passages; score them whole.
		raw = scorer.RawScore(text)
	}
	return raw / (1 + raw)
}

// sentencesFromText splits a plain answer into sentences, attaching the
// inline [src_xxxx] markers found in each one.
func sentencesFromText(text string) []model.AnswerSentence {
	var out []model.AnswerSentence
	for _, raw := range splitSentences(text) {
		ids := markerRe.FindAllStringSubmatch(raw, -1)
		sent := model.AnswerSentence{Text: raw}
		for _, m := range ids {
			sent.SourceIDs = append(sent.SourceIDs, m[1])
		}
		out = append(out, sent)
	}
	return out
}

var sentenceSplitRe = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	matches := sentenceSplitRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	var out []string
	consumed := 0
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
		consumed += len(m[0])
	}
	if rest := strings.TrimSpace(text[consumed:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func claimID(runID string, idx int, text string) string {
	sum := sha256.Sum256([]byte(runID + "|" + text))
	return fmt.Sprintf("c%d_%s", idx+1, hex.EncodeToString(sum[:])[:8])
}
