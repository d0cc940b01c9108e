package passage

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/citetrace/internal/model"
)

// Scorer finds and scores the best-matching passage of each source against
// the run's query terms. Relevance uses a corpus-free BM25-style function:
// log-dampened term frequency times a coverage bonus, normalized across the
// run's candidate pool so scores are comparable within one run.
type Scorer struct {
	terms map[string]bool
}

// NewScorer builds a scorer for the original query and its expanded
// variants.
func NewScorer(queries ...string) *Scorer {
	return &Scorer{terms: QueryTerms(queries...)}
}

// Apply scores every source in place: best snippet, relevance, quality and
// structure. Relevance is normalized to [0,1] by the run-wide maximum raw
// score, so it must see all sources at once rather than one at a time.
func (s *Scorer) Apply(sources []model.Source) {
	raw := make([]float64, len(sources))
	maxRaw := 0.0

	for i := range sources {
		src := &sources[i]
		if !src.Fetched || len(strings.TrimSpace(src.RawText)) < MinPassageChars {
			src.Passage = model.Passage{}
			continue
		}
		score, snippet := s.BestPassage(src.RawText)
		raw[i] = score
		if score > maxRaw {
			maxRaw = score
		}
		src.Passage.BestSnippet = snippet
		src.Passage.Quality = QualityScore(snippet)
		src.Passage.Structure = StructureScore(src.RawText)
	}

	for i := range sources {
		if maxRaw > 0 {
			sources[i].Passage.Relevance = raw[i] / maxRaw
		} else {
			sources[i].Passage.Relevance = 0
		}
	}
}

// BestPassage returns the highest-scoring candidate passage and its raw
// relevance score.
func (s *Scorer) BestPassage(text string) (float64, string) {
	best := 0.0
	bestSnippet := ""
	for _, candidate := range Split(text) {
		score := s.score(candidate)
		if score > best {
			best = score
			bestSnippet = candidate
		}
	}
	if bestSnippet == "" {
		// No candidate matched any query term; keep the first candidate as
		// the representative snippet with zero relevance.
		if candidates := Split(text); len(candidates) > 0 {
			bestSnippet = candidates[0]
		}
	}
	if len(bestSnippet) > SnippetMaxChars {
		bestSnippet = bestSnippet[:SnippetMaxChars]
	}
	return best, bestSnippet
}

// RawScore exposes the unnormalized relevance of a text block against the
// scorer's term set. Used by the evidence linker for per-claim re-scoring.
func (s *Scorer) RawScore(text string) float64 {
	return s.score(text)
}

func (s *Scorer) score(chunk string) float64 {
	if len(s.terms) == 0 {
		return 0
	}
	toks := Tokenize(chunk)
	if len(toks) == 0 {
		return 0
	}

	counts := make(map[string]int, len(toks))
	for _, t := range toks {
		counts[t]++
	}

	tf := 0
	matched := 0
	for term := range s.terms {
		if c := counts[term]; c > 0 {
			tf += c
			matched++
		}
	}
	if tf == 0 {
		return 0
	}
	coverage := float64(matched) / float64(len(s.terms))
	return math.Log(1+float64(tf)) * (1 + math.Min(1.0, coverage))
}

var (
	numberRe     = regexp.MustCompile(`\b\d[\d,.]*%?\b`)
	sentenceEndRe = regexp.MustCompile(`[.!?]\s`)
)

// superlatives mark marketing-heavy phrasing. Passages leaning on them with
// no concrete data are penalized.
var superlatives = []string{
	"best-in-class", "world-class", "cutting-edge", "revolutionary",
	"game-changing", "unparalleled", "shocking", "unbelievable",
	"you won't believe", "this one trick", "amazing", "incredible",
	"must see", "industry-leading",
}

// QualityScore rates a passage on depth signals: length, sentence count,
// concrete numbers versus vague superlative phrasing. Clamped to [0,1].
func QualityScore(passage string) float64 {
	if strings.TrimSpace(passage) == "" {
		return 0
	}
	score := 0.5

	switch n := len(passage); {
	case n >= 3000:
		score += 0.15
	case n >= 1500:
		score += 0.10
	case n >= 500:
		score += 0.05
	}

	sentences := sentenceEndRe.FindAllStringIndex(passage, -1)
	if len(sentences) >= 3 {
		score += 0.05
	}

	numbers := numberRe.FindAllString(passage, -1)
	if len(numbers) >= 2 {
		score += 0.10
	} else if len(numbers) == 1 {
		score += 0.05
	}

	lower := strings.ToLower(passage)
	superlativeHits := 0
	for _, s := range superlatives {
		if strings.Contains(lower, s) {
			superlativeHits++
		}
	}
	if superlativeHits > 0 && len(numbers) == 0 {
		score -= 0.15
	}

	return clamp01(score)
}

var structureSignals = []string{
	"\n# ", "\n## ", "\n### ", "\n- ", "\n* ", "\n• ",
	"\n1.", "\n2.", "\n3.", "step ", "guide", "overview",
}

// StructureScore rates the whole document's organization: headings, list
// markers and paragraph segmentation. Not passage-specific.
func StructureScore(text string) float64 {
	text = strings.TrimSpace(text)
	if len(text) < MinPassageChars {
		return 0
	}
	score := 0.3

	lower := strings.ToLower(text)
	hits := 0
	for _, sig := range structureSignals {
		hits += strings.Count(lower, sig)
	}
	score += math.Min(0.4, float64(hits)*0.05)

	if paragraphs := splitParagraphs(text); len(paragraphs) >= 4 {
		score += 0.2
	} else if len(paragraphs) >= 2 {
		score += 0.1
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
