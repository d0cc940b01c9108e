package credibility

import (
	"strings"
	"time"

	"github.com/ppiankov/citetrace/internal/model"
)

// Band boundaries. The band is a pure, monotonic function of the score.
const (
	BandAMin = 0.80
	BandBMin = 0.60
	BandCMin = 0.40
)

// Adjustment bounds. Each content signal contributes a bounded bonus; the
// sum is clamped with the base score into [0,1].
const (
	lengthBonus      = 0.05
	academicBonus    = 0.05
	authorBonus      = 0.03
	recencyBonusMax  = 0.05
	recencyWindow    = 3 * 365 * 24 * time.Hour // linear decay window
	longContentChars = 2000
)

var academicTerms = []string{"study", "research", "findings", "analysis", "methodology"}

// Scorer assigns each source a credibility score and band from the ordered
// domain rule table plus content signals. The result is a prior: one signal
// among several, never a citation gate by itself.
type Scorer struct {
	rules []Rule
	now   func() time.Time
}

// NewScorer creates a scorer over the default rule table.
func NewScorer() *Scorer {
	return &Scorer{rules: DefaultRules(), now: time.Now}
}

// NewScorerWithRules creates a scorer over a custom rule table.
func NewScorerWithRules(rules []Rule) *Scorer {
	return &Scorer{rules: rules, now: time.Now}
}

// Score computes the credibility for a single source and returns the
// matched category alongside.
func (s *Scorer) Score(src *model.Source) (model.Credibility, string) {
	base, category := s.classify(src.Domain, src.MediaType)

	score := base
	if len(src.RawText) >= longContentChars {
		score += lengthBonus
	}
	if hasAcademicLanguage(src.RawText) {
		score += academicBonus
	}
	if strings.TrimSpace(src.Author) != "" {
		score += authorBonus
	}
	score += s.recencyBonus(src.PublishedAt)

	score = clamp01(score)
	return model.Credibility{Score: score, Band: Band(score)}, category
}

// Apply scores every source in place.
func (s *Scorer) Apply(sources []model.Source) {
	for i := range sources {
		cred, category := s.Score(&sources[i])
		sources[i].Credibility = cred
		sources[i].Category = category
	}
}

func (s *Scorer) classify(domain, mediaType string) (float64, string) {
	domain = strings.ToLower(domain)
	mediaType = strings.ToLower(mediaType)
	for _, r := range s.rules {
		if r.Match(domain, mediaType) {
			return r.BaseScore, r.Category
		}
	}
	return DefaultBaseScore, CategoryWeb
}

// recencyBonus decays linearly from the full bonus at publication to zero
// at the three-year mark. Unknown dates earn nothing.
func (s *Scorer) recencyBonus(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return 0
	}
	age := s.now().Sub(*publishedAt)
	if age < 0 {
		age = 0
	}
	if age >= recencyWindow {
		return 0
	}
	return recencyBonusMax * (1 - float64(age)/float64(recencyWindow))
}

func hasAcademicLanguage(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range academicTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Band maps a credibility score to its letter band.
func Band(score float64) string {
	switch {
	case score >= BandAMin:
		return "A"
	case score >= BandBMin:
		return "B"
	case score >= BandCMin:
		return "C"
	default:
		return "D"
	}
}

// BandRank orders bands for tie-breaking: A ranks highest.
func BandRank(band string) int {
	switch band {
	case "A":
		return 4
	case "B":
		return 3
	case "C":
		return 2
	case "D":
		return 1
	default:
		return 0
	}
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
