package credibility

import "strings"

// Category labels used in source mix and insights reporting.
const (
	CategoryGov         = "gov"
	CategoryAcademic    = "edu"
	CategoryPublisher   = "publisher"
	CategoryResearch    = "research"
	CategoryNews        = "news"
	CategoryAssociation = "association"
	CategoryCorporate   = "corporate"
	CategoryBlog        = "blog"
	CategoryWeb         = "web"
)

// Rule binds a domain predicate to a category and its base credibility
// score. Rules are evaluated top-down, first match wins, so ordering is the
// priority: government/military above academic above publishers and so on
// down to blogs and forums.
type Rule struct {
	Match     func(domain, mediaType string) bool
	Category  string
	BaseScore float64
}

// DefaultBaseScore applies when no rule matches: the lowest-priority
// category with a neutral mid-range score, never an error.
const DefaultBaseScore = 0.50

func suffixAny(domain string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(domain, s) {
			return true
		}
	}
	return false
}

func containsAny(domain string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(domain, n) {
			return true
		}
	}
	return false
}

// blogNeedles mark blog and social platforms. Shared between the rule table
// and BlogPattern so category and URL checks never drift apart.
var blogNeedles = []string{
	"blog", "medium.com", "substack", "wordpress", "blogger",
	"reddit", "twitter", "x.com", "facebook", "linkedin",
	"tiktok", "youtube", "quora", "forum",
}

// BlogPattern reports whether s (a domain or a full URL) carries a blog or
// social platform marker. URLs match on the path too, so example.com/blog/x
// counts even though the bare domain classifies as corporate.
func BlogPattern(s string) bool {
	return containsAny(strings.ToLower(s), blogNeedles...)
}

// DefaultRules is the ordered rule table. It replaces the sprawling
// string-contains chains of ad-hoc categorizers with data that can be tested
// and extended without touching control flow.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category:  CategoryGov,
			BaseScore: 0.90,
			Match: func(domain, _ string) bool {
				return suffixAny(domain, ".gov", ".mil", ".int", ".gov.uk", ".europa.eu") ||
					containsAny(domain, ".gov.", "who.int", "un.org", "oecd.org", "worldbank.org", "imf.org")
			},
		},
		{
			Category:  CategoryAcademic,
			BaseScore: 0.85,
			Match: func(domain, _ string) bool {
				return suffixAny(domain, ".edu", ".ac.uk") ||
					containsAny(domain, ".edu.", ".ac.", "university", "college")
			},
		},
		{
			Category:  CategoryPublisher,
			BaseScore: 0.82,
			Match: func(domain, mediaType string) bool {
				return containsAny(domain,
					"nature.com", "science.org", "cell.com", "pnas.org",
					"arxiv.org", "ieee.org", "acm.org", "springer", "elsevier", "wiley") ||
					strings.Contains(mediaType, "journal") || strings.Contains(mediaType, "paper")
			},
		},
		{
			Category:  CategoryResearch,
			BaseScore: 0.78,
			Match: func(domain, mediaType string) bool {
				return containsAny(domain,
					"brookings", "rand.org", "cfr.org", "pewresearch", "gallup",
					"urban.org", "carnegie", "researchgate", "ncbi", "pubmed",
					"research", "institute") ||
					strings.Contains(mediaType, "research")
			},
		},
		{
			Category:  CategoryNews,
			BaseScore: 0.65,
			Match: func(domain, mediaType string) bool {
				return containsAny(domain,
					"reuters", "bloomberg", "wsj.com", "ft.com", "economist",
					"nytimes", "washingtonpost", "bbc.", "npr.org", "guardian",
					"cnn.com", "axios.com", "politico", "apnews", "news", "times", "tribune",
					"herald") ||
					strings.Contains(mediaType, "news")
			},
		},
		{
			Category:  CategoryAssociation,
			BaseScore: 0.55,
			Match: func(domain, _ string) bool {
				return suffixAny(domain, ".org") ||
					containsAny(domain, "association", "foundation", "society", "council")
			},
		},
		// Blog/social patterns must precede the corporate catch-all: every
		// commercial TLD matches the corporate rule, so specific platforms
		// like medium.com would otherwise never classify as blogs.
		{
			Category:  CategoryBlog,
			BaseScore: 0.30,
			Match: func(domain, mediaType string) bool {
				return containsAny(domain, blogNeedles...) ||
					strings.Contains(mediaType, "blog")
			},
		},
		{
			Category:  CategoryCorporate,
			BaseScore: 0.45,
			Match: func(domain, _ string) bool {
				return containsAny(domain,
					"mckinsey", "bcg.com", "bain.com", "deloitte", "pwc.com",
					"kpmg", "accenture", "ey.com", "gartner", "forrester") ||
					suffixAny(domain, ".com", ".io", ".co", ".biz")
			},
		},
	}
}
