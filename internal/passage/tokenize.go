package passage

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// stopwords excluded from query term matching. Kept small and English-only,
// matching the scale of the scoring heuristics.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"by": true, "with": true, "from": true, "as": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "which": true, "who": true, "how": true,
	"why": true, "when": true, "where": true, "do": true, "does": true,
	"can": true, "will": true, "would": true, "should": true, "could": true,
	"not": true, "no": true, "so": true, "if": true, "then": true, "than": true,
	"about": true, "into": true, "over": true, "under": true, "between": true,
}

// Tokenize lowercases text and returns its word tokens.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// QueryTerms extracts the unique, stopword-filtered term set from the query
// and its expanded variants.
func QueryTerms(queries ...string) map[string]bool {
	terms := make(map[string]bool)
	for _, q := range queries {
		for _, tok := range Tokenize(q) {
			if !stopwords[tok] && len(tok) > 1 {
				terms[tok] = true
			}
		}
	}
	return terms
}
