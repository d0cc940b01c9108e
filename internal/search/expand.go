package search

import "strings"

// expansion templates applied to the raw query. Kept short: each variant
// costs one search call per provider.
var expansionSuffixes = []string{
	"overview",
	"explained",
	"statistics",
}

// ExpandQueries returns the original query followed by deterministic
// variants. Duplicates after normalization are dropped, so a query already
// ending in a template word expands to fewer variants.
func ExpandQueries(query string, max int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if max <= 0 {
		max = 1 + len(expansionSuffixes)
	}

	seen := map[string]bool{strings.ToLower(query): true}
	out := []string{query}
	for _, suffix := range expansionSuffixes {
		if len(out) >= max {
			break
		}
		variant := query + " " + suffix
		key := strings.ToLower(variant)
		if strings.HasSuffix(strings.ToLower(query), " "+suffix) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, variant)
	}
	return out
}
