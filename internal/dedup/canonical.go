package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query parameters that carry attribution state rather
// than content identity. They are stripped during canonicalization so the
// same article shared through different channels dedups to one source.
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_content": true, "utm_term": true,
	"fbclid": true, "gclid": true, "msclkid": true, "dclid": true,
	"ref": true, "source": true, "campaign_id": true, "ad_id": true,
	"_ga": true, "_gac": true, "_gl": true, "mc_cid": true, "mc_eid": true,
}

// CanonicalURL normalizes a URL for identity comparison: https scheme,
// lowercased host without the www prefix, no trailing slash, no fragment,
// tracking parameters removed and the remainder sorted.
func CanonicalURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		path = "/"
	}

	canonical := "https://" + host + path

	if parsed.RawQuery != "" {
		values, err := url.ParseQuery(parsed.RawQuery)
		if err == nil {
			keys := make([]string, 0, len(values))
			for k := range values {
				if !trackingParams[strings.ToLower(k)] {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			var parts []string
			for _, k := range keys {
				parts = append(parts, k+"="+values.Get(k))
			}
			if len(parts) > 0 {
				canonical += "?" + strings.Join(parts, "&")
			}
		}
	}

	return canonical
}

// Domain extracts the lowercased host (without www) from a URL.
func Domain(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// SourceID derives the stable source identifier from the canonical URL.
func SourceID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return "src_" + hex.EncodeToString(sum[:])[:12]
}
