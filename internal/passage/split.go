package passage

import "strings"

const (
	// MinPassageChars is the minimum candidate length; sources whose whole
	// text falls below it have no extractable passages.
	MinPassageChars = 200

	// Window/stride used when text has no paragraph breaks to split on.
	fallbackWindow = 400
	fallbackStride = 220

	// SnippetMaxChars caps the stored best snippet.
	SnippetMaxChars = 800
)

// Split breaks raw text into candidate passages. Paragraph boundaries are
// preferred; consecutive short paragraphs are coalesced until they reach the
// minimum length. Text with no blank lines falls back to a sliding window.
func Split(text string) []string {
	text = strings.TrimSpace(text)
	if len(text) < MinPassageChars {
		return nil
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) <= 1 {
		return slideWindow(text)
	}

	var candidates []string
	var current strings.Builder
	for _, p := range paragraphs {
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(p)
		if current.Len() >= MinPassageChars {
			candidates = append(candidates, current.String())
			current.Reset()
		}
	}
	// A trailing fragment below the minimum is folded into the last
	// candidate rather than dropped.
	if current.Len() > 0 {
		if len(candidates) > 0 {
			candidates[len(candidates)-1] += "\n" + current.String()
		} else if current.Len() >= MinPassageChars {
			candidates = append(candidates, current.String())
		}
	}
	return candidates
}

func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

func slideWindow(text string) []string {
	var out []string
	for i := 0; i < len(text); i += fallbackStride {
		end := i + fallbackWindow
		if end > len(text) {
			end = len(text)
		}
		chunk := text[i:end]
		if len(chunk) >= MinPassageChars {
			out = append(out, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return out
}
