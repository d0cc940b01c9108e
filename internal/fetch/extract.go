package fetch

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// skipElements are subtrees excluded from visible-text extraction.
var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "footer": true, "aside": true, "form": true, "iframe": true,
	"svg": true, "button": true,
}

// blockElements end a text block; consecutive blocks join with blank lines
// so passage splitting can work on paragraph boundaries.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "td": true, "tr": true,
}

// paywallMarkers are phrases that indicate gated content when they appear in
// a short extracted body.
var paywallMarkers = []string{
	"subscribe to continue",
	"subscribe to read",
	"subscription required",
	"sign in to read",
	"this content is for subscribers",
	"to continue reading",
	"create a free account to continue",
}

// Extracted is the parsed content of one fetched page.
type Extracted struct {
	Title       string
	Author      string
	Text        string
	PublishedAt *time.Time
	Paywalled   bool
}

// Extract parses HTML and pulls out the visible text plus title, author and
// publication date metadata.
func Extract(htmlContent string) (*Extracted, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	out := &Extracted{}
	var blocks []string
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			blocks = append(blocks, collapseSpaces(text))
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipElements[n.Data] {
				return
			}
			switch n.Data {
			case "title":
				if out.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					out.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "meta":
				readMeta(n, out)
				return
			}
		}

		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}
	walk(doc)
	flush()

	out.Text = strings.Join(blocks, "\n\n")
	if !out.Paywalled {
		out.Paywalled = looksPaywalled(out.Text)
	}
	return out, nil
}

func readMeta(n *html.Node, out *Extracted) {
	var name, property, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			name = strings.ToLower(attr.Val)
		case "property":
			property = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	if content == "" {
		return
	}

	switch {
	case property == "og:title" && out.Title == "":
		out.Title = content
	case name == "author" && out.Author == "":
		out.Author = content
	case property == "article:author" && out.Author == "":
		out.Author = content
	case property == "article:published_time" || name == "date" || name == "publish-date":
		if out.PublishedAt == nil {
			if ts := parseDate(content); ts != nil {
				out.PublishedAt = ts
			}
		}
	case name == "isaccessibleforfree" && strings.EqualFold(content, "false"):
		out.Paywalled = true
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

func parseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

// looksPaywalled flags short pages dominated by subscription prompts. Long
// pages containing the phrases are real articles that merely mention them.
func looksPaywalled(text string) bool {
	if len(text) >= 1500 {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range paywallMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
