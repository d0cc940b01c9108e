package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/citetrace/internal/explain"
	"github.com/ppiankov/citetrace/internal/model"
)

// Renderer writes run bundles as Markdown reports and JSON documents.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the complete bundle as indented JSON.
func (r *Renderer) RenderJSON(b *model.Bundle, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable run report.
func (r *Renderer) RenderMarkdown(b *model.Bundle, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(b)), 0o644)
}

// Markdown builds the report text.
func (r *Renderer) Markdown(b *model.Bundle) string {
	var md strings.Builder
	cited := b.CitedSourceIDs()

	fmt.Fprintf(&md, "# Citation Report\n\n")
	fmt.Fprintf(&md, "**Query:** %s\n\n", b.Run.Query)
	fmt.Fprintf(&md, "**Run:** `%s` · %s · pipeline v%s\n\n",
		b.Run.RunID, b.Run.CreatedAt.Format("2006-01-02 15:04 UTC"), b.Run.PipelineVersion)

	md.WriteString("## Answer\n\n")
	md.WriteString(b.Answer.Text)
	md.WriteString("\n\n")

	if b.Analysis != nil {
		f := b.Analysis.Funnel
		md.WriteString("## Funnel\n\n")
		fmt.Fprintf(&md, "proposed %d -> fetched %d -> cited %d\n\n", f.Proposed, f.Fetched, f.Cited)
	}

	md.WriteString("## Cited Sources\n\n")
	for i := range b.Sources {
		src := &b.Sources[i]
		if !cited[src.SourceID] {
			continue
		}
		fmt.Fprintf(&md, "- **%s** (%s) — score %.2f, band %s, consensus %d\n  %s\n",
			src.Title, src.Domain, src.CitationScore, src.Credibility.Band,
			src.ConsensusCount, src.URL)
	}
	md.WriteString("\n")

	if len(b.Claims) > 0 {
		md.WriteString("## Claims\n\n")
		perClaim := make(map[string]int)
		for _, e := range b.Evidence {
			perClaim[e.ClaimID]++
		}
		for _, c := range b.Claims {
			fmt.Fprintf(&md, "%d. %s _(%d supporting sources)_\n",
				c.AnswerSentenceIndex+1, c.Text, perClaim[c.ClaimID])
		}
		md.WriteString("\n")
	}

	if b.Analysis != nil && len(b.Analysis.Mix.DomainsTop) > 0 {
		md.WriteString("## Top Domains\n\n")
		for _, dc := range b.Analysis.Mix.DomainsTop {
			fmt.Fprintf(&md, "- %s (%d)\n", dc.Domain, dc.Count)
		}
		md.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&md, "---\n_Generated by citetrace, run `%s`._\n", b.Run.RunID)
	}
	return md.String()
}

// ExplanationsMarkdown renders the per-source citation explanations.
func ExplanationsMarkdown(b *model.Bundle, explanations []explain.Explanation) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# Why These Sources\n\n**Query:** %s\n\n", b.Run.Query)
	for _, ex := range explanations {
		src := b.SourceByID(ex.SourceID)
		title := ex.SourceID
		if src != nil && src.Title != "" {
			title = src.Title
		}
		if ex.Cited {
			fmt.Fprintf(&md, "- ✓ **%s**: %s\n", title, strings.Join(ex.Tags, ", "))
		} else {
			fmt.Fprintf(&md, "- ✗ **%s**: %s\n", title, ex.Reason)
		}
	}
	return md.String()
}
