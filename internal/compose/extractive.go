package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/citetrace/internal/model"
)

// ExtractiveComposer builds the answer directly from the selected sources'
// best passages, one sentence per source. Fully deterministic, no network;
// used for offline runs and as the test double for the pipeline.
type ExtractiveComposer struct{}

// NewExtractiveComposer creates an extractive composer.
func NewExtractiveComposer() *ExtractiveComposer {
	return &ExtractiveComposer{}
}

// Name identifies the composer in run metadata.
func (c *ExtractiveComposer) Name() string {
	return "extractive"
}

// Compose emits the leading sentence of each selected source's best passage,
// cited to that source.
func (c *ExtractiveComposer) Compose(ctx context.Context, req Request) (*model.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sources := selectedSources(req)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to compose from")
	}

	answer := &model.Answer{}
	var parts []string
	for _, src := range sources {
		text := firstSentence(src.Passage.BestSnippet)
		if text == "" {
			text = firstSentence(src.Snippet)
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
		answer.Sentences = append(answer.Sentences, model.AnswerSentence{
			Text:      text,
			SourceIDs: []string{src.SourceID},
		})
	}
	if len(answer.Sentences) == 0 {
		return nil, fmt.Errorf("selected sources have no usable passages")
	}
	answer.Text = strings.Join(parts, " ")
	return answer, nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for i, r := range text {
		if (r == '.' || r == '!' || r == '?') && i >= 40 {
			return text[:i+1]
		}
	}
	if len(text) > 200 {
		return text[:200] + "."
	}
	return text
}
