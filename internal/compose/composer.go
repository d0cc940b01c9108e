package compose

import (
	"context"

	"github.com/ppiankov/citetrace/internal/model"
)

// Request carries everything the composer may use: the query and the
// selected sources with their best passages. Sources outside the selection
// are never shown to the composer, which bounds what it can cite.
type Request struct {
	Query   string
	Sources []model.Source

	// SelectedIDs restricts which sources are offered, in rank order.
	SelectedIDs []string
}

// Composer produces the answer with sentence-level citation markers. A
// composer failure is fatal for the run: without an answer there are no
// claims to link evidence to.
type Composer interface {
	Name() string
	Compose(ctx context.Context, req Request) (*model.Answer, error)
}

// selectedSources resolves the selection to source values in rank order.
func selectedSources(req Request) []*model.Source {
	byID := make(map[string]*model.Source, len(req.Sources))
	for i := range req.Sources {
		byID[req.Sources[i].SourceID] = &req.Sources[i]
	}
	var out []*model.Source
	for _, id := range req.SelectedIDs {
		if src, ok := byID[id]; ok {
			out = append(out, src)
		}
	}
	return out
}
