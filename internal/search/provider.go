package search

import (
	"context"

	"github.com/ppiankov/citetrace/internal/model"
)

// Provider is one discovery backend. Implementations must respect the
// context and tag every result with their Name.
type Provider interface {
	// Name returns the provider name used in consensus tracking.
	Name() string

	// Search returns up to limit results for the query.
	Search(ctx context.Context, query string, limit int) ([]model.ProviderResult, error)
}
