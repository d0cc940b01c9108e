package search

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ppiankov/citetrace/internal/model"
)

// Fanout queries all providers concurrently. Provider failures never fail
// the run: a provider that errors or times out simply contributes nothing,
// which downstream consensus scoring treats as one fewer vote.
type Fanout struct {
	providers []Provider
	timeout   time.Duration
	verbose   bool
}

// NewFanout creates a fan-out over the given providers with a per-provider
// timeout.
func NewFanout(providers []Provider, timeout time.Duration, verbose bool) *Fanout {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fanout{providers: providers, timeout: timeout, verbose: verbose}
}

// ProviderNames returns the names of the configured providers.
func (f *Fanout) ProviderNames() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return names
}

// Search runs every query variant against every provider and returns the
// combined raw results in deterministic order: by provider position, then
// query position, then result position.
func (f *Fanout) Search(ctx context.Context, queries []string, limitPerQuery int) []model.ProviderResult {
	type slot struct {
		provider, query int
		results         []model.ProviderResult
	}

	var wg sync.WaitGroup
	slots := make([]slot, 0, len(f.providers)*len(queries))
	for pi := range f.providers {
		for qi := range queries {
			slots = append(slots, slot{provider: pi, query: qi})
		}
	}

	for i := range slots {
		wg.Add(1)
		go func(s *slot) {
			defer wg.Done()
			p := f.providers[s.provider]
			pctx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			results, err := p.Search(pctx, queries[s.query], limitPerQuery)
			if err != nil {
				if f.verbose {
					fmt.Fprintf(os.Stderr, "provider %s failed for %q: %v\n", p.Name(), queries[s.query], err)
				}
				return
			}
			for j := range results {
				results[j].Provider = p.Name()
			}
			s.results = results
		}(&slots[i])
	}
	wg.Wait()

	var out []model.ProviderResult
	for i := range slots {
		out = append(out, slots[i].results...)
	}
	return out
}
