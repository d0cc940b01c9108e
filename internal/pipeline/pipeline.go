package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/citetrace/internal/analysis"
	"github.com/ppiankov/citetrace/internal/cache"
	"github.com/ppiankov/citetrace/internal/citation"
	"github.com/ppiankov/citetrace/internal/compose"
	"github.com/ppiankov/citetrace/internal/credibility"
	"github.com/ppiankov/citetrace/internal/dedup"
	"github.com/ppiankov/citetrace/internal/evidence"
	"github.com/ppiankov/citetrace/internal/fetch"
	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/passage"
	"github.com/ppiankov/citetrace/internal/search"
	"github.com/ppiankov/citetrace/internal/store"
	"github.com/ppiankov/citetrace/internal/worker"
)

// Pipeline orchestrates one run end to end: discovery, consensus dedup,
// fetching, scoring, selection, composition, evidence linking and analysis.
// Runs are idempotent per query and pipeline version: a repeated query
// resolves to the existing bundle instead of re-executing.
type Pipeline struct {
	cfg      *model.Config
	fanout   *search.Fanout
	merger   *dedup.Merger
	fetcher  *fetch.Fetcher
	cred     *credibility.Scorer
	composer compose.Composer
	linker   *evidence.Linker
	bundles  *cache.BundleCache
	store    *store.Store
	verbose  bool
}

// Options wires the pipeline's external collaborators.
type Options struct {
	Providers []search.Provider
	Composer  compose.Composer
	Bundles   *cache.BundleCache
	Store     *store.Store
	ByteCache cache.Cache
}

// New creates a pipeline from configuration and collaborators.
func New(cfg *model.Config, opts Options) *Pipeline {
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fetcher := fetch.NewFetcher(fetch.Options{
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		SkipRobots: !cfg.Fetch.RespectRobots,
		Limiter:    limiter,
		Cache:      opts.ByteCache,
	})
	return &Pipeline{
		cfg:      cfg,
		fanout:   search.NewFanout(opts.Providers, cfg.Search.ProviderTimeout, cfg.Output.Verbose),
		merger:   dedup.NewMerger(),
		fetcher:  fetcher,
		cred:     credibility.NewScorer(),
		composer: opts.Composer,
		linker:   evidence.NewLinker(),
		bundles:  opts.Bundles,
		store:    opts.Store,
		verbose:  cfg.Output.Verbose,
	}
}

// Run executes the full pipeline for a query. A previously completed run of
// the same query on the same pipeline version is returned as-is.
func (p *Pipeline) Run(ctx context.Context, query string) (*model.Bundle, error) {
	if existing := p.lookupExisting(query); existing != nil {
		p.logf("reusing run %s for query %q\n", existing.Run.RunID, query)
		return existing, nil
	}

	run := model.Run{
		RunID:           "run_" + uuid.NewString(),
		Query:           query,
		CreatedAt:       time.Now().UTC(),
		PipelineVersion: p.cfg.PipelineVersion,
		Providers:       p.fanout.ProviderNames(),
	}
	if p.composer != nil {
		run.ComposerModel = p.composer.Name()
	}

	// Discovery.
	queries := []string{query}
	if p.cfg.Search.ExpandQueries {
		queries = search.ExpandQueries(query, p.cfg.Search.MaxVariants+1)
	}
	results := p.fanout.Search(ctx, queries, p.cfg.Search.LimitPerQuery)
	if len(results) == 0 {
		return nil, fmt.Errorf("no provider returned results for %q", query)
	}
	p.logf("discovery: %d raw results from %d providers\n", len(results), len(run.Providers))

	// Consensus dedup.
	sources := p.merger.Merge(results)
	for i := range sources {
		sources[i].RunID = run.RunID
	}
	p.logf("dedup: %d unique sources\n", len(sources))

	// Fetch the top candidates.
	docs := p.fetchSources(ctx, sources)

	// Scoring.
	p.cred.Apply(sources)
	passage.NewScorer(queries...).Apply(sources)

	// Selection.
	target := p.cfg.Selection.TargetCitations
	if target <= 0 {
		target = citation.TargetForQuery(query)
	}
	selector := citation.NewSelector(target, p.cfg.Selection.DomainCap)
	selected := selector.Select(sources)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no eligible sources for %q", query)
	}
	p.logf("selection: %d of %d sources proposed\n", len(selected), len(sources))

	// Composition is fatal on failure: without an answer there is nothing
	// to link evidence to.
	answer, err := p.composer.Compose(ctx, compose.Request{
		Query:       query,
		Sources:     sources,
		SelectedIDs: selected,
	})
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	claims, links := p.linker.Link(&run, answer, sources)

	bundle := &model.Bundle{
		Run:             run,
		Sources:         sources,
		Claims:          claims,
		Evidence:        links,
		Answer:          *answer,
		ProviderResults: results,
		FetchedDocs:     docs,
		Selected:        selected,
	}
	bundle.Analysis = analysis.Analyze(bundle)

	p.persist(bundle)
	return bundle, nil
}

// GetRun returns a completed bundle by run id, from cache first and the
// store second.
func (p *Pipeline) GetRun(runID string) (*model.Bundle, error) {
	if p.bundles != nil {
		if b, ok := p.bundles.Get(runID); ok {
			return b, nil
		}
	}
	if p.store != nil {
		return p.store.GetBundle(runID)
	}
	return nil, fmt.Errorf("run %s: not found", runID)
}

// fetchSources downloads up to MaxDocs sources, ordered by consensus count
// so multi-provider sources get fetched first, and folds the documents back
// into the source records.
func (p *Pipeline) fetchSources(ctx context.Context, sources []model.Source) []model.FetchedDoc {
	order := make([]int, len(sources))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps discovery order within consensus ties.
	sort.SliceStable(order, func(a, b int) bool {
		return sources[order[a]].ConsensusCount > sources[order[b]].ConsensusCount
	})

	maxDocs := p.cfg.Fetch.MaxDocs
	if maxDocs <= 0 || maxDocs > len(order) {
		maxDocs = len(order)
	}

	var urls []string
	urlToIdx := make(map[string]int, maxDocs)
	for _, idx := range order[:maxDocs] {
		urls = append(urls, sources[idx].URL)
		urlToIdx[sources[idx].URL] = idx
	}

	fetched := fetch.FetchAll(ctx, p.fetcher, urls, p.cfg.Fetch.Workers, p.verbose)
	p.logf("fetch: %d of %d documents retrieved\n", len(fetched), len(urls))

	now := time.Now().UTC()
	var docs []model.FetchedDoc
	for _, url := range urls {
		doc, ok := fetched[url]
		if !ok {
			continue
		}
		idx := urlToIdx[url]
		src := &sources[idx]
		src.Fetched = true
		src.RawText = doc.RawText
		src.Paywalled = doc.Paywalled
		src.AccessedAt = &now
		if doc.Title != "" && src.Title == "" {
			src.Title = doc.Title
		}
		if doc.Author != "" {
			src.Author = doc.Author
		}
		if doc.PublishedAt != nil && src.PublishedAt == nil {
			src.PublishedAt = doc.PublishedAt
		}
		docs = append(docs, *doc)
	}
	return docs
}

// lookupExisting resolves the query-hash idempotency index.
func (p *Pipeline) lookupExisting(query string) *model.Bundle {
	if p.bundles != nil {
		if b, ok := p.bundles.GetByQuery(query, p.cfg.PipelineVersion); ok {
			return b
		}
	}
	if p.store != nil {
		runID, err := p.store.FindByQueryHash(store.QueryHash(query, p.cfg.PipelineVersion))
		if err == nil && runID != "" {
			if b, err := p.store.GetBundle(runID); err == nil {
				return b
			}
		}
	}
	return nil
}

// persist caches and stores the bundle; failures are logged, not fatal,
// since the computed bundle is still returned to the caller.
func (p *Pipeline) persist(b *model.Bundle) {
	if p.bundles != nil {
		if err := p.bundles.Put(b); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache bundle: %v\n", err)
		}
	}
	if p.store != nil {
		if err := p.store.SaveBundle(b); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: persist bundle: %v\n", err)
		}
	}
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
