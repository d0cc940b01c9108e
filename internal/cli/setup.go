package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/citetrace/internal/cache"
	"github.com/ppiankov/citetrace/internal/compose"
	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/pipeline"
	"github.com/ppiankov/citetrace/internal/search"
	"github.com/ppiankov/citetrace/internal/store"
)

// loadConfig merges defaults, the config file and CITETRACE_* environment
// variables, then resolves the default data paths.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if cfg.Cache.Dir == "" || cfg.Store.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		base := filepath.Join(home, ".citetrace")
		if cfg.Cache.Dir == "" {
			cfg.Cache.Dir = filepath.Join(base, "cache")
		}
		if cfg.Store.Path == "" {
			cfg.Store.Path = filepath.Join(base, "citetrace.db")
		}
	}
	if cfg.Composer.APIKey == "" {
		cfg.Composer.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// runtime bundles everything a command needs to execute or inspect runs.
type runtime struct {
	cfg     *model.Config
	bundles *cache.BundleCache
	store   *store.Store
	pipe    *pipeline.Pipeline
}

func (r *runtime) Close() {
	if r.store != nil {
		r.store.Close()
	}
}

// buildOptions are the per-command overrides for runtime construction.
type buildOptions struct {
	resultsFiles []string
	composerName string
	offline      bool
	noCache      bool
}

// newRuntime wires the cache, store, providers and composer into a pipeline.
func newRuntime(cfg *model.Config, opts buildOptions) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	var byteCache cache.Cache
	if cfg.Cache.Enabled && !opts.noCache {
		byteCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		rt.bundles = cache.NewBundleCache(byteCache, cfg.Cache.DiskTTL)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st

	providers, err := buildProviders(cfg, opts)
	if err != nil {
		st.Close()
		return nil, err
	}

	composer, err := buildComposer(cfg, opts)
	if err != nil {
		st.Close()
		return nil, err
	}

	rt.pipe = pipeline.New(cfg, pipeline.Options{
		Providers: providers,
		Composer:  composer,
		Bundles:   rt.bundles,
		Store:     rt.store,
		ByteCache: byteCache,
	})
	return rt, nil
}

// openReadOnly opens just the cache and store, for commands that inspect
// existing runs without executing the pipeline.
func openReadOnly(cfg *model.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}
	if cfg.Cache.Enabled {
		byteCache := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		rt.bundles = cache.NewBundleCache(byteCache, cfg.Cache.DiskTTL)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.pipe = pipeline.New(cfg, pipeline.Options{Bundles: rt.bundles, Store: rt.store})
	return rt, nil
}

func buildProviders(cfg *model.Config, opts buildOptions) ([]search.Provider, error) {
	var providers []search.Provider

	for _, path := range opts.resultsFiles {
		p, err := search.NewFileProvider(path)
		if err != nil {
			return nil, fmt.Errorf("results file %s: %w", path, err)
		}
		providers = append(providers, p)
	}

	if !opts.offline && cfg.Composer.APIKey != "" {
		p, err := search.NewOpenAIProvider(cfg.Composer.APIKey, cfg.Composer.BaseURL, cfg.Composer.Model, "openai")
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no search providers configured: set OPENAI_API_KEY or pass --results-file")
	}
	return providers, nil
}

func buildComposer(cfg *model.Config, opts buildOptions) (compose.Composer, error) {
	name := opts.composerName
	if name == "" {
		if opts.offline || cfg.Composer.APIKey == "" {
			name = "extractive"
		} else {
			name = "openai"
		}
	}

	switch name {
	case "extractive":
		return compose.NewExtractiveComposer(), nil
	case "openai":
		timeout := cfg.Composer.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		return compose.NewOpenAIComposer(cfg.Composer.APIKey, cfg.Composer.BaseURL, cfg.Composer.Model, timeout)
	default:
		return nil, fmt.Errorf("unknown composer %q (want openai or extractive)", name)
	}
}

// lookupBundle resolves a run id through the runtime's cache and store.
func (r *runtime) lookupBundle(runID string) (*model.Bundle, error) {
	return r.pipe.GetRun(runID)
}
