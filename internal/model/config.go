package model

import "time"

// Config holds the full pipeline configuration. Populated from defaults,
// the config file, CITETRACE_* environment variables and CLI flags.
type Config struct {
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	Search       SearchConfig    `yaml:"search" mapstructure:"search"`
	Fetch        FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Selection    SelectionConfig `yaml:"selection" mapstructure:"selection"`
	Composer     ComposerConfig  `yaml:"composer" mapstructure:"composer"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Store        StoreConfig     `yaml:"store" mapstructure:"store"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig    `yaml:"output" mapstructure:"output"`

	// PipelineVersion namespaces cache keys and the query-hash index so that
	// scoring changes never mix with bundles produced by older logic.
	PipelineVersion string `yaml:"pipeline_version" mapstructure:"pipeline_version"`
}

// HTTPConfig covers outbound HTTP behavior shared by fetching and robots.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// SearchConfig controls provider discovery.
type SearchConfig struct {
	LimitPerQuery   int           `yaml:"limit_per_query" mapstructure:"limit_per_query"`
	ProviderTimeout time.Duration `yaml:"provider_timeout" mapstructure:"provider_timeout"`
	ExpandQueries   bool          `yaml:"expand_queries" mapstructure:"expand_queries"`
	MaxVariants     int           `yaml:"max_variants" mapstructure:"max_variants"`
}

// FetchConfig controls the bounded fetch worker pool.
type FetchConfig struct {
	Workers       int  `yaml:"workers" mapstructure:"workers"`
	MaxDocs       int  `yaml:"max_docs" mapstructure:"max_docs"`
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// SelectionConfig controls the citation selector.
type SelectionConfig struct {
	TargetCitations int `yaml:"target_citations" mapstructure:"target_citations"`
	DomainCap       int `yaml:"domain_cap" mapstructure:"domain_cap"`
}

// ComposerConfig controls the external answer-composer call.
type ComposerConfig struct {
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"-" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig controls the layered bundle cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// StoreConfig controls SQLite persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RateLimitConfig controls per-domain politeness during fetch.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Citetrace/0.1 (+https://github.com/ppiankov/citetrace)",
			MaxBodyBytes: 2_000_000,
		},
		Search: SearchConfig{
			LimitPerQuery:   20,
			ProviderTimeout: 20 * time.Second,
			ExpandQueries:   true,
			MaxVariants:     3,
		},
		Fetch: FetchConfig{
			Workers:       8,
			MaxDocs:       20,
			RespectRobots: true,
		},
		Selection: SelectionConfig{
			TargetCitations: 5,
			DomainCap:       2,
		},
		Composer: ComposerConfig{
			Model:     "gpt-4o-mini",
			Timeout:   60 * time.Second,
			MaxTokens: 1200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.citetrace/cache at startup
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Path: "", // resolved to ~/.citetrace/citetrace.db at startup
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		PipelineVersion: "1",
	}
}
