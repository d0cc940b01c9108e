package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/citetrace/internal/cache"
	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/util"
	"github.com/ppiankov/citetrace/internal/worker"
)

// Fetcher retrieves and extracts page content. Every fetch passes the
// robots.txt check and the per-domain rate limiter; extracted documents are
// cached by URL so repeated runs do not re-download.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	skipRobots bool
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// Options configures a Fetcher.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	HTTPProxy  string
	HTTPSProxy string
	SkipRobots bool
	Limiter    *worker.Limiter
	Cache      cache.Cache
	CacheTTL   time.Duration
}

// NewFetcher creates a fetcher.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2 * 1024 * 1024
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, "")
	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		robots:     util.NewRobotsChecker(opts.UserAgent, opts.Timeout),
		skipRobots: opts.SkipRobots,
		limiter:    opts.Limiter,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
	}
}

// Fetch retrieves one URL and returns the extracted document.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedDoc, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(cache.ContentKey(rawURL)); ok {
			var doc model.FetchedDoc
			if err := json.Unmarshal(data, &doc); err == nil {
				return &doc, nil
			}
		}
	}

	var crawlDelay time.Duration
	if !f.skipRobots {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt")
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusForbidden {
		return &model.FetchedDoc{URL: rawURL, Paywalled: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	extracted, err := Extract(string(body))
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	doc := &model.FetchedDoc{
		URL:         rawURL,
		RawText:     extracted.Text,
		Title:       extracted.Title,
		Author:      extracted.Author,
		PublishedAt: extracted.PublishedAt,
		Paywalled:   extracted.Paywalled,
	}

	if f.cache != nil {
		if data, err := json.Marshal(doc); err == nil {
			_ = f.cache.Set(cache.ContentKey(rawURL), data, f.cacheTTL)
		}
	}
	return doc, nil
}
