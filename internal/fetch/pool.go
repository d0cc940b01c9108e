package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/worker"
)

type fetchJob struct {
	fetcher *Fetcher
	url     string
	verbose bool
}

type fetchResult struct {
	url string
	doc *model.FetchedDoc
	err error
}

func (r *fetchResult) GetError() error { return r.err }

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	doc, err := j.fetcher.Fetch(ctx, j.url)
	if err != nil && j.verbose {
		fmt.Fprintf(os.Stderr, "fetch %s: %v\n", j.url, err)
	}
	return &fetchResult{url: j.url, doc: doc, err: err}
}

// FetchAll retrieves the given URLs concurrently through a bounded worker
// pool. Failed fetches are dropped; the returned map holds one document per
// successfully fetched URL.
func FetchAll(ctx context.Context, fetcher *Fetcher, urls []string, workers int, verbose bool) map[string]*model.FetchedDoc {
	if len(urls) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 8
	}

	pool := worker.NewPool(workers)
	pool.Start()
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(&fetchJob{fetcher: fetcher, url: u, verbose: verbose})
	}

	docs := make(map[string]*model.FetchedDoc, len(urls))
	for _, res := range pool.Wait() {
		fr, ok := res.(*fetchResult)
		if !ok || fr.err != nil || fr.doc == nil {
			continue
		}
		docs[fr.url] = fr.doc
	}
	return docs
}
