package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/citetrace/internal/model"
)

// Runner executes one query end to end. Satisfied by the pipeline.
type Runner interface {
	Run(ctx context.Context, query string) (*model.Bundle, error)
}

// QueryJob runs a single query through the runner.
type QueryJob struct {
	Query  string
	Runner Runner
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	bundle, err := j.Runner.Run(ctx, j.Query)
	return &QueryResult{Query: j.Query, Bundle: bundle, Error: err}
}

// QueryResult is the outcome of one batched query.
type QueryResult struct {
	Query  string
	Bundle *model.Bundle
	Error  error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor runs multiple queries concurrently. Concurrency stays low
// by default: each query fans out its own fetch pool, so the effective
// parallelism multiplies.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &BatchProcessor{runner: runner, concurrency: concurrency}
}

// ProcessQueries runs the queries through the pool and returns results in
// completion order.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()
	for _, q := range queries {
		pool.Submit(&QueryJob{Query: q, Runner: b.runner})
	}

	results := pool.Wait()
	out := make([]*QueryResult, len(results))
	for i, r := range results {
		out[i] = r.(*QueryResult)
	}
	return out
}

// ProcessFile reads queries from a file and runs them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads queries from a file, one per line. Blank lines
// and # comments are skipped; duplicates collapse to one run.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return queries, nil
}
