package search

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/citetrace/internal/model"
	"github.com/ppiankov/citetrace/internal/passage"
)

// FileProvider serves results from a YAML file. Used for offline runs and
// for replaying a recorded discovery set deterministically.
type FileProvider struct {
	name    string
	results []fileResult
}

type fileResult struct {
	URL         string `yaml:"url"`
	Title       string `yaml:"title"`
	Snippet     string `yaml:"snippet"`
	PublishedAt string `yaml:"published_at"`
}

type resultsFile struct {
	Provider string       `yaml:"provider"`
	Results  []fileResult `yaml:"results"`
}

// NewFileProvider loads a results file. The provider name comes from the
// file, falling back to "file".
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var rf resultsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse results file %s: %w", path, err)
	}
	name := rf.Provider
	if name == "" {
		name = "file"
	}
	return &FileProvider{name: name, results: rf.Results}, nil
}

// Name returns the provider name.
func (p *FileProvider) Name() string {
	return p.name
}

// Search filters the recorded results by query term overlap. With no
// matching results the full recorded set is returned, which keeps replay
// runs useful even for reworded queries.
func (p *FileProvider) Search(ctx context.Context, query string, limit int) ([]model.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = len(p.results)
	}

	terms := passage.QueryTerms(query)
	var matched []model.ProviderResult
	for _, r := range p.results {
		if len(terms) == 0 || overlaps(r.Title+" "+r.Snippet, terms) {
			matched = append(matched, p.toResult(r))
		}
	}
	if len(matched) == 0 {
		for _, r := range p.results {
			matched = append(matched, p.toResult(r))
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (p *FileProvider) toResult(r fileResult) model.ProviderResult {
	pr := model.ProviderResult{
		Provider: p.name,
		URL:      r.URL,
		Title:    r.Title,
		Snippet:  r.Snippet,
	}
	if ts, err := time.Parse("2006-01-02", strings.TrimSpace(r.PublishedAt)); err == nil {
		pr.PublishedAt = &ts
	}
	return pr
}

func overlaps(text string, terms map[string]bool) bool {
	for _, tok := range passage.Tokenize(text) {
		if terms[tok] {
			return true
		}
	}
	return false
}
