package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/citetrace/internal/model"
)

// BundleCache stores completed run bundles on top of a byte-level cache. It
// maintains two lookup paths: by run id, and by query hash for idempotent
// re-runs of the same query on the same pipeline version.
type BundleCache struct {
	mu    sync.Mutex
	cache Cache
	ttl   time.Duration
}

const recentIndexKey = keyPrefix + "index:recent"

// recentIndexMax bounds the recent-runs index.
const recentIndexMax = 100

// NewBundleCache wraps a byte cache with bundle serialization.
func NewBundleCache(c Cache, ttl time.Duration) *BundleCache {
	return &BundleCache{cache: c, ttl: ttl}
}

// Put stores a completed bundle under its run id, records the query-hash
// alias and prepends the run to the recent index.
func (bc *BundleCache) Put(b *model.Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	if err := bc.cache.Set(RunKey(b.Run.RunID), data, bc.ttl); err != nil {
		return fmt.Errorf("cache bundle: %w", err)
	}
	queryKey := QueryKey(b.Run.Query, b.Run.PipelineVersion)
	if err := bc.cache.Set(queryKey, []byte(b.Run.RunID), bc.ttl); err != nil {
		return fmt.Errorf("cache query alias: %w", err)
	}
	bc.pushRecent(b.Run.RunID)
	return nil
}

// Get returns the bundle for a run id, or nil when absent or expired.
func (bc *BundleCache) Get(runID string) (*model.Bundle, bool) {
	data, ok := bc.cache.Get(RunKey(runID))
	if !ok {
		return nil, false
	}
	var b model.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false
	}
	return &b, true
}

// GetByQuery resolves a query + pipeline version to its cached bundle.
func (bc *BundleCache) GetByQuery(query, pipelineVersion string) (*model.Bundle, bool) {
	runID, ok := bc.cache.Get(QueryKey(query, pipelineVersion))
	if !ok {
		return nil, false
	}
	return bc.Get(string(runID))
}

// RecentRunIDs returns up to limit recent run ids, newest first.
func (bc *BundleCache) RecentRunIDs(limit int) []string {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	ids := bc.readRecent()
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (bc *BundleCache) pushRecent(runID string) {
	ids := bc.readRecent()
	// Deduplicate while preserving newest-first order.
	out := []string{runID}
	for _, id := range ids {
		if id != runID {
			out = append(out, id)
		}
	}
	if len(out) > recentIndexMax {
		out = out[:recentIndexMax]
	}
	if data, err := json.Marshal(out); err == nil {
		_ = bc.cache.Set(recentIndexKey, data, bc.ttl)
	}
}

func (bc *BundleCache) readRecent() []string {
	data, ok := bc.cache.Get(recentIndexKey)
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}
	return ids
}
