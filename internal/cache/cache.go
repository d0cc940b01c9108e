package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache key namespace. Bump the version to invalidate everything cached by
// older pipeline revisions.
const keyPrefix = "citetrace:v1:"

// Cache is the byte-level store shared by the memory, disk and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ContentKey generates the cache key for a fetched URL's content.
func ContentKey(url string) string {
	return keyPrefix + "content:" + hashKey(url)
}

// RunKey generates the cache key for a completed bundle by run id.
func RunKey(runID string) string {
	return keyPrefix + "run:" + runID
}

// QueryKey generates the idempotency key for a query + pipeline version
// pair. Two runs of the same query on the same pipeline version hash
// identically and resolve to the same bundle.
func QueryKey(query, pipelineVersion string) string {
	return keyPrefix + "query:" + hashKey(query+"|"+pipelineVersion)
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
