package cache

import (
	"crypto/md5"
	"encoding/hex"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

const (
	// Default settings
	defaultShardCount = 16
	defaultCapacity   = 1000
)

// cacheShard is a single shard with its own lock
type cacheShard struct {
	mu    sync.RWMutex
	items map[string]*domain.EvidenceResult
}

// EvidenceCache is a sharded, capacity-bounded cache of search results keyed
// by normalized query. Entries never expire within a process lifetime: once
// the capacity is reached, new misses are computed but not inserted. There is
// no eviction and no single-flight deduplication; duplicate concurrent work
// for a cold key is tolerated because retrieval concurrency is bounded
// upstream.
type EvidenceCache struct {
	shards     []*cacheShard
	shardCount int
	capacity   int
	count      atomic.Int64
}

// NewEvidenceCache creates a sharded evidence cache with the given shard
// count and maximum entry count.
func NewEvidenceCache(shardCount int, capacity int) *EvidenceCache {
	if shardCount < 1 {
		shardCount = defaultShardCount
	}
	if capacity < 1 {
		capacity = defaultCapacity
	}

	shards := make([]*cacheShard, shardCount)
	for i := range shards {
		shards[i] = &cacheShard{
			items: make(map[string]*domain.EvidenceResult),
		}
	}

	return &EvidenceCache{
		shards:     shards,
		shardCount: shardCount,
		capacity:   capacity,
	}
}

// Key normalizes a query (lowercase, trimmed) and hashes it to a fixed-length
// cache key, so queries differing only in case or whitespace share an entry.
func Key(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// getShard returns the shard for a given key using FNV hash
func (c *EvidenceCache) getShard(key string) *cacheShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	shardIndex := hash.Sum32() % uint32(c.shardCount)
	return c.shards[shardIndex]
}

// Get retrieves the cached result for a query (implements domain.EvidenceCache)
func (c *EvidenceCache) Get(query string) (*domain.EvidenceResult, bool) {
	key := Key(query)
	shard := c.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	result, exists := shard.items[key]
	return result, exists
}

// Set stores a result for a query, subject to the capacity bound
// (implements domain.EvidenceCache). Replacing an existing entry is allowed
// even at capacity; only net-new entries are cut off.
func (c *EvidenceCache) Set(query string, result *domain.EvidenceResult) {
	key := Key(query)
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, exists := shard.items[key]; !exists {
		if c.count.Load() >= int64(c.capacity) {
			return
		}
		c.count.Add(1)
	}
	shard.items[key] = result
}

// Len returns the current entry count (implements domain.EvidenceCache)
func (c *EvidenceCache) Len() int {
	return int(c.count.Load())
}

// Clear removes all entries and returns how many were removed
// (implements domain.EvidenceCache)
func (c *EvidenceCache) Clear() int {
	removed := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		removed += len(shard.items)
		shard.items = make(map[string]*domain.EvidenceResult)
		shard.mu.Unlock()
	}
	c.count.Store(0)
	return removed
}

// Stats returns cache statistics for the admin endpoint.
func (c *EvidenceCache) Stats() Stats {
	stats := Stats{ShardCount: c.shardCount}

	for _, shard := range c.shards {
		shard.mu.RLock()
		for _, result := range shard.items {
			stats.TotalEntries++
			if len(result.Sources) > 0 {
				stats.EntriesWithSources++
				stats.TotalSources += len(result.Sources)
			}
		}
		shard.mu.RUnlock()
	}

	if stats.TotalEntries > 0 {
		stats.SuccessRate = float64(stats.EntriesWithSources) / float64(stats.TotalEntries) * 100
	}
	if stats.EntriesWithSources > 0 {
		stats.AvgSourcesPerEntry = float64(stats.TotalSources) / float64(stats.EntriesWithSources)
	}

	return stats
}

// Stats represents cache statistics
type Stats struct {
	ShardCount         int     `json:"shard_count"`
	TotalEntries       int     `json:"total_entries"`
	EntriesWithSources int     `json:"entries_with_sources"`
	TotalSources       int     `json:"total_sources"`
	SuccessRate        float64 `json:"success_rate"`
	AvgSourcesPerEntry float64 `json:"average_sources_per_entry"`
}

// Verify that EvidenceCache implements domain.EvidenceCache interface
var _ domain.EvidenceCache = (*EvidenceCache)(nil)
