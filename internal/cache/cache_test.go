package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

func sampleResult(sources ...string) *domain.EvidenceResult {
	return &domain.EvidenceResult{
		Content:  "sample evidence",
		Sources:  sources,
		Strength: domain.StrengthLimited,
	}
}

// TestCacheNormalization tests that queries differing only in case or
// whitespace share one entry
func TestCacheNormalization(t *testing.T) {
	c := NewEvidenceCache(16, 100)

	result := sampleResult("https://docs.oracle.com/a")
	c.Set("Oracle FLEXCUBE core banking", result)

	got, ok := c.Get("  oracle flexcube core banking  ")
	assert.True(t, ok)
	assert.Same(t, result, got, "normalized variants must resolve to the same entry")

	got, ok = c.Get("ORACLE FLEXCUBE CORE BANKING")
	assert.True(t, ok)
	assert.Same(t, result, got)

	assert.Equal(t, 1, c.Len())
}

// TestCacheCapacityCutoff tests that new entries are rejected at capacity
// while existing entries stay replaceable
func TestCacheCapacityCutoff(t *testing.T) {
	c := NewEvidenceCache(4, 10)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("query-%d", i), sampleResult())
	}
	assert.Equal(t, 10, c.Len())

	// Over capacity: miss is not inserted
	c.Set("overflow-query", sampleResult())
	_, ok := c.Get("overflow-query")
	assert.False(t, ok)
	assert.Equal(t, 10, c.Len())

	// Existing keys can still be replaced at capacity
	replacement := sampleResult("https://docs.oracle.com/b")
	c.Set("query-3", replacement)
	got, ok := c.Get("query-3")
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}

// TestCacheClear tests full cache wipe
func TestCacheClear(t *testing.T) {
	c := NewEvidenceCache(8, 100)

	for i := 0; i < 25; i++ {
		c.Set(fmt.Sprintf("query-%d", i), sampleResult())
	}

	removed := c.Clear()
	assert.Equal(t, 25, removed)
	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("query-0")
	assert.False(t, ok)

	// Cleared capacity is usable again
	c.Set("query-0", sampleResult())
	assert.Equal(t, 1, c.Len())
}

// TestCacheStats tests the statistics used by the admin endpoint
func TestCacheStats(t *testing.T) {
	c := NewEvidenceCache(16, 100)

	c.Set("with sources one", sampleResult("https://docs.oracle.com/a", "https://support.oracle.com/b"))
	c.Set("with sources two", sampleResult("https://stackoverflow.com/q"))
	c.Set("without sources", sampleResult())

	stats := c.Stats()
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.EntriesWithSources)
	assert.Equal(t, 3, stats.TotalSources)
	assert.InDelta(t, 66.6, stats.SuccessRate, 1.0)
	assert.InDelta(t, 1.5, stats.AvgSourcesPerEntry, 0.01)
}

// TestCacheConcurrentAccess tests concurrent access with race detection
func TestCacheConcurrentAccess(t *testing.T) {
	c := NewEvidenceCache(16, 100000)

	numGoroutines := 50
	numOperations := 100
	var wg sync.WaitGroup

	// Concurrent writes
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				query := fmt.Sprintf("query-%d-%d", id, j)
				c.Set(query, sampleResult())
			}
		}(i)
	}

	// Concurrent reads
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				query := fmt.Sprintf("query-%d-%d", id, j)
				_, _ = c.Get(query)
			}
		}(i)
	}

	// Concurrent stats readers
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = c.Stats()
		}
	}()

	wg.Wait()
	assert.Equal(t, numGoroutines*numOperations, c.Len())
}
