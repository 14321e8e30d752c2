package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/cache"
	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

type stubTool struct {
	items []Item
	err   error
	calls int
}

func (s *stubTool) Invoke(_ context.Context, _ string) ([]Item, error) {
	s.calls++
	return s.items, s.err
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		Timeout:           30,
		MaxConcurrent:     10,
		RateLimitDelayMS:  0,
		CacheCapacity:     100,
		CacheShards:       4,
		MaxResults:        5,
		SnippetLimit:      300,
		ContentLimit:      4000,
		HighAuthorityMin:  2,
		ModerateAuthority: 1,
		ModerateCommunity: 3,
	}
}

func newTestRetriever(t *testing.T, tool ToolClient) (*Retriever, domain.EvidenceCache) {
	t.Helper()
	cfg := testSearchConfig()
	c := cache.NewEvidenceCache(cfg.CacheShards, cfg.CacheCapacity)
	return NewRetriever(tool, c, cfg, zap.NewNop()), c
}

func TestRetrieverDisabledMode(t *testing.T) {
	r, _ := newTestRetriever(t, nil)

	result := r.Search(context.Background(), "flexcube interest accrual", 0)

	require.NotNil(t, result)
	assert.Equal(t, domain.StrengthNone, result.Strength)
	assert.Contains(t, result.Content, "missing search API configuration")
	assert.Empty(t, result.Sources)
}

func TestRetrieverStrengthDerivation(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		expected domain.EvidenceStrength
	}{
		{
			name: "two authority sources give high strength",
			items: []Item{
				{Title: "Accrual Guide", URL: "https://docs.oracle.com/flexcube/accrual"},
				{Title: "Support Note", URL: "https://support.oracle.com/note/123"},
			},
			expected: domain.StrengthHigh,
		},
		{
			name: "one authority source gives moderate strength",
			items: []Item{
				{Title: "Accrual Guide", URL: "https://docs.oracle.com/flexcube/accrual"},
			},
			expected: domain.StrengthModerate,
		},
		{
			name: "three community sources give moderate strength",
			items: []Item{
				{Title: "a", URL: "https://stackoverflow.com/q/1"},
				{Title: "b", URL: "https://github.com/x/y"},
				{Title: "c", URL: "https://example.com/post"},
			},
			expected: domain.StrengthModerate,
		},
		{
			name: "single community source gives limited strength",
			items: []Item{
				{Title: "a", URL: "https://stackoverflow.com/q/1"},
			},
			expected: domain.StrengthLimited,
		},
		{
			name:     "results without URLs give no strength",
			items:    []Item{{Snippet: "some text without a link"}},
			expected: domain.StrengthNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRetriever(t, &stubTool{items: tt.items})

			result := r.Search(context.Background(), tt.name, 0)

			assert.Equal(t, tt.expected, result.Strength)
		})
	}
}

func TestRetrieverCachesResults(t *testing.T) {
	tool := &stubTool{items: []Item{{Title: "Guide", URL: "https://docs.oracle.com/x"}}}
	r, _ := newTestRetriever(t, tool)

	first := r.Search(context.Background(), "settlement instructions", 1)
	second := r.Search(context.Background(), "  Settlement Instructions  ", 2)

	assert.Equal(t, 1, tool.calls, "second lookup must be served from cache")
	assert.Same(t, first, second)
}

func TestRetrieverCachesFailures(t *testing.T) {
	tool := &stubTool{err: errors.New("connection refused")}
	r, _ := newTestRetriever(t, tool)

	first := r.Search(context.Background(), "nostro reconciliation", 3)
	second := r.Search(context.Background(), "nostro reconciliation", 4)

	require.Equal(t, domain.StrengthError, first.Strength)
	assert.Contains(t, first.Content, "connection refused")
	assert.Equal(t, 1, tool.calls)
	assert.Same(t, first, second)
}

func TestRetrieverCapsResultCount(t *testing.T) {
	var items []Item
	for i := 0; i < 12; i++ {
		items = append(items, Item{
			Title: fmt.Sprintf("Result %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}
	r, _ := newTestRetriever(t, &stubTool{items: items})

	result := r.Search(context.Background(), "mass results", 0)

	assert.Len(t, result.Sources, 5)
	assert.Len(t, result.SourceTypes, 5)
}

func TestRetrieverCapsSnippetLength(t *testing.T) {
	long := strings.Repeat("x", 2000)
	items := []Item{
		{Title: "A", Snippet: long, URL: "https://example.com/a"},
		{Title: "B", Snippet: long, URL: "https://example.com/b"},
	}
	r, _ := newTestRetriever(t, &stubTool{items: items})

	result := r.Search(context.Background(), "long snippets", 0)

	// Per-result snippets are capped before concatenation.
	for _, part := range strings.Split(result.Content, "\n\n") {
		assert.LessOrEqual(t, len(part), 300+len("1. A\n   "))
	}
}

func TestRetrieverEmptyResults(t *testing.T) {
	r, _ := newTestRetriever(t, &stubTool{})

	result := r.Search(context.Background(), "nothing out there", 0)

	assert.Equal(t, domain.StrengthNone, result.Strength)
	assert.Equal(t, "No web search results found.", result.Content)
}

func TestClassifySource(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://docs.oracle.com/cd/F12345", TypeOfficialDocs},
		{"https://support.oracle.com/knowledge/1", TypeSupport},
		{"https://blogs.oracle.com/fsgbu/post", TypeTechnicalBlogs},
		{"https://www.oracle.com/financial-services/", TypeVendorSite},
		{"https://stackoverflow.com/questions/1", TypeCommunity},
		{"https://github.com/org/repo", TypeCommunity},
		{"https://web.mit.edu/paper", TypeAcademic},
		{"https://www.finextra.com/news", TypeIndustry},
		{"https://random-blog.io/article", TypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySource(tt.url))
		})
	}
}
