package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/metrics"
)

// Messages returned in place of evidence content when no search happens.
const (
	msgDisabled  = "Web search unavailable - missing search API configuration"
	msgNoResults = "No web search results found."
)

// Retriever performs web evidence lookups with caching and a process-wide
// concurrency bound shared by all batches.
type Retriever struct {
	client    ToolClient
	cache     domain.EvidenceCache
	cfg       config.SearchConfig
	sem       *semaphore.Weighted
	rateDelay time.Duration
	logger    *zap.Logger
}

// NewRetriever creates a retriever. A nil client puts the retriever into
// disabled mode: every search returns a StrengthNone placeholder result.
func NewRetriever(client ToolClient, cache domain.EvidenceCache, cfg config.SearchConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		client:    client,
		cache:     cache,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		rateDelay: time.Duration(cfg.RateLimitDelayMS) * time.Millisecond,
		logger:    logger,
	}
}

// Search retrieves evidence for a query. It never returns an error: tool
// failures produce a StrengthError result so the caller's row survives.
func (r *Retriever) Search(ctx context.Context, query string, rowIndex int) *domain.EvidenceResult {
	if cached, ok := r.cache.Get(query); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		r.logger.Debug("Evidence cache hit", zap.Int("row", rowIndex))
		return cached
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	if r.client == nil {
		metrics.SearchCalls.WithLabelValues("disabled").Inc()
		return &domain.EvidenceResult{
			Content:  msgDisabled,
			Strength: domain.StrengthNone,
		}
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return r.failure(query, rowIndex, err)
	}
	defer r.sem.Release(1)

	if r.rateDelay > 0 {
		select {
		case <-time.After(r.rateDelay):
		case <-ctx.Done():
			return r.failure(query, rowIndex, ctx.Err())
		}
	}

	items, err := r.client.Invoke(ctx, query)
	if err != nil {
		return r.failure(query, rowIndex, err)
	}
	metrics.SearchCalls.WithLabelValues("ok").Inc()

	result := r.assemble(items)
	r.cache.Set(query, result)

	r.logger.Debug("Web search completed",
		zap.Int("row", rowIndex),
		zap.Int("sources", len(result.Sources)),
		zap.String("strength", string(result.Strength)))

	return result
}

// failure builds, caches and returns an error-strength result. Error results
// are cached too so a repeated failing query does not hammer the tool.
func (r *Retriever) failure(query string, rowIndex int, err error) *domain.EvidenceResult {
	metrics.SearchCalls.WithLabelValues("error").Inc()
	r.logger.Warn("Web search failed", zap.Int("row", rowIndex), zap.Error(err))

	result := &domain.EvidenceResult{
		Content:  fmt.Sprintf("Web search failed: %v", err),
		Strength: domain.StrengthError,
	}
	r.cache.Set(query, result)
	return result
}

// assemble turns raw tool items into an EvidenceResult: it caps the item
// count, classifies source URLs, tallies authority and community sources,
// and derives the overall evidence strength.
func (r *Retriever) assemble(items []Item) *domain.EvidenceResult {
	if len(items) == 0 {
		return &domain.EvidenceResult{
			Content:  msgNoResults,
			Strength: domain.StrengthNone,
		}
	}

	if len(items) > r.cfg.MaxResults {
		items = items[:r.cfg.MaxResults]
	}

	result := &domain.EvidenceResult{}
	var parts []string

	for i, item := range items {
		snippet := truncate(strings.TrimSpace(item.Snippet), r.cfg.SnippetLimit)
		title := strings.TrimSpace(item.Title)

		switch {
		case title != "" && snippet != "":
			parts = append(parts, fmt.Sprintf("%d. %s\n   %s", i+1, title, snippet))
		case title != "":
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, title))
		case snippet != "":
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, snippet))
		}

		if item.URL == "" {
			continue
		}
		result.Sources = append(result.Sources, item.URL)
		result.SourceTypes = append(result.SourceTypes, ClassifySource(item.URL))
		if IsAuthority(item.URL) {
			result.AuthorityCount++
		} else {
			result.CommunityCount++
		}
	}

	result.Content = truncateContent(strings.Join(parts, "\n\n"), r.cfg.ContentLimit)
	result.Strength = r.deriveStrength(result)
	return result
}

func (r *Retriever) deriveStrength(result *domain.EvidenceResult) domain.EvidenceStrength {
	switch {
	case result.AuthorityCount >= r.cfg.HighAuthorityMin:
		return domain.StrengthHigh
	case result.AuthorityCount >= r.cfg.ModerateAuthority || result.CommunityCount >= r.cfg.ModerateCommunity:
		return domain.StrengthModerate
	case len(result.Sources) > 0:
		return domain.StrengthLimited
	default:
		return domain.StrengthNone
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func truncateContent(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "... (content truncated)"
}

// Verify that Retriever implements domain.Searcher interface
var _ domain.Searcher = (*Retriever)(nil)
