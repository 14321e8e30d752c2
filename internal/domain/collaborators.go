package domain

import "context"

// Searcher retrieves web evidence for a query. Implementations never return
// an error: ordinary failures are converted into an EvidenceResult with
// Strength set to StrengthError or StrengthNone, so a failed search cannot
// abort a row.
type Searcher interface {
	Search(ctx context.Context, query string, rowIndex int) *EvidenceResult
}

// Completer invokes an LLM chat completion with a system and user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// EvidenceCache deduplicates search results by normalized query.
type EvidenceCache interface {
	// Get returns the cached result for a query, if present. Queries that
	// differ only in case or surrounding whitespace hit the same entry.
	Get(query string) (*EvidenceResult, bool)

	// Set stores a result for a query, subject to the cache's capacity bound.
	Set(query string, result *EvidenceResult)

	// Len returns the current entry count.
	Len() int

	// Clear removes all entries and returns how many were removed.
	Clear() int
}
