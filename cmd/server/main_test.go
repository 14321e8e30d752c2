package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haricode-hub/rfp-ofsaa/internal/cache"
	"github.com/haricode-hub/rfp-ofsaa/internal/config"
)

func healthApp(llmKey, searchURL, searchKey string) *App {
	a := NewApp()
	a.config = &config.Config{
		LLM:    config.LLMConfig{APIKey: llmKey},
		Search: config.SearchConfig{BaseURL: searchURL, APIKey: searchKey},
	}
	a.cache = cache.NewEvidenceCache(4, 100)
	return a
}

func TestHealthReportsCollaborators(t *testing.T) {
	a := healthApp("sk-test", "https://search.example.com", "search-key")

	rec := httptest.NewRecorder()
	a.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, true, payload["llm_configured"])
	assert.Equal(t, true, payload["search_configured"])
	assert.Equal(t, float64(0), payload["cache_entries"])
}

func TestHealthFlagsMissingSearchTool(t *testing.T) {
	a := healthApp("sk-test", "", "")

	rec := httptest.NewRecorder()
	a.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["llm_configured"])
	assert.Equal(t, false, payload["search_configured"])
}
