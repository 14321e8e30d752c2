package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPToolClientStructuredResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req toolRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "flexcube accrual", req.Query)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Accrual Guide","snippet":"Interest accrual setup","url":"https://docs.oracle.com/a"},
			{"title":"Forum Post","snippet":"How to configure","url":"https://stackoverflow.com/q/1"}
		]}`))
	}))
	defer server.Close()

	client := NewHTTPToolClient(server.URL, "test-key", 5*time.Second)
	items, err := client.Invoke(context.Background(), "flexcube accrual")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Accrual Guide", items[0].Title)
	assert.Equal(t, "https://stackoverflow.com/q/1", items[1].URL)
}

func TestHTTPToolClientEmbeddedJSONText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[
			{"text":"[{\"title\":\"Doc\",\"snippet\":\"snippet text\",\"url\":\"https://docs.oracle.com/d\"}]"}
		]}`))
	}))
	defer server.Close()

	client := NewHTTPToolClient(server.URL, "", 5*time.Second)
	items, err := client.Invoke(context.Background(), "query")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Doc", items[0].Title)
	assert.Equal(t, "https://docs.oracle.com/d", items[0].URL)
}

func TestHTTPToolClientPlainTextBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"text":"Plain prose answer without links"}]}`))
	}))
	defer server.Close()

	client := NewHTTPToolClient(server.URL, "", 5*time.Second)
	items, err := client.Invoke(context.Background(), "query")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Plain prose answer without links", items[0].Snippet)
	assert.Empty(t, items[0].URL)
}

func TestHTTPToolClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPToolClient(server.URL, "", 5*time.Second)
	_, err := client.Invoke(context.Background(), "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
