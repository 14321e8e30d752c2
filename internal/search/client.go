package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Item is one usable search result extracted from the tool response.
type Item struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// ToolClient invokes the external web-search tool with a query string.
type ToolClient interface {
	Invoke(ctx context.Context, query string) ([]Item, error)
}

// HTTPToolClient calls a JSON-over-HTTP search tool endpoint.
type HTTPToolClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPToolClient creates a search tool client.
func NewHTTPToolClient(baseURL, apiKey string, timeout time.Duration) *HTTPToolClient {
	return &HTTPToolClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type toolRequest struct {
	Query string `json:"query"`
}

// toolResponse accepts the heterogeneous shapes the search tool is known to
// return: a top-level results array, or a content array of text blocks with
// JSON embedded in the text.
type toolResponse struct {
	Results []json.RawMessage `json:"results"`
	Content []json.RawMessage `json:"content"`
}

// Invoke posts the query and extracts result items from the response.
func (c *HTTPToolClient) Invoke(ctx context.Context, query string) ([]Item, error) {
	body, err := json.Marshal(toolRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search tool returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed toolResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	entries := parsed.Results
	if len(entries) == 0 {
		entries = parsed.Content
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, extractItems(entry)...)
	}
	return items, nil
}

// extractItems turns one raw response entry into result items. Entries come
// in three shapes: a structured object with title/snippet/url, a text block
// whose text is itself a JSON result list, or a plain text block.
func extractItems(raw json.RawMessage) []Item {
	var structured struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		URL     string `json:"url"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil {
		return nil
	}

	if structured.URL != "" || structured.Title != "" || structured.Snippet != "" {
		return []Item{{
			Title:   structured.Title,
			Snippet: structured.Snippet,
			URL:     structured.URL,
		}}
	}

	text := strings.TrimSpace(structured.Text)
	if text == "" {
		return nil
	}

	// Text blocks sometimes carry the real result list as embedded JSON.
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		var embedded []Item
		if err := json.Unmarshal([]byte(text), &embedded); err == nil && len(embedded) > 0 {
			return embedded
		}
		var single Item
		if err := json.Unmarshal([]byte(text), &single); err == nil && (single.URL != "" || single.Snippet != "" || single.Title != "") {
			return []Item{single}
		}
	}

	return []Item{{Snippet: text}}
}

// Verify that HTTPToolClient implements ToolClient interface
var _ ToolClient = (*HTTPToolClient)(nil)
