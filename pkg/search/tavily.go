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

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearcher provides web search via the Tavily API.
type TavilySearcher struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// TavilyOption configures a TavilySearcher.
type TavilyOption func(*TavilySearcher)

// WithTavilyEndpoint points the searcher at a different URL.
func WithTavilyEndpoint(endpoint string) TavilyOption {
	return func(t *TavilySearcher) {
		t.endpoint = endpoint
	}
}

// WithTavilyHTTPClient replaces the HTTP client.
func WithTavilyHTTPClient(client *http.Client) TavilyOption {
	return func(t *TavilySearcher) {
		t.httpClient = client
	}
}

// NewTavilySearcher creates a new Tavily-backed searcher.
func NewTavilySearcher(apiKey string, opts ...TavilyOption) (*TavilySearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily: %w: TAVILY_API_KEY is required", ErrNotConfigured)
	}
	t := &TavilySearcher{
		apiKey:     apiKey,
		endpoint:   tavilyEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the searcher identifier.
func (t *TavilySearcher) Name() string {
	return "tavily"
}

type tavilyRequest struct {
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs the query and returns up to limit results in API order.
func (t *TavilySearcher) Search(ctx context.Context, query string, limit int) ([]Link, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	payload := tavilyRequest{
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  limit,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	links := make([]Link, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		links = append(links, Link{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(links) == limit {
			break
		}
	}
	return links, nil
}
