package search

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// googleMaxResults is the per-request cap of the Custom Search JSON API.
const googleMaxResults = 10

// GoogleSearcher queries a Programmable Search Engine.
type GoogleSearcher struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSearcher creates a searcher for the engine cx. Extra client
// options are appended after the API key.
func NewGoogleSearcher(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google search: %w: GOOGLE_SEARCH_API_KEY and GOOGLE_CSE_ID are required", ErrNotConfigured)
	}
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("google search: create client: %w", err)
	}
	return &GoogleSearcher{svc: svc, cx: cx}, nil
}

// Name returns the searcher identifier.
func (g *GoogleSearcher) Name() string {
	return "google"
}

// Search runs the query and returns up to limit results.
func (g *GoogleSearcher) Search(ctx context.Context, query string, limit int) ([]Link, error) {
	if limit <= 0 || limit > googleMaxResults {
		limit = googleMaxResults
	}

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("custom search API error (status %d): %s", apiErr.Code, apiErr.Message)
		}
		return nil, err
	}

	links := make([]Link, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		links = append(links, Link{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return links, nil
}
