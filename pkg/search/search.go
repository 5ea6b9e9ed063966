// Package search finds related articles for a topic. Results are advisory:
// callers report failures as warnings.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultLimit is the number of results requested when none is given.
const DefaultLimit = 10

// ErrNotConfigured is returned when a searcher lacks credentials.
var ErrNotConfigured = errors.New("search not configured")

// Link is one search hit.
type Link struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher returns ordered links for a query.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Link, error)
}

// RelatedQuery builds the query used to look up papers about a topic.
func RelatedQuery(topic string) string {
	return strings.TrimSpace(topic) + " research paper"
}

// Related searches for papers about topic.
func Related(ctx context.Context, s Searcher, topic string) ([]Link, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	links, err := s.Search(ctx, RelatedQuery(topic), DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.Name(), err)
	}
	return links, nil
}

// FormatLinks renders links as markdown "[title](url)" lines. Links without
// a URL are dropped; a missing title falls back to the URL.
func FormatLinks(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l.URL == "" {
			continue
		}
		title := strings.TrimSpace(l.Title)
		if title == "" {
			title = l.URL
		}
		out = append(out, fmt.Sprintf("[%s](%s)", title, l.URL))
	}
	return out
}
