package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing auth header")
		}
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Query != "Junk food research paper" || req.MaxResults != 2 || req.IncludeAnswer {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"results":[
			{"title":"First","url":"https://first","content":"a","score":0.9},
			{"title":"Second","url":"https://second","content":"b","score":0.8},
			{"title":"Third","url":"https://third","content":"c","score":0.7}
		]}`))
	}))
	defer server.Close()

	s, err := NewTavilySearcher("key", WithTavilyEndpoint(server.URL))
	if err != nil {
		t.Fatalf("new searcher: %v", err)
	}
	links, err := s.Search(context.Background(), RelatedQuery("Junk food"), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(links) != 2 || links[0].Title != "First" || links[1].URL != "https://second" {
		t.Fatalf("unexpected links %+v", links)
	}
}

func TestTavilySearchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	s, err := NewTavilySearcher("key", WithTavilyEndpoint(server.URL))
	if err != nil {
		t.Fatalf("new searcher: %v", err)
	}
	_, err = s.Search(context.Background(), "x", 0)
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewTavilySearcherRequiresKey(t *testing.T) {
	if _, err := NewTavilySearcher(""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
