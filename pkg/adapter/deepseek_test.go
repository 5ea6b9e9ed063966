package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeepSeekTransformSendsInstructionsAndOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req deepseekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "draft" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", req.Temperature)
		}
		if req.MaxTokens != 3000 {
			t.Errorf("expected max tokens 3000, got %d", req.MaxTokens)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"polished"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer server.Close()

	a, err := NewDeepSeekAdapter("key", WithDeepSeekBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	art, err := a.Transform(context.Background(), "deepseek-chat", Request{
		Instructions: "polish",
		Input:        "draft",
		Options:      Options{Temperature: Temperature(0.7), MaxOutputTokens: 3000},
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if art.Content != "polished" {
		t.Fatalf("unexpected content %q", art.Content)
	}
	if art.Metadata["prompt_tokens"] != "3" || art.Metadata["completion_tokens"] != "1" {
		t.Fatalf("unexpected usage metadata %v", art.Metadata)
	}
}

func TestDeepSeekTransformClassifiesFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrQuotaExceeded},
		{"server error", http.StatusBadGateway, `upstream`, ErrServiceUnavailable},
		{"bad json", http.StatusOK, `{not json`, ErrMalformedResponse},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrMalformedResponse},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, ErrMalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			a, err := NewDeepSeekAdapter("key", WithDeepSeekBaseURL(server.URL))
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			_, err = a.Transform(context.Background(), "deepseek-chat", Request{Input: "x"})
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestNewDeepSeekAdapterRequiresKey(t *testing.T) {
	if _, err := NewDeepSeekAdapter(""); err == nil {
		t.Fatalf("expected error for empty API key")
	}
}
