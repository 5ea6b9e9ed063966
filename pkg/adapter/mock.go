package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/zen-systems/quill/pkg/artifact"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	responses       map[string]string
	defaultResponse string
	transform       func(ctx context.Context, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with responses keyed by input.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// NewFuncAdapter creates a mock adapter whose output is computed by fn.
func NewFuncAdapter(fn func(ctx context.Context, req Request) (string, error)) *MockAdapter {
	return &MockAdapter{transform: fn}
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Calls returns the requests received so far.
func (a *MockAdapter) Calls() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.calls))
	copy(out, a.calls)
	return out
}

// Transform returns a deterministic artifact for the request.
func (a *MockAdapter) Transform(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	if model == "" {
		model = "mock-1"
	}
	a.mu.Lock()
	a.calls = append(a.calls, req)
	a.mu.Unlock()

	if a.transform != nil {
		content, err := a.transform(ctx, req)
		if err != nil {
			return nil, err
		}
		return artifact.New(content, a.Name(), model, req.Instructions), nil
	}
	if response, ok := a.responses[req.Input]; ok {
		return artifact.New(response, a.Name(), model, req.Instructions), nil
	}
	content := fmt.Sprintf("%s\n%s", a.defaultResponse, req.Input)
	return artifact.New(content, a.Name(), model, req.Instructions), nil
}
