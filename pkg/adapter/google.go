package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zen-systems/quill/pkg/artifact"
	"google.golang.org/genai"
)

// GoogleAdapter implements the Adapter interface for Gemini models.
type GoogleAdapter struct {
	client *genai.Client
}

// NewGoogleAdapter creates a new Google Gemini adapter.
func NewGoogleAdapter(apiKey string) (*GoogleAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAdapter{
		client: client,
	}, nil
}

// Name returns the adapter identifier.
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Models returns the list of supported Gemini models.
func (a *GoogleAdapter) Models() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	}
}

// Transform sends the instructions as a system instruction and the input as
// the user turn.
func (a *GoogleAdapter) Transform(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(req.Input), googleConfig(req))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(a.Name(), apiErr.Code, err)
		}
		return nil, transportError(a.Name(), err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, malformedError(a.Name(), "google returned no candidates")
	}

	var sb strings.Builder
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	art := artifact.New(sb.String(), a.Name(), model, req.Instructions)
	if art.Empty() {
		return nil, malformedError(a.Name(), "google returned empty text (finish reason %q)", resp.Candidates[0].FinishReason)
	}

	if resp.UsageMetadata != nil {
		withUsage(art, Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		})
	}
	return art, nil
}

func googleConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if req.Options.Temperature != nil {
		t := float32(*req.Options.Temperature)
		cfg.Temperature = &t
	}
	if req.Options.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Options.MaxOutputTokens)
	}
	return cfg
}
