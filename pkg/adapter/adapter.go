package adapter

import (
	"context"

	"github.com/zen-systems/quill/pkg/artifact"
)

// Adapter is the text-generation capability a pipeline stage delegates to.
type Adapter interface {
	// Transform applies instructions to input using the given model and
	// returns the generated text as an artifact. Failures match one of
	// ErrServiceUnavailable, ErrQuotaExceeded or ErrMalformedResponse.
	Transform(ctx context.Context, model string, req Request) (*artifact.Artifact, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}
