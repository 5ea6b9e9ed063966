package adapter

import (
	"context"
	"time"

	"github.com/zen-systems/quill/pkg/artifact"
)

type timeoutAdapter struct {
	Adapter
	timeout time.Duration
}

// WithTimeout bounds every Transform call of a by d. A non-positive d
// returns a unchanged.
func WithTimeout(a Adapter, d time.Duration) Adapter {
	if d <= 0 {
		return a
	}
	return &timeoutAdapter{Adapter: a, timeout: d}
}

func (t *timeoutAdapter) Transform(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Adapter.Transform(ctx, model, req)
}
