package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Artifact is the immutable record of one text transformation returned by
// an adapter.
type Artifact struct {
	ID           string            `json:"id"`
	Content      string            `json:"content"`
	Adapter      string            `json:"adapter"`
	Model        string            `json:"model"`
	Instructions string            `json:"instructions"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Hash         string            `json:"hash"`
}

// New creates a new Artifact with computed hash.
func New(content, adapter, model, instructions string) *Artifact {
	a := &Artifact{
		ID:           uuid.NewString(),
		Content:      content,
		Adapter:      adapter,
		Model:        model,
		Instructions: instructions,
		Metadata:     make(map[string]string),
		CreatedAt:    time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

// WithMetadata returns a copy of the artifact with an additional metadata entry.
func (a *Artifact) WithMetadata(key, value string) *Artifact {
	out := *a
	out.Metadata = cloneMetadata(a.Metadata)
	out.Metadata[key] = value
	return &out
}

// Empty reports whether the artifact carries no usable text.
func (a *Artifact) Empty() bool {
	if a == nil {
		return true
	}
	for _, r := range a.Content {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}

// computeHash covers content, adapter and model, NUL-separated.
func (a *Artifact) computeHash() string {
	sum := sha256.Sum256([]byte(a.Content + "\x00" + a.Adapter + "\x00" + a.Model))
	return hex.EncodeToString(sum[:8])
}

func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
