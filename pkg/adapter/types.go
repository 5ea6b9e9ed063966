package adapter

import (
	"strconv"

	"github.com/zen-systems/quill/pkg/artifact"
)

// Options tunes a single generation call. Zero values leave the provider
// default in place.
type Options struct {
	Temperature     *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxOutputTokens int      `yaml:"max_output_tokens,omitempty" json:"max_output_tokens,omitempty"`
}

// Temperature returns a pointer suitable for Options.Temperature.
func Temperature(v float64) *float64 {
	return &v
}

// Request is the provider-agnostic input of a transform call.
type Request struct {
	Instructions string
	Input        string
	Options      Options
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

func withUsage(art *artifact.Artifact, usage Usage) *artifact.Artifact {
	art.Metadata["prompt_tokens"] = strconv.FormatInt(usage.PromptTokens, 10)
	art.Metadata["completion_tokens"] = strconv.FormatInt(usage.CompletionTokens, 10)
	return art
}

func maxTokensOrDefault(opts Options, fallback int) int {
	if opts.MaxOutputTokens > 0 {
		return opts.MaxOutputTokens
	}
	return fallback
}
