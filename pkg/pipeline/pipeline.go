package pipeline

import "github.com/zen-systems/quill/pkg/adapter"

// Pipeline is a linear sequence of stages over a shared state.
type Pipeline struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Seeds          []string `yaml:"seeds"`
	Terminal       string   `yaml:"terminal,omitempty"`
	DefaultAdapter string   `yaml:"default_adapter,omitempty"`
	DefaultModel   string   `yaml:"default_model,omitempty"`
	Stages         []*Stage `yaml:"stages"`

	Adapters map[string]adapter.Adapter `yaml:"-"`
}

// TerminalField returns the field holding the final output.
func (p *Pipeline) TerminalField() string {
	if p.Terminal != "" {
		return p.Terminal
	}
	if len(p.Stages) == 0 || p.Stages[len(p.Stages)-1] == nil {
		return ""
	}
	return p.Stages[len(p.Stages)-1].Output
}

// WithAdapters returns a shallow copy of the pipeline bound to adapters.
// Stages are shared; they are not modified by a run.
func (p *Pipeline) WithAdapters(adapters map[string]adapter.Adapter) *Pipeline {
	out := *p
	out.Adapters = adapters
	return &out
}
