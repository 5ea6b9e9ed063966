package pipeline

import "github.com/zen-systems/quill/pkg/adapter"

// Stage is one generative rewrite: it reads its declared inputs from the
// state and writes exactly one output field.
type Stage struct {
	Name         string          `yaml:"name"`
	Inputs       []string        `yaml:"inputs"`
	Output       string          `yaml:"output"`
	Instructions string          `yaml:"instructions"`
	Options      adapter.Options `yaml:"options,omitempty"`
	Adapter      string          `yaml:"adapter,omitempty"`
	Model        string          `yaml:"model,omitempty"`
}

// Overwrites reports whether the stage rewrites one of its own inputs.
func (s *Stage) Overwrites() bool {
	for _, in := range s.Inputs {
		if in == s.Output {
			return true
		}
	}
	return false
}
