package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a pipeline definition from a YAML file.
func LoadManifest(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseManifest decodes a YAML pipeline definition. Unknown keys are rejected.
func ParseManifest(data []byte) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var pipeline Pipeline
	if err := dec.Decode(&pipeline); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, err
	}
	return &pipeline, nil
}

// Validate checks the pipeline configuration for errors. All problems are
// reported together in a *ValidationError.
func (p *Pipeline) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if p.Name == "" {
		addf("pipeline name is required")
	}
	if len(p.Stages) == 0 {
		addf("pipeline must define at least one stage")
	}

	available := make(map[string]struct{}, len(p.Seeds)+len(p.Stages))
	for _, seed := range p.Seeds {
		if seed == "" {
			addf("seed field name is empty")
			continue
		}
		available[seed] = struct{}{}
	}

	produced := make(map[string]struct{}, len(p.Stages))
	seen := make(map[string]struct{}, len(p.Stages))
	for i, stage := range p.Stages {
		if stage == nil {
			addf("stage #%d is empty", i+1)
			continue
		}
		label := stage.Name
		if label == "" {
			addf("stage #%d: name is required", i+1)
			label = fmt.Sprintf("#%d", i+1)
		} else if _, ok := seen[stage.Name]; ok {
			addf("duplicate stage name: %s", stage.Name)
		}
		seen[stage.Name] = struct{}{}

		if stage.Instructions == "" {
			addf("stage %s must have instructions", label)
		} else if _, err := template.New(label).Option("missingkey=error").Parse(stage.Instructions); err != nil {
			addf("stage %s instructions: %v", label, err)
		}
		if len(stage.Inputs) == 0 {
			addf("stage %s must declare at least one input", label)
		}
		for _, in := range stage.Inputs {
			if _, ok := available[in]; !ok {
				addf("stage %s reads %q which is neither a seed nor an earlier output", label, in)
			}
		}
		if stage.Options.MaxOutputTokens < 0 {
			addf("stage %s: max_output_tokens must not be negative", label)
		}
		if t := stage.Options.Temperature; t != nil && (*t < 0 || *t > 2) {
			addf("stage %s: temperature %.2f out of range [0, 2]", label, *t)
		}

		if stage.Output == "" {
			addf("stage %s must declare an output field", label)
			continue
		}
		available[stage.Output] = struct{}{}
		produced[stage.Output] = struct{}{}
	}

	if terminal := p.TerminalField(); terminal != "" {
		if _, ok := produced[terminal]; !ok {
			addf("terminal field %q is not produced by any stage", terminal)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Pipeline: p.Name, Problems: problems}
	}
	return nil
}
