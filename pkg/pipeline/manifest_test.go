package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	content := `name: summary
description: condense then polish
seeds: [document]
default_adapter: mock
stages:
  - name: condense
    inputs: [document]
    output: summary
    instructions: "Summarise the text."
    options:
      temperature: 0.3
      max_output_tokens: 512
  - name: polish
    inputs: [summary]
    output: final_output
    adapter: mock
    model: mock-1
    instructions: "Polish: {{ .Fields.summary }}"
`

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	p, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.TerminalField() != "final_output" {
		t.Fatalf("unexpected terminal field %q", p.TerminalField())
	}
	opts := p.Stages[0].Options
	if opts.Temperature == nil || *opts.Temperature != 0.3 || opts.MaxOutputTokens != 512 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseManifestRejectsUnknownKeys(t *testing.T) {
	_, err := ParseManifest([]byte("name: x\nstages: []\nretries: 3\n"))
	if err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
	if _, err := ParseManifest(nil); err == nil {
		t.Fatalf("expected error for empty manifest")
	}
}

func TestValidateReportsProblems(t *testing.T) {
	p := &Pipeline{
		Name:     "broken",
		Seeds:    []string{"topic"},
		Terminal: "nowhere",
		Stages: []*Stage{
			{Name: "generate", Inputs: []string{"topic"}, Output: "essay", Instructions: "write"},
			{Name: "generate", Inputs: []string{"essay"}, Output: "b", Instructions: "again"},
			{Name: "polish", Inputs: []string{"later"}, Output: "later", Instructions: "polish"},
			{Name: "empty", Inputs: []string{"essay"}, Output: "c"},
		},
	}

	err := p.Validate()
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	expected := []string{
		"duplicate stage name: generate",
		`stage polish reads "later"`,
		"stage empty must have instructions",
		`terminal field "nowhere"`,
	}
	msg := validation.Error()
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestValidateRequiresStages(t *testing.T) {
	if err := (&Pipeline{}).Validate(); err == nil {
		t.Fatalf("expected error for empty pipeline")
	}
	p := &Pipeline{
		Name:   "x",
		Seeds:  []string{"a"},
		Stages: []*Stage{{Name: "s", Inputs: []string{"a"}, Output: "b", Instructions: "{{ .Fields.a "}},
	}
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "instructions") {
		t.Fatalf("expected template parse error, got %v", err)
	}
}
