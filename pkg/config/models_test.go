package config

import "testing"

func TestResolve(t *testing.T) {
	aliases := &ModelAliases{
		Aliases: map[string]string{
			"flash":  "gemini-2.0-flash",
			"sonnet": "claude-sonnet-4-20250514",
		},
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "resolve known alias", input: "flash", expected: "gemini-2.0-flash"},
		{name: "resolve another alias", input: "sonnet", expected: "claude-sonnet-4-20250514"},
		{name: "unknown alias returns input unchanged", input: "unknown-model", expected: "unknown-model"},
		{name: "canonical model returns unchanged", input: "gemini-2.0-flash", expected: "gemini-2.0-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := aliases.Resolve(tt.input); result != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolve_NilAliases(t *testing.T) {
	var aliases *ModelAliases
	if result := aliases.Resolve("flash"); result != "flash" {
		t.Errorf("Resolve on nil should return input, got %q", result)
	}
}

func TestValidateModel(t *testing.T) {
	aliases := DefaultAliases()
	if err := aliases.ValidateModel("google", "gemini-2.0-flash"); err != nil {
		t.Errorf("expected valid model, got %v", err)
	}
	if err := aliases.ValidateModel("google", "gpt-4o"); err == nil {
		t.Errorf("expected error for model from another provider")
	}
	if err := aliases.ValidateModel("nope", "x"); err == nil {
		t.Errorf("expected error for unknown adapter")
	}
}

func TestProviderForModel(t *testing.T) {
	aliases := DefaultAliases()
	cases := map[string]string{
		"gemini-2.5-pro":    "google",
		"gpt-4o-mini":       "openai",
		"deepseek-reasoner": "deepseek",
		"mock-1":            "mock",
		"unknown":           "",
	}
	for model, want := range cases {
		if got := aliases.ProviderForModel(model); got != want {
			t.Errorf("ProviderForModel(%q) = %q, want %q", model, got, want)
		}
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := DefaultAliases()
	merged := base.Merge(map[string]string{"flash": "gemini-2.5-flash"})
	if merged.Resolve("flash") != "gemini-2.5-flash" {
		t.Errorf("override not applied")
	}
	if base.Resolve("flash") != "gemini-2.0-flash" {
		t.Errorf("base was mutated")
	}
}
