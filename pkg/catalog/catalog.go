// Package catalog holds the built-in pipelines: essay writing, paraphrasing
// and thesis statement generation.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zen-systems/quill/pkg/adapter"
	"github.com/zen-systems/quill/pkg/pipeline"
)

const (
	EssayName       = "essay"
	ParaphraserName = "paraphraser"
	ThesisName      = "thesis"
)

var builders = map[string]func() *pipeline.Pipeline{
	EssayName:       Essay,
	ParaphraserName: Paraphraser,
	ThesisName:      Thesis,
}

// Essay builds topic -> essay -> humanized_essay -> final_output.
func Essay() *pipeline.Pipeline {
	opts := adapter.Options{Temperature: adapter.Temperature(0.7)}
	return &pipeline.Pipeline{
		Name:        EssayName,
		Description: "Generate a structured academic essay, humanize it and correct its grammar",
		Seeds:       []string{"topic"},
		Stages: []*pipeline.Stage{
			{Name: "generate", Inputs: []string{"topic"}, Output: "essay", Instructions: essayGeneratePrompt, Options: opts},
			{Name: "humanize", Inputs: []string{"essay"}, Output: "humanized_essay", Instructions: essayHumanizePrompt, Options: opts},
			{Name: "correct_grammar", Inputs: []string{"humanized_essay"}, Output: "final_output", Instructions: essayGrammarPrompt, Options: opts},
		},
	}
}

// Paraphraser builds input_paragraph -> rephrased_paragraph ->
// humanized_paragraph -> final_output.
func Paraphraser() *pipeline.Pipeline {
	opts := adapter.Options{Temperature: adapter.Temperature(0.7), MaxOutputTokens: 3000}
	return &pipeline.Pipeline{
		Name:        ParaphraserName,
		Description: "Rephrase a passage, humanize it and correct its grammar",
		Seeds:       []string{"input_paragraph"},
		Stages: []*pipeline.Stage{
			{Name: "rephrase", Inputs: []string{"input_paragraph"}, Output: "rephrased_paragraph", Instructions: paraphraseRephrasePrompt, Options: opts},
			{Name: "humanize", Inputs: []string{"rephrased_paragraph"}, Output: "humanized_paragraph", Instructions: paraphraseHumanizePrompt, Options: opts},
			{Name: "correct_grammar", Inputs: []string{"humanized_paragraph"}, Output: "final_output", Instructions: paraphraseGrammarPrompt, Options: opts},
		},
	}
}

// Thesis builds topic -> thesis_list, then rewrites thesis_list in place
// twice. The terminal field is thesis_list.
func Thesis() *pipeline.Pipeline {
	opts := adapter.Options{Temperature: adapter.Temperature(0.7), MaxOutputTokens: 2048}
	return &pipeline.Pipeline{
		Name:        ThesisName,
		Description: "Generate ten structured thesis statements, humanize them and correct their grammar",
		Seeds:       []string{"topic"},
		Stages: []*pipeline.Stage{
			{Name: "generate", Inputs: []string{"topic"}, Output: "thesis_list", Instructions: thesisGeneratePrompt, Options: opts},
			{Name: "humanize", Inputs: []string{"thesis_list"}, Output: "thesis_list", Instructions: thesisHumanizePrompt, Options: opts},
			{Name: "correct_grammar", Inputs: []string{"thesis_list"}, Output: "thesis_list", Instructions: thesisGrammarPrompt, Options: opts},
		},
	}
}

// ByName returns a fresh copy of a built-in pipeline.
func ByName(name string) (*pipeline.Pipeline, error) {
	build, ok := builders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

// Names lists the built-in pipelines.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThesisTopic folds the optional main idea, supporting reason and audience
// into the topic seed. Blank parts are skipped; a blank topic yields "".
func ThesisTopic(topic, idea, reason, audience string) string {
	full := strings.TrimSpace(topic)
	if full == "" {
		return ""
	}
	if idea = strings.TrimSpace(idea); idea != "" {
		full += " - " + idea
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		full += " - because " + reason
	}
	if audience = strings.TrimSpace(audience); audience != "" {
		full += " - for " + audience
	}
	return full
}
