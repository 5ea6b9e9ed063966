package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/zen-systems/quill/pkg/adapter"
	"github.com/zen-systems/quill/pkg/pipeline"
)

// stagedSuffix appends _S1, _S2, _S3 in call order.
func stagedSuffix() *adapter.MockAdapter {
	var mu sync.Mutex
	n := 0
	return adapter.NewFuncAdapter(func(_ context.Context, req adapter.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_S%d", req.Input, n), nil
	})
}

func bind(p *pipeline.Pipeline, a adapter.Adapter) *pipeline.Pipeline {
	return p.WithAdapters(map[string]adapter.Adapter{"mock": a})
}

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range Names() {
		p, err := ByName(name)
		if err != nil {
			t.Fatalf("by name %s: %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(p.Stages) != 3 {
			t.Fatalf("%s: expected 3 stages", name)
		}
	}
	if _, err := ByName("sonnet"); err == nil {
		t.Fatalf("expected unknown pipeline error")
	}
	if !reflect.DeepEqual(Names(), []string{"essay", "paraphraser", "thesis"}) {
		t.Fatalf("unexpected names %v", Names())
	}
}

func TestEssayEndToEnd(t *testing.T) {
	mock := stagedSuffix()
	result, err := pipeline.Run(context.Background(), bind(Essay(), mock), pipeline.RunOptions{
		Seed: map[string]string{"topic": "Climate policy"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Output(); got != "Climate policy_S1_S2_S3" {
		t.Fatalf("unexpected final output %q", got)
	}

	expected := map[string]string{
		"topic":           "Climate policy",
		"essay":           "Climate policy_S1",
		"humanized_essay": "Climate policy_S1_S2",
		"final_output":    "Climate policy_S1_S2_S3",
	}
	if got := result.State.Snapshot(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected state %v", got)
	}

	calls := mock.Calls()
	if calls[2].Input != "Climate policy_S1_S2" {
		t.Fatalf("grammar stage should only receive humanized_essay, got %q", calls[2].Input)
	}
	if *calls[0].Options.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7")
	}
}

func TestParaphraserOptionsAndFields(t *testing.T) {
	mock := stagedSuffix()
	result, err := pipeline.Run(context.Background(), bind(Paraphraser(), mock), pipeline.RunOptions{
		Seed: map[string]string{"input_paragraph": "The cat sat."},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	expectedFields := []string{"input_paragraph", "rephrased_paragraph", "humanized_paragraph", "final_output"}
	if got := result.State.Fields(); !reflect.DeepEqual(got, expectedFields) {
		t.Fatalf("unexpected fields %v", got)
	}
	for i, call := range mock.Calls() {
		if call.Options.MaxOutputTokens != 3000 {
			t.Fatalf("call %d: expected max output tokens 3000", i)
		}
	}
}

func TestThesisOverwritesList(t *testing.T) {
	mock := stagedSuffix()
	result, err := pipeline.Run(context.Background(), bind(Thesis(), mock), pipeline.RunOptions{
		Seed: map[string]string{"topic": ThesisTopic("Junk food", "", "it harms health", "")},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Output(); got != "Junk food - because it harms health_S1_S2_S3" {
		t.Fatalf("unexpected thesis list %q", got)
	}
	if result.State.Len() != 2 {
		t.Fatalf("expected topic and thesis_list only, got %v", result.State.Fields())
	}
	if mock.Calls()[0].Options.MaxOutputTokens != 2048 {
		t.Fatalf("expected max output tokens 2048")
	}
}

func TestThesisMissingTopic(t *testing.T) {
	for _, seed := range []map[string]string{nil, {"topic": ""}, {"topic": ThesisTopic("  ", "idea", "", "")}} {
		mock := stagedSuffix()
		_, err := pipeline.Run(context.Background(), bind(Thesis(), mock), pipeline.RunOptions{Seed: seed})
		if !errors.Is(err, pipeline.ErrMissingInput) {
			t.Fatalf("expected missing input for %v, got %v", seed, err)
		}
		if len(mock.Calls()) != 0 {
			t.Fatalf("expected no external calls")
		}
	}
}

func TestThesisTopic(t *testing.T) {
	cases := []struct {
		topic, idea, reason, audience string
		want                          string
	}{
		{"Junk food", "", "", "", "Junk food"},
		{"Junk food", "bad for the body", "", "", "Junk food - bad for the body"},
		{"Junk food", "bad", "health issues", "college students", "Junk food - bad - because health issues - for college students"},
		{" Junk food ", " ", "", "kids", "Junk food - for kids"},
		{"", "idea", "reason", "", ""},
	}
	for _, tc := range cases {
		if got := ThesisTopic(tc.topic, tc.idea, tc.reason, tc.audience); got != tc.want {
			t.Fatalf("ThesisTopic(%q, %q, %q, %q) = %q, want %q", tc.topic, tc.idea, tc.reason, tc.audience, got, tc.want)
		}
	}
}

func TestBuildersReturnIndependentCopies(t *testing.T) {
	a := Essay()
	a.Stages[0].Instructions = "changed"
	if Essay().Stages[0].Instructions == "changed" {
		t.Fatalf("builders must not share stage values")
	}
}
