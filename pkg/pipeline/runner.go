package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/zen-systems/quill/pkg/adapter"
	"github.com/zen-systems/quill/pkg/artifact"
	"github.com/zen-systems/quill/pkg/evidence"
)

const evidenceContentLimit = 4096

// RunOptions configures pipeline execution.
type RunOptions struct {
	// RunID names the run in evidence records; a uuid is generated when empty.
	RunID       string
	Seed        map[string]string
	EvidenceDir string
	Logger      func(format string, args ...any)
	Observer    Observer
}

// RunResult captures pipeline outputs.
type RunResult struct {
	RunID       string
	Pipeline    string
	EvidenceDir string
	Terminal    string
	State       *State
	Stages      []*StageResult
}

// Output returns the value of the terminal field.
func (r *RunResult) Output() string {
	if r == nil || r.State == nil {
		return ""
	}
	value, _ := r.State.Get(r.Terminal)
	return value
}

// StageResult captures execution results for a stage.
type StageResult struct {
	Name     string
	Index    int
	Output   string
	Adapter  string
	Model    string
	Artifact *artifact.Artifact
	Duration time.Duration
}

type runner struct {
	pipeline *Pipeline
	opts     RunOptions
	runID    string
	writer   *evidence.Writer
	state    *State
}

// Run executes the pipeline stages in order against a state built from
// opts.Seed. It stops at the first failure and returns no partial result.
func Run(ctx context.Context, pipeline *Pipeline, opts RunOptions) (*RunResult, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	if len(pipeline.Adapters) == 0 {
		return nil, fmt.Errorf("no adapters configured")
	}

	r := &runner{
		pipeline: pipeline,
		opts:     opts,
		runID:    opts.RunID,
		state:    NewState(opts.Seed),
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if opts.EvidenceDir != "" {
		writer, err := evidence.NewWriter(opts.EvidenceDir, r.runID)
		if err != nil {
			return nil, fmt.Errorf("prepare evidence: %w", err)
		}
		r.writer = writer
	}

	r.emit(Transition{Phase: PhaseCreated, Index: -1})
	r.logf("pipeline %s: run %s started with fields %s", pipeline.Name, r.runID, strings.Join(r.state.Fields(), ","))

	results := make([]*StageResult, 0, len(pipeline.Stages))
	for i, stage := range pipeline.Stages {
		result, err := r.runStage(ctx, i, stage)
		if err != nil {
			r.emit(Transition{Phase: PhaseFailed, Stage: stage.Name, Index: i, Err: err})
			r.logf("pipeline %s: %v", pipeline.Name, err)
			r.finish(stage.Name, err)
			return nil, err
		}
		results = append(results, result)
	}

	r.emit(Transition{Phase: PhaseDone, Index: -1})
	if err := r.finish("", nil); err != nil {
		return nil, err
	}

	res := &RunResult{
		RunID:    r.runID,
		Pipeline: pipeline.Name,
		Terminal: pipeline.TerminalField(),
		State:    r.state,
		Stages:   results,
	}
	if r.writer != nil {
		res.EvidenceDir = r.writer.RunDir()
	}
	return res, nil
}

func (r *runner) runStage(ctx context.Context, index int, stage *Stage) (*StageResult, error) {
	r.emit(Transition{Phase: PhaseStageRunning, Stage: stage.Name, Index: index})

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: stage.Name, Index: index, Err: err}
	}

	for _, field := range stage.Inputs {
		if !r.state.Has(field) {
			return nil, &MissingInputError{Stage: stage.Name, Field: field}
		}
	}

	adapterName, adapterImpl, model, err := r.resolve(stage)
	if err != nil {
		return nil, &StageError{Stage: stage.Name, Index: index, Err: err}
	}

	instructions, err := renderInstructions(stage, r.state)
	if err != nil {
		return nil, &StageError{Stage: stage.Name, Index: index, Err: fmt.Errorf("render instructions: %w", err)}
	}
	req := adapter.Request{
		Instructions: instructions,
		Input:        composeInput(stage, r.state),
		Options:      stage.Options,
	}

	r.logf("stage %s: calling %s/%s", stage.Name, adapterName, model)

	start := time.Now()
	art, err := adapterImpl.Transform(ctx, model, req)
	if err == nil && art.Empty() {
		err = fmt.Errorf("%w: %s returned no text", adapter.ErrMalformedResponse, adapterName)
	}
	duration := time.Since(start)

	record := evidence.StageRecord{
		Name:           stage.Name,
		Index:          index,
		Inputs:         stage.Inputs,
		Output:         stage.Output,
		Adapter:        adapterName,
		Model:          model,
		DurationMillis: duration.Milliseconds(),
	}
	record.Instructions = evidence.Truncate(instructions, evidenceContentLimit)
	if record.Instructions != instructions {
		record.InstructionsHash = hashString(instructions)
	}

	if err != nil {
		record.Error = err.Error()
		if writeErr := r.writeStage(record, ""); writeErr != nil {
			r.logf("stage %s: write evidence: %v", stage.Name, writeErr)
		}
		return nil, &StageError{Stage: stage.Name, Index: index, Err: err}
	}

	art = art.WithMetadata("stage", stage.Name)
	record.Metadata = art.Metadata
	if err := r.writeStage(record, art.Content); err != nil {
		return nil, &StageError{Stage: stage.Name, Index: index, Err: fmt.Errorf("write evidence: %w", err)}
	}

	r.state.Set(stage.Output, art.Content)
	r.emit(Transition{Phase: PhaseStageComplete, Stage: stage.Name, Index: index, Artifact: art, Duration: duration})
	r.logf("stage %s: wrote %s (%d bytes) in %s", stage.Name, stage.Output, len(art.Content), duration.Round(time.Millisecond))

	return &StageResult{
		Name:     stage.Name,
		Index:    index,
		Output:   stage.Output,
		Adapter:  adapterName,
		Model:    model,
		Artifact: art,
		Duration: duration,
	}, nil
}

func (r *runner) resolve(stage *Stage) (string, adapter.Adapter, string, error) {
	adapters := r.pipeline.Adapters

	adapterName := stage.Adapter
	if adapterName == "" {
		adapterName = r.pipeline.DefaultAdapter
	}
	if adapterName == "" {
		adapterName = pickSingleAdapter(adapters)
	}
	adapterImpl, ok := adapters[adapterName]
	if !ok {
		return "", nil, "", fmt.Errorf("adapter %q not configured", adapterName)
	}

	model := stage.Model
	if model == "" && (stage.Adapter == "" || stage.Adapter == r.pipeline.DefaultAdapter) {
		model = r.pipeline.DefaultModel
	}
	if model == "" {
		if models := adapterImpl.Models(); len(models) > 0 {
			model = models[0]
		}
	}
	if model == "" {
		return "", nil, "", fmt.Errorf("model not specified for stage %s", stage.Name)
	}
	return adapterName, adapterImpl, model, nil
}

func (r *runner) emit(t Transition) {
	if r.opts.Observer != nil {
		r.opts.Observer(t)
	}
}

func (r *runner) logf(format string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger(format, args...)
	}
}

func (r *runner) writeStage(record evidence.StageRecord, content string) error {
	if r.writer == nil {
		return nil
	}
	if err := r.writer.Fill(&record, content, evidenceContentLimit); err != nil {
		return err
	}
	return r.writer.WriteStage(record)
}

func (r *runner) finish(failedStage string, runErr error) error {
	if r.writer == nil {
		return nil
	}
	record := evidence.RunRecord{
		ID:           r.runID,
		Pipeline:     r.pipeline.Name,
		Timestamp:    time.Now().UTC(),
		SeedFields:   sortedKeys(r.opts.Seed),
		SeedHash:     hashString(canonicalSeed(r.opts.Seed)),
		Status:       PhaseDone.String(),
		ToolVersions: map[string]string{"go": runtime.Version()},
	}
	if runErr != nil {
		record.Status = PhaseFailed.String()
		record.FailedStage = failedStage
		record.Error = runErr.Error()
	} else {
		record.Terminal = r.pipeline.TerminalField()
		output, _ := r.state.Get(record.Terminal)
		record.OutputHash = hashString(output)
	}
	if err := r.writer.WriteRun(record); err != nil {
		if runErr != nil {
			r.logf("write run evidence: %v", err)
			return nil
		}
		return fmt.Errorf("write run evidence: %w", err)
	}
	return nil
}

// composeInput passes a single input through untouched and joins several
// inputs with a blank line in declared order.
func composeInput(stage *Stage, state *State) string {
	if len(stage.Inputs) == 1 {
		value, _ := state.Get(stage.Inputs[0])
		return value
	}
	parts := make([]string, 0, len(stage.Inputs))
	for _, field := range stage.Inputs {
		value, _ := state.Get(field)
		parts = append(parts, value)
	}
	return strings.Join(parts, "\n\n")
}

// renderInstructions executes the stage template with only the declared
// inputs visible under .Fields.
func renderInstructions(stage *Stage, state *State) (string, error) {
	if !strings.Contains(stage.Instructions, "{{") {
		return stage.Instructions, nil
	}

	fields := make(map[string]string, len(stage.Inputs))
	for _, field := range stage.Inputs {
		fields[field], _ = state.Get(field)
	}

	tmpl, err := template.New(stage.Name).Option("missingkey=error").Parse(stage.Instructions)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, map[string]any{"Fields": fields}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func pickSingleAdapter(adapters map[string]adapter.Adapter) string {
	if len(adapters) != 1 {
		return ""
	}
	for key := range adapters {
		return key
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func canonicalSeed(seed map[string]string) string {
	var sb strings.Builder
	for _, k := range sortedKeys(seed) {
		sb.WriteString(k)
		sb.WriteByte(0)
		sb.WriteString(seed[k])
		sb.WriteByte(0)
	}
	return sb.String()
}

func hashString(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

