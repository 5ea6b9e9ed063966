package pipeline

import (
	"time"

	"github.com/zen-systems/quill/pkg/artifact"
)

// Phase is the runner's position in the stage state machine.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseStageRunning
	PhaseStageComplete
	PhaseFailed
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseStageRunning:
		return "stage_running"
	case PhaseStageComplete:
		return "stage_complete"
	case PhaseFailed:
		return "failed"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseDone
}

// Transition is emitted each time the runner changes phase. Stage and Index
// are set for stage phases and for failures attributed to a stage; Index is
// -1 otherwise. StageRunning is emitted before the stage's inputs are
// checked, so Failed always follows StageRunning of the same stage.
type Transition struct {
	Phase    Phase
	Stage    string
	Index    int
	Artifact *artifact.Artifact
	Err      error
	Duration time.Duration
}

// Observer receives transitions synchronously, in order.
type Observer func(Transition)
