package ending

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/step"
)

// Outcome is how a step body ended.
type Outcome int

const (
	Success Outcome = iota // Body returned nil
	Failed                 // Body returned an error or panicked
	Bailed                 // Body asked to stop the run early
	Fatal                  // Configuration error, returned to the caller
)

// String returns a string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	case Bailed:
		return "BAILED"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("UNKNOWN_OUTCOME_%d", int(o))
	}
}

// Finished reports whether a step with this outcome counts as finished.
func (o Outcome) Finished() bool {
	return o == Success || o == Bailed
}

// Stops reports whether the run must not continue past this outcome.
func (o Outcome) Stops() bool {
	return o != Success
}

// Classify maps a body's return value to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, step.ErrConfiguration):
		return Fatal
	case errors.Is(err, step.ErrExit):
		return Bailed
	default:
		return Failed
	}
}

// StepResult holds the outcome of one step execution.
type StepResult struct {
	Step     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// NewStepResult classifies err for the named step.
func NewStepResult(name string, err error, took time.Duration) *StepResult {
	return &StepResult{
		Step:     name,
		Outcome:  Classify(err),
		Err:      err,
		Duration: took,
	}
}

// IsFailed reports whether the step counts as a failure of the run.
func (r *StepResult) IsFailed() bool {
	return r.Outcome == Failed || r.Outcome == Fatal
}

func (r *StepResult) String() string {
	if r.Err != nil && r.Outcome != Bailed {
		return fmt.Sprintf("%s: %s after %s: %v", r.Step, r.Outcome, r.Duration, r.Err)
	}
	return fmt.Sprintf("%s: %s after %s", r.Step, r.Outcome, r.Duration)
}
