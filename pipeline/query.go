package pipeline

import "github.com/mensylisir/xmetl/step"

// ProposeRestartPoint returns the last step that ran and is restartable,
// else the first step. It is nil only when nothing is registered.
func (o *Orchestrator) ProposeRestartPoint() *step.Step {
	steps := o.registry.Ordered()
	if len(steps) == 0 {
		return nil
	}
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Ran && steps[i].Restartable {
			return steps[i]
		}
	}
	return steps[0]
}

// RestartableSteps lists the restartable steps, led by the first step when
// it is not restartable itself.
func (o *Orchestrator) RestartableSteps() []*step.Step {
	steps := o.registry.Ordered()
	out := make([]*step.Step, 0, len(steps))
	if len(steps) > 0 && !steps[0].Restartable {
		out = append(out, steps[0])
	}
	for _, s := range steps {
		if s.Restartable {
			out = append(out, s)
		}
	}
	return out
}

// RanSteps lists the steps attempted by the last run or restart.
func (o *Orchestrator) RanSteps() []*step.Step {
	return o.filter(func(s *step.Step) bool { return s.Ran })
}

// RanFinished lists the steps that finished.
func (o *Orchestrator) RanFinished() []*step.Step {
	return o.filter(func(s *step.Step) bool { return s.Finished })
}

// Failed reports whether the last run or restart failed.
func (o *Orchestrator) Failed() bool { return o.state.Error }

// Bailed reports whether the last run stopped through a voluntary exit.
func (o *Orchestrator) Bailed() bool { return o.state.Bail }

// IsRan reports whether a run was ever attempted.
func (o *Orchestrator) IsRan() bool { return o.state.Ran }

// IsFullRun reports whether the last execution was a full run.
func (o *Orchestrator) IsFullRun() bool { return o.state.FullRun }

// IsPartialRun reports whether the last execution was a restart.
func (o *Orchestrator) IsPartialRun() bool { return o.state.PartialRun }

func (o *Orchestrator) filter(keep func(*step.Step) bool) []*step.Step {
	var out []*step.Step
	for _, s := range o.registry.Ordered() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
