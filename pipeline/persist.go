package pipeline

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/checkpoint"
	"github.com/mensylisir/xmetl/common"
	"github.com/mensylisir/xmetl/param"
)

// Snapshot projects the run state, step flags and saved params.
func (o *Orchestrator) Snapshot() *checkpoint.Snapshot {
	steps := o.registry.Ordered()
	records := make([]checkpoint.StepRecord, 0, len(steps))
	for _, s := range steps {
		records = append(records, checkpoint.StepRecord{Name: s.Name, Ran: s.Ran, Finished: s.Finished})
	}
	return &checkpoint.Snapshot{
		Ran:                  o.state.Ran,
		Error:                o.state.Error,
		Bail:                 o.state.Bail,
		LastAttempt:          o.state.LastAttempt,
		LastSuccessfulStart:  o.state.LastSuccessfulStart,
		LastSuccessfulFinish: o.state.LastSuccessfulFinish,
		LastFullRunStart:     o.state.LastFullRunStart,
		CurrentFullRunStart:  o.state.CurrentFullRunStart,
		Steps:                records,
		Params:               o.params.Saved(),
	}
}

// Sleep saves the checkpoint.
func (o *Orchestrator) Sleep() error {
	if err := o.store.Save(o.Snapshot()); err != nil {
		return errors.Wrap(err, "failed to persist run state")
	}
	return nil
}

// Awake restores the checkpoint. A missing or empty checkpoint only logs a
// warning. Steps in the checkpoint that are not registered are skipped.
func (o *Orchestrator) Awake() error {
	snap, err := o.store.Load()
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) || errors.Is(err, checkpoint.ErrEmpty) {
			o.log.Warnf("Nothing to restore: %v", err)
			return nil
		}
		return errors.Wrap(err, "failed to restore run state")
	}

	o.state.Ran = snap.Ran
	o.state.Error = snap.Error
	o.state.Bail = snap.Bail
	o.state.LastAttempt = snap.LastAttempt
	o.state.LastSuccessfulStart = snap.LastSuccessfulStart
	o.state.LastSuccessfulFinish = snap.LastSuccessfulFinish
	o.state.LastFullRunStart = snap.LastFullRunStart
	o.state.CurrentFullRunStart = snap.CurrentFullRunStart

	published := map[string]time.Time{
		common.ParamLastAttempt:          snap.LastAttempt,
		common.ParamLastSuccessfulStart:  snap.LastSuccessfulStart,
		common.ParamLastSuccessfulFinish: snap.LastSuccessfulFinish,
		common.ParamLastFullRunStart:     snap.LastFullRunStart,
		common.ParamCurrentFullRunStart:  snap.CurrentFullRunStart,
	}
	for key, ts := range published {
		if err := o.params.Set(key, epochParam(ts), param.Silent()); err != nil {
			return err
		}
	}
	for key, value := range snap.Params {
		if err := o.params.Save(key, value, param.Silent()); err != nil {
			return err
		}
	}

	for _, rec := range snap.Steps {
		s, ok := o.registry.Find(rec.Name)
		if !ok {
			o.log.Warnf("Checkpoint mentions unknown step %s, skipping it", rec.Name)
			continue
		}
		s.Ran = rec.Ran
		s.Finished = rec.Finished
	}
	o.log.Debugf("Restored run state from checkpoint (last attempt %s)", snap.LastAttempt)
	return nil
}

// epochParam renders a timestamp parameter: epoch seconds, or nil for never.
func epochParam(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}
