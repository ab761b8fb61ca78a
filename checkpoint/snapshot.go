package checkpoint

import "time"

// StepRecord is the persisted progress of one step.
type StepRecord struct {
	Name     string `json:"name"`
	Ran      bool   `json:"ran"`
	Finished bool   `json:"finished"`
}

// Snapshot is the durable projection of a pipeline's run state.
// Zero times mean "never".
type Snapshot struct {
	Ran                  bool
	Error                bool
	Bail                 bool
	LastAttempt          time.Time
	LastSuccessfulStart  time.Time
	LastSuccessfulFinish time.Time
	LastFullRunStart     time.Time
	CurrentFullRunStart  time.Time
	Steps                []StepRecord
	Params               map[string]interface{}
}

// Step returns the record named name.
func (s *Snapshot) Step(name string) (StepRecord, bool) {
	for _, r := range s.Steps {
		if r.Name == name {
			return r, true
		}
	}
	return StepRecord{}, false
}

type document struct {
	Application *application           `json:"application"`
	Params      map[string]interface{} `json:"params"`
}

type application struct {
	Ran                  bool         `json:"ran"`
	Error                bool         `json:"error"`
	Bail                 bool         `json:"bail"`
	LastAttempt          *int64       `json:"last_attempt"`
	LastSuccessfulStart  *int64       `json:"last_successful_start"`
	LastSuccessfulFinish *int64       `json:"last_successful_finish"`
	LastFullRunStart     *int64       `json:"last_full_run_start"`
	CurrentFullRunStart  *int64       `json:"current_full_run_start"`
	Steps                []StepRecord `json:"steps"`
}

func toEpoch(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	sec := t.Unix()
	return &sec
}

func fromEpoch(sec *int64) time.Time {
	if sec == nil {
		return time.Time{}
	}
	return time.Unix(*sec, 0)
}

func (s *Snapshot) document() *document {
	steps := s.Steps
	if steps == nil {
		steps = []StepRecord{}
	}
	params := s.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	return &document{
		Application: &application{
			Ran:                  s.Ran,
			Error:                s.Error,
			Bail:                 s.Bail,
			LastAttempt:          toEpoch(s.LastAttempt),
			LastSuccessfulStart:  toEpoch(s.LastSuccessfulStart),
			LastSuccessfulFinish: toEpoch(s.LastSuccessfulFinish),
			LastFullRunStart:     toEpoch(s.LastFullRunStart),
			CurrentFullRunStart:  toEpoch(s.CurrentFullRunStart),
			Steps:                steps,
		},
		Params: params,
	}
}

func (d *document) snapshot() *Snapshot {
	a := d.Application
	params := d.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	return &Snapshot{
		Ran:                  a.Ran,
		Error:                a.Error,
		Bail:                 a.Bail,
		LastAttempt:          fromEpoch(a.LastAttempt),
		LastSuccessfulStart:  fromEpoch(a.LastSuccessfulStart),
		LastSuccessfulFinish: fromEpoch(a.LastSuccessfulFinish),
		LastFullRunStart:     fromEpoch(a.LastFullRunStart),
		CurrentFullRunStart:  fromEpoch(a.CurrentFullRunStart),
		Steps:                a.Steps,
		Params:               params,
	}
}
