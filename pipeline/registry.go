package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmetl/step"
	"github.com/mensylisir/xmetl/util"
)

// Registry holds the steps of one pipeline, keyed by name and ordered by the
// sequence. Slots of the sequence without a registered step are skipped.
type Registry struct {
	sequence []string
	steps    map[string]*step.Step
	ordered  []*step.Step
	log      *logrus.Entry
}

// NewRegistry creates an empty registry for sequence.
func NewRegistry(sequence []string, log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Registry{
		steps: make(map[string]*step.Step),
		log:   log,
	}
	r.SetSequence(sequence)
	return r
}

// Sequence returns a copy of the step order.
func (r *Registry) Sequence() []string {
	seq := make([]string, len(r.sequence))
	copy(seq, r.sequence)
	return seq
}

// SetSequence replaces the step order and re-resolves the ordered list.
// Registered steps that are no longer part of the sequence are dropped.
func (r *Registry) SetSequence(sequence []string) {
	r.sequence = make([]string, len(sequence))
	copy(r.sequence, sequence)
	for name := range r.steps {
		if !util.ContainsString(r.sequence, name) {
			r.log.Warnf("Step %s is not part of the new sequence, dropping it", name)
			delete(r.steps, name)
		}
	}
	r.reorder()
}

// Register adds s. Names outside the sequence are a configuration error; a
// second registration of the same name replaces the first.
func (r *Registry) Register(s *step.Step) (*step.Step, error) {
	if s == nil || s.Name == "" {
		return nil, step.NewConfigurationError("", "step must have a name")
	}
	if !util.ContainsString(r.sequence, s.Name) {
		return nil, step.NewConfigurationError(s.Name, "not part of the sequence %v", r.sequence)
	}
	if _, exists := r.steps[s.Name]; exists {
		r.log.Warnf("Step %s is already registered, replacing it", s.Name)
	}
	r.steps[s.Name] = s
	r.reorder()
	return s, nil
}

// Ordered returns the registered steps in sequence order.
func (r *Registry) Ordered() []*step.Step {
	out := make([]*step.Step, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Find looks a step up by name.
func (r *Registry) Find(name string) (*step.Step, bool) {
	s, ok := r.steps[name]
	return s, ok
}

// From returns s and every step after it. A step that is not registered
// yields an empty list.
func (r *Registry) From(s *step.Step) []*step.Step {
	for i, candidate := range r.ordered {
		if candidate == s {
			return r.Ordered()[i:]
		}
	}
	return []*step.Step{}
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.ordered)
}

func (r *Registry) reorder() {
	ordered := make([]*step.Step, 0, len(r.steps))
	seen := make(map[string]bool, len(r.sequence))
	for _, name := range r.sequence {
		if s, ok := r.steps[name]; ok && !seen[name] {
			ordered = append(ordered, s)
			seen[name] = true
		}
	}
	r.ordered = ordered
}
