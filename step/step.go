package step

import (
	"fmt"

	"github.com/pkg/errors"
)

// Body is the work a step performs.
type Body interface {
	Execute(rt Runtime) error
}

// BodyFunc adapts a plain function to Body.
type BodyFunc func(rt Runtime) error

// Execute calls f(rt).
func (f BodyFunc) Execute(rt Runtime) error {
	return f(rt)
}

// Step is one named stage of the ETL sequence.
// Ran is set when the orchestrator attempts the step; Finished only when the
// body returned normally or bailed out with ErrExit.
type Step struct {
	Name        string
	Description string
	Restartable bool
	Ran         bool
	Finished    bool
	Body        Body
}

// Option configures a Step.
type Option func(*Step)

// WithRestartable marks the step as a safe resume point.
func WithRestartable(restartable bool) Option {
	return func(s *Step) {
		s.Restartable = restartable
	}
}

// WithDescription sets a human readable description.
func WithDescription(desc string) Option {
	return func(s *Step) {
		s.Description = desc
	}
}

// WithBody sets the step body.
func WithBody(body Body) Option {
	return func(s *Step) {
		s.Body = body
	}
}

// New creates a step named name.
func New(name string, opts ...Option) *Step {
	s := &Step{Name: name}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset clears the progress flags.
func (s *Step) Reset() {
	s.Ran = false
	s.Finished = false
}

// Execute runs the body. A nil body does nothing; a panic in the body is
// returned as an error.
func (s *Step) Execute(rt Runtime) (err error) {
	if s.Body == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in step %s: %v", s.Name, r)
		}
	}()
	return s.Body.Execute(rt)
}

func (s *Step) String() string {
	return fmt.Sprintf("%s(ran=%t finished=%t restartable=%t)", s.Name, s.Ran, s.Finished, s.Restartable)
}
