package hook

import (
	"fmt"

	"github.com/pkg/errors"
)

// Hook runs after a pipeline run. failure is nil for success hooks and the
// captured step error for failure hooks.
type Hook interface {
	Run(failure error) error
}

// Finalizer is implemented by hooks that need Finally called once Run
// returned or panicked.
type Finalizer interface {
	Finally()
}

// Func adapts a one-argument function to Hook.
type Func func(failure error) error

// Run calls f(failure).
func (f Func) Run(failure error) error {
	return f(failure)
}

// Action adapts a function that ignores the failure detail.
type Action func() error

// Run calls f().
func (f Action) Run(error) error {
	return f()
}

// Named attaches a display name to a hook for logging.
type Named struct {
	Name string
	Hook
}

// Name returns the display name of h, or its type.
func Name(h Hook) string {
	if n, ok := h.(*Named); ok && n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("%T", h)
}

// Finally forwards to the wrapped hook if it is a Finalizer.
func (n *Named) Finally() {
	if f, ok := n.Hook.(Finalizer); ok {
		f.Finally()
	}
}

// Call runs h, turning a panic into an error and calling Finally last.
func Call(h Hook, failure error) (err error) {
	if h == nil {
		return errors.New("hook cannot be nil")
	}

	if f, ok := h.(Finalizer); ok {
		defer f.Finally()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic occurred during hook execution: %v", r)
		}
	}()

	if runErr := h.Run(failure); runErr != nil {
		return errors.Wrapf(runErr, "hook %s", Name(h))
	}
	return nil
}

// CallAll runs hooks in order and stops at the first error.
func CallAll(hooks []Hook, failure error) error {
	for _, h := range hooks {
		if err := Call(h, failure); err != nil {
			return err
		}
	}
	return nil
}
