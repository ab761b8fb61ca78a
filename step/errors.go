package step

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrExit ends the current run early without marking it failed.
	// Bodies return it, usually through Runtime.Exit.
	ErrExit = errors.New("voluntary exit")

	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
)

// ConfigurationError reports a programming or setup mistake. It is never
// recovered as a step failure; the orchestrator returns it to the caller.
type ConfigurationError struct {
	Step   string
	Reason string
}

// NewConfigurationError formats a ConfigurationError for step.
func NewConfigurationError(step, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Step: step, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in step %s: %s", e.Step, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
