package pipeline

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/lock"
)

// State is the run state of an orchestrator. Zero times mean "never".
type State struct {
	Ran        bool
	Error      bool
	Bail       bool
	FullRun    bool
	PartialRun bool

	LastAttempt          time.Time
	LastSuccessfulStart  time.Time
	LastSuccessfulFinish time.Time
	LastFullRunStart     time.Time
	CurrentFullRunStart  time.Time
}

// ConcurrentRunError is returned when another run holds the run lock.
type ConcurrentRunError struct {
	Path string
	Err  error
}

func (e *ConcurrentRunError) Error() string {
	return "another run is in progress (lock " + e.Path + "): " + e.Err.Error()
}

// Unwrap returns the lock error, which matches lock.ErrLocked.
func (e *ConcurrentRunError) Unwrap() error {
	return e.Err
}

// Locker guards a project against concurrent runs.
type Locker interface {
	Acquire(runID string) error
	Release() error
	Path() string
}

var _ Locker = (*lock.File)(nil)

func lockError(l Locker, err error) error {
	if errors.Is(err, lock.ErrLocked) {
		return &ConcurrentRunError{Path: l.Path(), Err: err}
	}
	return errors.Wrap(err, "failed to acquire run lock")
}
