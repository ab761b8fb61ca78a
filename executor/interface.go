package executor

import (
	"context"
)

// Executor runs shell commands.
type Executor interface {
	// Execute runs command and returns its captured output. A non-zero exit
	// status is reported through exitCode with a nil error; err is set only
	// when the command could not be run at all (or ctx ended).
	Execute(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)
}
