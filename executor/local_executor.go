package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall" // For exit code
	"time"
)

const (
	defaultShell = "/bin/sh"
	waitDelay    = 2 * time.Second
)

// Local runs commands through "sh -c" on this machine.
type Local struct {
	shell  string
	dir    string
	env    []string
	stdout io.Writer
	stderr io.Writer
}

var _ Executor = (*Local)(nil)

// Option configures a Local executor.
type Option func(*Local)

// WithShell overrides /bin/sh.
func WithShell(shell string) Option {
	return func(l *Local) { l.shell = shell }
}

// WithDir sets the working directory of every command.
func WithDir(dir string) Option {
	return func(l *Local) { l.dir = dir }
}

// WithEnv appends KEY=value pairs to the process environment.
func WithEnv(env []string) Option {
	return func(l *Local) { l.env = append(l.env, env...) }
}

// WithOutput tees the command output to w, in addition to capturing it.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Local) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewLocal creates a new Executor for local operations.
func NewLocal(opts ...Option) *Local {
	l := &Local{shell: defaultShell}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Execute implements Executor.
func (l *Local) Execute(ctx context.Context, command string) (string, string, int, error) {
	if command == "" {
		return "", "", 0, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, l.shell, "-c", command)
	cmd.Dir = l.dir
	cmd.Env = append(os.Environ(), l.env...)
	// Children of the shell may keep the pipes open after it was killed.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, l.stdout)
	cmd.Stderr = tee(&stderr, l.stderr)

	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), -1, fmt.Errorf("command '%s' interrupted: %w", command, ctxErr)
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode := 1 // Default if status cannot be determined
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			exitCode = status.ExitStatus()
		}
		return stdout.String(), stderr.String(), exitCode, nil
	}
	return stdout.String(), stderr.String(), 1, fmt.Errorf("failed to run command '%s': %w", command, err)
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
