package task

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/executor"
	"github.com/mensylisir/xmetl/hook"
	"github.com/mensylisir/xmetl/logger"
)

// EnvFailure carries the failure detail into failure hook commands.
const EnvFailure = "XMETL_FAILURE"

// ShellHook runs a command after a run. The failure detail, if any, is
// exported as $XMETL_FAILURE.
type ShellHook struct {
	Command string
	Dir     string
	// Env supplies extra KEY=value pairs at run time, usually the parameters.
	Env func() []string
}

var _ hook.Hook = (*ShellHook)(nil)

// Run implements hook.Hook.
func (h *ShellHook) Run(failure error) error {
	var env []string
	if h.Env != nil {
		env = h.Env()
	}
	if failure != nil {
		env = append(env, EnvFailure+"="+failure.Error())
	}
	exec := executor.NewLocal(executor.WithDir(h.Dir), executor.WithEnv(env))
	stdout, stderr, code, err := exec.Execute(context.Background(), h.Command)
	if out := strings.TrimSpace(stdout); out != "" {
		logger.Log.Info(out)
	}
	if errOut := strings.TrimSpace(stderr); errOut != "" {
		logger.Log.Warn(errOut)
	}
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("hook command '%s' failed with exit code %d", h.Command, code)
	}
	return nil
}

// Named wraps the hook with its command as display name.
func (h *ShellHook) Named() hook.Hook {
	return &hook.Named{Name: h.Command, Hook: h}
}
