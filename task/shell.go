package task

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/executor"
	"github.com/mensylisir/xmetl/step"
	"github.com/mensylisir/xmetl/util"
)

// ExecutorFactory builds the executor a command body runs with.
type ExecutorFactory func(rt step.Runtime) executor.Executor

// LocalExecutor runs in the project home with the parameters exported.
func LocalExecutor(rt step.Runtime) executor.Executor {
	return executor.NewLocal(executor.WithDir(rt.WorkDir()), executor.WithEnv(rt.Environ()))
}

// Shell runs a command template. The template sees the parameters, e.g.
// "{{.SOURCE_DIR}}"; they are also exported to the environment.
type Shell struct {
	Step    string
	Command string
	// BailExitCode, when non-zero, turns that exit status into a voluntary exit.
	BailExitCode int
	Executor     ExecutorFactory
}

var _ step.Body = (*Shell)(nil)

// NewShell creates a command body for the named step.
func NewShell(stepName, command string, bailExitCode int) *Shell {
	return &Shell{Step: stepName, Command: command, BailExitCode: bailExitCode, Executor: LocalExecutor}
}

// Execute implements step.Body.
func (s *Shell) Execute(rt step.Runtime) error {
	command, err := util.RenderString(s.Command, paramData(rt))
	if err != nil {
		return step.NewConfigurationError(s.Step, "cannot render command %q: %v", s.Command, err)
	}
	factory := s.Executor
	if factory == nil {
		factory = LocalExecutor
	}
	_, code, err := runCommand(rt.Context(), factory(rt), rt, command)
	if err != nil {
		return err
	}
	switch {
	case code == 0:
		return nil
	case s.BailExitCode != 0 && code == s.BailExitCode:
		rt.Log().Infof("External command exited with %d, stopping the run", code)
		return rt.Exit()
	default:
		return errors.Errorf("external command '%s' failed with exit code %d", command, code)
	}
}

// runCommand logs and runs command, returning its trimmed stdout.
func runCommand(ctx context.Context, exec executor.Executor, rt step.Runtime, command string) (string, int, error) {
	log := rt.Log()
	log.Infof("Running external command '%s'", command)
	stdout, stderr, code, err := exec.Execute(ctx, command)
	if out := strings.TrimSpace(stdout); out != "" {
		log.Info(out)
	}
	if errOut := strings.TrimSpace(stderr); errOut != "" {
		log.Warn(errOut)
	}
	if err != nil {
		return "", code, errors.Wrapf(err, "external command '%s'", command)
	}
	if code == 0 {
		log.Infof("Finished external command '%s'", command)
	} else {
		log.Errorf("External command '%s' FAILED with exit code %d", command, code)
	}
	return strings.TrimSpace(stdout), code, nil
}

// paramData exposes the parameters to templates.
func paramData(rt step.Runtime) util.Data {
	data := util.Data{}
	for _, kv := range rt.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			data[kv[:i]] = kv[i+1:]
		}
	}
	return data
}
