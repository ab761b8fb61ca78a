package task

import (
	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/config"
	"github.com/mensylisir/xmetl/pipeline"
	"github.com/mensylisir/xmetl/step"
	"github.com/mensylisir/xmetl/transfer"
)

// Body builds the step body described by spec. Upload bodies use dial.
func Body(spec config.StepSpec, dial transfer.Dialer) step.Body {
	switch spec.Kind() {
	case "command":
		return NewShell(spec.Name, spec.Command, spec.BailExitCode)
	case "cleanup":
		return NewCleanup(spec.Name, spec.Cleanup...)
	case "upload":
		return &Upload{
			Step:        spec.Name,
			LocalDir:    spec.Upload.LocalDir,
			RemoteDir:   spec.Upload.RemoteDir,
			Archive:     spec.Upload.Archive,
			ArchiveName: spec.Upload.ArchiveName,
			Dial:        dial,
		}
	default:
		return nil
	}
}

// SFTPDialer dials the configured transfer target; nil spec gives nil.
func SFTPDialer(spec *config.TransferSpec) transfer.Dialer {
	if spec == nil {
		return nil
	}
	return func() (transfer.Uploader, error) {
		return transfer.Dial(transfer.Config{
			Username:    spec.User,
			Password:    spec.Password,
			Address:     spec.Address,
			Port:        spec.Port,
			KeyFile:     spec.PrivateKeyPath,
			AgentSocket: spec.AgentSocket,
			Timeout:     spec.Timeout,
		})
	}
}

// Register adds the configured steps and hooks to o.
func Register(o *pipeline.Orchestrator, cfg *config.Config, dial transfer.Dialer) error {
	for _, spec := range cfg.Steps {
		opts := []step.Option{step.WithRestartable(spec.Restartable)}
		if spec.Description != "" {
			opts = append(opts, step.WithDescription(spec.Description))
		}
		if _, err := o.Step(spec.Name, Body(spec, dial), opts...); err != nil {
			return errors.Wrapf(err, "register step %s", spec.Name)
		}
	}
	env := o.Params().Environ
	for _, cmd := range cfg.AfterSuccess {
		o.AfterSuccess((&ShellHook{Command: cmd, Dir: cfg.HomeDir, Env: env}).Named())
	}
	for _, cmd := range cfg.AfterFailure {
		o.AfterFailure((&ShellHook{Command: cmd, Dir: cfg.HomeDir, Env: env}).Named())
	}
	return nil
}
