package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmetl/checkpoint"
	"github.com/mensylisir/xmetl/common"
	"github.com/mensylisir/xmetl/config"
	"github.com/mensylisir/xmetl/lock"
	"github.com/mensylisir/xmetl/logger"
	"github.com/mensylisir/xmetl/param"
	"github.com/mensylisir/xmetl/pipeline"
	"github.com/mensylisir/xmetl/task"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logDir     string
}

// app is a loaded project: its configuration and a restored orchestrator.
type app struct {
	cfg  *config.Config
	orch *pipeline.Orchestrator
}

// NewRootCommand builds the xmetl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           common.AppName,
		Short:         "Run ETL step sequences with checkpoint and restart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", common.DefaultConfigFile, "path to the project configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "write rotated log files to this directory")

	root.AddCommand(
		newRunCommand(opts),
		newRestartCommand(opts),
		newStatusCommand(opts),
		newStepsCommand(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the configuration and builds an orchestrator restored from the
// last checkpoint.
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logDir != "" {
		cfg.Log.Dir = o.logDir
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Log.Level)
	}
	xl, err := logger.New(logger.Options{
		Dir:      cfg.Log.Dir,
		FileName: cfg.Name + ".log",
		Verbose:  o.verbose || cfg.Log.Verbose,
		Level:    &level,
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	log := xl.Pipeline(cfg.Name)

	params := param.NewStore(log, nil)
	if err := params.SetAll(config.DefaultParams(cfg)); err != nil {
		return nil, err
	}

	orch := pipeline.New(
		pipeline.WithName(cfg.Name),
		pipeline.WithWorkDir(cfg.HomeDir),
		pipeline.WithSequence(cfg.Sequence),
		pipeline.WithLogger(log),
		pipeline.WithParams(params),
		pipeline.WithWorkspace(param.NewWorkspace(cfg.WorkspaceFile, cfg.ShellWorkspaceFile)),
		pipeline.WithCheckpointStore(checkpoint.NewFileStore(cfg.CheckpointFile)),
		pipeline.WithLock(lock.New(cfg.LockFile)),
	)
	if err := task.Register(orch, cfg, task.SFTPDialer(cfg.Transfer)); err != nil {
		return nil, err
	}
	if err := orch.Awake(); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, orch: orch}, nil
}

// finish turns a recorded step failure into a command error.
func (a *app) finish(err error) error {
	if err != nil {
		return err
	}
	if a.orch.Failed() {
		return errors.Errorf("pipeline %s failed: %v", a.cfg.Name, a.orch.LastFailure())
	}
	return nil
}
