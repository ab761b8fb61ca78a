package cmd

import (
	"github.com/spf13/cobra"
)

func newRestartCommand(opts *rootOptions) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Resume the last run",
		Long: `Resume the last run at the step it stopped on, or at the closest
restartable step before it. Use --from to pick the step explicitly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if from != "" {
				return a.finish(a.orch.RestartFrom(cmd.Context(), from))
			}
			return a.finish(a.orch.RestartFromLastCheckpoint(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "step to restart from")
	return cmd
}
