package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStepsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the step sequence",
		Long: `List the configured sequence. Steps marked "-" have no body
registered and are skipped; "restartable" marks valid restart points.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, name := range a.orch.Registry().Sequence() {
				s, ok := a.orch.Registry().Find(name)
				switch {
				case !ok:
					fmt.Fprintf(w, "%2d - %s\n", i+1, name)
				case s.Restartable:
					fmt.Fprintf(w, "%2d * %s (restartable)\n", i+1, name)
				default:
					fmt.Fprintf(w, "%2d * %s\n", i+1, name)
				}
			}
			return nil
		},
	}
}
