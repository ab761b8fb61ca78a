package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mensylisir/xmetl/lock"
	xmtime "github.com/mensylisir/xmetl/time"
)

const timeLayout = "2006-01-02 15:04:05"

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state recorded by the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return a.printStatus(cmd.OutOrStdout())
		},
	}
}

func (a *app) printStatus(w io.Writer) error {
	st := a.orch.State()
	fmt.Fprintf(w, "Pipeline: %s\n", a.cfg.Name)
	fmt.Fprintf(w, "Home: %s\n", a.cfg.HomeDir)

	l := lock.New(a.cfg.LockFile)
	held, err := l.Held()
	if err != nil {
		return err
	}
	if held {
		pid, runID, err := l.Owner()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Running: yes (pid %d, run %s)\n", pid, runID)
	} else {
		fmt.Fprintln(w, "Running: no")
	}

	fmt.Fprintf(w, "Ran: %t  Error: %t  Bail: %t\n", st.Ran, st.Error, st.Bail)
	fmt.Fprintf(w, "Last attempt: %s\n", stamp(st.LastAttempt))
	fmt.Fprintf(w, "Last successful run: %s (took %s)\n",
		stamp(st.LastSuccessfulStart), xmtime.Elapsed(st.LastSuccessfulStart, st.LastSuccessfulFinish))
	fmt.Fprintf(w, "Last full run start: %s\n", stamp(st.LastFullRunStart))
	fmt.Fprintf(w, "Current full run start: %s\n", stamp(st.CurrentFullRunStart))

	fmt.Fprintln(w, "Steps:")
	for _, s := range a.orch.Registry().Ordered() {
		fmt.Fprintf(w, "  %-20s ran=%t finished=%t restartable=%t\n", s.Name, s.Ran, s.Finished, s.Restartable)
	}
	if p := a.orch.ProposeRestartPoint(); p != nil {
		fmt.Fprintf(w, "Restart point: %s\n", p.Name)
	}
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(timeLayout)
}
