package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the one-shot sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the overdue sweep once",
		Long: `Run the overdue sweep once: every non-terminal invoice whose due
date lies strictly in the past is marked OVERDUE. Prints the number of
candidates examined.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			count, err := a.svc.SweepOverdue(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "overdue sweep", err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).PrintResult(
				fmt.Sprintf("examined %d overdue candidate(s)", count),
				map[string]int{"examined": count},
			)
		},
	}
}
