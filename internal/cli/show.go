package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show a single invoice",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			inv, err := a.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("show invoice %s", args[0]), err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).PrintInvoice(inv)
		},
	}
}
