package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faturarapida/faturarapida/internal/invoice"
)

// NewStatusCommand creates the status command for manual transitions.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new-status>",
		Short: "Transition an invoice to a new status",
		Long: `Transition an invoice to a new status (PAID, OVERDUE or CANCELLED).

Illegal transitions are rejected: PAID and CANCELLED invoices accept no
further status changes.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := invoice.ParseStatus(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid status %q", args[1]), err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			inv, err := a.svc.TransitionStatus(cmd.Context(), args[0], target)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("transition invoice %s", args[0]), err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).PrintInvoice(inv)
		},
	}
}
