package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faturarapida/faturarapida/internal/invoice"
	"github.com/faturarapida/faturarapida/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Status string
	Page   int
	Size   int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List invoices, optionally filtered by status",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (ISSUED|PAID|OVERDUE|CANCELLED)")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&opts.Size, "size", 20, "page size")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	page := store.Page{Number: opts.Page, Size: opts.Size}

	var invoices []*invoice.Invoice
	if opts.Status != "" {
		status, err := invoice.ParseStatus(opts.Status)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid status %q", opts.Status), err)
		}
		invoices, err = a.svc.ListByStatus(cmd.Context(), status, page)
		if err != nil {
			return WrapExitError(ExitFailure, "list invoices", err)
		}
	} else {
		invoices, err = a.svc.List(cmd.Context(), page)
		if err != nil {
			return WrapExitError(ExitFailure, "list invoices", err)
		}
	}

	return formatter(opts.RootOptions, cmd.OutOrStdout()).PrintInvoiceList(invoices)
}
