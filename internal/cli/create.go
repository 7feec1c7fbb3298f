package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/faturarapida/faturarapida/internal/invoice"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Client      string
	Description string
	Amount      string
	Due         string
	Document    string
	Address     string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new invoice",
		Long: `Issue a new invoice: renders the PDF, stores it in the artifact
directory and persists the record with status ISSUED.

Example:
  faturarapida create --client "Acme" --description "Consulting" \
      --amount 100.00 --due 2024-01-10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Client, "client", "", "client name (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "invoice description (required)")
	cmd.Flags().StringVar(&opts.Amount, "amount", "", "invoice amount, decimal (required)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.Document, "document", "", "client document")
	cmd.Flags().StringVar(&opts.Address, "address", "", "client address")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", opts.Amount), err)
	}
	due, err := time.Parse("2006-01-02", opts.Due)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid due date %q", opts.Due), err)
	}

	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	inv, err := a.svc.Create(cmd.Context(), invoice.CreateRequest{
		ClientName:     opts.Client,
		Description:    opts.Description,
		Amount:         amount,
		DueDate:        due,
		ClientDocument: opts.Document,
		ClientAddress:  opts.Address,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "create invoice", err)
	}

	return formatter(opts.RootOptions, cmd.OutOrStdout()).PrintInvoice(inv)
}
