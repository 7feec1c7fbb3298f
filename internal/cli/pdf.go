package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// PDFOptions holds flags for the pdf command.
type PDFOptions struct {
	*RootOptions
	Out string
}

// NewPDFCommand creates the pdf command.
func NewPDFCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PDFOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "pdf <id>",
		Short:         "Write an invoice's PDF artifact to a file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPDF(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output file (defaults to fatura_<number>.pdf)")

	return cmd
}

func runPDF(opts *PDFOptions, id string, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	inv, err := a.svc.Get(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("invoice %s", id), err)
	}

	data, err := a.svc.Artifact(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("artifact for invoice %s", id), err)
	}

	out := opts.Out
	if out == "" {
		out = fmt.Sprintf("fatura_%s.pdf", inv.Number)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("write %s", out), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}
