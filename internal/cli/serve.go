package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faturarapida/faturarapida/internal/sweeper"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewServeCommand creates the serve command, which keeps the periodic
// overdue sweeper running until interrupted.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic overdue sweeper until interrupted",
		Long: `Run the periodic overdue sweeper. Sweeps once at startup, then on
every interval tick. A failing sweep is logged and retried at the next
tick; SIGINT or SIGTERM stops the loop cleanly.

Example:
  faturarapida serve --db ./faturarapida.db --root ./invoices`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "sweep interval (defaults to config sweep_interval)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	interval := opts.Interval
	if interval <= 0 {
		interval = a.cfg.SweepInterval.Std()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper.New(a.svc, interval).Run(ctx)
	return nil
}
