package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve <workload.jsonl>",
		Short:        "Replay a workload, then serve its statistics as Prometheus metrics",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootOpts.serving = true
			a, err := replay(rootOpts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&rootOpts.MetricsAddr, "addr", "", "listen address, overrides metrics.addr")
	return cmd
}
