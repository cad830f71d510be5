package cli

import (
	"github.com/genc-murat/txstat/internal/workload"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := workload.DefaultGenerateOptions()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random workload that replays cleanly",
		Long: `Generate a random JSON-lines workload for replay.

Pools and their capacity come from the loaded configuration, so the output
replays without errors against the same --env or --config.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts.Pools = cfg.Memory.Pools
			opts.PoolCapacity = cfg.Memory.PoolMaxObjects
			if cfg.Memory.RegionLimit > 0 {
				opts.RegionBudget = max(cfg.Memory.RegionLimit-cfg.Memory.TxnHeaderSize, 1)
			}

			ops, err := workload.Generate(opts)
			if err != nil {
				return err
			}
			return workload.Encode(cmd.OutOrStdout(), ops)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().IntVar(&opts.Txns, "txns", opts.Txns, "number of script transactions")
	cmd.Flags().IntVar(&opts.Ops, "ops", opts.Ops, "number of operations")
	return cmd
}
