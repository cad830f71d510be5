package cli

import (
	"github.com/genc-murat/txstat/internal/config"
	"github.com/genc-murat/txstat/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Env        string
	ConfigFile string
	LogLevel   string

	// MetricsAddr is set by serve.
	MetricsAddr string
	serving     bool
}

// NewRootCommand creates the root command for the txstat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "txstat",
		Short: "Per-transaction memory accounting",
		Long:  "Replays transaction workloads against the memory accounting subsystem and reports per-category statistics.",
	}

	cmd.PersistentFlags().StringVar(&opts.Env, "env", "", "load config/<env>.yaml from the project root")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCategoriesCommand())

	return cmd
}

// load resolves the configuration: --config wins over --env, defaults otherwise.
func (o *RootOptions) load() (*config.Config, *zap.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.ConfigFile != "":
		cfg, err = config.Load(o.ConfigFile)
	case o.Env != "":
		cfg, err = config.LoadConfig(o.Env)
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, nil, err
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.serving {
		cfg.Metrics.Enabled = true
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Addr = o.MetricsAddr
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
