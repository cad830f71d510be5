package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/genc-murat/txstat/internal/app"
	"github.com/genc-murat/txstat/pkg/utils/pattern"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out    string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "replay <workload.jsonl>",
		Short: "Replay a workload and print the accounting report",
		Long: `Replay a JSON-lines workload against the accounting subsystem.

Each line is one operation, for example:
  {"op":"charge","txn":"a","category":"story","delta":100}
  {"op":"truncate","txn":"a"}

The report is printed in INFO format. With --out it is written to a file
instead, under an exclusive lock so concurrent replays do not interleave.
--field limits the report to fields matching a glob, e.g. --field 'story_*'.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pattern.Validate(fields); err != nil {
				return errors.Wrap(err, "invalid --field pattern")
			}
			a, err := replay(rootOpts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			if out == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), a.Report(fields...))
				return err
			}
			return writeLocked(out, a.Report(fields...))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file")
	cmd.Flags().StringSliceVarP(&fields, "field", "f", nil, "only report fields matching this glob (repeatable)")
	return cmd
}

func replay(rootOpts *RootOptions, path string) (*app.App, error) {
	cfg, logger, err := rootOpts.load()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		a.Close()
		return nil, err
	}
	defer f.Close()

	if err := a.Replay(f); err != nil {
		a.Close()
		return nil, fmt.Errorf("replay %s: %w", path, err)
	}
	return a, nil
}

func writeLocked(path, report string) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "lock report")
	}
	if !locked {
		return errors.Errorf("report %s is locked by another process", path)
	}
	defer lock.Unlock()

	return os.WriteFile(path, []byte(report), 0o644)
}
