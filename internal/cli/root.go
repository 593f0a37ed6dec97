// Package cli implements the planner command line: serve, migrate and seed.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/room-planner/internal/config"
)

// Version is overwritten at build time.
var Version = "dev"

type rootOptions struct {
	envFile string
}

// Execute runs the planner CLI with args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand(os.Stdout)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree writing command output to stdout.
func NewRootCommand(stdout io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "planner",
		Short:   "Meeting room reservation service",
		Version: Version,
		Long: `planner books recurring time slots of meeting rooms for calendar days.

Configuration comes from PLANNER_* environment variables, optionally
loaded from the file named by --env-file.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadEnvFile(opts.envFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "file with KEY=VALUE pairs loaded before reading the environment")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
	)
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}
