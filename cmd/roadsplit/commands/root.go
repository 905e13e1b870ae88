// Package commands implements CLI command handlers for roadsplit.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
	"github.com/Sumatoshi-tech/roadsplit/pkg/version"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the roadsplit command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "roadsplit",
		Short: "Balance road maintenance costs between two contractors",
		Long: `roadsplit keeps a ledger of daily maintenance costs for the sections of a
circular road and finds the most balanced split of the road into two
contiguous arcs over any range of days.

Commands:
  run       Process a command stream ({costs}, "= date idx: cost", "? from to")
  serve     Serve the ledger over an HTTP JSON API
  mcp       Serve the ledger as MCP tools on stdio
  snapshot  Save or inspect ledger snapshots`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default .roadsplit.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
		newSnapshotCommand(opts),
		versionCmd(),
	)

	return rootCmd
}

// load reads the configuration and applies global flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.verbose {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func stdoutIsTerminal() bool {
	return isTerminal(os.Stdout)
}
