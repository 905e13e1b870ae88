package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
	"github.com/Sumatoshi-tech/roadsplit/internal/mcp"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

type mcpOptions struct {
	ledgerFlags
}

func newMCPCommand(global *globalOptions) *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - roadsplit_update: record a cost update for one section
  - roadsplit_query: most balanced split over a day range
  - roadsplit_section_total: one section's total over a day range`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), global)
		},
	}

	opts.register(cmd)

	return cmd
}

func (o *mcpOptions) run(ctx context.Context, global *globalOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}

	if o.journal != "" {
		cfg.Ledger.Journal = o.journal
	}

	// Stdout carries the protocol; logs go to stderr as JSON.
	cfg.Logging.Format = config.LogFormatJSON

	costs, err := parseCosts(o.costs)
	if err != nil {
		return err
	}

	rt, err := startRuntime(cfg, observability.ModeMCP)
	if err != nil {
		return err
	}
	defer rt.close()

	l, st, err := openLedger(ctx, costs, cfg.Ledger.Journal)
	if err != nil {
		return err
	}

	if st != nil {
		defer st.Close()
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Service: rt.newService(l, st),
		Logger:  rt.providers.Logger,
		Metrics: rt.red,
		Tracer:  rt.providers.Tracer,
	})

	return srv.Run(ctx)
}
