package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/roadsplit/internal/server"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

// ledgerFlags are shared by the commands that host a long-lived ledger.
type ledgerFlags struct {
	costs   string
	journal string
}

func (f *ledgerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.costs, "costs", "", "initial daily cost per section, e.g. 5,1,7")
	cmd.Flags().StringVar(&f.journal, "journal", "", "SQLite journal to load from and record updates in")
}

type serveOptions struct {
	ledgerFlags

	host string
	port int
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over an HTTP JSON API",
		Long: `Start an HTTP server exposing the ledger:

  POST /api/updates               record a cost update
  POST /api/queries               most balanced split over a day range
  GET  /api/sections/{idx}/total  one section's total over a day range
  GET  /api/ledger                ledger summary
  GET  /healthz, /readyz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), global)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default from config)")

	return cmd
}

func (o *serveOptions) run(ctx context.Context, global *globalOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}

	if o.host != "" {
		cfg.Server.Host = o.host
	}

	if o.port != 0 {
		cfg.Server.Port = o.port
	}

	if o.journal != "" {
		cfg.Ledger.Journal = o.journal
	}

	costs, err := parseCosts(o.costs)
	if err != nil {
		return err
	}

	rt, err := startRuntime(cfg, observability.ModeServe)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, st, err := openLedger(ctx, costs, cfg.Ledger.Journal)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Service: rt.newService(l, st),
		Logger:  rt.providers.Logger,
		Tracer:  rt.providers.Tracer,
		RED:     rt.red,
		Metrics: rt.providers.MetricsHandler,
	}

	if st != nil {
		defer st.Close()

		deps.Ready = append(deps.Ready, st.HealthCheck)
	}

	srv, err := server.New(deps)
	if err != nil {
		return err
	}

	return server.ListenAndServe(ctx, cfg.Server.Addr(), srv.Handler(), server.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
		Idle:  cfg.Server.IdleTimeout,
	}, rt.providers.Logger)
}
