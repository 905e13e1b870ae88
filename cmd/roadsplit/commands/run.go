package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/internal/script"
	"github.com/Sumatoshi-tech/roadsplit/internal/store"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	format  string
	journal string
	title   string
	noColor bool
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Process a command stream",
		Long: `Read a command stream from a file or stdin and answer its queries.

The stream starts with the initial daily cost of every section, followed by
updates and queries, one per line:

  {5, 1, 7}
  = 2024-03-01 0: 8          from 2024-03-01 section 0 costs 8 per day
  ? 2024-01-01 2024-06-30    most balanced split over the inclusive range

Processing stops at the first invalid line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			return opts.run(cmd, global, path)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: text, table, json, yaml, html (default from config)")
	cmd.Flags().StringVar(&opts.journal, "journal", "", "SQLite journal to record updates in")
	cmd.Flags().StringVar(&opts.title, "title", "", "HTML page title")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, global *globalOptions, path string) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}

	if o.format != "" {
		cfg.Output.Format = o.format
	}

	if o.journal != "" {
		cfg.Ledger.Journal = o.journal
	}

	rt, err := startRuntime(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.close()

	renderer, err := render.New(cfg.Output.Format, render.Options{
		Color: !o.noColor && cfg.Output.UseColor(stdoutIsTerminal()),
		Title: o.title,
	})
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer closeIn()

	var journal *store.Store

	defer func() {
		if journal != nil {
			closeErr := journal.Close()
			if closeErr != nil {
				rt.providers.Logger.Warn("journal close failed", "error", closeErr)
			}
		}
	}()

	open := func(ctx context.Context, costs []int64) (script.Backend, error) {
		l, st, openErr := openLedger(ctx, costs, cfg.Ledger.Journal)
		if openErr != nil {
			return nil, openErr
		}

		journal = st

		return rt.newService(l, st), nil
	}

	transcript := cfg.Output.Format == render.FormatText || cfg.Output.Format == render.FormatTable

	processor := script.NewProcessor(open, renderer, script.Options{
		MaxSections: cfg.Ledger.MaxSections,
		Transcript:  transcript,
		Logger:      rt.providers.Logger,
	})

	err = processor.Run(cmd.Context(), in, cmd.OutOrStdout())
	if errors.Is(err, script.ErrInvalidInput) && transcript {
		rt.providers.Logger.Debug("stream stopped", "error", err)

		return nil
	}

	return err
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}

	return f, func() { f.Close() }, nil
}
