package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
	"github.com/Sumatoshi-tech/roadsplit/pkg/calendar"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/persist"
)

const snapshotBasename = "ledger"

// ErrNoSnapshotDir indicates no snapshot directory was configured.
var ErrNoSnapshotDir = errors.New("no snapshot directory: pass --dir or set ledger.snapshot_dir")

type snapshotOptions struct {
	dir   string
	codec string
}

func (o *snapshotOptions) persister(cfg *config.Config) (*persist.Persister[ledger.Snapshot], string, error) {
	dir := o.dir
	if dir == "" {
		dir = cfg.Ledger.SnapshotDir
	}

	if dir == "" {
		return nil, "", ErrNoSnapshotDir
	}

	name := o.codec
	if name == "" {
		name = cfg.Ledger.SnapshotCodec
	}

	codec, err := persist.CodecByName(name)
	if err != nil {
		return nil, "", err
	}

	return persist.NewPersister[ledger.Snapshot](snapshotBasename, codec), dir, nil
}

func newSnapshotCommand(global *globalOptions) *cobra.Command {
	opts := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or inspect ledger snapshots",
	}

	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "snapshot directory (default ledger.snapshot_dir)")
	cmd.PersistentFlags().StringVar(&opts.codec, "codec", "", "snapshot codec: gob, json, lz4 (default ledger.snapshot_codec)")

	cmd.AddCommand(newSnapshotSaveCommand(global, opts), newSnapshotShowCommand(global, opts))

	return cmd
}

func newSnapshotSaveCommand(global *globalOptions, opts *snapshotOptions) *cobra.Command {
	var journal string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write a snapshot of a journal's ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}

			if journal == "" {
				journal = cfg.Ledger.Journal
			}

			if journal == "" {
				return ErrNoLedger
			}

			p, dir, err := opts.persister(cfg)
			if err != nil {
				return err
			}

			l, st, err := openLedger(cmd.Context(), nil, journal)
			if err != nil {
				return err
			}
			defer st.Close()

			snap := l.Snapshot()

			err = p.Save(dir, &snap)
			if err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), p.Path(dir))

			return nil
		},
	}

	cmd.Flags().StringVar(&journal, "journal", "", "SQLite journal to snapshot (default ledger.journal)")

	return cmd
}

func newSnapshotShowCommand(global *globalOptions, opts *snapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Validate a snapshot and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}

			p, dir, err := opts.persister(cfg)
			if err != nil {
				return err
			}

			snap, err := p.Load(dir)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			l, err := ledger.Restore(*snap)
			if err != nil {
				return err
			}

			return writeLedgerSummary(cmd.OutOrStdout(), l)
		},
	}
}

func writeLedgerSummary(w io.Writer, l *ledger.Ledger) error {
	last := "none"

	if l.LastDay() >= 0 {
		date, err := calendar.FromDayNumber(l.LastDay())
		if err == nil {
			last = fmt.Sprintf("%s (day %d)", date, l.LastDay())
		}
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Section", "Updates", "Initial cost", "Current cost"})

	for i := range l.Sections() {
		h, err := l.History(i)
		if err != nil {
			return err
		}

		entries := h.Entries()
		tbl.AppendRow(table.Row{i, len(entries) - 1, entries[0].Cost, entries[len(entries)-1].Cost})
	}

	_, err := fmt.Fprintf(w, "Sections: %d\nLast update: %s\n%s\n", l.Sections(), last, tbl.Render())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
