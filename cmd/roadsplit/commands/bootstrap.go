package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/internal/store"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
	"github.com/Sumatoshi-tech/roadsplit/pkg/safeconv"
	"github.com/Sumatoshi-tech/roadsplit/pkg/version"
)

var (
	// ErrNoLedger indicates neither initial costs nor a journal were given.
	ErrNoLedger = errors.New("no ledger: pass --costs or --journal")
	// ErrJournalMismatch indicates initial costs that differ from the journal's.
	ErrJournalMismatch = errors.New("initial costs differ from the journal")
	// ErrInvalidCosts indicates a malformed --costs list.
	ErrInvalidCosts = errors.New("invalid cost list")
)

// runtime bundles the telemetry providers and instruments of one process.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	ledger    *observability.LedgerMetrics
	red       *observability.REDMetrics
}

func startRuntime(cfg *config.Config, mode observability.AppMode) (*runtime, error) {
	providers, err := observability.Init(cfg.Observability(mode, version.Version))
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	lm, err := observability.NewLedgerMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &runtime{cfg: cfg, providers: providers, ledger: lm, red: red}, nil
}

func (rt *runtime) close() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (rt *runtime) newService(l *ledger.Ledger, st *store.Store) *service.Service {
	deps := service.Deps{
		Logger:    rt.providers.Logger,
		Tracer:    rt.providers.Tracer,
		Metrics:   rt.ledger,
		CacheSize: rt.cfg.Ledger.QueryCache,
	}

	// A nil *store.Store must stay a nil interface.
	if st != nil {
		deps.Journal = st
	}

	return service.New(l, deps)
}

// openLedger builds the ledger from initial costs, a journal, or both. With
// both, a fresh journal is initialized with the costs and an existing one
// must have been started with the same costs.
func openLedger(ctx context.Context, costs []int64, journalPath string) (*ledger.Ledger, *store.Store, error) {
	if journalPath == "" {
		if costs == nil {
			return nil, nil, ErrNoLedger
		}

		l, err := ledger.New(costs)
		if err != nil {
			return nil, nil, err
		}

		return l, nil, nil
	}

	st, err := store.Open(ctx, journalPath)
	if err != nil {
		return nil, nil, err
	}

	l, err := loadJournal(ctx, st, costs)
	if err != nil {
		return nil, nil, errors.Join(err, st.Close())
	}

	return l, st, nil
}

func loadJournal(ctx context.Context, st *store.Store, costs []int64) (*ledger.Ledger, error) {
	initialized, err := st.Initialized(ctx)
	if err != nil {
		return nil, err
	}

	if !initialized {
		if costs == nil {
			return nil, fmt.Errorf("%w: journal %s is empty", ErrNoLedger, st.Path())
		}

		err = st.Init(ctx, costs)
		if err != nil {
			return nil, err
		}
	}

	l, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	if costs != nil && !slices.Equal(initialCosts(l), costs) {
		return nil, fmt.Errorf("%w: %s", ErrJournalMismatch, st.Path())
	}

	return l, nil
}

func initialCosts(l *ledger.Ledger) []int64 {
	costs := make([]int64, l.Sections())

	for i := range costs {
		h, err := l.History(i)
		if err != nil {
			continue
		}

		costs[i] = h.Entries()[0].Cost
	}

	return costs
}

// parseCosts parses a comma-separated cost list such as "5,1,7".
func parseCosts(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	fields := strings.Split(raw, ",")
	costs := make([]int64, 0, len(fields))

	for _, field := range fields {
		cost, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCosts, field)
		}

		costs = append(costs, cost)
	}

	return costs, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(safeconv.MustUintptrToInt(f.Fd()))
}
