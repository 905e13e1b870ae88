// Package service serves updates and partition queries against one shared
// ledger. Queries run in parallel; an update excludes every other operation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/roadsplit/pkg/cache"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
	"github.com/Sumatoshi-tech/roadsplit/pkg/partition"
)

// ErrInvalidRange indicates a query whose start day is after its end day.
var ErrInvalidRange = errors.New("start day is after end day")

// Journal durably records accepted updates.
type Journal interface {
	Append(ctx context.Context, section int, day, cost int64) error
}

// Update is one cost change request.
type Update struct {
	Section int   `json:"section"`
	Day     int64 `json:"day"`
	Cost    int64 `json:"cost"`
}

// QueryResult is the answer to a partition query over [Start, End].
type QueryResult struct {
	Start  int64            `json:"start"  yaml:"start"`
	End    int64            `json:"end"    yaml:"end"`
	Totals []int64          `json:"totals" yaml:"totals"`
	Total  mathutil.Int128  `json:"total"  yaml:"total"`
	Result partition.Result `json:"result" yaml:"result"`
}

// queryKey identifies a cached query by its day range.
type queryKey struct {
	start, end int64
}

// arcFields is the number of integers one assignment stores.
const arcFields = 4

// resultWeight counts the numbers a cached result holds.
func resultWeight(r QueryResult) int64 {
	return int64(len(r.Totals) + arcFields*len(r.Result.Assignments))
}

// Deps holds optional collaborators. Nil fields fall back to no-ops.
type Deps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.LedgerMetrics
	Journal Journal
	// CacheSize bounds the query result cache, counted in stored numbers
	// (one per section total, four per assignment). Zero disables it.
	CacheSize int64
}

// Service guards a ledger for concurrent use.
type Service struct {
	mu         sync.RWMutex
	ledger     *ledger.Ledger
	optimizers sync.Pool
	results    *cache.LRU[queryKey, QueryResult]
	generation uint64

	journal Journal
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.LedgerMetrics
}

// New wraps l. The service owns l from now on.
func New(l *ledger.Ledger, deps Deps) *Service {
	svc := &Service{
		ledger:  l,
		journal: deps.Journal,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		metrics: deps.Metrics,
	}

	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}

	if svc.tracer == nil {
		svc.tracer = nooptrace.NewTracerProvider().Tracer("roadsplit")
	}

	if deps.CacheSize > 0 {
		svc.results = cache.New[queryKey, QueryResult](deps.CacheSize, resultWeight)
	}

	sections := l.Sections()
	svc.optimizers.New = func() any { return partition.NewOptimizer(sections) }

	svc.metrics.RecordLoad(context.Background(), sections, l.Entries(), l.LastDay())

	return svc
}

// Sections returns the number of road sections.
func (s *Service) Sections() int {
	return s.ledger.Sections()
}

// LastDay returns the day of the latest accepted update, or -1.
func (s *Service) LastDay() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.LastDay()
}

// Update validates u, journals it, and applies it. A journal failure leaves
// the ledger unchanged.
func (s *Service) Update(ctx context.Context, u Update) error {
	ctx, span := s.tracer.Start(ctx, "roadsplit.update", trace.WithAttributes(
		attribute.Int("section", u.Section),
		attribute.Int64("day", u.Day),
		attribute.Int64("cost", u.Cost),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ledger.CheckAppend(u.Section, u.Day, u.Cost)
	if err != nil {
		return s.reject(ctx, span, rejectReason(err), err)
	}

	if s.journal != nil {
		err = s.journal.Append(ctx, u.Section, u.Day, u.Cost)
		if err != nil {
			return s.reject(ctx, span, "journal", fmt.Errorf("journal update: %w", err))
		}
	}

	err = s.ledger.Append(u.Section, u.Day, u.Cost)
	if err != nil {
		return s.reject(ctx, span, rejectReason(err), err)
	}

	s.generation++

	if s.results != nil {
		s.results.Clear()
	}

	s.metrics.RecordUpdate(ctx, u.Day)
	s.logger.DebugContext(ctx, "update applied", "section", u.Section, "day", u.Day, "cost", u.Cost)

	return nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, reason string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	s.metrics.RecordRejected(ctx, reason)
	s.logger.DebugContext(ctx, "update rejected", "reason", reason, "error", err)

	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNonMonotonicDay):
		return "non_monotonic_day"
	case errors.Is(err, ledger.ErrInvalidCost):
		return "invalid_cost"
	case errors.Is(err, ledger.ErrDayOutOfRange):
		return "day_out_of_range"
	case errors.Is(err, ledger.ErrSectionOutOfRange):
		return "section_out_of_range"
	default:
		return "other"
	}
}

// Query computes every section's total over [start, end] and the most
// balanced split of those totals. Results may be served from the query
// cache and must not be modified by the caller.
func (s *Service) Query(ctx context.Context, start, end int64) (QueryResult, error) {
	ctx, span := s.tracer.Start(ctx, "roadsplit.query", trace.WithAttributes(
		attribute.Int64("start", start),
		attribute.Int64("end", end),
	))
	defer span.End()

	if start > end {
		err := fmt.Errorf("%w: %d > %d", ErrInvalidRange, start, end)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid range")

		return QueryResult{}, err
	}

	key := queryKey{start: start, end: end}

	s.mu.RLock()

	if s.results != nil {
		cached, ok := s.results.Get(key)
		s.metrics.RecordCacheLookup(ctx, ok)

		if ok {
			s.mu.RUnlock()
			span.SetAttributes(attribute.Bool("cached", true))

			return cached, nil
		}
	}

	generation := s.generation
	totals, err := s.ledger.Totals(start, end)
	s.mu.RUnlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "totals")

		return QueryResult{}, err
	}

	began := time.Now()

	opt, ok := s.optimizers.Get().(*partition.Optimizer)
	if !ok {
		opt = partition.NewOptimizer(len(totals))
	}

	res, err := opt.Search(totals)
	s.optimizers.Put(opt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search")

		return QueryResult{}, err
	}

	elapsed := time.Since(began)
	s.metrics.RecordQuery(ctx, len(res.Assignments), elapsed)

	span.SetAttributes(
		attribute.String("difference", res.Diff.String()),
		attribute.Int("options", len(res.Assignments)),
	)
	s.logger.DebugContext(ctx, "query answered",
		"start", start, "end", end, "difference", res.Diff.String(),
		"options", len(res.Assignments), "elapsed", elapsed)

	var total mathutil.Int128
	for _, t := range totals {
		total = total.AddInt64(t)
	}

	out := QueryResult{Start: start, End: end, Totals: totals, Total: total, Result: res}

	s.remember(key, generation, out)

	return out, nil
}

// remember caches r unless an update landed after its totals were read.
func (s *Service) remember(key queryKey, generation uint64, r QueryResult) {
	if s.results == nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generation == generation {
		s.results.Put(key, r)
	}
}

// CacheStats reports query cache statistics. The zero value is returned
// when caching is disabled.
func (s *Service) CacheStats() cache.Stats {
	if s.results == nil {
		return cache.Stats{}
	}

	return s.results.Stats()
}

// SectionTotal returns one section's total cost over [start, end].
func (s *Service) SectionTotal(ctx context.Context, section int, start, end int64) (int64, error) {
	_, span := s.tracer.Start(ctx, "roadsplit.section_total", trace.WithAttributes(
		attribute.Int("section", section),
		attribute.Int64("start", start),
		attribute.Int64("end", end),
	))
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	total, err := s.ledger.TotalCost(section, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "total")

		return 0, err
	}

	return total, nil
}

// Snapshot returns a consistent copy of the ledger state.
func (s *Service) Snapshot() ledger.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Snapshot()
}
