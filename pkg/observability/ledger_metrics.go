package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricUpdatesTotal   = "roadsplit.ledger.updates.total"
	metricRejectedTotal  = "roadsplit.ledger.rejected.total"
	metricQueriesTotal   = "roadsplit.partition.queries.total"
	metricSearchDuration = "roadsplit.partition.search.duration.seconds"
	metricAssignments    = "roadsplit.partition.assignments"
	metricSections       = "roadsplit.ledger.sections"
	metricLastUpdateDay  = "roadsplit.ledger.last_update_day"
	metricHistoryEntries = "roadsplit.ledger.history.entries"
	metricCacheLookups   = "roadsplit.partition.cache.lookups.total"

	attrReason = "reason"
	attrResult = "result"
)

// assignmentBuckets covers the distinct-split counts of typical ties.
var assignmentBuckets = []float64{1, 2, 4, 8, 16, 64, 256, 1024}

// LedgerMetrics holds OTel instruments for ledger and partition activity.
type LedgerMetrics struct {
	updates        metric.Int64Counter
	rejected       metric.Int64Counter
	queries        metric.Int64Counter
	searchDuration metric.Float64Histogram
	assignments    metric.Int64Histogram
	sections       metric.Int64Gauge
	lastUpdateDay  metric.Int64Gauge
	historyEntries metric.Int64UpDownCounter
	cacheLookups   metric.Int64Counter
}

// NewLedgerMetrics creates ledger metric instruments from the given meter.
func NewLedgerMetrics(mt metric.Meter) (*LedgerMetrics, error) {
	b := newMetricBuilder(mt)

	lm := &LedgerMetrics{
		updates:        b.counter(metricUpdatesTotal, "Accepted cost updates", "{update}"),
		rejected:       b.counter(metricRejectedTotal, "Rejected cost updates by reason", "{update}"),
		queries:        b.counter(metricQueriesTotal, "Partition queries answered", "{query}"),
		searchDuration: b.histogram(metricSearchDuration, "Partition search duration in seconds", "s", durationBucketBoundaries...),
		assignments:    b.intHistogram(metricAssignments, "Distinct best assignments per query", "{assignment}", assignmentBuckets...),
		sections:       b.gauge(metricSections, "Number of road sections in the ledger", "{section}"),
		lastUpdateDay:  b.gauge(metricLastUpdateDay, "Day number of the latest accepted update", "{day}"),
		historyEntries: b.upDownCounter(metricHistoryEntries, "Cost history entries across all sections", "{entry}"),
		cacheLookups:   b.counter(metricCacheLookups, "Query cache lookups by result", "{lookup}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return lm, nil
}

// RecordLoad records the ledger shape after construction or replay.
// Safe to call on a nil receiver (no-op).
func (lm *LedgerMetrics) RecordLoad(ctx context.Context, sections, entries int, lastDay int64) {
	if lm == nil {
		return
	}

	lm.sections.Record(ctx, int64(sections))
	lm.lastUpdateDay.Record(ctx, lastDay)
	lm.historyEntries.Add(ctx, int64(entries))
}

// RecordUpdate records an accepted update.
// Safe to call on a nil receiver (no-op).
func (lm *LedgerMetrics) RecordUpdate(ctx context.Context, day int64) {
	if lm == nil {
		return
	}

	lm.updates.Add(ctx, 1)
	lm.historyEntries.Add(ctx, 1)
	lm.lastUpdateDay.Record(ctx, day)
}

// RecordRejected records an update rejected for reason.
// Safe to call on a nil receiver (no-op).
func (lm *LedgerMetrics) RecordRejected(ctx context.Context, reason string) {
	if lm == nil {
		return
	}

	lm.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordQuery records a completed partition search.
// Safe to call on a nil receiver (no-op).
func (lm *LedgerMetrics) RecordQuery(ctx context.Context, assignments int, duration time.Duration) {
	if lm == nil {
		return
	}

	lm.queries.Add(ctx, 1)
	lm.searchDuration.Record(ctx, duration.Seconds())
	lm.assignments.Record(ctx, int64(assignments))
}

// RecordCacheLookup records a query cache hit or miss.
// Safe to call on a nil receiver (no-op).
func (lm *LedgerMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if lm == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	lm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
