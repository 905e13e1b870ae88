// Package ledger records the daily maintenance cost of a fixed set of road
// sections over time and integrates that cost over arbitrary day ranges.
//
// Each section owns an append-only [History] of cost changes. The first entry
// is the section's initial cost at day 0; later entries are appended in strictly
// increasing day order. The effective cost on day D is the cost of the last
// entry whose day is <= D, so a history describes a piecewise-constant step
// function of the day number.
//
// A [Ledger] groups n sections and enforces a single global clock: every update
// must carry a day strictly greater than any update previously applied to any
// section. Because of that, each history stays sorted by append order alone.
//
// # Numeric bounds
//
// Days are limited to [0, MaxDay] and costs to (0, MaxCost]. With MaxDay+1 = 2^32
// and MaxCost < 2^31, the total of one section over any valid range is below
// 2^63 and fits in int64. Sums across sections are the caller's concern; the
// partition package accumulates them in 128 bits.
//
// A Ledger is not safe for concurrent use. Callers that share one across
// goroutines must let readers run together and give writers exclusive access.
package ledger
