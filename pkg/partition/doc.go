// Package partition splits a ring of sections into two contiguous arcs whose
// total costs are as close to each other as possible.
//
// Every split is enumerated over a doubled prefix-sum array, so a circular arc
// is always an ordinary range [start, end] of the doubled array. All splits
// that reach the minimal imbalance are returned, with mirror images of the same
// split collapsed by [Canonical].
package partition
