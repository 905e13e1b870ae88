package partition

import (
	"fmt"

	"github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"
)

// Result is the outcome of a search: the minimal imbalance and every distinct
// assignment that reaches it, in discovery order.
type Result struct {
	Diff        mathutil.Int128 `json:"difference"  yaml:"difference"`
	Assignments []Assignment    `json:"assignments" yaml:"assignments"`
}

// Optimizer searches balanced splits for a fixed section count. It owns the
// prefix-sum buffer and the de-duplication index, so repeated searches do not
// allocate them again. An Optimizer is not safe for concurrent use.
type Optimizer struct {
	n      int
	prefix []mathutil.Int128
	seen   map[Assignment]struct{}
}

// NewOptimizer creates an optimizer for a ring of n sections.
func NewOptimizer(n int) *Optimizer {
	opt := &Optimizer{n: n, seen: make(map[Assignment]struct{})}
	if n > 0 {
		opt.prefix = make([]mathutil.Int128, 2*n+1)
	}

	return opt
}

// Sections returns the section count the optimizer was built for.
func (o *Optimizer) Sections() int {
	return o.n
}

// Search finds every split of the ring into two non-empty contiguous arcs whose
// cost difference is minimal.
//
// Splits are visited by start ascending, then by end ascending. A strictly
// smaller difference discards everything found so far; an equal difference
// appends the split unless its canonical form is already present. Rings of
// fewer than two sections yield a zero difference and no assignments.
func (o *Optimizer) Search(costs []int64) (Result, error) {
	if len(costs) != o.n {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(costs), o.n)
	}

	if o.n < 2 {
		return Result{}, nil
	}

	n := o.n
	prefix := o.prefix

	for i := range 2 * n {
		prefix[i+1] = prefix[i].AddInt64(costs[i%n])
	}

	total := prefix[n]

	var (
		best  mathutil.Int128
		found bool
		out   []Assignment
	)

	clear(o.seen)

	for start := range n {
		for end := start; end < start+n-1; end++ {
			sumA := prefix[end+1].Sub(prefix[start])
			diff := sumA.Sub(total.Sub(sumA)).Abs()

			cmp := diff.Cmp(best)
			if found && cmp > 0 {
				continue
			}

			if !found || cmp < 0 {
				best = diff
				found = true
				out = out[:0]

				clear(o.seen)
			}

			candidate := Assignment{
				A: Arc{Start: start % n, End: end % n},
				B: Arc{Start: (end + 1) % n, End: (start - 1 + n) % n},
			}

			key := Canonical(candidate, n)
			if _, dup := o.seen[key]; dup {
				continue
			}

			o.seen[key] = struct{}{}
			out = append(out, candidate)
		}
	}

	return Result{Diff: best, Assignments: out}, nil
}

// Search runs a one-shot search with a fresh optimizer sized to costs.
func Search(costs []int64) Result {
	res, _ := NewOptimizer(len(costs)).Search(costs) //nolint:errcheck // sizes match.

	return res
}
