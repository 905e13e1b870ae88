package ledger

import "github.com/Sumatoshi-tech/roadsplit/pkg/mathutil"

// TotalCost integrates the history's daily cost over the inclusive day range
// [start, end].
//
// The walk starts at the entry active on start and visits one segment per
// cost change, so the work depends on the number of entries, not on the width
// of the range. A nil or empty history and a range with start > end total 0.
// ErrOverflow from mathutil is returned if the total does not fit in int64,
// which cannot happen for ranges inside [0, MaxDay].
func TotalCost(h *History, start, end int64) (int64, error) {
	if h == nil || len(h.entries) == 0 || start > end {
		return 0, nil
	}

	var total int64

	cur := start

	for idx := h.activeIndex(start); cur <= end && idx < len(h.entries); idx++ {
		segEnd := end
		if idx+1 < len(h.entries) {
			segEnd = mathutil.Min(h.entries[idx+1].Day-1, end)
		}

		if cur <= segEnd {
			contribution, err := segmentCost(cur, segEnd, h.entries[idx].Cost)
			if err != nil {
				return 0, err
			}

			total, err = mathutil.AddInt64(total, contribution)
			if err != nil {
				return 0, err
			}
		}

		if segEnd >= end {
			break
		}

		cur = segEnd + 1
	}

	return total, nil
}

// segmentCost returns (to-from+1)*cost with overflow checking.
func segmentCost(from, to, cost int64) (int64, error) {
	span, err := mathutil.SubInt64(to, from)
	if err != nil {
		return 0, err
	}

	days, err := mathutil.AddInt64(span, 1)
	if err != nil {
		return 0, err
	}

	return mathutil.MulNonNegative(days, cost)
}
