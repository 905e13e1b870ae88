package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHistory builds a history from a seed cost and (day, cost) updates.
func newTestHistory(t *testing.T, seed int64, updates ...Entry) *History {
	t.Helper()

	h, err := NewHistory(seed)
	require.NoError(t, err)

	for _, u := range updates {
		require.NoError(t, h.Append(u.Day, u.Cost))
	}

	return h
}

func mustTotal(t *testing.T, h *History, start, end int64) int64 {
	t.Helper()

	total, err := TotalCost(h, start, end)
	require.NoError(t, err)

	return total
}

func TestTotalCost_SingleUpdate(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 5, Entry{Day: 10, Cost: 8})

	assert.Equal(t, int64(50), mustTotal(t, h, 0, 9))
	assert.Equal(t, int64(58), mustTotal(t, h, 0, 10))
	assert.Equal(t, int64(8), mustTotal(t, h, 10, 10))
	assert.Equal(t, int64(5), mustTotal(t, h, 9, 9))
	assert.Equal(t, int64(13), mustTotal(t, h, 9, 10))
}

func TestTotalCost_DegenerateInputs(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 5)

	assert.Zero(t, mustTotal(t, h, 3, 2))
	assert.Zero(t, mustTotal(t, nil, 0, 10))
	assert.Zero(t, mustTotal(t, &History{}, 0, 10))
}

func TestTotalCost_ManySegments(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 1,
		Entry{Day: 3, Cost: 2},
		Entry{Day: 5, Cost: 4},
		Entry{Day: 6, Cost: 7},
	)

	// Days 0..2 cost 1, 3..4 cost 2, 5 costs 4, 6.. cost 7.
	assert.Equal(t, int64(3+4+4+7*4), mustTotal(t, h, 0, 9))
	assert.Equal(t, int64(2+4+7), mustTotal(t, h, 4, 6))
	assert.Equal(t, int64(7*100), mustTotal(t, h, 100, 199))
}

func TestTotalCost_StartBeforeFirstEntryUsesFirstCost(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 5, Entry{Day: 10, Cost: 8})

	assert.Equal(t, int64(5*3), mustTotal(t, h, -3, -1))
	assert.Equal(t, int64(5*13+8), mustTotal(t, h, -3, 10))
}

func TestTotalCost_Idempotent(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 3, Entry{Day: 7, Cost: 11}, Entry{Day: 40, Cost: 2})

	first := mustTotal(t, h, 5, 50)
	second := mustTotal(t, h, 5, 50)

	assert.Equal(t, first, second)
}

func TestTotalCost_Additive(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 3,
		Entry{Day: 7, Cost: 11},
		Entry{Day: 40, Cost: 2},
		Entry{Day: 41, Cost: 9},
	)

	const start, end = int64(0), int64(60)

	whole := mustTotal(t, h, start, end)

	for mid := start; mid < end; mid++ {
		left := mustTotal(t, h, start, mid)
		right := mustTotal(t, h, mid+1, end)
		require.Equal(t, whole, left+right, "split at %d", mid)
	}
}

func TestTotalCost_StepSemantics(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, 6, Entry{Day: 20, Cost: 9})

	require.NoError(t, h.Append(35, 4))

	assert.Equal(t, int64(4), mustTotal(t, h, 35, 35))

	for d := int64(20); d < 35; d++ {
		assert.Equal(t, int64(9), mustTotal(t, h, d, d), "day %d", d)
	}
}

func TestTotalCost_WideRangeIsNotPerDay(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, MaxCost, Entry{Day: 1, Cost: MaxCost})

	total := mustTotal(t, h, 0, MaxDay)
	assert.Equal(t, (MaxDay+1)*MaxCost, total)
}

func TestTotalCost_Overflow(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t, MaxCost)

	_, err := TotalCost(h, 0, MaxDay*8)
	require.Error(t, err)
}
