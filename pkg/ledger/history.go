package ledger

import (
	"fmt"
	"math"
	"sort"
)

// Bounds for days and costs.
const (
	// MaxDay is the largest day number a ledger accepts.
	MaxDay = int64(1)<<32 - 1
	// MaxCost is the largest daily cost a ledger accepts.
	MaxCost = int64(math.MaxInt32)
)

// Entry is one cost change: from Day onward the section costs Cost per day.
type Entry struct {
	Day  int64 `json:"day"`
	Cost int64 `json:"cost"`
}

// History is the append-only cost history of a single section.
type History struct {
	entries []Entry
}

// NewHistory creates a history seeded with the initial cost at day 0.
func NewHistory(initialCost int64) (*History, error) {
	err := validateCost(initialCost)
	if err != nil {
		return nil, err
	}

	return &History{entries: []Entry{{Day: 0, Cost: initialCost}}}, nil
}

// Append records that the section costs cost per day from day onward.
//
// The day must be strictly after the last entry. The one exception is an
// update at day 0 on a history that still holds only its seed: the update is
// appended and shadows the seed, so the effective cost from day 0 is the update.
func (h *History) Append(day, cost int64) error {
	err := h.check(day, cost)
	if err != nil {
		return err
	}

	h.entries = append(h.entries, Entry{Day: day, Cost: cost})

	return nil
}

func (h *History) check(day, cost int64) error {
	err := validateDay(day)
	if err != nil {
		return err
	}

	err = validateCost(cost)
	if err != nil {
		return err
	}

	last := h.entries[len(h.entries)-1].Day

	shadowsSeed := len(h.entries) == 1 && day == 0
	if day <= last && !shadowsSeed {
		return fmt.Errorf("%w: day %d, last %d", ErrNonMonotonicDay, day, last)
	}

	return nil
}

// Len returns the number of entries, including the seed.
func (h *History) Len() int {
	return len(h.entries)
}

// LastDay returns the day of the most recent entry.
func (h *History) LastDay() int64 {
	return h.entries[len(h.entries)-1].Day
}

// Entries returns a copy of the entries in day order.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)

	return out
}

// CostAt returns the effective cost on the given day. Days before the first
// entry use the first entry's cost.
func (h *History) CostAt(day int64) int64 {
	if h == nil || len(h.entries) == 0 {
		return 0
	}

	return h.entries[h.activeIndex(day)].Cost
}

// activeIndex returns the index of the last entry whose day is <= day, or 0
// when day precedes every entry.
func (h *History) activeIndex(day int64) int {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Day > day
	})

	if idx == 0 {
		return 0
	}

	return idx - 1
}

func validateDay(day int64) error {
	if day < 0 || day > MaxDay {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}

	return nil
}

func validateCost(cost int64) error {
	if cost <= 0 || cost > MaxCost {
		return fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}

	return nil
}
