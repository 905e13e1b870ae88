package ledger

import "fmt"

// noUpdate is the clock value before the first update.
const noUpdate = int64(-1)

// Ledger holds the cost histories of n circularly ordered sections and the
// global update clock.
type Ledger struct {
	sections []*History
	lastDay  int64
}

// New creates a ledger whose section i starts at initialCosts[i] on day 0.
func New(initialCosts []int64) (*Ledger, error) {
	if len(initialCosts) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSections, len(initialCosts))
	}

	sections := make([]*History, len(initialCosts))

	for i, cost := range initialCosts {
		h, err := NewHistory(cost)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}

		sections[i] = h
	}

	return &Ledger{sections: sections, lastDay: noUpdate}, nil
}

// Sections returns the number of sections.
func (l *Ledger) Sections() int {
	return len(l.sections)
}

// LastDay returns the day of the most recent update, or -1 if none was applied.
func (l *Ledger) LastDay() int64 {
	return l.lastDay
}

// History returns the history of one section. The returned history must not
// be modified; use Append on the ledger instead.
func (l *Ledger) History(section int) (*History, error) {
	err := l.checkSection(section)
	if err != nil {
		return nil, err
	}

	return l.sections[section], nil
}

// Append sets the cost of one section from day onward. The day must be
// strictly after every day previously appended to any section.
func (l *Ledger) Append(section int, day, cost int64) error {
	err := l.CheckAppend(section, day, cost)
	if err != nil {
		return err
	}

	l.sections[section].entries = append(l.sections[section].entries, Entry{Day: day, Cost: cost})
	l.lastDay = day

	return nil
}

// CheckAppend reports the error Append would return, without changing the
// ledger.
func (l *Ledger) CheckAppend(section int, day, cost int64) error {
	err := l.checkSection(section)
	if err != nil {
		return err
	}

	if day <= l.lastDay {
		return fmt.Errorf("%w: day %d, last update %d", ErrNonMonotonicDay, day, l.lastDay)
	}

	err = l.sections[section].check(day, cost)
	if err != nil {
		return fmt.Errorf("section %d: %w", section, err)
	}

	return nil
}

// Entries returns the total number of history entries across all sections,
// seeds included.
func (l *Ledger) Entries() int {
	total := 0
	for _, h := range l.sections {
		total += h.Len()
	}

	return total
}

// TotalCost returns the total cost of one section over [start, end].
// A range with start > end totals 0.
func (l *Ledger) TotalCost(section int, start, end int64) (int64, error) {
	err := l.checkSection(section)
	if err != nil {
		return 0, err
	}

	err = checkRange(start, end)
	if err != nil {
		return 0, err
	}

	return TotalCost(l.sections[section], start, end)
}

// Totals returns the total cost of every section over [start, end], indexed
// by section.
func (l *Ledger) Totals(start, end int64) ([]int64, error) {
	err := checkRange(start, end)
	if err != nil {
		return nil, err
	}

	totals := make([]int64, len(l.sections))

	for i, h := range l.sections {
		total, totalErr := TotalCost(h, start, end)
		if totalErr != nil {
			return nil, fmt.Errorf("section %d: %w", i, totalErr)
		}

		totals[i] = total
	}

	return totals, nil
}

func (l *Ledger) checkSection(section int) error {
	if section < 0 || section >= len(l.sections) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSectionOutOfRange, section, len(l.sections))
	}

	return nil
}

// checkRange validates query bounds. start > end is allowed and means an
// empty window.
func checkRange(start, end int64) error {
	err := validateDay(start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	err = validateDay(end)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}

	return nil
}
