package ledger

import "fmt"

// Snapshot is the serializable state of a ledger.
type Snapshot struct {
	Sections [][]Entry `json:"sections" yaml:"sections"`
	LastDay  int64     `json:"last_day" yaml:"last_day"`
}

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() Snapshot {
	sections := make([][]Entry, len(l.sections))
	for i, h := range l.sections {
		sections[i] = h.Entries()
	}

	return Snapshot{Sections: sections, LastDay: l.lastDay}
}

// Restore rebuilds a ledger from a snapshot, re-checking every invariant:
// each history starts at day 0 and is ordered, update days are unique across
// sections, and LastDay equals the latest update day.
func Restore(snap Snapshot) (*Ledger, error) {
	if len(snap.Sections) < 2 {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, ErrTooFewSections)
	}

	l := &Ledger{sections: make([]*History, len(snap.Sections)), lastDay: noUpdate}
	seen := make(map[int64]int)

	for i, entries := range snap.Sections {
		if len(entries) == 0 || entries[0].Day != 0 {
			return nil, fmt.Errorf("%w: section %d has no day-0 seed", ErrCorruptSnapshot, i)
		}

		h, err := NewHistory(entries[0].Cost)
		if err != nil {
			return nil, fmt.Errorf("%w: section %d: %w", ErrCorruptSnapshot, i, err)
		}

		for _, e := range entries[1:] {
			if other, dup := seen[e.Day]; dup {
				return nil, fmt.Errorf("%w: day %d updated in sections %d and %d", ErrCorruptSnapshot, e.Day, other, i)
			}

			seen[e.Day] = i

			err = h.Append(e.Day, e.Cost)
			if err != nil {
				return nil, fmt.Errorf("%w: section %d: %w", ErrCorruptSnapshot, i, err)
			}

			l.lastDay = max(l.lastDay, e.Day)
		}

		l.sections[i] = h
	}

	if l.lastDay != snap.LastDay {
		return nil, fmt.Errorf("%w: last day %d, updates end at %d", ErrCorruptSnapshot, snap.LastDay, l.lastDay)
	}

	return l, nil
}
