package ledger

import "errors"

// Sentinel errors.
var (
	// ErrNonMonotonicDay indicates an update whose day is not strictly after the last update.
	ErrNonMonotonicDay = errors.New("update day must be strictly after the previous update")
	// ErrInvalidCost indicates a cost outside (0, MaxCost].
	ErrInvalidCost = errors.New("cost must be positive and at most MaxCost")
	// ErrDayOutOfRange indicates a day outside [0, MaxDay].
	ErrDayOutOfRange = errors.New("day out of range")
	// ErrSectionOutOfRange indicates a section index outside [0, n).
	ErrSectionOutOfRange = errors.New("section index out of range")
	// ErrTooFewSections indicates fewer than two sections at construction.
	ErrTooFewSections = errors.New("a ledger needs at least two sections")
	// ErrCorruptSnapshot indicates a snapshot that violates ledger invariants.
	ErrCorruptSnapshot = errors.New("corrupt ledger snapshot")
)
