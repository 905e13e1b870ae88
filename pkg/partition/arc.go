package partition

import "fmt"

// Arc is an inclusive, circularly wrapping range of section indices. An arc
// with End < Start wraps past the last section back to section 0.
type Arc struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of sections the arc covers on a ring of n sections.
func (a Arc) Len(n int) int {
	if a.End >= a.Start {
		return a.End - a.Start + 1
	}

	return n - a.Start + a.End + 1
}

// Contains reports whether section i lies on the arc.
func (a Arc) Contains(i int) bool {
	if a.End >= a.Start {
		return i >= a.Start && i <= a.End
	}

	return i >= a.Start || i <= a.End
}

// String formats the arc as "start - end".
func (a Arc) String() string {
	return fmt.Sprintf("%d - %d", a.Start, a.End)
}

// Assignment is a split of the ring into two complementary arcs, one per
// maintenance contractor.
type Assignment struct {
	A Arc `json:"first"  yaml:"first"`
	B Arc `json:"second" yaml:"second"`
}

// String formats the assignment as "s1 - e1, s2 - e2".
func (a Assignment) String() string {
	return a.A.String() + ", " + a.B.String()
}

// Canonical returns the assignment with its arcs ordered shorter first, and on
// equal length by smaller start. Two assignments describe the same split iff
// their canonical forms are equal.
func Canonical(a Assignment, n int) Assignment {
	lenA, lenB := a.A.Len(n), a.B.Len(n)

	if lenA > lenB || (lenA == lenB && a.A.Start > a.B.Start) {
		return Assignment{A: a.B, B: a.A}
	}

	return a
}
