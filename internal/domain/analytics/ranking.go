package analytics

import (
	"cmp"
	"slices"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// TIE-BREAK CHAINS
// ══════════════════════════════════════════════════════════════════════════════

// Direction is the sort direction of a single key.
type Direction int

const (
	// Descending puts larger values first.
	Descending Direction = iota
	// Ascending puts smaller values first.
	Ascending
)

// String returns "desc" or "asc".
func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// SortKey is one level of a tie-break chain.
type SortKey struct {
	// Name identifies the key in logs and tests.
	Name string

	// Value extracts the comparable value. Flags map to 1 (true) and 0 (false).
	Value func(s student.Student) float64

	// Direction of the comparison.
	Direction Direction
}

// Compare compares a and b on this key alone, honouring Direction.
func (k SortKey) Compare(a, b student.Student) int {
	c := cmp.Compare(k.Value(a), k.Value(b))
	if k.Direction == Descending {
		return -c
	}
	return c
}

// Chain is an ordered list of keys evaluated left to right. A later key is
// consulted only when every earlier key compares equal.
type Chain []SortKey

// Compare returns the chain ordering of a and b.
func (c Chain) Compare(a, b student.Student) int {
	for _, k := range c {
		if r := k.Compare(a, b); r != 0 {
			return r
		}
	}
	return 0
}

// Names lists the key names in priority order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, k := range c {
		names[i] = k.Name
	}
	return names
}

// Common keys.
var (
	ByGPA = SortKey{Name: "gpa", Value: func(s student.Student) float64 { return s.GPA }}

	ByCreditHours = SortKey{Name: "credit_hours", Value: func(s student.Student) float64 {
		return float64(s.CreditHours)
	}}

	ByScholarship = SortKey{Name: "scholarship", Value: func(s student.Student) float64 {
		return flag(s.ScholarshipRecipient)
	}}

	ByInternational = SortKey{Name: "international", Value: func(s student.Student) float64 {
		return flag(s.IsInternational)
	}}
)

// ProfileScoreChain ranks by GPA, then credit hours, then scholarship, then
// international status, all descending.
var ProfileScoreChain = Chain{ByGPA, ByCreditHours, ByScholarship, ByInternational}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING & SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// Rank returns a sorted copy of students. The sort is stable: students equal
// on the whole chain keep their source order.
func Rank(students []student.Student, chain Chain) []student.Student {
	out := slices.Clone(students)
	if out == nil {
		out = []student.Student{}
	}
	slices.SortStableFunc(out, chain.Compare)
	return out
}

// Limit returns a copy of the first n students (all of them if n exceeds the length).
func Limit(students []student.Student, n int) []student.Student {
	if n < 0 {
		n = 0
	}
	if n > len(students) {
		n = len(students)
	}
	out := make([]student.Student, n)
	copy(out, students[:n])
	return out
}

// PercentileCount is ceil(total × percent / 100) computed in integers, so
// that e.g. 10% of 30 is exactly 3.
func PercentileCount(total, percent int) int {
	if total <= 0 || percent <= 0 {
		return 0
	}
	return (total*percent + 99) / 100
}

// TopPercent ranks students by chain and keeps the leading
// PercentileCount(len, percent) records. Ties at the cutoff are settled by
// source order. It returns shared.ErrInvalidFraction unless 0 < percent <= 100.
func TopPercent(students []student.Student, chain Chain, percent int) ([]student.Student, error) {
	if percent <= 0 || percent > 100 {
		return nil, shared.ErrInvalidFraction
	}
	ranked := Rank(students, chain)
	return Limit(ranked, PercentileCount(len(students), percent)), nil
}

// MaxBy returns the student with the largest key. The first one encountered
// wins a tie. ok is false for an empty population.
func MaxBy(students []student.Student, key func(student.Student) int) (best student.Student, ok bool) {
	for i, s := range students {
		if i == 0 || key(s) > key(best) {
			best = s
			ok = true
		}
	}
	return best, ok
}

// MinBy returns the student with the smallest key. The first one encountered
// wins a tie. ok is false for an empty population.
func MinBy(students []student.Student, key func(student.Student) int) (best student.Student, ok bool) {
	for i, s := range students {
		if i == 0 || key(s) < key(best) {
			best = s
			ok = true
		}
	}
	return best, ok
}

// Age is a key extractor for MaxBy/MinBy.
func Age(s student.Student) int {
	return s.Age
}
