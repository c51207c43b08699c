// Package analytics contains the staged building blocks of roster queries:
// predicates and filtering, ranking chains and percentile selection,
// grouping reducers and composite keys.
//
// Every stage takes a slice of students and returns a freshly allocated
// result. Input slices are never modified, so stages can be composed
// (filter → sort → limit, filter → group → reduce) and tested one by one.
package analytics

import (
	"strings"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREDICATES
// ══════════════════════════════════════════════════════════════════════════════

// Predicate is a pure boolean test over a student.
type Predicate func(s student.Student) bool

// All is the conjunction of preds. An empty conjunction matches everything.
func All(preds ...Predicate) Predicate {
	return func(s student.Student) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(s student.Student) bool {
		return !p(s)
	}
}

// Filter returns the students satisfying every predicate, in source order.
// The result is always a new slice, never nil.
func Filter(students []student.Student, preds ...Predicate) []student.Student {
	match := All(preds...)
	out := make([]student.Student, 0, len(students))
	for _, s := range students {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

// CountWhere counts the students satisfying every predicate.
func CountWhere(students []student.Student, preds ...Predicate) int {
	match := All(preds...)
	n := 0
	for _, s := range students {
		if match(s) {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Numeric predicates
// ─────────────────────────────────────────────────────────────────────────────

// GPAAbove matches GPA strictly greater than min.
func GPAAbove(min float64) Predicate {
	return func(s student.Student) bool { return s.GPA > min }
}

// GPAAtLeast matches GPA greater than or equal to min.
func GPAAtLeast(min float64) Predicate {
	return func(s student.Student) bool { return s.GPA >= min }
}

// GPABetween matches GPA in [lo, hi].
func GPABetween(lo, hi float64) Predicate {
	return func(s student.Student) bool { return s.GPA >= lo && s.GPA <= hi }
}

// AgeBelow matches age strictly less than max.
func AgeBelow(max int) Predicate {
	return func(s student.Student) bool { return s.Age < max }
}

// KnownAge matches students with a positive age.
func KnownAge() Predicate {
	return func(s student.Student) bool { return s.HasKnownAge() }
}

// GraduationYearIs matches an exact graduation year.
func GraduationYearIs(year int) Predicate {
	return func(s student.Student) bool { return s.GraduationYear == year }
}

// GraduationYearBetween matches graduation years in [from, to].
func GraduationYearBetween(from, to int) Predicate {
	return func(s student.Student) bool {
		return s.GraduationYear >= from && s.GraduationYear <= to
	}
}

// CreditHoursEqual matches an exact credit-hour count.
func CreditHoursEqual(n int) Predicate {
	return func(s student.Student) bool { return s.CreditHours == n }
}

// CreditHoursAtLeast matches credit hours greater than or equal to min.
func CreditHoursAtLeast(min int) Predicate {
	return func(s student.Student) bool { return s.CreditHours >= min }
}

// ─────────────────────────────────────────────────────────────────────────────
// Flag predicates
// ─────────────────────────────────────────────────────────────────────────────

// International matches international students.
func International() Predicate {
	return func(s student.Student) bool { return s.IsInternational }
}

// ScholarshipRecipient matches scholarship holders.
func ScholarshipRecipient() Predicate {
	return func(s student.Student) bool { return s.ScholarshipRecipient }
}

// ─────────────────────────────────────────────────────────────────────────────
// Text predicates
// ─────────────────────────────────────────────────────────────────────────────

// STEMMajors is the fixed set of majors counted as STEM, lowercased.
var STEMMajors = map[string]struct{}{
	"computer science":       {},
	"software engineering":   {},
	"information technology": {},
	"cybersecurity":          {},
	"mathematics":            {},
	"engineering":            {},
	"data science":           {},
	"statistics":             {},
	"physics":                {},
	"chemistry":              {},
	"biology":                {},
}

// IsSTEMMajor reports whether major belongs to STEMMajors, ignoring ASCII case.
func IsSTEMMajor(major string) bool {
	_, ok := STEMMajors[strings.ToLower(major)]
	return ok
}

// MajorIs matches a present major equal to name, ignoring case.
func MajorIs(name string) Predicate {
	return func(s student.Student) bool { return s.Major.EqualFold(name) }
}

// UniversityIs matches a present university equal to name, ignoring case.
func UniversityIs(name string) Predicate {
	return func(s student.Student) bool { return s.University.EqualFold(name) }
}

// STEMMajor matches a present major from the STEM set.
func STEMMajor() Predicate {
	return func(s student.Student) bool {
		major, ok := s.Major.Value()
		return ok && IsSTEMMajor(major)
	}
}

// PhonePrefix matches a present phone number starting with the literal prefix.
// Separators and formatting are not normalized.
func PhonePrefix(prefix string) Predicate {
	return func(s student.Student) bool { return s.PhoneNumber.HasPrefix(prefix) }
}

// HasBirthDate matches a present date of birth that parses as an ISO date.
func HasBirthDate() Predicate {
	return func(s student.Student) bool {
		_, ok := birthMonth(s)
		return ok
	}
}

func birthMonth(s student.Student) (int, bool) {
	dob, ok := s.DateOfBirth.Value()
	if !ok {
		return 0, false
	}
	m, ok := timeutil.BirthMonth(dob)
	return int(m), ok
}

// BornInMonth matches a parseable date of birth in the given month.
// Blank or malformed dates never match. It returns shared.ErrInvalidMonth
// when month is outside 1-12.
func BornInMonth(month int) (Predicate, error) {
	if !timeutil.ValidMonth(month) {
		return nil, shared.ErrInvalidMonth
	}
	return func(s student.Student) bool {
		m, ok := birthMonth(s)
		return ok && m == month
	}, nil
}
