package analytics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/alem-hub/student-insights/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCALAR STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// Percentage returns 100 × part / total, or 0 when total is zero.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(part) * 100.0 / float64(total)
}

// Mean is the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// Median sorts a copy of values ascending and returns the middle element for
// an odd count, or the mean of the two middle elements for an even count.
// An empty slice yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[(n-1)/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Correlation is the Pearson correlation coefficient of x and y. It returns 0
// when fewer than two pairs exist or either series has zero variance.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0.0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0.0
	}
	return r
}

// SumInts adds up values.
func SumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// Floats projects students onto a float field.
func Floats(students []student.Student, field func(student.Student) float64) []float64 {
	out := make([]float64, len(students))
	for i, s := range students {
		out[i] = field(s)
	}
	return out
}

// Ints projects students onto an int field.
func Ints(students []student.Student, field func(student.Student) int) []int {
	out := make([]int, len(students))
	for i, s := range students {
		out[i] = field(s)
	}
	return out
}

// GPA is a field extractor for Floats.
func GPA(s student.Student) float64 {
	return s.GPA
}

// CreditHours is a field extractor for Ints.
func CreditHours(s student.Student) int {
	return s.CreditHours
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPING
// ══════════════════════════════════════════════════════════════════════════════

// KeyFunc derives a grouping key. ok=false excludes the student from grouping.
type KeyFunc[K comparable] func(s student.Student) (key K, ok bool)

// Group is one bucket of a grouping. Members is never empty.
type Group[K comparable] struct {
	Key     K
	Members []student.Student
}

// GroupBy buckets students by key, keeping groups in first-seen order and
// members in source order. Key equality is exact (case-sensitive for strings).
func GroupBy[K comparable](students []student.Student, key KeyFunc[K]) []Group[K] {
	index := make(map[K]int)
	groups := make([]Group[K], 0)

	for _, s := range students {
		k, ok := key(s)
		if !ok {
			continue
		}
		i, exists := index[k]
		if !exists {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K]{Key: k})
		}
		groups[i].Members = append(groups[i].Members, s)
	}
	return groups
}

// CountGroups reduces groups to member counts.
func CountGroups[K comparable](groups []Group[K]) map[K]int {
	out := make(map[K]int, len(groups))
	for _, g := range groups {
		out[g.Key] = len(g.Members)
	}
	return out
}

// AverageGroups reduces groups to the mean of field.
func AverageGroups[K comparable](groups []Group[K], field func(student.Student) float64) map[K]float64 {
	out := make(map[K]float64, len(groups))
	for _, g := range groups {
		out[g.Key] = Mean(Floats(g.Members, field))
	}
	return out
}

// KeysWithMaxValue returns every key whose value equals the maximum, sorted
// ascending. Equality is exact float comparison; two averages that differ
// only by rounding noise are treated as different.
func KeysWithMaxValue[K cmp.Ordered](values map[K]float64) []K {
	keys := make([]K, 0)
	if len(values) == 0 {
		return keys
	}

	highest := math.Inf(-1)
	for _, v := range values {
		if v > highest {
			highest = v
		}
	}
	for k, v := range values {
		if v == highest {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
