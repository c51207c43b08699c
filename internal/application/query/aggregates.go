package query

import (
	"github.com/alem-hub/student-insights/internal/domain/analytics"
	"github.com/alem-hub/student-insights/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION & GROUPING
// Every map result is freshly built; groups with no members never appear.
// ══════════════════════════════════════════════════════════════════════════════

var (
	byMajor      = analytics.MajorOrUnknown.KeyFunc()
	byUniversity = analytics.NewKeyBuilder(analytics.TextPart(analytics.University)).KeyFunc()
	byGender     = analytics.NewKeyBuilder(analytics.TextPart(analytics.Gender)).KeyFunc()
	byProfile    = analytics.ProfileKey.KeyFunc()
)

// CountPerMajor counts students per major; null or blank majors count as "Unknown".
// The values always sum to StudentCount.
func (e *Engine) CountPerMajor() map[string]int {
	return analytics.CountGroups(analytics.GroupBy(e.students, byMajor))
}

// AverageGPAByMajor averages GPA per major, with "Unknown" for missing majors.
func (e *Engine) AverageGPAByMajor() map[string]float64 {
	return analytics.AverageGroups(analytics.GroupBy(e.students, byMajor), analytics.GPA)
}

// InternationalPercentage is the share of international students in 0-100,
// or 0 for an empty roster.
func (e *Engine) InternationalPercentage() float64 {
	return analytics.Percentage(analytics.CountWhere(e.students, analytics.International()), len(e.students))
}

// TotalCreditHours sums credit hours over the roster.
func (e *Engine) TotalCreditHours() int {
	return analytics.SumInts(analytics.Ints(e.students, analytics.CreditHours))
}

// MedianGPA is the median GPA, or 0 for an empty roster.
func (e *Engine) MedianGPA() float64 {
	return analytics.Median(analytics.Floats(e.students, analytics.GPA))
}

// MeanGPA is the arithmetic mean GPA, or 0 for an empty roster.
func (e *Engine) MeanGPA() float64 {
	return analytics.Mean(analytics.Floats(e.students, analytics.GPA))
}

// ScholarshipPercentage is the share of scholarship recipients in 0-100,
// or 0 for an empty roster.
func (e *Engine) ScholarshipPercentage() float64 {
	return analytics.Percentage(analytics.CountWhere(e.students, analytics.ScholarshipRecipient()), len(e.students))
}

// GenderRatioForMajor counts students of the named major (case-insensitive)
// by gender as entered. Students with no gender are left out.
func (e *Engine) GenderRatioForMajor(major string) map[string]int {
	inMajor := analytics.Filter(e.students, analytics.MajorIs(major))
	return analytics.CountGroups(analytics.GroupBy(inMajor, byGender))
}

// UniversitiesWithHighestAverageGPA returns every university whose average
// GPA equals the highest one exactly, sorted by name. Students without a
// university are left out.
func (e *Engine) UniversitiesWithHighestAverageGPA() []string {
	averages := analytics.AverageGroups(analytics.GroupBy(e.students, byUniversity), analytics.GPA)
	return analytics.KeysWithMaxValue(averages)
}

// AverageGPAByAge averages GPA per age, leaving out non-positive ages.
func (e *Engine) AverageGPAByAge() map[int]float64 {
	return analytics.AverageGroups(analytics.GroupBy(e.students, analytics.AgeKey), analytics.GPA)
}

// CountByMultiDimensionalKey counts students per
// "major | university | graduation year | International/Local" key.
// Students without a major or university are left out, so the counts sum to
// the number of students having both.
func (e *Engine) CountByMultiDimensionalKey() map[string]int {
	return analytics.CountGroups(analytics.GroupBy(e.students, byProfile))
}

// AgeGPACorrelation is the Pearson correlation between age and GPA over
// students with a known age. It is 0 with fewer than two such students or
// when either series is constant.
func (e *Engine) AgeGPACorrelation() float64 {
	known := analytics.Filter(e.students, analytics.KnownAge())
	ages := analytics.Floats(known, func(s student.Student) float64 { return float64(s.Age) })
	return analytics.Correlation(ages, analytics.Floats(known, analytics.GPA))
}

// ─────────────────────────────────────────────────────────────────────────────
// Summary
// ─────────────────────────────────────────────────────────────────────────────

// Summary collects the scalar roster statistics in one value.
type Summary struct {
	StudentCount            int         `json:"studentCount"`
	InternationalPercentage float64     `json:"internationalPercentage"`
	ScholarshipPercentage   float64     `json:"scholarshipPercentage"`
	MedianGPA               float64     `json:"medianGpa"`
	MeanGPA                 float64     `json:"meanGpa"`
	TotalCreditHours        int         `json:"totalCreditHours"`
	AgeGPACorrelation       float64     `json:"ageGpaCorrelation"`
	Majors                  int         `json:"majors"`
	TopUniversities         []string    `json:"topUniversities"`
	AgeExtremes             AgeExtremes `json:"ageExtremes"`
}

// Summary computes every scalar statistic of the roster.
func (e *Engine) Summary() Summary {
	return Summary{
		StudentCount:            e.StudentCount(),
		InternationalPercentage: e.InternationalPercentage(),
		ScholarshipPercentage:   e.ScholarshipPercentage(),
		MedianGPA:               e.MedianGPA(),
		MeanGPA:                 e.MeanGPA(),
		TotalCreditHours:        e.TotalCreditHours(),
		AgeGPACorrelation:       e.AgeGPACorrelation(),
		Majors:                  len(e.CountPerMajor()),
		TopUniversities:         e.UniversitiesWithHighestAverageGPA(),
		AgeExtremes:             e.YoungestAndOldest(),
	}
}
