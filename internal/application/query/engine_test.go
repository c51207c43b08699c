package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func text(s string) shared.Text { return shared.SomeText(s) }

func fixture() []student.Student {
	return []student.Student{
		{ID: "ada", GPA: 3.9, Age: 21, IsInternational: true, Major: text("Computer Science"), University: text("MIT"),
			ScholarshipRecipient: true, GraduationYear: 2026, CreditHours: 90, PhoneNumber: text("617-555-0100"),
			DateOfBirth: text("2004-06-15"), Gender: text("F")},
		{ID: "bo", GPA: 3.2, Age: 19, Major: text("computer science"), University: text("Stanford"),
			GraduationYear: 2027, CreditHours: 60, PhoneNumber: text("650-555-0101"),
			DateOfBirth: text("2006-06-01"), Gender: text("M")},
		{ID: "cy", GPA: 3.5, Age: 23, IsInternational: true, Major: text("History"), University: text("MIT"),
			ScholarshipRecipient: true, GraduationYear: 2025, CreditHours: 120, PhoneNumber: text("(617) 555-0102"),
			DateOfBirth: text("2002-13-01"), Gender: text("F")},
		{ID: "di", GPA: 3.0, Age: 18, Major: shared.NoText(), University: text("Stanford"),
			GraduationYear: 2028, CreditHours: 30, DateOfBirth: shared.NoText(), Gender: text(" ")},
		{ID: "ed", GPA: 2.4, Age: 0, IsInternational: true, Major: text("  "), University: shared.NoText(),
			ScholarshipRecipient: true, GraduationYear: 2026, CreditHours: 60, PhoneNumber: text("617-555-0104"),
			DateOfBirth: text(""), Gender: text("M")},
		{ID: "fa", GPA: 3.75, Age: 23, IsInternational: true, Major: text("Physics"), University: text("Caltech"),
			ScholarshipRecipient: true, GraduationYear: 2026, CreditHours: 75, PhoneNumber: text("626-555-0105"),
			DateOfBirth: text("2002-06-30"), Gender: text("F")},
	}
}

func ids(students []student.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.ID
	}
	return out
}

func newEngine(students []student.Student) *Engine {
	return NewEngine(students, logger.Nop())
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNewEngine_CopiesInput(t *testing.T) {
	in := fixture()
	e := newEngine(in)

	in[0].GPA = 0
	in = append(in[:1], in[2:]...)

	assert.Equal(t, 6, e.StudentCount())
	assert.Equal(t, 3.9, e.Students()[0].GPA)

	out := e.Students()
	out[0].GPA = 1.0
	assert.Equal(t, 3.9, e.Students()[0].GPA, "Students returns a copy")
}

func TestQueries_DoNotMutateSnapshot(t *testing.T) {
	e := newEngine(fixture())
	before := e.Students()

	_ = e.RankByProfileScore()
	_ = e.TopTenPercentByGPA()
	_ = e.MedianGPA()
	_ = e.CountByMultiDimensionalKey()

	assert.Equal(t, before, e.Students())
}

func TestLoadEngine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelInfo})

	e, err := LoadEngine(context.Background(), student.StaticSource(fixture()), log)
	require.NoError(t, err)
	assert.Equal(t, 6, e.StudentCount())
	assert.Contains(t, buf.String(), `"roster_size":6`)
}

type failingSource struct{ err error }

func (f failingSource) LoadStudents(context.Context) ([]student.Student, error) { return nil, f.err }

func TestLoadEngine_SourceFailure(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	src := failingSource{err: cause}

	e, err := LoadEngine(context.Background(), src, nil)

	assert.Nil(t, e)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, shared.ErrRosterUnavailable)
}

// ─────────────────────────────────────────────────────────────────────────────
// Filters
// ─────────────────────────────────────────────────────────────────────────────

func TestFilters(t *testing.T) {
	e := newEngine(fixture())

	tests := []struct {
		name string
		got  []student.Student
		want []string
	}{
		{"gpa above 3.5 is strict", e.StudentsWithGPAAbove35(), []string{"ada", "fa"}},
		{"under 20", e.StudentsUnder20(), []string{"bo", "di", "ed"}},
		{"international", e.InternationalStudents(), []string{"ada", "cy", "ed", "fa"}},
		{"computer science case-insensitive", e.ComputerScienceStudents(), []string{"ada", "bo"}},
		{"university case-insensitive", e.StudentsFromUniversity("mit"), []string{"ada", "cy"}},
		{"scholarship", e.ScholarshipStudents(), []string{"ada", "cy", "ed", "fa"}},
		{"graduation year", e.StudentsByGraduationYear(2026), []string{"ada", "ed", "fa"}},
		{"exactly 60 credits", e.StudentsWithExactly60CreditHours(), []string{"bo", "ed"}},
		{"gpa 3.0-3.5 inclusive", e.StudentsWithGPABetween30And35(), []string{"bo", "cy", "di"}},
		{"international stem", e.InternationalSTEMStudents(), []string{"ada", "fa"}},
		{"scholarship min credits", e.ScholarshipStudentsWithMinCredits(90), []string{"ada", "cy"}},
		{"phone prefix literal", e.StudentsByPhoneAreaCode("617"), []string{"ada", "ed"}},
		{"near graduation window", e.StudentsNearGraduation(2026), []string{"ada", "bo", "di", "ed", "fa"}},
		{"top intl stem scholarship", e.TopInternationalSTEMScholarshipStudents(), []string{"ada", "fa"}},
		{"high scholarship likelihood", e.HighScholarshipLikelihood(), []string{"ada", "fa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.got))
		})
	}
}

func TestFilters_NoMatchIsEmptyNotNil(t *testing.T) {
	e := newEngine(fixture())
	got := e.StudentsFromUniversity("Oxford")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, e.StudentsFromUniversity(""), "blank target never matches")
}

func TestStudentsBornInMonth(t *testing.T) {
	e := newEngine(fixture())

	june, err := e.StudentsBornInMonth(6)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "bo", "fa"}, ids(june), "malformed, blank and null dates are skipped")

	none, err := e.StudentsBornInMonth(1)
	require.NoError(t, err)
	assert.Empty(t, none)

	for _, month := range []int{0, 13, -1} {
		got, err := e.StudentsBornInMonth(month)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shared.ErrInvalidMonth, "month %d", month)
		assert.True(t, shared.IsValidation(err))
	}
}

func TestStudentsBornInMonth_LogsRejection(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(fixture(), logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug}))

	_, _ = e.StudentsBornInMonth(6)
	_, _ = e.StudentsBornInMonth(13)

	out := buf.String()
	assert.Contains(t, out, `"excluded":3`)
	assert.Contains(t, out, "rejected birth month")
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking & selection
// ─────────────────────────────────────────────────────────────────────────────

func rosterWithGPAs(gpas ...float64) []student.Student {
	out := make([]student.Student, len(gpas))
	for i, g := range gpas {
		out[i] = student.Student{ID: fmt.Sprintf("s%02d", i), GPA: g}
	}
	return out
}

func TestTopTenPercentByGPA(t *testing.T) {
	ten := rosterWithGPAs(2.0, 3.1, 2.5, 3.9, 2.2, 3.0, 2.8, 3.3, 2.1, 2.6)
	assert.Equal(t, []string{"s03"}, ids(newEngine(ten).TopTenPercentByGPA()))

	eleven := append(ten, student.Student{ID: "s10", GPA: 3.5})
	assert.Equal(t, []string{"s03", "s10"}, ids(newEngine(eleven).TopTenPercentByGPA()))

	assert.Empty(t, newEngine(nil).TopTenPercentByGPA())
}

func TestTopTenPercentByGPA_TiesKeepRosterOrder(t *testing.T) {
	roster := rosterWithGPAs(3.0, 3.8, 3.8, 3.8, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0)
	assert.Equal(t, []string{"s01", "s02"}, ids(newEngine(roster).TopTenPercentByGPA()))
}

func TestTopStudentsByGPA(t *testing.T) {
	e := newEngine(fixture())

	top, err := e.TopStudentsByGPA(50)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "fa", "cy"}, ids(top))

	all, err := e.TopStudentsByGPA(100)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	for _, p := range []int{0, -5, 101} {
		_, err := e.TopStudentsByGPA(p)
		assert.ErrorIs(t, err, shared.ErrInvalidFraction)
	}
}

func TestOldestAndYoungest(t *testing.T) {
	e := newEngine(fixture())

	oldest, ok := e.OldestStudent()
	require.True(t, ok)
	assert.Equal(t, "cy", oldest.ID, "first of the two 23-year-olds wins")

	ext := e.YoungestAndOldest()
	require.NotNil(t, ext.Youngest)
	require.NotNil(t, ext.Oldest)
	assert.Equal(t, "ed", ext.Youngest.ID, "age is compared as stored")
	assert.Equal(t, "cy", ext.Oldest.ID)
	assert.Equal(t, [2]*student.Student{ext.Youngest, ext.Oldest}, ext.Pair())
}

func TestOldestAndYoungest_Empty(t *testing.T) {
	e := newEngine(nil)

	_, ok := e.OldestStudent()
	assert.False(t, ok)

	ext := e.YoungestAndOldest()
	assert.Nil(t, ext.Youngest)
	assert.Nil(t, ext.Oldest)

	out, err := json.Marshal(ext)
	require.NoError(t, err)
	assert.JSONEq(t, `{"youngest":null,"oldest":null}`, string(out))
}

func TestRankByProfileScore(t *testing.T) {
	roster := []student.Student{
		{ID: "plain", GPA: 3.5, CreditHours: 60},
		{ID: "intl", GPA: 3.5, CreditHours: 60, IsInternational: true},
		{ID: "schol", GPA: 3.5, CreditHours: 60, ScholarshipRecipient: true},
		{ID: "both", GPA: 3.5, CreditHours: 60, ScholarshipRecipient: true, IsInternational: true},
		{ID: "credits", GPA: 3.5, CreditHours: 90},
		{ID: "gpa", GPA: 3.9, CreditHours: 10},
		{ID: "plain2", GPA: 3.5, CreditHours: 60},
	}

	got := ids(newEngine(roster).RankByProfileScore())

	assert.Equal(t, []string{"gpa", "credits", "both", "schol", "intl", "plain", "plain2"}, got)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

func TestCountPerMajor(t *testing.T) {
	e := newEngine(fixture())
	counts := e.CountPerMajor()

	assert.Equal(t, map[string]int{
		"Computer Science": 1,
		"computer science": 1,
		"History":          1,
		"Physics":          1,
		"Unknown":          2,
	}, counts)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, e.StudentCount(), total)
}

func TestAverageGPAByMajor(t *testing.T) {
	got := newEngine(fixture()).AverageGPAByMajor()

	assert.InDelta(t, 2.7, got["Unknown"], 1e-9)
	assert.Equal(t, 3.75, got["Physics"])
	assert.Len(t, got, 5)
}

func TestPercentages(t *testing.T) {
	e := newEngine(fixture())
	assert.InDelta(t, 66.666666, e.InternationalPercentage(), 1e-5)
	assert.InDelta(t, 66.666666, e.ScholarshipPercentage(), 1e-5)

	empty := newEngine(nil)
	assert.Equal(t, 0.0, empty.InternationalPercentage())
	assert.Equal(t, 0.0, empty.ScholarshipPercentage())
}

func TestInternationalPercentage_Bounds(t *testing.T) {
	for n := 0; n <= 8; n++ {
		roster := make([]student.Student, n)
		for i := range roster {
			roster[i].IsInternational = i%3 == 0
		}
		p := newEngine(roster).InternationalPercentage()
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestTotalCreditHours(t *testing.T) {
	assert.Equal(t, 435, newEngine(fixture()).TotalCreditHours())
	assert.Equal(t, 0, newEngine(nil).TotalCreditHours())
}

func TestMedianGPA(t *testing.T) {
	assert.InDelta(t, 3.2, newEngine(rosterWithGPAs(3.0, 3.2, 3.8)).MedianGPA(), 1e-9)
	assert.InDelta(t, 3.1, newEngine(rosterWithGPAs(3.0, 3.2)).MedianGPA(), 1e-9)
	assert.InDelta(t, 3.2, newEngine(rosterWithGPAs(3.8, 3.0, 3.2)).MedianGPA(), 1e-9, "order-independent")
	assert.Equal(t, 0.0, newEngine(nil).MedianGPA())
}

func TestGenderRatioForMajor(t *testing.T) {
	e := newEngine(fixture())

	assert.Equal(t, map[string]int{"F": 1, "M": 1}, e.GenderRatioForMajor("COMPUTER SCIENCE"))
	assert.Empty(t, e.GenderRatioForMajor("Unknown"), "fallback label is not a real major")
	assert.Empty(t, e.GenderRatioForMajor("Art"))
}

func TestUniversitiesWithHighestAverageGPA(t *testing.T) {
	e := newEngine(fixture())
	assert.Equal(t, []string{"Caltech"}, e.UniversitiesWithHighestAverageGPA())

	tie := []student.Student{
		{University: text("A"), GPA: 3.5},
		{University: text("B"), GPA: 3.0},
		{University: text("B"), GPA: 4.0},
		{University: text("C"), GPA: 3.25},
		{University: shared.NoText(), GPA: 4.0},
		{University: text(""), GPA: 4.0},
	}
	assert.Equal(t, []string{"A", "B"}, newEngine(tie).UniversitiesWithHighestAverageGPA())

	assert.Empty(t, newEngine(nil).UniversitiesWithHighestAverageGPA())
}

func TestAverageGPAByAge(t *testing.T) {
	got := newEngine(fixture()).AverageGPAByAge()

	_, hasZero := got[0]
	assert.False(t, hasZero, "non-positive ages are left out")
	assert.InDelta(t, 3.625, got[23], 1e-9)
	assert.Equal(t, 3.0, got[18])
	assert.Len(t, got, 4)
}

func TestCountByMultiDimensionalKey(t *testing.T) {
	e := newEngine(fixture())
	got := e.CountByMultiDimensionalKey()

	assert.Equal(t, map[string]int{
		"Computer Science | MIT | 2026 | International": 1,
		"computer science | Stanford | 2027 | Local":     1,
		"History | MIT | 2025 | International":          1,
		"Physics | Caltech | 2026 | International":      1,
	}, got)

	eligible := 0
	for _, s := range e.Students() {
		if s.Major.IsPresent() && s.University.IsPresent() {
			eligible++
		}
	}
	total := 0
	for _, n := range got {
		total += n
	}
	assert.Equal(t, eligible, total)
	assert.Less(t, total, e.StudentCount())
}

func TestAgeGPACorrelation(t *testing.T) {
	rising := []student.Student{{Age: 18, GPA: 2.0}, {Age: 20, GPA: 3.0}, {Age: 22, GPA: 4.0}, {Age: 0, GPA: 0.1}}
	assert.InDelta(t, 1.0, newEngine(rising).AgeGPACorrelation(), 1e-9)

	constant := []student.Student{{Age: 18, GPA: 3.0}, {Age: 20, GPA: 3.0}}
	assert.Equal(t, 0.0, newEngine(constant).AgeGPACorrelation())
	assert.Equal(t, 0.0, newEngine(rising[:1]).AgeGPACorrelation())
}

func TestSummary(t *testing.T) {
	s := newEngine(fixture()).Summary()

	assert.Equal(t, 6, s.StudentCount)
	assert.Equal(t, 435, s.TotalCreditHours)
	assert.Equal(t, 5, s.Majors)
	assert.Equal(t, []string{"Caltech"}, s.TopUniversities)
	assert.InDelta(t, 3.35, s.MedianGPA, 1e-9)
	require.NotNil(t, s.AgeExtremes.Oldest)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), `"studentCount":6`))
}

func TestEmptyRoster_AllAggregatesTotal(t *testing.T) {
	e := newEngine([]student.Student{})

	assert.Equal(t, 0, e.StudentCount())
	assert.Empty(t, e.CountPerMajor())
	assert.Empty(t, e.AverageGPAByMajor())
	assert.Empty(t, e.AverageGPAByAge())
	assert.Empty(t, e.CountByMultiDimensionalKey())
	assert.Empty(t, e.RankByProfileScore())
	assert.Equal(t, 0.0, e.MeanGPA())
	assert.Equal(t, 0.0, e.AgeGPACorrelation())
	assert.NotPanics(t, func() { _ = e.Summary() })
}
