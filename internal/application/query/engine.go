// Package query contains the read side of Student Insights: every roster
// question is a pure query over an immutable snapshot.
package query

import (
	"context"
	"time"

	"github.com/alem-hub/student-insights/internal/domain/analytics"
	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// Holds one roster snapshot. Every operation filters, ranks or aggregates it
// in explicit stages and returns a freshly allocated result, so an Engine is
// safe for concurrent readers without locking.
// ══════════════════════════════════════════════════════════════════════════════

// Engine answers roster queries.
type Engine struct {
	students []student.Student
	log      *logger.Logger
}

// NewEngine copies students into a new Engine. A nil logger discards output.
func NewEngine(students []student.Student, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	snapshot := make([]student.Student, len(students))
	copy(snapshot, students)

	return &Engine{
		students: snapshot,
		log:      log.With(logger.Component("query_engine")),
	}
}

// LoadEngine asks source for the roster once and builds an Engine over it.
func LoadEngine(ctx context.Context, source student.Source, log *logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}

	start := time.Now()
	students, err := source.LoadStudents(ctx)
	if err != nil {
		log.Error("failed to load roster", logger.Err(err))
		return nil, shared.WrapError("query", "LoadEngine", shared.ErrRosterUnavailable,
			"cannot build engine without a roster", err)
	}

	e := NewEngine(students, log)
	e.log.Info("roster loaded",
		logger.RosterSize(len(e.students)),
		logger.Latency(time.Since(start)))
	return e, nil
}

// Students returns a copy of the roster in source order.
func (e *Engine) Students() []student.Student {
	out := make([]student.Student, len(e.students))
	copy(out, e.students)
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Filters
// ─────────────────────────────────────────────────────────────────────────────

// Thresholds used by the fixed roster queries.
const (
	HonorsGPA             = 3.5
	MinorAge              = 20
	ComputerScience       = "Computer Science"
	FullSophomoreCredits  = 60
	GoodStandingGPALow    = 3.0
	GoodStandingGPAHigh   = 3.5
	EliteGPA              = 3.7
	GraduationWindowYears = 2
	TopPercentByGPA       = 10
)

// StudentCount returns the roster size.
func (e *Engine) StudentCount() int {
	return len(e.students)
}

// StudentsWithGPAAbove35 lists students with GPA strictly above 3.5.
func (e *Engine) StudentsWithGPAAbove35() []student.Student {
	return analytics.Filter(e.students, analytics.GPAAbove(HonorsGPA))
}

// StudentsUnder20 lists students younger than 20.
func (e *Engine) StudentsUnder20() []student.Student {
	return analytics.Filter(e.students, analytics.AgeBelow(MinorAge))
}

// InternationalStudents lists international students.
func (e *Engine) InternationalStudents() []student.Student {
	return analytics.Filter(e.students, analytics.International())
}

// ComputerScienceStudents lists Computer Science majors, case-insensitively.
func (e *Engine) ComputerScienceStudents() []student.Student {
	return analytics.Filter(e.students, analytics.MajorIs(ComputerScience))
}

// StudentsFromUniversity lists students of the named university, case-insensitively.
func (e *Engine) StudentsFromUniversity(name string) []student.Student {
	return analytics.Filter(e.students, analytics.UniversityIs(name))
}

// ScholarshipStudents lists scholarship recipients.
func (e *Engine) ScholarshipStudents() []student.Student {
	return analytics.Filter(e.students, analytics.ScholarshipRecipient())
}

// StudentsByGraduationYear lists students graduating in year.
func (e *Engine) StudentsByGraduationYear(year int) []student.Student {
	return analytics.Filter(e.students, analytics.GraduationYearIs(year))
}

// StudentsWithExactly60CreditHours lists students with exactly 60 credit hours.
func (e *Engine) StudentsWithExactly60CreditHours() []student.Student {
	return analytics.Filter(e.students, analytics.CreditHoursEqual(FullSophomoreCredits))
}

// StudentsWithGPABetween30And35 lists students with 3.0 <= GPA <= 3.5.
func (e *Engine) StudentsWithGPABetween30And35() []student.Student {
	return analytics.Filter(e.students, analytics.GPABetween(GoodStandingGPALow, GoodStandingGPAHigh))
}

// InternationalSTEMStudents lists international students with a STEM major.
func (e *Engine) InternationalSTEMStudents() []student.Student {
	return analytics.Filter(e.students, analytics.International(), analytics.STEMMajor())
}

// ScholarshipStudentsWithMinCredits lists scholarship recipients with at least minCredits credit hours.
func (e *Engine) ScholarshipStudentsWithMinCredits(minCredits int) []student.Student {
	return analytics.Filter(e.students,
		analytics.ScholarshipRecipient(),
		analytics.CreditHoursAtLeast(minCredits),
	)
}

// StudentsByPhoneAreaCode lists students whose phone number starts with prefix.
func (e *Engine) StudentsByPhoneAreaCode(prefix string) []student.Student {
	return analytics.Filter(e.students, analytics.PhonePrefix(prefix))
}

// StudentsBornInMonth lists students born in month (1-12). Records with a
// missing or unparseable date of birth are left out. An out-of-range month
// returns shared.ErrInvalidMonth.
func (e *Engine) StudentsBornInMonth(month int) ([]student.Student, error) {
	byMonth, err := analytics.BornInMonth(month)
	if err != nil {
		e.log.Warn("rejected birth month",
			logger.Operation("StudentsBornInMonth"),
			logger.Int("month", month))
		return nil, err
	}

	if dropped := analytics.CountWhere(e.students, analytics.Not(analytics.HasBirthDate())); dropped > 0 {
		e.log.Debug("records without a usable date of birth excluded",
			logger.Operation("StudentsBornInMonth"),
			logger.Int("excluded", dropped))
	}

	return analytics.Filter(e.students, byMonth), nil
}

// StudentsNearGraduation lists students graduating between currentYear and
// currentYear+2, inclusive.
func (e *Engine) StudentsNearGraduation(currentYear int) []student.Student {
	return analytics.Filter(e.students,
		analytics.GraduationYearBetween(currentYear, currentYear+GraduationWindowYears))
}

// TopInternationalSTEMScholarshipStudents lists international STEM scholarship
// recipients with GPA above 3.7.
func (e *Engine) TopInternationalSTEMScholarshipStudents() []student.Student {
	return analytics.Filter(e.students,
		analytics.GPAAbove(EliteGPA),
		analytics.International(),
		analytics.ScholarshipRecipient(),
		analytics.STEMMajor(),
	)
}

// HighScholarshipLikelihood lists international scholarship recipients with
// GPA of at least 3.7.
func (e *Engine) HighScholarshipLikelihood() []student.Student {
	return analytics.Filter(e.students,
		analytics.GPAAtLeast(EliteGPA),
		analytics.International(),
		analytics.ScholarshipRecipient(),
	)
}
