package query

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"
	"github.com/alem-hub/student-insights/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RUN QUERY
// Dispatches an engine operation by name, for callers such as the CLI that
// receive the operation and its parameters as text.
// ══════════════════════════════════════════════════════════════════════════════

// RunQuery names an engine operation and carries its parameters.
// Only the parameters the operation needs are read.
type RunQuery struct {
	// Operation is an engine method name, matched case-insensitively.
	Operation string

	University string
	Major      string
	AreaCode   string
	Year       int
	Month      int
	MinCredits int
	Percent    int
}

// Validate checks that the operation exists and its required text parameters are set.
func (q *RunQuery) Validate() error {
	op, ok := lookup(q.Operation)
	if !ok {
		return shared.NewDomainError("query", "RunQuery", shared.ErrInvalidInput,
			fmt.Sprintf("unknown operation %q", q.Operation))
	}
	for _, p := range op.requires {
		if strings.TrimSpace(q.param(p)) == "" {
			return shared.NewDomainError("query", "RunQuery", shared.ErrEmptyValue,
				fmt.Sprintf("%s requires --%s", op.name, p))
		}
	}
	return nil
}

func (q *RunQuery) param(name string) string {
	switch name {
	case "university":
		return q.University
	case "major":
		return q.Major
	case "area-code":
		return q.AreaCode
	default:
		return ""
	}
}

// RunQueryResult is the outcome of a dispatched operation.
type RunQueryResult struct {
	Operation string `json:"operation"`
	// Count is set for operations returning a list of students.
	Count  *int `json:"count,omitempty"`
	Result any  `json:"result"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Operation catalog
// ─────────────────────────────────────────────────────────────────────────────

type operation struct {
	name     string
	requires []string
	run      func(e *Engine, q RunQuery) (any, error)
}

func list(f func(e *Engine) []student.Student) func(*Engine, RunQuery) (any, error) {
	return func(e *Engine, _ RunQuery) (any, error) { return f(e), nil }
}

func value[T any](f func(e *Engine) T) func(*Engine, RunQuery) (any, error) {
	return func(e *Engine, _ RunQuery) (any, error) { return f(e), nil }
}

var catalog = []operation{
	{name: "StudentCount", run: value((*Engine).StudentCount)},
	{name: "StudentsWithGPAAbove35", run: list((*Engine).StudentsWithGPAAbove35)},
	{name: "StudentsUnder20", run: list((*Engine).StudentsUnder20)},
	{name: "InternationalStudents", run: list((*Engine).InternationalStudents)},
	{name: "ComputerScienceStudents", run: list((*Engine).ComputerScienceStudents)},
	{name: "StudentsFromUniversity", requires: []string{"university"}, run: func(e *Engine, q RunQuery) (any, error) {
		return e.StudentsFromUniversity(q.University), nil
	}},
	{name: "ScholarshipStudents", run: list((*Engine).ScholarshipStudents)},
	{name: "StudentsByGraduationYear", run: func(e *Engine, q RunQuery) (any, error) {
		return e.StudentsByGraduationYear(yearOrCurrent(q.Year)), nil
	}},
	{name: "StudentsWithExactly60CreditHours", run: list((*Engine).StudentsWithExactly60CreditHours)},
	{name: "StudentsWithGPABetween30And35", run: list((*Engine).StudentsWithGPABetween30And35)},
	{name: "InternationalSTEMStudents", run: list((*Engine).InternationalSTEMStudents)},
	{name: "ScholarshipStudentsWithMinCredits", run: func(e *Engine, q RunQuery) (any, error) {
		return e.ScholarshipStudentsWithMinCredits(q.MinCredits), nil
	}},
	{name: "TopTenPercentByGPA", run: list((*Engine).TopTenPercentByGPA)},
	{name: "StudentsByPhoneAreaCode", requires: []string{"area-code"}, run: func(e *Engine, q RunQuery) (any, error) {
		return e.StudentsByPhoneAreaCode(q.AreaCode), nil
	}},
	{name: "StudentsBornInMonth", run: func(e *Engine, q RunQuery) (any, error) {
		return e.StudentsBornInMonth(q.Month)
	}},
	{name: "StudentsNearGraduation", run: func(e *Engine, q RunQuery) (any, error) {
		return e.StudentsNearGraduation(yearOrCurrent(q.Year)), nil
	}},
	{name: "CountPerMajor", run: value((*Engine).CountPerMajor)},
	{name: "AverageGPAByMajor", run: value((*Engine).AverageGPAByMajor)},
	{name: "InternationalPercentage", run: value((*Engine).InternationalPercentage)},
	{name: "OldestStudent", run: func(e *Engine, _ RunQuery) (any, error) {
		if s, ok := e.OldestStudent(); ok {
			return &s, nil
		}
		return (*student.Student)(nil), nil
	}},
	{name: "TotalCreditHours", run: value((*Engine).TotalCreditHours)},
	{name: "MedianGPA", run: value((*Engine).MedianGPA)},
	{name: "YoungestAndOldest", run: func(e *Engine, _ RunQuery) (any, error) {
		return e.YoungestAndOldest().Pair(), nil
	}},
	{name: "ScholarshipPercentage", run: value((*Engine).ScholarshipPercentage)},
	{name: "GenderRatioForMajor", requires: []string{"major"}, run: func(e *Engine, q RunQuery) (any, error) {
		return e.GenderRatioForMajor(q.Major), nil
	}},
	{name: "UniversitiesWithHighestAverageGPA", run: value((*Engine).UniversitiesWithHighestAverageGPA)},
	{name: "TopInternationalSTEMScholarshipStudents", run: list((*Engine).TopInternationalSTEMScholarshipStudents)},
	{name: "RankByProfileScore", run: list((*Engine).RankByProfileScore)},
	{name: "HighScholarshipLikelihood", run: list((*Engine).HighScholarshipLikelihood)},
	{name: "AverageGPAByAge", run: value((*Engine).AverageGPAByAge)},
	{name: "CountByMultiDimensionalKey", run: value((*Engine).CountByMultiDimensionalKey)},
	{name: "TopStudentsByGPA", run: func(e *Engine, q RunQuery) (any, error) {
		return e.TopStudentsByGPA(q.Percent)
	}},
	{name: "AgeGPACorrelation", run: value((*Engine).AgeGPACorrelation)},
	{name: "Summary", run: value((*Engine).Summary)},
}

func lookup(name string) (operation, bool) {
	name = strings.TrimSpace(name)
	for _, op := range catalog {
		if strings.EqualFold(op.name, name) {
			return op, true
		}
	}
	return operation{}, false
}

func yearOrCurrent(year int) int {
	if year == 0 {
		return timeutil.CurrentYear()
	}
	return year
}

// Operations lists every operation name accepted by RunQuery, sorted.
func Operations() []string {
	names := make([]string, len(catalog))
	for i, op := range catalog {
		names[i] = op.name
	}
	slices.Sort(names)
	return names
}

// ─────────────────────────────────────────────────────────────────────────────
// Handler
// ─────────────────────────────────────────────────────────────────────────────

// RunQueryHandler executes RunQuery against an Engine.
type RunQueryHandler struct {
	engine *Engine
}

// NewRunQueryHandler creates a new handler.
func NewRunQueryHandler(engine *Engine) *RunQueryHandler {
	return &RunQueryHandler{engine: engine}
}

// Handle validates q and runs the named operation.
func (h *RunQueryHandler) Handle(ctx context.Context, q RunQuery) (*RunQueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		h.engine.log.Warn("rejected query", logger.Operation(q.Operation), logger.Err(err))
		return nil, err
	}

	op, _ := lookup(q.Operation)
	out, err := op.run(h.engine, q)
	if err != nil {
		return nil, err
	}

	fields := []logger.Field{logger.Operation(op.name)}
	result := &RunQueryResult{Operation: op.name, Result: out}
	if students, ok := out.([]student.Student); ok {
		n := len(students)
		result.Count = &n
		fields = append(fields, logger.ResultSize(n))
	}

	h.engine.log.Debug("query executed", fields...)
	return result, nil
}
