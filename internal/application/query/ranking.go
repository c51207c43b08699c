package query

import (
	"github.com/alem-hub/student-insights/internal/domain/analytics"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING & SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// AgeExtremes is the [youngest, oldest] pair. Both are nil for an empty roster.
type AgeExtremes struct {
	Youngest *student.Student `json:"youngest"`
	Oldest   *student.Student `json:"oldest"`
}

// Pair returns the extremes as an ordered two-element array.
func (a AgeExtremes) Pair() [2]*student.Student {
	return [2]*student.Student{a.Youngest, a.Oldest}
}

// TopTenPercentByGPA returns the leading ceil(n × 10%) students by GPA,
// highest first. Equal GPAs keep roster order.
func (e *Engine) TopTenPercentByGPA() []student.Student {
	top, _ := analytics.TopPercent(e.students, analytics.Chain{analytics.ByGPA}, TopPercentByGPA)
	return top
}

// TopStudentsByGPA generalizes TopTenPercentByGPA to any percent in 1-100.
// Other values return shared.ErrInvalidFraction.
func (e *Engine) TopStudentsByGPA(percent int) ([]student.Student, error) {
	top, err := analytics.TopPercent(e.students, analytics.Chain{analytics.ByGPA}, percent)
	if err != nil {
		e.log.Warn("rejected percentile",
			logger.Operation("TopStudentsByGPA"),
			logger.Int("percent", percent))
		return nil, err
	}
	return top, nil
}

// OldestStudent returns the oldest student; the first one in roster order
// wins a tie. ok is false for an empty roster.
func (e *Engine) OldestStudent() (student.Student, bool) {
	return analytics.MaxBy(e.students, analytics.Age)
}

// YoungestAndOldest computes the youngest and the oldest student independently.
func (e *Engine) YoungestAndOldest() AgeExtremes {
	var out AgeExtremes
	if s, ok := analytics.MinBy(e.students, analytics.Age); ok {
		out.Youngest = &s
	}
	if s, ok := analytics.MaxBy(e.students, analytics.Age); ok {
		out.Oldest = &s
	}
	return out
}

// RankByProfileScore orders the whole roster by GPA, credit hours,
// scholarship and international status, all descending. Students equal on
// every key keep roster order.
func (e *Engine) RankByProfileScore() []student.Student {
	return analytics.Rank(e.students, analytics.ProfileScoreChain)
}
