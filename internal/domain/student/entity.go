package student

import (
	"github.com/alem-hub/student-insights/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is one immutable roster record.
//
// Optional text attributes use shared.Text so that absence is an explicit
// branch at every use site. The value is never modified once loaded.
type Student struct {
	// ID identifies the record in logs and results. It takes no part in queries.
	ID string `json:"id"`

	// Name is the display name of the student.
	Name shared.Text `json:"name"`

	// GPA is the grade point average, 0.0 - 4.0.
	GPA float64 `json:"gpa"`

	// Age in full years. Non-positive ages are treated as unknown by age analytics.
	Age int `json:"age"`

	// IsInternational marks students from abroad.
	IsInternational bool `json:"isInternational"`

	// Major is the field of study.
	Major shared.Text `json:"major"`

	// University the student is enrolled at.
	University shared.Text `json:"university"`

	// ScholarshipRecipient marks students holding a scholarship.
	ScholarshipRecipient bool `json:"scholarshipRecipient"`

	// GraduationYear is the expected calendar year of graduation.
	GraduationYear int `json:"graduationYear"`

	// CreditHours earned so far.
	CreditHours int `json:"creditHours"`

	// PhoneNumber as entered, without normalization.
	PhoneNumber shared.Text `json:"phoneNumber"`

	// DateOfBirth in ISO-8601 calendar form (YYYY-MM-DD). May be malformed.
	DateOfBirth shared.Text `json:"dateOfBirth"`

	// Gender as entered.
	Gender shared.Text `json:"gender"`
}

// ResidencyLabel returns "International" or "Local".
func (s Student) ResidencyLabel() string {
	if s.IsInternational {
		return ResidencyInternational
	}
	return ResidencyLocal
}

// HasKnownAge reports whether the age can take part in age analytics.
func (s Student) HasKnownAge() bool {
	return s.Age > 0
}

// Residency labels used in composite grouping keys.
const (
	ResidencyInternational = "International"
	ResidencyLocal         = "Local"
)

// UnknownMajor is the group label for students without a major.
const UnknownMajor = "Unknown"
