package analytics

import (
	"strconv"
	"strings"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
)

// KeySeparator joins the parts of a composite key.
const KeySeparator = " | "

// KeyPart renders one component of a composite key. ok=false means the
// component is missing and the whole record must be left out of the grouping.
type KeyPart func(s student.Student) (part string, ok bool)

// TextPart uses an optional text field; null or blank excludes the record.
func TextPart(field func(student.Student) shared.Text) KeyPart {
	return func(s student.Student) (string, bool) {
		return field(s).Value()
	}
}

// TextPartOr uses an optional text field, substituting fallback when it is null or blank.
func TextPartOr(field func(student.Student) shared.Text, fallback string) KeyPart {
	return func(s student.Student) (string, bool) {
		return field(s).OrElse(fallback), true
	}
}

// IntPart renders an int field in decimal.
func IntPart(field func(student.Student) int) KeyPart {
	return func(s student.Student) (string, bool) {
		return strconv.Itoa(field(s)), true
	}
}

// LabelPart renders a computed label. It is never missing.
func LabelPart(label func(student.Student) string) KeyPart {
	return func(s student.Student) (string, bool) {
		return label(s), true
	}
}

// KeyBuilder concatenates key parts with a separator.
type KeyBuilder struct {
	separator string
	parts     []KeyPart
}

// NewKeyBuilder creates a builder joining parts with KeySeparator.
func NewKeyBuilder(parts ...KeyPart) KeyBuilder {
	return KeyBuilder{separator: KeySeparator, parts: parts}
}

// Build renders the key for s. ok is false if any part is missing.
func (b KeyBuilder) Build(s student.Student) (string, bool) {
	rendered := make([]string, 0, len(b.parts))
	for _, p := range b.parts {
		v, ok := p(s)
		if !ok {
			return "", false
		}
		rendered = append(rendered, v)
	}
	return strings.Join(rendered, b.separator), true
}

// KeyFunc adapts the builder for GroupBy.
func (b KeyBuilder) KeyFunc() KeyFunc[string] {
	return b.Build
}

// Field accessors for building keys.
func Major(s student.Student) shared.Text      { return s.Major }
func University(s student.Student) shared.Text { return s.University }
func Gender(s student.Student) shared.Text     { return s.Gender }
func GraduationYear(s student.Student) int     { return s.GraduationYear }
func Residency(s student.Student) string       { return s.ResidencyLabel() }

// ProfileKey groups by major, university, graduation year and residency,
// e.g. "Physics | MIT | 2026 | International".
var ProfileKey = NewKeyBuilder(
	TextPart(Major),
	TextPart(University),
	IntPart(GraduationYear),
	LabelPart(Residency),
)

// MajorOrUnknown groups by major, with "Unknown" for null or blank majors.
var MajorOrUnknown = NewKeyBuilder(TextPartOr(Major, student.UnknownMajor))

// AgeKey groups by age, leaving out non-positive ages.
func AgeKey(s student.Student) (int, bool) {
	return s.Age, s.HasKnownAge()
}
