package shared

import (
	"encoding/json"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Optional text
// ═══════════════════════════════════════════════════════════════════════════

// Text is an optional string attribute. A zero Text is absent (null).
//
// Value reports the string only when it is non-null and non-blank; Ptr
// reports it whenever it is non-null. Filters and grouping keys use Value,
// so blank text never matches anything.
type Text struct {
	value string
	valid bool
}

// SomeText returns a present Text holding s (which may still be blank).
func SomeText(s string) Text {
	return Text{value: s, valid: true}
}

// NoText returns an absent Text.
func NoText() Text {
	return Text{}
}

// TextFromPtr converts a nullable database/JSON value into a Text.
func TextFromPtr(s *string) Text {
	if s == nil {
		return NoText()
	}
	return SomeText(*s)
}

// Value returns the string and true if it is non-null and non-blank.
func (t Text) Value() (string, bool) {
	if !t.valid || strings.TrimSpace(t.value) == "" {
		return "", false
	}
	return t.value, true
}

// IsPresent reports whether the text is non-null and non-blank.
func (t Text) IsPresent() bool {
	_, ok := t.Value()
	return ok
}

// OrElse returns the string, or fallback when it is null or blank.
func (t Text) OrElse(fallback string) string {
	if v, ok := t.Value(); ok {
		return v
	}
	return fallback
}

// EqualFold reports whether the text is present and case-insensitively equal to s.
func (t Text) EqualFold(s string) bool {
	v, ok := t.Value()
	return ok && strings.EqualFold(v, s)
}

// HasPrefix reports whether the text is present and starts with the literal prefix.
func (t Text) HasPrefix(prefix string) bool {
	v, ok := t.Value()
	return ok && strings.HasPrefix(v, prefix)
}

// Ptr returns a pointer to the raw string, or nil when absent.
func (t Text) Ptr() *string {
	if !t.valid {
		return nil
	}
	v := t.value
	return &v
}

// String returns the raw string, or "" when absent.
func (t Text) String() string {
	return t.value
}

// MarshalJSON encodes an absent Text as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes null as absent.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TextFromPtr(s)
	return nil
}
