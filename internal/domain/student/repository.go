package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// DATA SOURCE INTERFACES
// These interfaces define the contract for acquiring the roster.
// Implementations live in infrastructure.
// ══════════════════════════════════════════════════════════════════════════════

// Source supplies the ordered student roster once at engine construction.
type Source interface {
	// LoadStudents returns every student in roster order.
	// The returned slice is owned by the caller.
	LoadStudents(ctx context.Context) ([]Student, error)
}

// StaticSource serves a fixed roster, mostly useful in tests and tools.
type StaticSource []Student

// LoadStudents returns a copy of the roster.
func (s StaticSource) LoadStudents(_ context.Context) ([]Student, error) {
	out := make([]Student, len(s))
	copy(out, s)
	return out, nil
}
