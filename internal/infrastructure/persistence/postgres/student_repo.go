package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"
	"github.com/alem-hub/student-insights/pkg/retry"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// studentColumns is the column order shared by SELECT and COPY.
var studentColumns = []string{
	"id", "position", "name", "gpa", "age", "is_international", "major",
	"university", "scholarship_recipient", "graduation_year", "credit_hours",
	"phone_number", "date_of_birth", "gender",
}

const selectStudents = `
	SELECT id, position, name, gpa, age, is_international, major,
	       university, scholarship_recipient, graduation_year, credit_hours,
	       phone_number, date_of_birth, gender
	FROM students
	ORDER BY position
`

// StudentRepository reads and replaces the roster stored in PostgreSQL.
// It implements student.Source.
type StudentRepository struct {
	conn    *Connection
	retrier *retry.Retrier
}

// NewStudentRepository creates a new StudentRepository. Transient errors are
// retried and each retry is logged as a warning. A nil logger discards output.
func NewStudentRepository(conn *Connection, log *logger.Logger) *StudentRepository {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("student_repository"))

	return &StudentRepository{
		conn: conn,
		retrier: retry.DatabaseRetrier(
			retry.WithRetryIf(IsTransient),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				log.Warn("retrying postgres call",
					logger.Int("attempt", attempt),
					logger.Duration("delay", delay),
					logger.Err(err))
			}),
		),
	}
}

var _ student.Source = (*StudentRepository)(nil)

// LoadStudents returns the roster in stored position order.
// Transient failures are retried; the final error is a roster DomainError.
func (r *StudentRepository) LoadStudents(ctx context.Context) ([]student.Student, error) {
	students, err := retry.DoWithData(ctx, r.retrier, r.load)
	if err != nil {
		if IsUndefinedTable(err) {
			return nil, shared.WrapError("roster", "LoadStudents", shared.ErrNotFound,
				"students table does not exist, run migrate first", err)
		}
		return nil, shared.WrapError("roster", "LoadStudents", shared.ErrServiceUnavailable,
			"failed to load students from postgres", err)
	}
	return students, nil
}

func (r *StudentRepository) load(ctx context.Context) ([]student.Student, error) {
	rows, err := r.conn.Query(ctx, selectStudents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]student.Student, 0)
	for rows.Next() {
		var row studentRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return students, nil
}

// ReplaceAll swaps the stored roster for students, keeping their order.
// Runs in a single transaction so readers never observe a partial roster.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []student.Student) (int64, error) {
	var copied int64
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, "DELETE FROM students"); err != nil {
				return fmt.Errorf("failed to clear students: %w", err)
			}
			n, err := tx.CopyFrom(ctx,
				pgx.Identifier{"students"},
				studentColumns,
				pgx.CopyFromRows(copyRows(students)),
			)
			if err != nil {
				return fmt.Errorf("failed to copy students: %w", err)
			}
			copied = n
			return nil
		})
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, shared.WrapError("roster", "ReplaceAll", shared.ErrInvalidEntity,
				"duplicate student id in roster", err)
		}
		return 0, shared.WrapError("roster", "ReplaceAll", shared.ErrServiceUnavailable,
			"failed to store students in postgres", err)
	}
	return copied, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row mapping
// ─────────────────────────────────────────────────────────────────────────────

// studentRow mirrors one students row; nullable text columns scan into pointers.
type studentRow struct {
	ID                   string
	Position             int
	Name                 *string
	GPA                  float64
	Age                  int
	IsInternational      bool
	Major                *string
	University           *string
	ScholarshipRecipient bool
	GraduationYear       int
	CreditHours          int
	PhoneNumber          *string
	DateOfBirth          *string
	Gender               *string
}

func (r *studentRow) targets() []any {
	return []any{
		&r.ID, &r.Position, &r.Name, &r.GPA, &r.Age, &r.IsInternational, &r.Major,
		&r.University, &r.ScholarshipRecipient, &r.GraduationYear, &r.CreditHours,
		&r.PhoneNumber, &r.DateOfBirth, &r.Gender,
	}
}

func (r studentRow) toDomain() student.Student {
	return student.Student{
		ID:                   r.ID,
		Name:                 shared.TextFromPtr(r.Name),
		GPA:                  r.GPA,
		Age:                  r.Age,
		IsInternational:      r.IsInternational,
		Major:                shared.TextFromPtr(r.Major),
		University:           shared.TextFromPtr(r.University),
		ScholarshipRecipient: r.ScholarshipRecipient,
		GraduationYear:       r.GraduationYear,
		CreditHours:          r.CreditHours,
		PhoneNumber:          shared.TextFromPtr(r.PhoneNumber),
		DateOfBirth:          shared.TextFromPtr(r.DateOfBirth),
		Gender:               shared.TextFromPtr(r.Gender),
	}
}

// copyRows lays students out in studentColumns order, position = slice index.
func copyRows(students []student.Student) [][]any {
	rows := make([][]any, len(students))
	for i, s := range students {
		rows[i] = []any{
			s.ID, i, s.Name.Ptr(), s.GPA, s.Age, s.IsInternational, s.Major.Ptr(),
			s.University.Ptr(), s.ScholarshipRecipient, s.GraduationYear, s.CreditHours,
			s.PhoneNumber.Ptr(), s.DateOfBirth.Ptr(), s.Gender.Ptr(),
		}
	}
	return rows
}
