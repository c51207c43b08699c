// Package roster reads student rosters from JSON documents.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"

	"github.com/google/uuid"
)

// FileSource loads the roster from a JSON file holding an array of students.
// Missing fields and null text attributes become absent values.
type FileSource struct {
	path  string
	newID func() string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, newID: uuid.NewString}
}

var _ student.Source = (*FileSource)(nil)

// LoadStudents reads and decodes the whole file.
func (s *FileSource) LoadStudents(ctx context.Context) ([]student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.WrapError("roster", "LoadStudents", shared.ErrRosterNotFound,
				fmt.Sprintf("roster file %q does not exist", s.path), err)
		}
		return nil, shared.WrapError("roster", "LoadStudents", shared.ErrRosterUnavailable,
			fmt.Sprintf("cannot open roster file %q", s.path), err)
	}
	defer f.Close()

	return decode(f, s.newID)
}

// Decode reads a JSON roster from r, assigning fresh IDs where missing.
func Decode(r io.Reader) ([]student.Student, error) {
	return decode(r, uuid.NewString)
}

func decode(r io.Reader, newID func() string) ([]student.Student, error) {
	var students []student.Student
	if err := json.NewDecoder(r).Decode(&students); err != nil {
		return nil, shared.WrapError("roster", "Decode", shared.ErrRosterMalformed,
			"roster must be a JSON array of student objects", err)
	}

	if students == nil {
		students = make([]student.Student, 0)
	}
	for i := range students {
		if strings.TrimSpace(students[i].ID) == "" {
			students[i].ID = newID()
		}
	}
	return students, nil
}
