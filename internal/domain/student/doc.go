// Package student contains the domain model of a roster student record.
//
// The package has no dependencies beyond the shared domain types. It defines:
//
//   - Student, one immutable roster record
//   - Source, the port through which the roster is loaded
//
// # Optional attributes
//
// Text attributes (name, major, university, phone number, date of birth,
// gender) may be absent. They are held as shared.Text so callers cannot
// confuse "absent" with "empty string":
//
//	if major, ok := s.Major.Value(); ok {
//	    counts[major]++
//	} else {
//	    counts[UnknownMajor]++
//	}
//
// Numeric attributes are always present. An Age of 0 means unknown for
// statistics that need a real age; see HasKnownAge.
//
// # Sources
//
// Source implementations live in infrastructure:
//
//   - roster.FileSource: a JSON array on disk
//   - postgres.StudentRepository: the students table
//   - redis.RosterCache: a snapshot cache in front of another Source
//
// A Source is asked for the roster once per engine:
//
//	students, err := source.LoadStudents(ctx)
//	if err != nil {
//	    return err
//	}
//	engine := query.NewEngine(students, log)
package student
