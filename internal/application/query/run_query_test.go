package query

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/alem-hub/student-insights/internal/domain/shared"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunQueryHandler_Lists(t *testing.T) {
	h := NewRunQueryHandler(newEngine(fixture()))

	res, err := h.Handle(context.Background(), RunQuery{Operation: "studentsfromuniversity", University: "MIT"})
	require.NoError(t, err)

	assert.Equal(t, "StudentsFromUniversity", res.Operation)
	require.NotNil(t, res.Count)
	assert.Equal(t, 2, *res.Count)
	assert.Equal(t, []string{"ada", "cy"}, ids(res.Result.([]student.Student)))
}

func TestRunQueryHandler_Scalars(t *testing.T) {
	h := NewRunQueryHandler(newEngine(fixture()))

	res, err := h.Handle(context.Background(), RunQuery{Operation: "TotalCreditHours"})
	require.NoError(t, err)
	assert.Nil(t, res.Count)
	assert.Equal(t, 435, res.Result)

	res, err = h.Handle(context.Background(), RunQuery{Operation: "YoungestAndOldest"})
	require.NoError(t, err)
	out, err := json.Marshal(res.Result)
	require.NoError(t, err)
	var pair []map[string]any
	require.NoError(t, json.Unmarshal(out, &pair))
	require.Len(t, pair, 2)
	assert.Equal(t, "ed", pair[0]["id"])
	assert.Equal(t, "cy", pair[1]["id"])
}

func TestRunQueryHandler_OldestOnEmptyRoster(t *testing.T) {
	h := NewRunQueryHandler(newEngine(nil))

	res, err := h.Handle(context.Background(), RunQuery{Operation: "OldestStudent"})
	require.NoError(t, err)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation":"OldestStudent","result":null}`, string(out))
}

func TestRunQueryHandler_Errors(t *testing.T) {
	h := NewRunQueryHandler(newEngine(fixture()))
	ctx := context.Background()

	tests := []struct {
		name string
		q    RunQuery
		kind error
	}{
		{"unknown operation", RunQuery{Operation: "DropTable"}, shared.ErrInvalidInput},
		{"missing university", RunQuery{Operation: "StudentsFromUniversity", University: "  "}, shared.ErrEmptyValue},
		{"missing major", RunQuery{Operation: "GenderRatioForMajor"}, shared.ErrEmptyValue},
		{"missing area code", RunQuery{Operation: "StudentsByPhoneAreaCode"}, shared.ErrEmptyValue},
		{"bad month", RunQuery{Operation: "StudentsBornInMonth", Month: 13}, shared.ErrValueOutOfRange},
		{"bad percent", RunQuery{Operation: "TopStudentsByGPA", Percent: 0}, shared.ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Handle(ctx, tt.q)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestRunQueryHandler_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunQueryHandler(newEngine(fixture())).Handle(ctx, RunQuery{Operation: "StudentCount"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOperations_EveryEntryRuns(t *testing.T) {
	h := NewRunQueryHandler(newEngine(fixture()))
	params := RunQuery{University: "MIT", Major: "Physics", AreaCode: "617", Year: 2026, Month: 6, MinCredits: 60, Percent: 25}

	names := Operations()
	assert.Len(t, names, len(catalog))
	assert.IsIncreasing(t, names)

	for _, name := range names {
		q := params
		q.Operation = name
		res, err := h.Handle(context.Background(), q)
		require.NoError(t, err, name)
		assert.Equal(t, name, res.Operation)
	}
}

func TestRunQueryHandler_LogsResultSize(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(fixture(), logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug}))

	_, err := NewRunQueryHandler(e).Handle(context.Background(), RunQuery{Operation: "StudentsFromUniversity", University: "MIT"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"operation":"StudentsFromUniversity"`)
	assert.Contains(t, buf.String(), `"result_size":2`)
}
