package sqlxrepos

import (
	"database/sql"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
)

func TestAssignmentQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   coursework.QueryFilter
		wantQ    string
		wantArgs []interface{}
	}{
		{
			name:   "no filter",
			filter: coursework.QueryFilter{},
			wantQ:  "SELECT * FROM assignment ORDER BY published_at DESC, id",
		},
		{
			name:     "kind & grade, by title",
			filter:   coursework.QueryFilter{Kind: coursework.KindQuiz, Grade: "10", Ordering: core.DBOrdering{Field: "title", Ascending: true}},
			wantQ:    "SELECT * FROM assignment WHERE kind = $1 AND grade = $2 ORDER BY title ASC, id",
			wantArgs: []interface{}{"quiz", "10"},
		},
		{
			name:     "subject & search",
			filter:   coursework.QueryFilter{Subject: "Math", Search: "essay"},
			wantQ:    "SELECT * FROM assignment WHERE LOWER(subject) = LOWER($1) AND (title ILIKE $2 OR description ILIKE $2) ORDER BY published_at DESC, id",
			wantArgs: []interface{}{"Math", "%essay%"},
		},
		{
			name:   "unknown ordering field",
			filter: coursework.QueryFilter{Ordering: core.DBOrdering{Field: "id; DROP TABLE assignment", Ascending: true}},
			wantQ:  "SELECT * FROM assignment ORDER BY published_at ASC, id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := assignmentQuery(tt.filter)
			assert.Equal(t, tt.wantQ, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestScoreWhere(t *testing.T) {
	where, args := scoreWhere(dashboard.Filter{})
	assert.Empty(t, where)
	assert.Nil(t, args)

	where, args = scoreWhere(dashboard.Filter{School: "kis", Term: "T1"})
	assert.Equal(t, " WHERE school = $1 AND term = $2", where)
	assert.Equal(t, []interface{}{"kis", "T1"}, args)
}

func TestAssignmentRow(t *testing.T) {
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a := coursework.Assignment{
		ID:   "a1",
		Kind: coursework.KindQuiz,
		Details: coursework.Details{
			Title: "Algebra", Subject: "Math", Grade: "10", DueDate: &due, TotalPoints: 10,
		},
		Questions: []coursework.Question{{
			ID: "q1", Type: coursework.MultipleChoice, Prompt: "2+2?", Points: 10,
			Options:         []coursework.Option{{ID: "o1", Text: "4"}, {ID: "o2", Text: "5"}},
			CorrectOptionID: "o1",
		}},
		PublishedAt: due.Add(-time.Hour),
	}

	row, err := toRow(a)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(row.Rubric))
	assert.JSONEq(t, "[]", string(row.Attachments))
	assert.True(t, row.DueDate.Valid)

	got, err := row.toAssignment()
	require.NoError(t, err)
	assert.Equal(t, a.Questions, got.Questions)
	assert.Equal(t, a.Details, got.Details)
	assert.Empty(t, got.Rubric)
}

func TestDBError(t *testing.T) {
	err := dbError(sql.ErrConnDone, "selecting assignment")
	assert.True(t, core.IsShutdown(errors.Wrap(err, "getting assignment")))
	assert.EqualError(t, err, "selecting assignment: sql: connection is already closed")

	err = dbError(errors.New("syntax error"), "selecting assignment")
	assert.False(t, core.IsShutdown(err))
	assert.EqualError(t, err, "selecting assignment: syntax error")
}
