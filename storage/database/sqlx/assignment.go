package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
)

// orderable columns of the assignment table
var assignmentOrderings = map[string]string{
	"published_at": "published_at",
	"title":        "title",
	"due_date":     "due_date",
}

type (
	assignmentRepository struct {
		db *sqlx.DB
	}

	assignmentRow struct {
		ID          string          `db:"id"`
		Kind        string          `db:"kind"`
		Title       string          `db:"title"`
		Description string          `db:"description"`
		Subject     string          `db:"subject"`
		Grade       string          `db:"grade"`
		DueDate     sql.NullTime    `db:"due_date"`
		TotalPoints float64         `db:"total_points"`
		Rubric      json.RawMessage `db:"rubric"`
		Questions   json.RawMessage `db:"questions"`
		Attachments json.RawMessage `db:"attachments"`
		PublishedAt time.Time       `db:"published_at"`
	}
)

var _ coursework.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) coursework.Repository {
	return &assignmentRepository{db: db}
}

func toRow(a coursework.Assignment) (assignmentRow, error) {
	row := assignmentRow{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Title:       a.Title,
		Description: a.Description,
		Subject:     a.Subject,
		Grade:       a.Grade,
		TotalPoints: a.TotalPoints,
		PublishedAt: a.PublishedAt,
	}
	if a.DueDate != nil {
		row.DueDate = sql.NullTime{Time: *a.DueDate, Valid: true}
	}

	var err error
	if row.Rubric, err = marshalList(a.Rubric); err != nil {
		return row, errors.Wrap(err, "encoding rubric")
	}
	if row.Questions, err = marshalList(a.Questions); err != nil {
		return row, errors.Wrap(err, "encoding questions")
	}
	if row.Attachments, err = marshalList(a.Attachments); err != nil {
		return row, errors.Wrap(err, "encoding attachments")
	}
	return row, nil
}

// marshalList encodes a nil slice as an empty JSON array.
func marshalList[T any](items []T) (json.RawMessage, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (row assignmentRow) toAssignment() (coursework.Assignment, error) {
	a := coursework.Assignment{
		ID:   row.ID,
		Kind: coursework.Kind(row.Kind),
		Details: coursework.Details{
			Title:       row.Title,
			Description: row.Description,
			Subject:     row.Subject,
			Grade:       row.Grade,
			TotalPoints: row.TotalPoints,
		},
		PublishedAt: row.PublishedAt.UTC(),
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time.UTC()
		a.DueDate = &due
	}
	if err := json.Unmarshal(row.Rubric, &a.Rubric); err != nil {
		return a, errors.Wrap(err, "decoding rubric")
	}
	if err := json.Unmarshal(row.Questions, &a.Questions); err != nil {
		return a, errors.Wrap(err, "decoding questions")
	}
	if err := json.Unmarshal(row.Attachments, &a.Attachments); err != nil {
		return a, errors.Wrap(err, "decoding attachments")
	}
	return a, nil
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a coursework.Assignment) (coursework.Assignment, error) {
	row, err := toRow(a)
	if err != nil {
		return coursework.Assignment{}, err
	}
	q := `INSERT INTO assignment
		(id, kind, title, description, subject, grade, due_date, total_points, rubric, questions, attachments, published_at)
		VALUES
		(:id, :kind, :title, :description, :subject, :grade, :due_date, :total_points, :rubric, :questions, :attachments, :published_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return coursework.Assignment{}, dbError(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string) (coursework.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coursework.Assignment{}, coursework.ErrNotFound
		}
		return coursework.Assignment{}, dbError(err, "selecting assignment")
	}
	return row.toAssignment()
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter coursework.QueryFilter) ([]coursework.Assignment, error) {
	q, args := assignmentQuery(filter)
	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, dbError(err, "selecting assignments")
	}

	res := make([]coursework.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAssignment()
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

// assignmentQuery builds the SELECT of QueryAssignments, AND-ing the set filter fields.
func assignmentQuery(filter coursework.QueryFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Kind != "" {
		conds = append(conds, "kind = "+arg(string(filter.Kind)))
	}
	if filter.Subject != "" {
		conds = append(conds, "LOWER(subject) = LOWER("+arg(filter.Subject)+")")
	}
	if filter.Grade != "" {
		conds = append(conds, "grade = "+arg(filter.Grade))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM assignment")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	col, ok := assignmentOrderings[filter.Ordering.Field]
	if !ok {
		col = "published_at"
	}
	ord := core.DBOrdering{Field: col, Ascending: filter.Ordering.Ascending}
	b.WriteString(" ORDER BY ")
	b.WriteString(ord.String())
	b.WriteString(", id")
	return b.String(), args
}
