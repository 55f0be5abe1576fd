package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/core/series"
)

type dashboardSource struct {
	db *sqlx.DB
}

var _ dashboard.Source = (*dashboardSource)(nil)

// dbError wraps err with msg. A closed connection pool cannot recover, so it is reported as a shutdown.
func dbError(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}

func NewDashboardSource(db *sqlx.DB) dashboard.Source {
	return &dashboardSource{db: db}
}

// scoreWhere returns the WHERE clause (possibly empty) matching the set fields of f.
func scoreWhere(f dashboard.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(col, v string) {
		if v != "" {
			args = append(args, v)
			conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
		}
	}
	add("school", f.School)
	add("grade", f.Grade)
	add("term", f.Term)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (src dashboardSource) aggregate(ctx context.Context, agg, col string, f dashboard.Filter) (series.Series, error) {
	where, args := scoreWhere(f)
	q := "SELECT " + col + " AS category, " + agg + " AS value FROM score" + where + " GROUP BY " + col

	var s series.Series
	if err := src.db.SelectContext(ctx, &s, q, args...); err != nil {
		return nil, dbError(err, "aggregating scores by "+col)
	}
	dashboard.SortCategories(s)
	return s, nil
}

func (src dashboardSource) GradeAverages(ctx context.Context, f dashboard.Filter) (series.Series, error) {
	return src.aggregate(ctx, "AVG(value)", "grade", f)
}

func (src dashboardSource) TermTrend(ctx context.Context, f dashboard.Filter) (series.Series, error) {
	f.Term = ""
	return src.aggregate(ctx, "AVG(value)", "term", f)
}

func (src dashboardSource) SubjectDistribution(ctx context.Context, f dashboard.Filter) (series.Series, error) {
	return src.aggregate(ctx, "COUNT(*)", "subject", f)
}

func (src dashboardSource) objective(ctx context.Context, scope, ref string) (dashboard.Objective, bool, error) {
	var obj dashboard.Objective
	err := src.db.GetContext(ctx, &obj, `SELECT scope, ref, label, value FROM objective WHERE scope = $1 AND ref = $2`, scope, ref)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return obj, false, nil
	case err != nil:
		return obj, false, dbError(err, "selecting objective")
	}
	return obj, true, nil
}

func (src dashboardSource) TargetProgress(ctx context.Context, f dashboard.Filter) (dashboard.Goal, error) {
	where, args := scoreWhere(f)
	var avg sql.NullFloat64
	if err := src.db.GetContext(ctx, &avg, "SELECT AVG(value) FROM score"+where, args...); err != nil {
		return dashboard.Goal{}, dbError(err, "averaging scores")
	}

	goal := dashboard.Goal{Label: "School average", Current: avg.Float64}
	obj, ok, err := src.objective(ctx, dashboard.ScopeSchool, f.School)
	if err != nil {
		return dashboard.Goal{}, err
	}
	if ok {
		goal.Label, goal.Target = obj.Label, obj.Value
	}
	return goal, nil
}

func (src dashboardSource) StudentScores(ctx context.Context, id string) (series.Series, error) {
	var s series.Series
	q := `SELECT term AS category, AVG(value) AS value FROM score WHERE student_id = $1 GROUP BY term`
	if err := src.db.SelectContext(ctx, &s, q, id); err != nil {
		return nil, dbError(err, "selecting student scores")
	}
	if len(s) == 0 {
		return nil, dashboard.ErrStudentNotFound
	}
	dashboard.SortCategories(s)
	return s, nil
}

func (src dashboardSource) StudentGoal(ctx context.Context, id string) (dashboard.Goal, error) {
	terms, err := src.StudentScores(ctx, id)
	if err != nil {
		return dashboard.Goal{}, err
	}
	goal := dashboard.Goal{Label: "Term goal", Current: terms[len(terms)-1].Value}
	obj, ok, err := src.objective(ctx, dashboard.ScopeStudent, id)
	if err != nil {
		return dashboard.Goal{}, err
	}
	if ok {
		goal.Label, goal.Target = obj.Label, obj.Value
	}
	return goal, nil
}

// Seed inserts the scores & objectives in one transaction.
func Seed(ctx context.Context, db *sqlx.DB, scores []dashboard.Score, objectives []dashboard.Objective) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, sc := range scores {
		q := `INSERT INTO score (student_id, school, grade, term, subject, value)
			VALUES (:student_id, :school, :grade, :term, :subject, :value)`
		if _, err = tx.NamedExecContext(ctx, q, sc); err != nil {
			return errors.Wrap(err, "inserting score")
		}
	}
	for _, obj := range objectives {
		q := `INSERT INTO objective (scope, ref, label, value) VALUES (:scope, :ref, :label, :value)
			ON CONFLICT (scope, ref) DO UPDATE SET label = EXCLUDED.label, value = EXCLUDED.value`
		if _, err = tx.NamedExecContext(ctx, q, obj); err != nil {
			return errors.Wrap(err, "inserting objective")
		}
	}
	return errors.Wrap(tx.Commit(), "committing seed")
}
