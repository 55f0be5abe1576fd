package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/core/series"
)

type dashboardSource struct {
	db *schoolTable
}

var _ dashboard.Source = (*dashboardSource)(nil)

func NewDashboardSource(db *DB) dashboard.Source {
	return &dashboardSource{db: db.school}
}

func (src *dashboardSource) filter(keep func(dashboard.Score) bool) []dashboard.Score {
	src.db.RLock()
	defer src.db.RUnlock()

	res := make([]dashboard.Score, 0)
	for _, sc := range src.db.scores {
		if keep(sc) {
			res = append(res, sc)
		}
	}
	return res
}

func (src *dashboardSource) objective(scope, ref string) (dashboard.Objective, bool) {
	src.db.RLock()
	defer src.db.RUnlock()

	for _, obj := range src.db.objectives {
		if obj.Scope == scope && obj.Ref == ref {
			return obj, true
		}
	}
	return dashboard.Objective{}, false
}

func (src *dashboardSource) GradeAverages(_ context.Context, f dashboard.Filter) (series.Series, error) {
	return dashboard.Averages(src.filter(f.Match), dashboard.ByGrade), nil
}

func (src *dashboardSource) TermTrend(_ context.Context, f dashboard.Filter) (series.Series, error) {
	// every term of the selection, whatever the selected term
	f.Term = ""
	return dashboard.Averages(src.filter(f.Match), dashboard.ByTerm), nil
}

func (src *dashboardSource) SubjectDistribution(_ context.Context, f dashboard.Filter) (series.Series, error) {
	return dashboard.Counts(src.filter(f.Match), dashboard.BySubject), nil
}

func (src *dashboardSource) TargetProgress(_ context.Context, f dashboard.Filter) (dashboard.Goal, error) {
	scores := src.filter(f.Match)
	goal := dashboard.Goal{Label: "School average"}
	if obj, ok := src.objective(dashboard.ScopeSchool, f.School); ok {
		goal.Label, goal.Target = obj.Label, obj.Value
	}
	if len(scores) > 0 {
		all := dashboard.Averages(scores, func(dashboard.Score) string { return "all" })
		goal.Current = all[0].Value
	}
	return goal, nil
}

func (src *dashboardSource) studentScores(id string) ([]dashboard.Score, error) {
	scores := src.filter(func(sc dashboard.Score) bool { return sc.StudentID == id })
	if len(scores) == 0 {
		return nil, dashboard.ErrStudentNotFound
	}
	return scores, nil
}

func (src *dashboardSource) StudentScores(_ context.Context, id string) (series.Series, error) {
	scores, err := src.studentScores(id)
	if err != nil {
		return nil, err
	}
	return dashboard.Averages(scores, dashboard.ByTerm), nil
}

// StudentGoal compares the student's latest term average with their objective.
func (src *dashboardSource) StudentGoal(_ context.Context, id string) (dashboard.Goal, error) {
	scores, err := src.studentScores(id)
	if err != nil {
		return dashboard.Goal{}, err
	}
	terms := dashboard.Averages(scores, dashboard.ByTerm)
	goal := dashboard.Goal{Label: "Term goal", Current: terms[len(terms)-1].Value}
	if obj, ok := src.objective(dashboard.ScopeStudent, id); ok {
		goal.Label, goal.Target = obj.Label, obj.Value
	}
	return goal, nil
}
