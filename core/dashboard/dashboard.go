// Package dashboard assembles the analytics cards of the school dashboards out of the chart geometry.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/chart"
	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
)

var ErrStudentNotFound = errors.New("student not found")

// Card statuses
const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

type (
	Status string

	Filter struct {
		School string `query:"school" json:"school,omitempty"`
		Grade  string `query:"grade" json:"grade,omitempty"`
		Term   string `query:"term" json:"term,omitempty"`
	}

	// Goal is a (current, target) pair, e.g. the school average against its yearly target.
	Goal struct {
		Label   string  `json:"label"`
		Current float64 `json:"current"`
		Target  float64 `json:"target"`
	}

	// Source fetches the raw samples behind the dashboards.
	Source interface {
		GradeAverages(ctx context.Context, f Filter) (series.Series, error)
		TermTrend(ctx context.Context, f Filter) (series.Series, error)
		SubjectDistribution(ctx context.Context, f Filter) (series.Series, error)
		TargetProgress(ctx context.Context, f Filter) (Goal, error)
		StudentScores(ctx context.Context, studentID string) (series.Series, error)
		StudentGoal(ctx context.Context, studentID string) (Goal, error)
	}

	GradePerformance struct {
		Status Status          `json:"status"`
		Chart  *chart.BarChart `json:"chart,omitempty"`
	}

	Trend struct {
		Status     Status           `json:"status"`
		Chart      *chart.LineChart `json:"chart,omitempty"`
		Change     *metric.Change   `json:"change,omitempty"`
		Regression *metric.Trend    `json:"regression,omitempty"`
	}

	SubjectMix struct {
		Status Status          `json:"status"`
		Chart  *chart.PieChart `json:"chart,omitempty"`
	}

	Target struct {
		Status Status              `json:"status"`
		Label  string              `json:"label,omitempty"`
		Ring   *chart.ProgressRing `json:"ring,omitempty"`
	}

	Overview struct {
		Filter           Filter           `json:"filter"`
		GradePerformance GradePerformance `json:"grade_performance"`
		Trend            Trend            `json:"trend"`
		SubjectMix       SubjectMix       `json:"subject_mix"`
		Target           Target           `json:"target"`
		GeneratedAt      time.Time        `json:"generated_at"` // UTC
	}

	StudentReport struct {
		StudentID   string    `json:"student_id"`
		Trend       Trend     `json:"trend"`
		Target      Target    `json:"target"`
		GeneratedAt time.Time `json:"generated_at"` // UTC
	}

	Service struct {
		src  Source
		conf *core.Config
	}
)

var now = func() time.Time { return time.Now().UTC() } // mockable

func NewService(src Source, conf *core.Config) *Service {
	return &Service{src: src, conf: conf}
}

// Overview fetches the four school dashboard series concurrently and lays them out.
// Results arriving after ctx is done are dropped and ctx.Err() is returned.
func (svc *Service) Overview(ctx context.Context, f Filter) (Overview, error) {
	var (
		grades, trend, mix series.Series
		goal               Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grades, err = svc.src.GradeAverages(gctx, f)
		return errors.Wrap(err, "fetching grade averages")
	})
	g.Go(func() (err error) {
		trend, err = svc.src.TermTrend(gctx, f)
		return errors.Wrap(err, "fetching term trend")
	})
	g.Go(func() (err error) {
		mix, err = svc.src.SubjectDistribution(gctx, f)
		return errors.Wrap(err, "fetching subject distribution")
	})
	g.Go(func() (err error) {
		goal, err = svc.src.TargetProgress(gctx, f)
		return errors.Wrap(err, "fetching target progress")
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	if err := ctx.Err(); err != nil {
		return Overview{}, err
	}

	ov := Overview{Filter: f, GeneratedAt: now()}
	var err error
	if ov.GradePerformance, err = svc.gradePerformance(grades); err != nil {
		return Overview{}, errors.Wrap(err, "grade performance")
	}
	if ov.Trend, err = svc.trend(trend); err != nil {
		return Overview{}, errors.Wrap(err, "trend")
	}
	if ov.SubjectMix, err = svc.subjectMix(mix); err != nil {
		return Overview{}, errors.Wrap(err, "subject mix")
	}
	if ov.Target, err = svc.target(goal); err != nil {
		return Overview{}, errors.Wrap(err, "target")
	}
	return ov, nil
}

// StudentReport lays out a student's score trend and progress towards their goal.
func (svc *Service) StudentReport(ctx context.Context, studentID string) (StudentReport, error) {
	var (
		scores series.Series
		goal   Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		scores, err = svc.src.StudentScores(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		goal, err = svc.src.StudentGoal(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return StudentReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return StudentReport{}, err
	}

	rep := StudentReport{StudentID: studentID, GeneratedAt: now()}
	var err error
	if rep.Trend, err = svc.trend(scores); err != nil {
		return StudentReport{}, errors.Wrap(err, "trend")
	}
	if rep.Target, err = svc.target(goal); err != nil {
		return StudentReport{}, errors.Wrap(err, "target")
	}
	return rep, nil
}

func (svc *Service) gradePerformance(s series.Series) (GradePerformance, error) {
	opts := chart.DefaultBarOptions()
	opts.Height = svc.conf.Chart.Height
	bc, err := chart.Bars(s, opts)
	if err != nil {
		if series.IsNoData(err) {
			return GradePerformance{Status: StatusNoData}, nil
		}
		return GradePerformance{}, err
	}
	return GradePerformance{Status: StatusOK, Chart: &bc}, nil
}

func (svc *Service) trend(s series.Series) (Trend, error) {
	opts := chart.DefaultLineOptions()
	opts.Height = svc.conf.Chart.Height
	lc, err := chart.Line(s, opts)
	if err != nil {
		if series.IsNoData(err) {
			return Trend{Status: StatusNoData}, nil
		}
		return Trend{}, err
	}
	ch, err := metric.SeriesChange(s)
	if err != nil {
		return Trend{}, err
	}
	reg := metric.Regression(s)
	return Trend{Status: StatusOK, Chart: &lc, Change: &ch, Regression: &reg}, nil
}

func (svc *Service) subjectMix(s series.Series) (SubjectMix, error) {
	opts := chart.DefaultPieOptions()
	opts.Radius = svc.conf.Chart.PieRadius
	pc, err := chart.Pie(s, opts)
	if err != nil {
		if series.IsNoData(err) {
			return SubjectMix{Status: StatusNoData}, nil
		}
		return SubjectMix{}, err
	}
	return SubjectMix{Status: StatusOK, Chart: &pc}, nil
}

// target shows no data rather than failing when no target is set.
func (svc *Service) target(goal Goal) (Target, error) {
	opts := chart.DefaultProgressOptions()
	opts.Radius = svc.conf.Chart.ProgressRad
	ring, err := chart.Progress(goal.Current, goal.Target, opts)
	if err != nil {
		if errors.Is(err, series.ErrDivideByZero) {
			return Target{Status: StatusNoData, Label: goal.Label}, nil
		}
		return Target{}, err
	}
	return Target{Status: StatusOK, Label: goal.Label, Ring: &ring}, nil
}
