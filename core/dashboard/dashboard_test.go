package dashboard

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/chart"
	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
)

type sourceMock struct {
	grades, trend, mix, scores series.Series
	goal, studentGoal          Goal
	err                        error
	// seen records the filters received, per call
	seen chan Filter
}

func (s *sourceMock) record(f Filter) {
	if s.seen != nil {
		s.seen <- f
	}
}

func (s *sourceMock) GradeAverages(_ context.Context, f Filter) (series.Series, error) {
	s.record(f)
	return s.grades, nil
}

func (s *sourceMock) TermTrend(_ context.Context, f Filter) (series.Series, error) {
	s.record(f)
	return s.trend, s.err
}

func (s *sourceMock) SubjectDistribution(_ context.Context, f Filter) (series.Series, error) {
	s.record(f)
	return s.mix, nil
}

func (s *sourceMock) TargetProgress(_ context.Context, f Filter) (Goal, error) {
	s.record(f)
	return s.goal, nil
}

func (s *sourceMock) StudentScores(_ context.Context, id string) (series.Series, error) {
	if id != "s1" {
		return nil, ErrStudentNotFound
	}
	return s.scores, nil
}

func (s *sourceMock) StudentGoal(_ context.Context, id string) (Goal, error) {
	if id != "s1" {
		return Goal{}, ErrStudentNotFound
	}
	return s.studentGoal, nil
}

func fixedNow(t *testing.T) time.Time {
	ts := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
	return ts
}

func fullSource() *sourceMock {
	return &sourceMock{
		grades: series.Series{{Category: "9", Value: 78}, {Category: "10", Value: 82}, {Category: "11", Value: 85}, {Category: "12", Value: 88}},
		trend:  series.Series{{Category: "T1", Value: 78}, {Category: "T2", Value: 84}, {Category: "T3", Value: 88}},
		mix: series.Series{
			{Category: "A", Value: 45}, {Category: "B", Value: 120}, {Category: "C", Value: 85},
			{Category: "D", Value: 30}, {Category: "E", Value: 15},
		},
		goal:        Goal{Label: "School average", Current: 85, Target: 90},
		scores:      series.Series{{Category: "T1", Value: 60}, {Category: "T2", Value: 60}},
		studentGoal: Goal{Label: "Term goal", Current: 60, Target: 50},
	}
}

func TestService_Overview(t *testing.T) {
	ts := fixedNow(t)
	src := fullSource()
	src.seen = make(chan Filter, 4)
	svc := NewService(src, core.NewTestConfig())
	f := Filter{School: "kis", Grade: "10", Term: "2026-1"}

	ov, err := svc.Overview(context.Background(), f)
	require.NoError(t, err)
	close(src.seen)
	for got := range src.seen {
		assert.Equal(t, f, got)
	}

	assert.Equal(t, f, ov.Filter)
	assert.Equal(t, ts, ov.GeneratedAt)

	require.Equal(t, StatusOK, ov.GradePerformance.Status)
	bars := ov.GradePerformance.Chart.Bars
	assert.Equal(t, chart.TierExcellent, bars[3].Tier)
	assert.Equal(t, chart.TierNeedsImprovement, bars[1].Tier)

	require.Equal(t, StatusOK, ov.Trend.Status)
	assert.Equal(t, metric.Up, ov.Trend.Change.Direction)
	assert.True(t, ov.Trend.Change.Defined)
	assert.InDelta(t, 12.82, ov.Trend.Change.Percent, 0.01)
	assert.InDelta(t, 5, ov.Trend.Regression.Slope, 1e-9)

	require.Equal(t, StatusOK, ov.SubjectMix.Status)
	assert.Equal(t, 295.0, ov.SubjectMix.Chart.Total)

	require.Equal(t, StatusOK, ov.Target.Status)
	assert.Equal(t, "School average", ov.Target.Label)
	assert.Equal(t, 94, ov.Target.Ring.Percentage)
	assert.False(t, ov.Target.Ring.Complete)
}

func TestService_Overview_noData(t *testing.T) {
	src := &sourceMock{
		mix:  series.Series{{Category: "A"}, {Category: "B"}},
		goal: Goal{Label: "unset"},
	}
	svc := NewService(src, core.NewTestConfig())

	ov, err := svc.Overview(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, GradePerformance{Status: StatusNoData}, ov.GradePerformance)
	assert.Equal(t, Trend{Status: StatusNoData}, ov.Trend)
	assert.Equal(t, SubjectMix{Status: StatusNoData}, ov.SubjectMix)
	assert.Equal(t, Target{Status: StatusNoData, Label: "unset"}, ov.Target)
}

func TestService_Overview_errors(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		src := fullSource()
		src.err = errors.New("db down")
		_, err := NewService(src, core.NewTestConfig()).Overview(context.Background(), Filter{})
		require.Error(t, err)
		assert.Equal(t, src.err, errors.Cause(err))
		assert.Contains(t, err.Error(), "fetching term trend")
	})

	t.Run("invalid samples", func(t *testing.T) {
		src := fullSource()
		src.mix = append(src.mix, series.Sample{Category: "F", Value: -3})
		_, err := NewService(src, core.NewTestConfig()).Overview(context.Background(), Filter{})
		assert.ErrorIs(t, err, series.ErrInvalidConfiguration)
	})

	t.Run("stale results are dropped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ov, err := NewService(fullSource(), core.NewTestConfig()).Overview(ctx, Filter{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Overview{}, ov)
	})
}

func TestService_StudentReport(t *testing.T) {
	ts := fixedNow(t)
	svc := NewService(fullSource(), core.NewTestConfig())

	rep, err := svc.StudentReport(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", rep.StudentID)
	assert.Equal(t, ts, rep.GeneratedAt)

	require.Equal(t, StatusOK, rep.Trend.Status)
	assert.Equal(t, metric.Flat, rep.Trend.Change.Direction)
	assert.Equal(t, "M 0 100 L 100 100", rep.Trend.Chart.Path)

	require.Equal(t, StatusOK, rep.Target.Status)
	assert.Equal(t, 100, rep.Target.Ring.Percentage)
	assert.Equal(t, chart.StatusCompleted, rep.Target.Ring.Status)

	_, err = svc.StudentReport(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAverages(t *testing.T) {
	scores := []Score{
		{Grade: "10", Term: "T1", Subject: "Math", Value: 80},
		{Grade: "9", Term: "T1", Subject: "Math", Value: 70},
		{Grade: "10", Term: "T2", Subject: "Art", Value: 90},
		{Grade: "12", Term: "T2", Subject: "Math", Value: 60},
	}

	assert.Equal(t, series.Series{
		{Category: "9", Value: 70},
		{Category: "10", Value: 85},
		{Category: "12", Value: 60},
	}, Averages(scores, ByGrade))

	assert.Equal(t, series.Series{
		{Category: "T1", Value: 75},
		{Category: "T2", Value: 75},
	}, Averages(scores, ByTerm))

	assert.Equal(t, series.Series{
		{Category: "Art", Value: 1},
		{Category: "Math", Value: 3},
	}, Counts(scores, BySubject))

	assert.Empty(t, Averages(nil, ByGrade))
}

func TestSortCategories(t *testing.T) {
	want := []string{"-1", "2", "9", "010", "10", "1a", "Form 1", "NaN", "b"}

	for seed := int64(0); seed < 50; seed++ {
		s := make(series.Series, len(want))
		for i, c := range want {
			s[i] = series.Sample{Category: c}
		}
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })

		SortCategories(s)
		assert.Equal(t, want, s.Categories(), "seed %d", seed)
	}
}

func TestAverages_mixedCategoriesStable(t *testing.T) {
	scores := []Score{
		{Grade: "2", Value: 50}, {Grade: "10", Value: 60}, {Grade: "1a", Value: 70},
		{Grade: "Form 1", Value: 80}, {Grade: "9", Value: 90}, {Grade: "2", Value: 70},
	}
	first := Averages(scores, ByGrade)
	assert.Equal(t, []string{"2", "9", "10", "1a", "Form 1"}, first.Categories())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Averages(scores, ByGrade))
	}
}

func TestFilter_Match(t *testing.T) {
	sc := Score{School: "kis", Grade: "10", Term: "T1"}
	tests := []struct {
		f    Filter
		want bool
	}{
		{f: Filter{}, want: true},
		{f: Filter{School: "kis", Grade: "10"}, want: true},
		{f: Filter{School: "kis", Term: "T2"}, want: false},
		{f: Filter{Grade: "9"}, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.f.Match(sc), "%+v", tt.f)
	}
}
