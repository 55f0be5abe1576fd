package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core/series"
)

var (
	tenth, fifth = 0.1, 0.2

	gradeAverages = series.Series{
		{Category: "9", Value: 78},
		{Category: "10", Value: 82},
		{Category: "11", Value: 85},
		{Category: "12", Value: 88},
	}
)

func TestSummarize(t *testing.T) {
	sum, err := Summarize(gradeAverages)
	require.NoError(t, err)
	assert.Equal(t, 78.0, sum.Min)
	assert.Equal(t, 88.0, sum.Max)
	assert.Equal(t, 83.25, sum.Mean)
	assert.Equal(t, 333.0, sum.Total)
	assert.Equal(t, 4, sum.Count)
}

func TestEmptyInput(t *testing.T) {
	_, err := Extent(nil)
	assert.ErrorIs(t, err, series.ErrEmptyInput)

	_, err = Mean(series.Series{})
	assert.ErrorIs(t, err, series.ErrEmptyInput)

	_, err = Summarize(nil)
	assert.True(t, series.IsNoData(err))

	_, err = SeriesChange(nil)
	assert.ErrorIs(t, err, series.ErrEmptyInput)
}

func TestMeanWithinExtent(t *testing.T) {
	tests := []struct {
		name string
		s    series.Series
	}{
		{name: "single", s: series.Series{{Value: 4}}},
		{name: "flat", s: series.Series{{Value: 2}, {Value: 2}, {Value: 2}}},
		{name: "negative", s: series.Series{{Value: -10}, {Value: 3}, {Value: -0.5}}},
		{name: "grades", s: gradeAverages},
		{name: "tiny values", s: series.Series{{Value: 0.1}, {Value: 0.2}, {Value: 0.3}}},
		{name: "flat tenths", s: series.Series{{Value: 0.1}, {Value: 0.1}, {Value: 0.1}}},
		{name: "huge values", s: series.Series{{Value: 1e308}, {Value: 1e308}}},
		{name: "huge mixed", s: series.Series{{Value: 1e308}, {Value: -1e308}, {Value: 1e308}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Extent(tt.s)
			require.NoError(t, err)
			mean, err := Mean(tt.s)
			require.NoError(t, err)
			assert.LessOrEqual(t, r.Min, mean)
			assert.LessOrEqual(t, mean, r.Max)

			sum, err := Summarize(tt.s)
			require.NoError(t, err)
			assert.Equal(t, mean, sum.Mean)
		})
	}
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr float64
		want       Direction
	}{
		{name: "up", prev: 1, curr: 2, want: Up},
		{name: "down", prev: 2, curr: 1, want: Down},
		{name: "flat", prev: 3, curr: 3, want: Flat},
		{name: "no epsilon", prev: tenth + fifth, curr: 0.3, want: Down},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendDirection(tt.prev, tt.curr))
		})
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name        string
		first, last float64
		want        float64
		wantErr     error
	}{
		{name: "increase", first: 80, last: 88, want: 10},
		{name: "decrease", first: 50, last: 25, want: -50},
		{name: "unchanged", first: 7, last: 7, want: 0},
		{name: "zero baseline", first: 0, last: 10, wantErr: series.ErrDivideByZero},
		{name: "zero to zero", first: 0, last: 0, wantErr: series.ErrDivideByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PercentChange(tt.first, tt.last)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSeriesChange(t *testing.T) {
	ch, err := SeriesChange(gradeAverages)
	require.NoError(t, err)
	assert.Equal(t, Up, ch.Direction)
	assert.True(t, ch.Defined)
	assert.InDelta(t, 12.8205, ch.Percent, 1e-4)

	ch, err = SeriesChange(series.Series{{Value: 0}, {Value: 5}})
	require.NoError(t, err)
	assert.Equal(t, Change{Direction: Up}, ch)
}

func TestShareOfTotal(t *testing.T) {
	got, err := ShareOfTotal(120, 295)
	require.NoError(t, err)
	assert.InDelta(t, 40.68, got, 0.01)

	_, err = ShareOfTotal(1, 0)
	assert.ErrorIs(t, err, series.ErrDivideByZero)
	_, err = ShareOfTotal(1, -3)
	assert.ErrorIs(t, err, series.ErrDivideByZero)
}

func TestRegression(t *testing.T) {
	assert.Equal(t, Trend{}, Regression(series.Series{{Value: 1}}))

	tr := Regression(series.Series{{Value: 1}, {Value: 3}, {Value: 5}, {Value: 7}})
	assert.InDelta(t, 2, tr.Slope, 1e-9)
	assert.InDelta(t, 1, tr.Intercept, 1e-9)
	assert.InDelta(t, 1, tr.RSquared, 1e-9)

	flat := Regression(series.Series{{Value: 4}, {Value: 4}, {Value: 4}})
	assert.InDelta(t, 0, flat.Slope, 1e-9)
	assert.Zero(t, flat.RSquared)
}
