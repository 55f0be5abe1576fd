// Package metric computes the derived numbers shown next to charts: extents, averages,
// trends and shares of a total.
package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/masomo-dashboard/core/series"
)

// Direction of a trend between two samples.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

type (
	Range struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}

	Summary struct {
		Range
		Mean  float64 `json:"mean"`
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	// Change is the first-to-last movement of a series.
	// Defined is false when the baseline is zero; Percent is then meaningless and reported as 0.
	Change struct {
		Direction Direction `json:"direction"`
		Percent   float64   `json:"percent"`
		Defined   bool      `json:"defined"`
	}

	// Trend is a least-squares fit over sample positions (0, 1, 2...).
	Trend struct {
		Slope     float64 `json:"slope"`
		Intercept float64 `json:"intercept"`
		RSquared  float64 `json:"r_squared"`
	}
)

// Extent returns the smallest and largest values of s.
func Extent(s series.Series) (Range, error) {
	if len(s) == 0 {
		return Range{}, series.ErrEmptyInput
	}
	r := Range{Min: math.MaxFloat64, Max: -math.MaxFloat64}
	for _, smp := range s {
		if smp.Value < r.Min {
			r.Min = smp.Value
		}
		if smp.Value > r.Max {
			r.Max = smp.Value
		}
	}
	return r, nil
}

// Mean returns the arithmetic mean of s.
func Mean(s series.Series) (float64, error) {
	r, err := Extent(s)
	if err != nil {
		return 0, err
	}
	return mean(s.Values(), r), nil
}

// mean keeps the result within r: a rounded sum can push it past the extent (flat series) or overflow.
func mean(vals []float64, r Range) float64 {
	m := stat.Mean(vals, nil)
	if math.IsInf(m, 0) || math.IsNaN(m) {
		m = 0
		for i, v := range vals {
			m += (v - m) / float64(i+1)
		}
	}
	return math.Max(r.Min, math.Min(m, r.Max))
}

// Summarize computes extent, mean, total and count in one call.
func Summarize(s series.Series) (Summary, error) {
	r, err := Extent(s)
	if err != nil {
		return Summary{}, err
	}
	vals := s.Values()
	var total float64
	for _, v := range vals {
		total += v
	}
	return Summary{
		Range: r,
		Mean:  mean(vals, r),
		Total: total,
		Count: len(vals),
	}, nil
}

// TrendDirection compares two values exactly, no tolerance: floating noise may report Up or Down.
func TrendDirection(prev, curr float64) Direction {
	switch {
	case curr > prev:
		return Up
	case curr < prev:
		return Down
	default:
		return Flat
	}
}

// PercentChange returns (last-first)/first*100. A zero baseline yields ErrDivideByZero, never Inf or NaN.
func PercentChange(first, last float64) (float64, error) {
	if first == 0 {
		return 0, series.ErrDivideByZero
	}
	return (last - first) / first * 100, nil
}

// SeriesChange returns the change between the first and last samples of s.
func SeriesChange(s series.Series) (Change, error) {
	if len(s) == 0 {
		return Change{}, series.ErrEmptyInput
	}
	first, last := s[0].Value, s[len(s)-1].Value
	ch := Change{Direction: TrendDirection(first, last)}
	pct, err := PercentChange(first, last)
	if err == nil {
		ch.Percent = pct
		ch.Defined = true
	}
	return ch, nil
}

// ShareOfTotal returns value as a percentage of total. total must be > 0.
func ShareOfTotal(value, total float64) (float64, error) {
	if total <= 0 {
		return 0, series.ErrDivideByZero
	}
	return value / total * 100, nil
}

// Regression fits a line through the samples of s. Fewer than 2 samples give the zero Trend.
func Regression(s series.Series) Trend {
	n := len(s)
	if n < 2 {
		return Trend{}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := s.Values()

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0 // flat series
	}
	return Trend{Slope: slope, Intercept: intercept, RSquared: r2}
}
