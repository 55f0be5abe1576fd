package chart

import (
	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
)

// gridRatios are the fixed y-axis gridlines, from the top down.
var gridRatios = []float64{1, 0.75, 0.5, 0.25, 0}

// bar width as a share of its band; the rest is split evenly on both sides.
const barFill = 0.6

type (
	Bar struct {
		Category string  `json:"category"`
		Value    float64 `json:"value"`
		// Height in pixels.
		Height float64 `json:"height"`
		// X and Width are percentages of the plot width.
		X     float64 `json:"x"`
		Width float64 `json:"width"`
		Tier  Tier    `json:"tier"`
		Color Color   `json:"color"`
	}

	Gridline struct {
		Value float64 `json:"value"`
		// Offset in pixels from the plot bottom.
		Offset float64 `json:"offset"`
	}

	BarChart struct {
		Bars       []Bar          `json:"bars"`
		Gridlines  []Gridline     `json:"gridlines,omitempty"`
		Summary    metric.Summary `json:"summary"`
		Height     float64        `json:"height"`
		PlotHeight float64        `json:"plot_height"`
		Color      Color          `json:"color"`
	}
)

// Bars lays s out as vertical bars scaled to the plot height and assigns each one a tier.
// Heights collapse to 0 when the max is not positive; negative values get a 0 height.
func Bars(s series.Series, opts BarOptions) (BarChart, error) {
	if err := s.Validate(); err != nil {
		return BarChart{}, err
	}
	if err := opts.Validate(); err != nil {
		return BarChart{}, err
	}
	sum, err := metric.Summarize(s)
	if err != nil {
		return BarChart{}, err
	}

	plotHeight := opts.Height - opts.ReservedAxisSpace
	band := PlotSize / float64(len(s))

	bars := make([]Bar, 0, len(s))
	for i, smp := range s {
		var h float64
		if sum.Max > 0 && smp.Value > 0 {
			h = smp.Value / sum.Max * plotHeight
		}
		tier := BarTier(smp.Value, sum.Max, sum.Mean, opts.ExcellentRatio)
		bars = append(bars, Bar{
			Category: smp.Category,
			Value:    smp.Value,
			Height:   round2(h),
			X:        round2(float64(i)*band + band*(1-barFill)/2),
			Width:    round2(band * barFill),
			Tier:     tier,
			Color:    TierColors[tier],
		})
	}

	chart := BarChart{
		Bars:       bars,
		Summary:    sum,
		Height:     opts.Height,
		PlotHeight: plotHeight,
		Color:      opts.Color,
	}
	if opts.ShowGrid {
		chart.Gridlines = Gridlines(sum.Max, plotHeight)
	}
	return chart, nil
}

// BarTier buckets value against the series max & mean.
// Anything below the mean needs improvement; at or above the mean, reaching ratio*max is excellent.
func BarTier(value, max, mean, ratio float64) Tier {
	switch {
	case max <= 0 || value < mean:
		return TierNeedsImprovement
	case value >= ratio*max:
		return TierExcellent
	default:
		return TierGood
	}
}

// Gridlines returns the fixed {max, .75max, .5max, .25max, 0} lines with their pixel offsets.
func Gridlines(max, plotHeight float64) []Gridline {
	lines := make([]Gridline, 0, len(gridRatios))
	for _, r := range gridRatios {
		lines = append(lines, Gridline{Value: max * r, Offset: round2(plotHeight * r)})
	}
	return lines
}
