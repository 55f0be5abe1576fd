package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-dashboard/core/series"
)

// PlotSize is the side of the normalized plot space used by line charts.
const PlotSize = 100.0

type (
	// BarOptions configure Bars. Start from DefaultBarOptions.
	BarOptions struct {
		Color             Color   `json:"color"`
		Height            float64 `json:"height"`
		ReservedAxisSpace float64 `json:"reserved_axis_space"`
		ShowGrid          bool    `json:"show_grid"`
		// ExcellentRatio is the share of the max a bar must reach to be excellent.
		ExcellentRatio float64 `json:"excellent_ratio"`
	}

	// LineOptions configure Line. Start from DefaultLineOptions.
	LineOptions struct {
		Color      Color   `json:"color"`
		Height     float64 `json:"height"`
		Smooth     bool    `json:"smooth"`
		ShowPoints bool    `json:"show_points"`
		ShowGrid   bool    `json:"show_grid"`
	}

	// PieOptions configure Pie. Start from DefaultPieOptions.
	PieOptions struct {
		Radius      float64 `json:"radius"`
		InnerRadius float64 `json:"inner_radius"`
		Palette     []Color `json:"palette"`
		// Colors overrides the palette for the given labels.
		Colors map[string]Color `json:"colors"`
	}

	// ProgressOptions configure Progress. Start from DefaultProgressOptions.
	ProgressOptions struct {
		Radius      float64 `json:"radius"`
		StrokeWidth float64 `json:"stroke_width"`
		Color       Color   `json:"color"`
	}
)

func DefaultBarOptions() BarOptions {
	return BarOptions{
		Color:             Blue,
		Height:            300,
		ReservedAxisSpace: 40,
		ShowGrid:          true,
		ExcellentRatio:    0.9,
	}
}

func DefaultLineOptions() LineOptions {
	return LineOptions{
		Color:      Blue,
		Height:     300,
		Smooth:     true,
		ShowPoints: true,
		ShowGrid:   true,
	}
}

func DefaultPieOptions() PieOptions {
	return PieOptions{
		Radius:  100,
		Palette: DefaultPalette,
	}
}

func DefaultProgressOptions() ProgressOptions {
	return ProgressOptions{
		Radius:      45,
		StrokeWidth: 10,
		Color:       Blue,
	}
}

func (o BarOptions) Validate() error {
	switch {
	case !finite(o.Height) || o.Height <= 0:
		return series.NewInvalidConfigError("height", "must be a positive number")
	case !finite(o.ReservedAxisSpace) || o.ReservedAxisSpace < 0:
		return series.NewInvalidConfigError("reserved_axis_space", "must not be negative")
	case o.ReservedAxisSpace >= o.Height:
		return series.NewInvalidConfigError("reserved_axis_space", "must be less than height")
	case !finite(o.ExcellentRatio) || o.ExcellentRatio <= 0 || o.ExcellentRatio > 1:
		return series.NewInvalidConfigError("excellent_ratio", "must be in (0, 1]")
	}
	return validColor("color", o.Color)
}

func (o LineOptions) Validate() error {
	if !finite(o.Height) || o.Height <= 0 {
		return series.NewInvalidConfigError("height", "must be a positive number")
	}
	return validColor("color", o.Color)
}

func (o PieOptions) Validate() error {
	switch {
	case !finite(o.Radius) || o.Radius <= 0:
		return series.NewInvalidConfigError("radius", "must be a positive number")
	case !finite(o.InnerRadius) || o.InnerRadius < 0 || o.InnerRadius >= o.Radius:
		return series.NewInvalidConfigError("inner_radius", "must be in [0, radius)")
	}
	for _, c := range o.Palette {
		if err := validColor("palette", c); err != nil {
			return err
		}
	}
	for _, c := range o.Colors {
		if err := validColor("colors", c); err != nil {
			return err
		}
	}
	return nil
}

func (o ProgressOptions) Validate() error {
	switch {
	case !finite(o.Radius) || o.Radius <= 0:
		return series.NewInvalidConfigError("radius", "must be a positive number")
	case !finite(o.StrokeWidth) || o.StrokeWidth < 0:
		return series.NewInvalidConfigError("stroke_width", "must not be negative")
	}
	return validColor("color", o.Color)
}

func validColor(field string, c Color) error {
	if c != "" && !c.Valid() {
		return series.NewInvalidConfigError(field, "unknown color "+strconv.Quote(string(c)))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// num formats a coordinate with 2 decimals and no trailing zeros, so paths are byte-stable.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
