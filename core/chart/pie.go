package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
)

type (
	Segment struct {
		Label      string  `json:"label"`
		Value      float64 `json:"value"`
		Percentage float64 `json:"percentage"`
		StartAngle float64 `json:"start_angle"`
		EndAngle   float64 `json:"end_angle"`
		Color      Color   `json:"color"`
		Path       string  `json:"path"`
	}

	PieChart struct {
		Segments    []Segment `json:"segments"`
		Total       float64   `json:"total"`
		CenterLabel string    `json:"center_label"`
		Radius      float64   `json:"radius"`
		InnerRadius float64   `json:"inner_radius"`
	}

	// Highlight is what the chart center shows while a segment is hovered.
	Highlight struct {
		Label      string  `json:"label"`
		Value      float64 `json:"value"`
		Percentage float64 `json:"percentage"`
	}
)

// Pie splits the circle into sectors proportional to each value's share of the total,
// in input order, starting at 12 o'clock and going clockwise.
// Zero values make valid, invisible, zero-degree segments. A zero total has nothing to show.
func Pie(s series.Series, opts PieOptions) (PieChart, error) {
	if err := s.Validate(); err != nil {
		return PieChart{}, err
	}
	if err := opts.Validate(); err != nil {
		return PieChart{}, err
	}

	var total float64
	for i, smp := range s {
		if smp.Value < 0 {
			return PieChart{}, series.NewInvalidConfigError("series["+strconv.Itoa(i)+"].value", "must not be negative")
		}
		total += smp.Value
	}
	if total == 0 {
		return PieChart{}, series.ErrEmptyInput
	}

	cx, cy := opts.Radius, opts.Radius
	segs := make([]Segment, 0, len(s))
	// angles derive from the running sum, summed in the same order as total,
	// so segments chain exactly and the last one ends at 360.
	var cumulative float64
	for i, smp := range s {
		pct, err := metric.ShareOfTotal(smp.Value, total)
		if err != nil {
			return PieChart{}, err
		}
		start := cumulative / total * 360
		cumulative += smp.Value
		end := cumulative / total * 360

		color, ok := opts.Colors[smp.Category]
		if !ok || color == "" {
			color = PaletteColor(opts.Palette, i)
		}
		segs = append(segs, Segment{
			Label:      smp.Category,
			Value:      smp.Value,
			Percentage: pct,
			StartAngle: start,
			EndAngle:   end,
			Color:      color,
			Path:       SectorPath(cx, cy, opts.Radius, opts.InnerRadius, start, end),
		})
	}

	return PieChart{
		Segments:    segs,
		Total:       total,
		CenterLabel: humanize.Commaf(total),
		Radius:      opts.Radius,
		InnerRadius: opts.InnerRadius,
	}, nil
}

// Highlight returns the hovered segment's label, value & percentage.
func (c PieChart) Highlight(i int) (Highlight, bool) {
	if i < 0 || i >= len(c.Segments) {
		return Highlight{}, false
	}
	seg := c.Segments[i]
	return Highlight{Label: seg.Label, Value: seg.Value, Percentage: seg.Percentage}, true
}

// Polar converts a chart angle (degrees, 0 at 12 o'clock, clockwise) to cartesian coordinates.
func Polar(cx, cy, r, angleDeg float64) (float64, float64) {
	rad := (angleDeg - 90) * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

// SectorPath returns the SVG path of the sector between start and end degrees.
// With innerR > 0 the sector is a ring slice. Zero-degree sectors get an empty path.
func SectorPath(cx, cy, r, innerR, start, end float64) string {
	angle := end - start
	if angle <= 0 {
		return ""
	}
	if angle >= 360 {
		// an arc cannot start and end on the same point: draw two halves
		mid := start + 180
		return joinPaths(
			SectorPath(cx, cy, r, innerR, start, mid),
			SectorPath(cx, cy, r, innerR, mid, end),
		)
	}

	large := 0
	if angle > 180 {
		large = 1
	}
	sx, sy := Polar(cx, cy, r, start)
	ex, ey := Polar(cx, cy, r, end)

	var b strings.Builder
	if innerR <= 0 {
		b.WriteString("M ")
		writePoint(&b, cx, cy)
		b.WriteString(" L ")
		writePoint(&b, sx, sy)
		writeArc(&b, r, large, 1, ex, ey)
		b.WriteString(" Z")
		return b.String()
	}

	isx, isy := Polar(cx, cy, innerR, start)
	iex, iey := Polar(cx, cy, innerR, end)
	b.WriteString("M ")
	writePoint(&b, sx, sy)
	writeArc(&b, r, large, 1, ex, ey)
	b.WriteString(" L ")
	writePoint(&b, iex, iey)
	writeArc(&b, innerR, large, 0, isx, isy)
	b.WriteString(" Z")
	return b.String()
}

func writeArc(b *strings.Builder, r float64, large, sweep int, x, y float64) {
	b.WriteString(" A ")
	b.WriteString(num(r))
	b.WriteByte(' ')
	b.WriteString(num(r))
	b.WriteString(" 0 ")
	b.WriteString(strconv.Itoa(large))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(sweep))
	b.WriteByte(' ')
	writePoint(b, x, y)
}

func joinPaths(paths ...string) string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
