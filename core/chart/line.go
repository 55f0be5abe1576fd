package chart

import (
	"math"
	"strings"

	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
)

type (
	Point struct {
		Category string  `json:"category"`
		Value    float64 `json:"value"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
	}

	// LineChart coordinates live in the [0,100]x[0,100] plot space, y grows downwards.
	LineChart struct {
		Points   []Point        `json:"points"`
		Path     string         `json:"path"`
		AreaPath string         `json:"area_path"`
		AverageY float64        `json:"average_y"`
		Summary  metric.Summary `json:"summary"`
		// Degenerate is set for a single sample: a lone dot, no path.
		Degenerate bool        `json:"degenerate"`
		Options    LineOptions `json:"options"`
	}
)

// Line maps s to a curve in the normalized plot space.
func Line(s series.Series, opts LineOptions) (LineChart, error) {
	if err := s.Validate(); err != nil {
		return LineChart{}, err
	}
	if err := opts.Validate(); err != nil {
		return LineChart{}, err
	}
	sum, err := metric.Summarize(s)
	if err != nil {
		return LineChart{}, err
	}

	n := len(s)
	span := valueSpan(sum.Range)
	pts := make([]Point, n)
	for i, smp := range s {
		x := PlotSize / 2
		if n > 1 {
			x = float64(i) / float64(n-1) * PlotSize
		}
		pts[i] = Point{
			Category: smp.Category,
			Value:    smp.Value,
			X:        x,
			Y:        PlotSize - (smp.Value-sum.Min)/span*PlotSize,
		}
	}

	chart := LineChart{
		Summary:    sum,
		AverageY:   round2(PlotSize - (sum.Mean-sum.Min)/span*PlotSize),
		Degenerate: n == 1,
		Options:    opts,
	}
	if n > 1 {
		if opts.Smooth && n > 2 {
			chart.Path = SmoothPath(pts)
		} else {
			chart.Path = StraightPath(pts)
		}
		chart.AreaPath = AreaPath(chart.Path, pts)
	}
	for i := range pts {
		pts[i].X, pts[i].Y = round2(pts[i].X), round2(pts[i].Y)
	}
	chart.Points = pts
	return chart, nil
}

// valueSpan is max-min, or 1 when every value is equal so a flat series sits at y=100.
func valueSpan(r metric.Range) float64 {
	if span := r.Max - r.Min; span != 0 {
		return span
	}
	return 1
}

// StraightPath joins the points with line segments: M x0 y0 L x1 y1 ...
func StraightPath(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		writePoint(&b, p.X, p.Y)
	}
	return b.String()
}

// SmoothPath draws quadratic Bézier curves through the midpoints of successive points,
// using the data points themselves as control points. The first and last segments are
// anchored on the first and last data points, so the curve never overshoots the series bounds.
func SmoothPath(pts []Point) string {
	n := len(pts)
	if n < 3 {
		return StraightPath(pts)
	}
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, pts[0].X, pts[0].Y)

	mx, my := midpoint(pts[0], pts[1])
	b.WriteString(" L ")
	writePoint(&b, mx, my)

	for i := 1; i < n-1; i++ {
		mx, my = midpoint(pts[i], pts[i+1])
		b.WriteString(" Q ")
		writePoint(&b, pts[i].X, pts[i].Y)
		b.WriteByte(' ')
		writePoint(&b, mx, my)
	}

	b.WriteString(" L ")
	writePoint(&b, pts[n-1].X, pts[n-1].Y)
	return b.String()
}

// AreaPath closes path along the bottom of the plot.
func AreaPath(path string, pts []Point) string {
	if path == "" || len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(path)
	b.WriteString(" L ")
	writePoint(&b, pts[len(pts)-1].X, PlotSize)
	b.WriteString(" L ")
	writePoint(&b, pts[0].X, PlotSize)
	b.WriteString(" Z")
	return b.String()
}

// NearestIndex returns the sample closest to a pointer at fraction (0..1) of the plot width.
// Points are evenly spaced, so no search is needed. Returns -1 when n <= 0.
func NearestIndex(n int, fraction float64) int {
	if n <= 0 {
		return -1
	}
	if math.IsNaN(fraction) {
		return 0
	}
	idx := int(math.Round(fraction * float64(n-1)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// PointAt returns the point nearest to the pointer fraction.
func (c LineChart) PointAt(fraction float64) (Point, bool) {
	idx := NearestIndex(len(c.Points), fraction)
	if idx < 0 {
		return Point{}, false
	}
	return c.Points[idx], true
}

func midpoint(a, b Point) (float64, float64) {
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(num(x))
	b.WriteByte(' ')
	b.WriteString(num(y))
}
