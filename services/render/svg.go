// Package render draws chart geometry as standalone SVG documents.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/ajstarks/svgo"
	"github.com/dustin/go-humanize"

	"github.com/trezcool/masomo-dashboard/core/chart"
)

const (
	Width = 600

	marginTop    = 10
	marginLeft   = 48
	marginRight  = 12
	marginBottom = 32

	gstyle    = "font-family:sans-serif;font-size:12px;fill:#374151"
	gridStyle = "stroke:#e5e7eb;stroke-width:1"
)

// Palette resolves colour tokens to their hex value.
var Palette = map[chart.Color]string{
	chart.Blue:   "#3b82f6",
	chart.Green:  "#22c55e",
	chart.Yellow: "#eab308",
	chart.Red:    "#ef4444",
	chart.Purple: "#a855f7",
	chart.Pink:   "#ec4899",
	chart.Indigo: "#6366f1",
	chart.Orange: "#f97316",
	chart.Teal:   "#14b8a6",
	chart.Gray:   "#6b7280",
}

// Hex returns the colour of c, gray when c is unknown.
func Hex(c chart.Color) string {
	if hex, ok := Palette[c]; ok {
		return hex
	}
	return Palette[chart.Gray]
}

// errWriter keeps the first write error, svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

func newCanvas(w io.Writer) (*svg.SVG, *errWriter) {
	ew := &errWriter{w: w}
	return svg.New(ew), ew
}

func label(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}

func px(f float64) int {
	return int(math.Round(f))
}

// Bar draws c with its gridlines, one tier-coloured bar per category.
func Bar(w io.Writer, c chart.BarChart, title string) error {
	height := px(c.Height) + marginTop
	plotW := float64(Width - marginLeft - marginRight)
	bottom := marginTop + px(c.PlotHeight)

	canvas, ew := newCanvas(w)
	canvas.Start(Width, height)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Gstyle(gstyle)

	for _, g := range c.Gridlines {
		y := bottom - px(g.Offset)
		canvas.Line(marginLeft, y, Width-marginRight, y, gridStyle)
		canvas.Text(marginLeft-6, y+4, label(g.Value), "text-anchor:end")
	}

	for _, b := range c.Bars {
		x := marginLeft + px(b.X/100*plotW)
		bw := px(b.Width / 100 * plotW)
		h := px(b.Height)
		canvas.Rect(x, bottom-h, bw, h, "fill:"+Hex(b.Color))
		canvas.Text(x+bw/2, bottom-h-4, label(b.Value), "text-anchor:middle;font-size:10px")
		canvas.Text(x+bw/2, bottom+16, b.Category, "text-anchor:middle")
	}

	canvas.Gend()
	canvas.End()
	return ew.err
}

// Line draws c: the normalized [0,100] plot space is scaled to the canvas.
func Line(w io.Writer, c chart.LineChart, title string) error {
	height := px(c.Options.Height)
	plotW := float64(Width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	toX := func(x float64) int { return marginLeft + px(x/chart.PlotSize*plotW) }
	toY := func(y float64) int { return marginTop + px(y/chart.PlotSize*plotH) }
	color := Hex(c.Options.Color)

	canvas, ew := newCanvas(w)
	canvas.Start(Width, height)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Gstyle(gstyle)

	if c.Options.ShowGrid {
		for _, r := range []float64{0, 25, 50, 75, 100} {
			y := toY(r)
			canvas.Line(marginLeft, y, Width-marginRight, y, gridStyle)
		}
		canvas.Text(marginLeft-6, toY(0)+4, label(c.Summary.Max), "text-anchor:end")
		canvas.Text(marginLeft-6, toY(chart.PlotSize)+4, label(c.Summary.Min), "text-anchor:end")
	}

	if c.Path != "" {
		canvas.Gtransform(fmt.Sprintf(
			"translate(%d,%d) scale(%s,%s)",
			marginLeft, marginTop,
			strconv.FormatFloat(plotW/chart.PlotSize, 'f', 4, 64),
			strconv.FormatFloat(plotH/chart.PlotSize, 'f', 4, 64),
		))
		canvas.Path(c.AreaPath, "fill:"+color+";fill-opacity:0.1;stroke:none")
		canvas.Path(c.Path, "fill:none;stroke:"+color+";stroke-width:2;vector-effect:non-scaling-stroke")
		canvas.Gend()

		avgY := toY(c.AverageY)
		canvas.Line(marginLeft, avgY, Width-marginRight, avgY, "stroke:"+Palette[chart.Gray]+";stroke-dasharray:4 4")
	}

	for _, p := range c.Points {
		x := toX(p.X)
		if c.Options.ShowPoints || c.Degenerate {
			canvas.Circle(x, toY(p.Y), 4, "fill:"+color)
		}
		canvas.Text(x, height-marginBottom/2+4, p.Category, "text-anchor:middle")
	}

	canvas.Gend()
	canvas.End()
	return ew.err
}

// Pie draws one path per visible segment, the grand total in the middle.
func Pie(w io.Writer, c chart.PieChart, title string) error {
	size := px(2 * c.Radius)

	canvas, ew := newCanvas(w)
	canvas.Start(size, size)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Gstyle(gstyle)

	for _, seg := range c.Segments {
		if seg.Path == "" {
			continue
		}
		canvas.Group("fill:" + Hex(seg.Color) + ";stroke:#ffffff;stroke-width:1")
		canvas.Title(fmt.Sprintf("%s: %s (%s%%)", seg.Label, label(seg.Value), label(seg.Percentage)))
		canvas.Path(seg.Path)
		canvas.Gend()
	}

	center := px(c.Radius)
	style := "text-anchor:middle;font-size:18px;font-weight:bold"
	if c.InnerRadius == 0 {
		style += ";fill:#ffffff"
	}
	canvas.Text(center, center+6, c.CenterLabel, style)

	canvas.Gend()
	canvas.End()
	return ew.err
}

// Progress draws the ring as a full track under a dashed arc starting at 12 o'clock.
func Progress(w io.Writer, r chart.ProgressRing, title string) error {
	radius := px(r.Radius)
	stroke := px(r.StrokeWidth)
	size := 2 * (radius + stroke)
	center := size / 2
	circ := strconv.FormatFloat(r.Circumference, 'f', 2, 64)
	offset := strconv.FormatFloat(r.DashOffset, 'f', 2, 64)

	canvas, ew := newCanvas(w)
	canvas.Start(size, size)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Circle(center, center, radius, fmt.Sprintf("fill:none;stroke:#e5e7eb;stroke-width:%d", stroke))
	canvas.Circle(center, center, radius,
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d;stroke-linecap:round;stroke-dasharray:%s;stroke-dashoffset:%s",
			Hex(r.Color), stroke, circ, offset),
		fmt.Sprintf(`transform="rotate(-90 %d %d)"`, center, center),
	)
	canvas.Text(center, center+6, strconv.Itoa(r.Percentage)+"%", "text-anchor:middle;font-family:sans-serif;font-size:18px;font-weight:bold")
	canvas.Text(center, center+22, humanize.Ftoa(r.Current)+" / "+humanize.Ftoa(r.Target), "text-anchor:middle;font-family:sans-serif;font-size:10px;fill:#6b7280")
	canvas.End()
	return ew.err
}
