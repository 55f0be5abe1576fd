package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core/chart"
	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
	"github.com/trezcool/masomo-dashboard/services/render"
)

type progressInput struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

// render draws the chart described by the `in` file.
// With no `out` file and a terminal on stdout, a summary table is printed instead of raw SVG.
func (cli *commandLine) render(kind, in, out, title string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	var (
		doc   bytes.Buffer
		table [][]string
	)
	switch kind {
	case "bar", "line", "pie":
		var s series.Series
		if err = json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decoding series")
		}
		table, err = renderSeries(&doc, kind, s, title)
	case "progress":
		var p progressInput
		if err = json.Unmarshal(data, &p); err != nil {
			return errors.Wrap(err, "decoding progress")
		}
		var ring chart.ProgressRing
		if ring, err = chart.Progress(p.Current, p.Target, chart.DefaultProgressOptions()); err == nil {
			err = render.Progress(&doc, ring, title)
			table = [][]string{
				{"CURRENT", "TARGET", "PERCENTAGE", "STATUS"},
				{humanize.Ftoa(ring.Current), humanize.Ftoa(ring.Target), fmt.Sprintf("%d%%", ring.Percentage), string(ring.Status)},
			}
		}
	default:
		return errors.Errorf("unknown chart kind %q", kind)
	}
	if series.IsNoData(err) {
		_, _ = fmt.Fprintln(cli.stdout, "no data to render")
		return nil
	}
	if err != nil {
		return err
	}

	if out != "" {
		if err = os.WriteFile(out, doc.Bytes(), 0o644); err != nil {
			return errors.Wrap(err, "writing output")
		}
		_, _ = fmt.Fprintf(cli.stdout, "wrote %s (%s)\n", out, humanize.Bytes(uint64(doc.Len())))
		return nil
	}
	if isTerminalFunc(cli.stdoutFd) {
		return writeTable(cli.stdout, table)
	}
	_, err = cli.stdout.Write(doc.Bytes())
	return err
}

func renderSeries(w io.Writer, kind string, s series.Series, title string) ([][]string, error) {
	sum, err := metric.Summarize(s)
	if err != nil {
		return nil, err
	}

	var table [][]string
	switch kind {
	case "bar":
		bc, err := chart.Bars(s, chart.DefaultBarOptions())
		if err != nil {
			return nil, err
		}
		table = [][]string{{"CATEGORY", "VALUE", "TIER"}}
		for _, b := range bc.Bars {
			table = append(table, []string{b.Category, humanize.Ftoa(b.Value), string(b.Tier)})
		}
		err = render.Bar(w, bc, title)
		if err != nil {
			return nil, err
		}
	case "line":
		lc, err := chart.Line(s, chart.DefaultLineOptions())
		if err != nil {
			return nil, err
		}
		table = [][]string{{"CATEGORY", "VALUE"}}
		for _, smp := range s {
			table = append(table, []string{smp.Category, humanize.Ftoa(smp.Value)})
		}
		if err = render.Line(w, lc, title); err != nil {
			return nil, err
		}
	case "pie":
		pc, err := chart.Pie(s, chart.DefaultPieOptions())
		if err != nil {
			return nil, err
		}
		table = [][]string{{"CATEGORY", "VALUE", "SHARE"}}
		for _, seg := range pc.Segments {
			table = append(table, []string{seg.Label, humanize.Ftoa(seg.Value), humanize.Ftoa(seg.Percentage) + "%"})
		}
		if err = render.Pie(w, pc, title); err != nil {
			return nil, err
		}
	}

	table = append(table, []string{}, []string{
		"min " + humanize.Ftoa(sum.Min),
		"max " + humanize.Ftoa(sum.Max),
		"mean " + humanize.FtoaWithDigits(sum.Mean, 2),
	})
	return table, nil
}

func writeTable(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, cell)
		}
		_, _ = fmt.Fprintln(tw)
	}
	return tw.Flush()
}
