package echoapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/chart"
	"github.com/trezcool/masomo-dashboard/core/metric"
	"github.com/trezcool/masomo-dashboard/core/series"
	"github.com/trezcool/masomo-dashboard/services/render"
)

const mimeSVG = "image/svg+xml"

type (
	barRequest struct {
		Series  series.Series    `json:"series"`
		Options chart.BarOptions `json:"options"`
	}

	lineRequest struct {
		Series  series.Series     `json:"series"`
		Options chart.LineOptions `json:"options"`
	}

	pieRequest struct {
		Series  series.Series    `json:"series"`
		Options chart.PieOptions `json:"options"`
	}

	progressRequest struct {
		Current float64               `json:"current"`
		Target  float64               `json:"target"`
		Options chart.ProgressOptions `json:"options"`
	}

	seriesRequest struct {
		Series series.Series `json:"series"`
	}

	// ChartResponse wraps a geometry: Chart is nil when Status is no_data.
	ChartResponse struct {
		Status string      `json:"status"`
		Chart  interface{} `json:"chart,omitempty"`
	}

	MetricsResponse struct {
		Summary    metric.Summary `json:"summary"`
		Change     metric.Change  `json:"change"`
		Regression metric.Trend   `json:"regression"`
	}
)

var noData = ChartResponse{Status: "no_data"}

type chartApi struct {
	conf *core.Config
}

func registerChartAPI(g *echo.Group, conf *core.Config) {
	api := chartApi{conf: conf}

	cg := g.Group("/charts")
	cg.POST("/bar", api.bar)
	cg.POST("/line", api.line)
	cg.POST("/pie", api.pie)
	cg.POST("/progress", api.progress)

	g.POST("/metrics/summary", api.summary)
}

// respond sends the geometry as JSON, or the SVG drawn by draw when asked to.
// An empty input is not an error: it is answered with a no_data status.
func respond(ctx echo.Context, geometry interface{}, err error, draw func(w io.Writer, title string) error) error {
	if series.IsNoData(err) {
		return ctx.JSON(http.StatusOK, noData)
	}
	if err != nil {
		return err
	}
	if wantsSVG(ctx) {
		var buf bytes.Buffer
		if err = draw(&buf, ctx.QueryParam(titleParam)); err != nil {
			return errors.Wrap(err, "rendering svg")
		}
		return ctx.Blob(http.StatusOK, mimeSVG, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, ChartResponse{Status: "ok", Chart: geometry})
}

func (api *chartApi) bar(ctx echo.Context) error {
	data := barRequest{Options: chart.DefaultBarOptions()}
	data.Options.Height = api.conf.Chart.Height
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to barRequest")
	}
	c, err := chart.Bars(data.Series, data.Options)
	return respond(ctx, c, err, func(w io.Writer, title string) error {
		return render.Bar(w, c, title)
	})
}

func (api *chartApi) line(ctx echo.Context) error {
	data := lineRequest{Options: chart.DefaultLineOptions()}
	data.Options.Height = api.conf.Chart.Height
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to lineRequest")
	}
	c, err := chart.Line(data.Series, data.Options)
	return respond(ctx, c, err, func(w io.Writer, title string) error {
		return render.Line(w, c, title)
	})
}

func (api *chartApi) pie(ctx echo.Context) error {
	data := pieRequest{Options: chart.DefaultPieOptions()}
	data.Options.Radius = api.conf.Chart.PieRadius
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to pieRequest")
	}
	c, err := chart.Pie(data.Series, data.Options)
	return respond(ctx, c, err, func(w io.Writer, title string) error {
		return render.Pie(w, c, title)
	})
}

func (api *chartApi) progress(ctx echo.Context) error {
	data := progressRequest{Options: chart.DefaultProgressOptions()}
	data.Options.Radius = api.conf.Chart.ProgressRad
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to progressRequest")
	}
	c, err := chart.Progress(data.Current, data.Target, data.Options)
	return respond(ctx, c, err, func(w io.Writer, title string) error {
		return render.Progress(w, c, title)
	})
}

func (api *chartApi) summary(ctx echo.Context) error {
	var data seriesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to seriesRequest")
	}
	err := data.Series.Validate()
	if series.IsNoData(err) {
		return ctx.JSON(http.StatusOK, noData)
	}
	if err != nil {
		return err
	}
	sum, err := metric.Summarize(data.Series)
	if err != nil {
		return err
	}
	change, err := metric.SeriesChange(data.Series)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MetricsResponse{
		Summary:    sum,
		Change:     change,
		Regression: metric.Regression(data.Series),
	})
}
