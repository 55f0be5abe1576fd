package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/services/render"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboards")
	dg.GET("/overview", api.overview)
	dg.GET("/overview/:card", api.overviewCard)
	dg.GET("/students/:id", api.student)
}

func (api *dashboardApi) filter(ctx echo.Context) (dashboard.Filter, error) {
	var f dashboard.Filter
	if err := bindQuery(ctx, &f); err != nil {
		return f, err
	}
	f.School = core.CleanString(f.School)
	f.Grade = core.CleanString(f.Grade)
	f.Term = core.CleanString(f.Term)
	return f, nil
}

func (api *dashboardApi) overview(ctx echo.Context) error {
	f, err := api.filter(ctx)
	if err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "building overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

// overviewCard renders one card of the overview as SVG.
func (api *dashboardApi) overviewCard(ctx echo.Context) error {
	f, err := api.filter(ctx)
	if err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "building overview")
	}

	var (
		buf   bytes.Buffer
		title = ctx.QueryParam(titleParam)
	)
	switch ctx.Param("card") {
	case "grade_performance":
		if ov.GradePerformance.Chart == nil {
			return ctx.JSON(http.StatusOK, noData)
		}
		err = render.Bar(&buf, *ov.GradePerformance.Chart, title)
	case "trend":
		if ov.Trend.Chart == nil {
			return ctx.JSON(http.StatusOK, noData)
		}
		err = render.Line(&buf, *ov.Trend.Chart, title)
	case "subject_mix":
		if ov.SubjectMix.Chart == nil {
			return ctx.JSON(http.StatusOK, noData)
		}
		err = render.Pie(&buf, *ov.SubjectMix.Chart, title)
	case "target":
		if ov.Target.Ring == nil {
			return ctx.JSON(http.StatusOK, noData)
		}
		if title == "" {
			title = ov.Target.Label
		}
		err = render.Progress(&buf, *ov.Target.Ring, title)
	default:
		return errHttpNotFound
	}
	if err != nil {
		return errors.Wrap(err, "rendering svg")
	}
	return ctx.Blob(http.StatusOK, mimeSVG, buf.Bytes())
}

func (api *dashboardApi) student(ctx echo.Context) error {
	rep, err := api.svc.StudentReport(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
