package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core/coursework"
)

type assignmentApi struct {
	svc *coursework.Service
}

func registerAssignmentAPI(g *echo.Group, svc *coursework.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments")
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	var filter coursework.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	filter.Ordering = bindOrdering(ctx)

	res, err := api.svc.QueryAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetAssignment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}
