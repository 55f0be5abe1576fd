package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

const (
	orderingParam = "ordering"
	formatParam   = "format"
	titleParam    = "title"

	formatSVG = "svg"
)

// bindOrdering reads `?ordering=field` (ascending) or `?ordering=-field` (descending).
// Only the first field of a comma separated list is used.
func bindOrdering(ctx echo.Context) core.DBOrdering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return core.DBOrdering{}
	}
	field := strings.TrimSpace(strings.SplitN(val, ",", 2)[0])
	descending := strings.HasPrefix(field, "-")
	if descending {
		field = field[1:] // drop "-"
	}
	return core.DBOrdering{Field: field, Ascending: !descending}
}

// bindQuery binds the query string of any request method, unlike echo.Context.Bind.
func bindQuery(ctx echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, dest); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	return nil
}

func wantsSVG(ctx echo.Context) bool {
	return strings.EqualFold(ctx.QueryParam(formatParam), formatSVG)
}
