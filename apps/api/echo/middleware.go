package echoapi

import "github.com/labstack/echo/v4"

// noStore keeps clients & proxies from caching responses of mutable session state.
func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return next(ctx)
	}
}
