package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/core/series"
	"github.com/trezcool/masomo-dashboard/services/filestore"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// notFoundErrs are answered with a 404 and their own message.
var notFoundErrs = []error{
	coursework.ErrDraftNotFound,
	coursework.ErrItemNotFound,
	coursework.ErrNotFound,
	dashboard.ErrStudentNotFound,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}

			httpErr   *echo.HTTPError
			vErrs     validator.ValidationErrors
			appErr    *core.ValidationError
			configErr *series.InvalidConfigError
		)

		switch {
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &vErrs):
			code = http.StatusBadRequest
			message = fieldErrors(core.TranslateErrors(vErrs, translator))
		case errors.As(err, &appErr):
			code = http.StatusBadRequest
			if appErr.Fields != nil {
				message = fieldErrors(appErr.Fields)
			} else {
				message = appErr.Error()
			}
		case errors.As(err, &configErr):
			code = http.StatusBadRequest
			message = echo.Map{configErr.Field: configErr.Reason}
		case errors.Is(err, series.ErrInvalidConfiguration), errors.Is(err, series.ErrDivideByZero):
			code = http.StatusBadRequest
			message = errors.Cause(err).Error()
		case errors.Is(err, filestore.ErrTooLarge):
			code = http.StatusRequestEntityTooLarge
			message = err.Error()
		case isNotFound(err):
			code = http.StatusNotFound
			message = errors.Cause(err).Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			req := ctx.Request()
			logger.Error(msg, errors.Wrap(err, msg), logsvc.Request{
				Method: req.Method,
				Path:   req.URL.Path,
				ID:     ctx.Response().Header().Get(echo.HeaderXRequestID),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func fieldErrors(flds []core.FieldError) map[string]string {
	res := make(map[string]string, len(flds))
	for _, fErr := range flds {
		res[fErr.Field] = fErr.Error
	}
	return res
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
