package webserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewHTTPErrorHandler builds the generic fallback handler: any error not
// answered inline becomes a JSON error page. Internal detail is included
// only outside production mode.
func NewHTTPErrorHandler(showDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var detail string

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
			if he.Internal != nil {
				detail = he.Internal.Error()
			}
		} else {
			detail = err.Error()
		}

		if code >= http.StatusInternalServerError {
			zap.L().Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		body := echo.Map{"code": code, "message": message}
		if showDetail && detail != "" {
			body["detail"] = detail
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			zap.L().Error("failed to write error response", zap.Error(werr))
		}
	}
}
