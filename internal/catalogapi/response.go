package catalogapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FieldError is a user-correctable validation failure surfaced inline on the
// originating form.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// render answers with a view payload, the JSON stand-in for a server-side
// template render: view name, title, then whatever the page would show,
// including any submitted values the form must preserve.
func render(c echo.Context, status int, view, title string, data echo.Map) error {
	body := echo.Map{"view": view, "title": title}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(status, body)
}

// redirect issues 303 after form POSTs so the browser re-GETs the target,
// and a plain 302 otherwise.
func redirect(c echo.Context, location string) error {
	if c.Request().Method == http.MethodPost {
		return c.Redirect(http.StatusSeeOther, location)
	}
	return c.Redirect(http.StatusFound, location)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// dberr routes a database failure to the generic error handler.
func dberr(err error, message string) error {
	return echo.NewHTTPError(http.StatusInternalServerError, message).SetInternal(err)
}

// fieldErrors maps validator failures to the form's field-level messages.
// Unknown fields fall back to a generic message so nothing is silently
// swallowed.
func fieldErrors(err error, messages map[string]string) []FieldError {
	verrs, okc := err.(validator.ValidationErrors)
	if !okc {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, found := messages[fe.Field()]
		if !found {
			msg = "Invalid value for " + fe.Field()
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
