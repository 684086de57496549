package catalogapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"shopinventory/internal/domain"
	"shopinventory/internal/webserver"
)

const (
	sessionUserKey = "user_id"
	ctxUserKey     = "current_user"
)

// LoadUser resolves the session-bound user once per request and stashes it
// in the request context. Requests without a valid session pass through
// anonymously.
func (h *CatalogAPI) LoadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(webserver.SessionName, c)
		if err == nil {
			if raw, okv := sess.Values[sessionUserKey].(string); okv {
				if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
					var user domain.SysUser
					if h.db.Where("id = ?", id).First(&user).Error == nil {
						c.Set(ctxUserKey, &user)
					}
				}
			}
		}
		return next(c)
	}
}

// RequireAdmin is the admin gate: one session-identity policy for every
// mutating route. Unauthenticated requests bounce to the login prompt.
func (h *CatalogAPI) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return c.Redirect(http.StatusFound, "/catalog/loginwarning")
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *domain.SysUser {
	u, _ := c.Get(ctxUserKey).(*domain.SysUser)
	return u
}
