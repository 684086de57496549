package catalogapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopinventory/internal/app"
	"shopinventory/internal/domain"
	"shopinventory/internal/webserver"
	"shopinventory/pkg/common"
)

type signupForm struct {
	Username      string `form:"username" json:"username" validate:"min=4"`
	Password      string `form:"password" json:"password" validate:"min=5"`
	AdminPassword string `form:"adminpassword" json:"adminpassword" validate:"required"`
}

var signupMessages = map[string]string{
	"Username":      "Username should be at least 4 characters long.",
	"Password":      "Password must be at least 5 characters long.",
	"AdminPassword": "Admin password must not be empty",
}

type loginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"Username": "Username must not be empty",
	"Password": "Password must not be empty.",
}

func (h *CatalogAPI) signupForm(c echo.Context) error {
	return render(c, http.StatusOK, "signup_form", "Sign Up", echo.Map{
		"errors": []FieldError{},
	})
}

func (h *CatalogAPI) signup(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse signup form").SetInternal(err)
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Password = strings.TrimSpace(form.Password)
	form.AdminPassword = strings.TrimSpace(form.AdminPassword)

	// Passphrase gate first: without it no field feedback is given beyond
	// the gate message itself.
	passphrase := h.settings.GetString(app.SettingsSystem, app.SettingsAdminPassphrase)
	if passphrase == "" || form.AdminPassword != passphrase {
		zap.L().Warn("signup rejected: admin passphrase mismatch",
			zap.String("username", form.Username))
		return render(c, http.StatusBadRequest, "signup_form", "Sign Up", echo.Map{
			"errors": []FieldError{{Message: "You need admin password to sign up."}},
		})
	}

	if err := c.Validate(&form); err != nil {
		return render(c, http.StatusBadRequest, "signup_form", "Sign Up", echo.Map{
			"username": form.Username,
			"errors":   fieldErrors(err, signupMessages),
		})
	}

	ctx := c.Request().Context()
	var existing domain.SysUser
	err := h.db.WithContext(ctx).Where("username = ?", form.Username).First(&existing).Error
	if err == nil {
		return render(c, http.StatusBadRequest, "signup_form", "Sign Up", echo.Map{
			"username": form.Username,
			"errors":   []FieldError{{Field: "username", Message: "Username already exists"}},
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dberr(err, "Failed to query users")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	user := domain.SysUser{
		ID:       common.UUIDint64(),
		Username: form.Username,
		Password: string(hashed),
		Admin:    true,
		Status:   common.ENABLED,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return dberr(err, "Failed to create user")
	}

	zap.L().Info("user registered", zap.String("username", user.Username))
	return redirect(c, "/catalog/login")
}

func (h *CatalogAPI) loginForm(c echo.Context) error {
	if currentUser(c) != nil {
		return redirect(c, "/catalog/user")
	}
	return render(c, http.StatusOK, "login_form", "Log-in User", echo.Map{
		"errors": []FieldError{},
	})
}

func (h *CatalogAPI) login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse login form").SetInternal(err)
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Password = strings.TrimSpace(form.Password)

	if err := c.Validate(&form); err != nil {
		return render(c, http.StatusBadRequest, "login_form", "Login", echo.Map{
			"username": form.Username,
			"errors":   fieldErrors(err, loginMessages),
		})
	}

	ctx := c.Request().Context()
	var user domain.SysUser
	err := h.db.WithContext(ctx).Where("username = ?", form.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return render(c, http.StatusUnauthorized, "login_form", "Login", echo.Map{
			"username": form.Username,
			"errors":   []FieldError{{Message: "Incorrect Username"}},
		})
	} else if err != nil {
		return dberr(err, "Failed to query users")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		return render(c, http.StatusUnauthorized, "login_form", "Login", echo.Map{
			"username": form.Username,
			"errors":   []FieldError{{Message: "Incorrect Password"}},
		})
	}

	sess, err := session.Get(webserver.SessionName, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open session").SetInternal(err)
	}
	sess.Values[sessionUserKey] = strconv.FormatInt(user.ID, 10)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save session").SetInternal(err)
	}

	if err := h.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", user.ID).
		Update("last_login", time.Now()).Error; err != nil {
		zap.L().Error("failed to record last login",
			zap.String("username", user.Username), zap.Error(err))
	}

	zap.L().Info("login successful", zap.String("username", user.Username))
	return redirect(c, "/catalog/user")
}

func (h *CatalogAPI) logout(c echo.Context) error {
	sess, err := session.Get(webserver.SessionName, c)
	if err == nil {
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			zap.L().Error("failed to destroy session", zap.Error(err))
		}
	}
	return redirect(c, "/")
}

func (h *CatalogAPI) userPage(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return redirect(c, "/catalog/loginwarning")
	}
	return render(c, http.StatusOK, "user_page", "User Details", echo.Map{
		"user": user,
	})
}

func (h *CatalogAPI) loginWarning(c echo.Context) error {
	return render(c, http.StatusOK, "login_warning", "You must login first.", echo.Map{})
}
