// Package webserver builds the echo server: serialization, validation,
// rate limiting, sessions and the central error handler. Handlers are
// registered by the caller, the server owns only cross-cutting concerns.
package webserver

import (
	"context"
	"fmt"
	"time"

	gsessions "github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shopinventory/config"
)

// SessionName is the cookie under which the catalog session travels.
const SessionName = "shopinv_session"

type WebServer struct {
	root *echo.Echo
	cfg  *config.AppConfig
}

func New(cfg *config.AppConfig, store gsessions.Store) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = NewJSONSerializer()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger.Mode != "production")

	e.Use(middleware.Recover())
	e.Use(requestLogger())

	// Global per-client request ceiling, no queueing: over the limit is an
	// outright 429.
	perMinute := cfg.Web.RatePerMinute
	if perMinute <= 0 {
		perMinute = 40
	}
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60.0),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
	}))

	e.Use(session.Middleware(store))

	return &WebServer{root: e, cfg: cfg}
}

// Echo exposes the underlying router for route registration.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.S().Infof("Starting web server %s", addr)
	return s.root.Start(addr)
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("remote_ip", v.RemoteIP),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
