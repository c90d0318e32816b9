package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/observability"
	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho),
	fx.Invoke(Run),
)

// maxBodySize bounds request bodies, multipart image uploads included.
const maxBodySize = "64M"

// NewEcho configures the Echo router with basic middleware, ops endpoints
// and the static image route of the local image store.
func NewEcho(cfg config.Config, obs *observability.Manager, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code >= http.StatusInternalServerError {
			logger.Error("http request failed", zap.Error(err), zap.String("path", c.Path()))
		}
		c.Echo().DefaultHTTPErrorHandler(err, c)
	}

	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))
	e.Use(echomw.BodyLimit(maxBodySize))
	if obs != nil && obs.TracingEnabled() {
		e.Use(otelecho.Middleware(cfg.Observability.ServiceName))
	}

	if cfg.Storage.Driver == "local" && cfg.Storage.LocalDir != "" {
		e.Static(cfg.Storage.PublicPrefix, cfg.Storage.LocalDir)
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if obs != nil && obs.MetricsEnabled() && obs.MetricsHandler() != nil {
		e.GET(cfg.Observability.PrometheusPath, echo.WrapHandler(obs.MetricsHandler()))
	}

	return e
}

// requestLogger logs one line per request. Server errors carry the cause
// recorded by the response builder.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("route", c.Path()),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			}
			appErr, _ := c.Get(response.ErrorKey).(*errorbank.AppError)
			switch {
			case status >= http.StatusInternalServerError:
				if appErr != nil {
					fields = append(fields, zap.String("kind", string(appErr.Kind())), zap.Error(appErr.Unwrap()))
				}
				logger.Error("http request finished", fields...)
			case appErr != nil:
				logger.Info("http request finished", append(fields, zap.String("kind", string(appErr.Kind())))...)
			default:
				logger.Debug("http request finished", fields...)
			}
			return nil
		}
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:    addr,
		Handler: e,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
