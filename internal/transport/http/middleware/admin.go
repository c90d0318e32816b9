package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

// Admin guards admin routes with the shared admin cookie.
type Admin struct {
	cookie string
	secret string
	logger *zap.Logger
}

// NewAdmin builds the guard from configuration. Without a secret any
// admin cookie is accepted.
func NewAdmin(cfg config.Config, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{cookie: cfg.Admin.CookieName, secret: cfg.Admin.Secret, logger: logger}
}

// Require rejects requests without a valid admin cookie.
func (a *Admin) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(a.cookie)
		if err != nil {
			return response.New(c).WithError(errorbank.Unauthorized("admin session required")).Build()
		}
		if a.secret != "" && subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(a.secret)) != 1 {
			a.logger.Warn("admin cookie rejected", zap.String("path", c.Path()), zap.String("remote_ip", c.RealIP()))
			return response.New(c).WithError(errorbank.Unauthorized("admin session required")).Build()
		}
		return next(c)
	}
}
