package dashboard

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/luxe/internal/transport/http/middleware"
)

// Module wires the admin dashboard handler.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, admin *middleware.Admin) {
		Register(e, h, admin)
	}),
)
