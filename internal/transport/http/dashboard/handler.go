package dashboard

import (
	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	service "github.com/Additional-Code/luxe/internal/service/dashboard"
	"github.com/Additional-Code/luxe/internal/transport/http/middleware"
)

// Handler serves the admin dashboard summary.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a dashboard Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the dashboard behind the admin cookie.
func Register(e *echo.Echo, h *Handler, admin *middleware.Admin) {
	e.GET("/api/admin/dashboard", h.summary, admin.Require)
}

func (h *Handler) summary(c echo.Context) error {
	b := response.New(c)
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(summary).Build()
}
