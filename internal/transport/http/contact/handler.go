package contact

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	service "github.com/Additional-Code/luxe/internal/service/contact"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/luxe/transport/http/contact")

// Handler exposes the storefront contact form.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a contact Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/api/contact", h.send)
}

// sendRequest mirrors the checkout body so the storefront form posts the
// same customer block in both modes.
type sendRequest struct {
	Customer service.Input `json:"customer"`
}

func (h *Handler) send(c echo.Context) error {
	b := response.New(c)

	var payload sendRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "contact.send")
	defer span.End()

	if err := h.svc.Send(ctx, payload.Customer); err != nil {
		return b.WithError(err).Build()
	}
	return b.Build()
}
