package product

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	service "github.com/Additional-Code/luxe/internal/service/product"
	"github.com/Additional-Code/luxe/internal/transport/http/middleware"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/luxe/transport/http/product")

// Handler exposes product ingest and related-product endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, admin *middleware.Admin) {
	g := e.Group("/api/products")
	g.GET("", h.related)
	g.POST("", h.create, admin.Require)
	g.PUT("/:id", h.update, admin.Require)
	g.DELETE("/:id", h.delete, admin.Require)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	in, err := ParseInput(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create", trace.WithAttributes(
		attribute.String("product.slug", in.Slug),
		attribute.Int("product.uploads", len(in.Uploads)),
	))
	defer span.End()

	p, err := h.svc.Create(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(p).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	in, err := ParseInput(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := h.svc.Update(ctx, id, in); err != nil {
		return b.WithError(err).Build()
	}
	return b.Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.Build()
}

func (h *Handler) related(c echo.Context) error {
	b := response.New(c)

	categoryID, err := strconv.ParseInt(c.QueryParam("category"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("category is required", errorbank.WithCause(err))).Build()
	}
	var exclude int64
	if raw := c.QueryParam("exclude"); raw != "" {
		if exclude, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return b.WithError(errorbank.BadRequest("invalid exclude", errorbank.WithCause(err))).Build()
		}
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return b.WithError(err).Build()
	}

	products, err := h.svc.Related(c.Request().Context(), categoryID, exclude, limit)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithList(products).Build()
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("product id is required")
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithCause(err))
	}
	return v, nil
}
