package catalog

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/luxe/internal/presentation/http/response"
	service "github.com/Additional-Code/luxe/internal/service/product"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/luxe/transport/http/catalog")

// Handler serves the public storefront read paths.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/catalog")
	g.GET("/products", h.list)
	g.GET("/products/:slug", h.detail)
	g.GET("/home", h.home)
	g.GET("/categories", h.categories)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	params, err := listParams(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.list", trace.WithAttributes(
		attribute.String("sort", params.Sort),
	))
	defer span.End()

	products, err := h.svc.List(ctx, params)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithList(products).Build()
}

func (h *Handler) detail(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.detail", trace.WithAttributes(
		attribute.String("product.slug", c.Param("slug")),
	))
	defer span.End()

	detail, err := h.svc.Detail(ctx, c.Param("slug"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(detail).Build()
}

func (h *Handler) home(c echo.Context) error {
	b := response.New(c)
	home, err := h.svc.Home(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(home).Build()
}

func (h *Handler) categories(c echo.Context) error {
	b := response.New(c)
	categories, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithList(categories).Build()
}

// listParams reads sort, limit, category (id or slug), featured and trending.
func listParams(c echo.Context) (service.ListParams, error) {
	params := service.ListParams{Sort: c.QueryParam("sort")}
	details := map[string]any{}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			details["limit"] = "must be an integer"
		}
		params.Limit = limit
	}

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			params.CategoryID = &id
		} else {
			params.CategorySlug = raw
		}
	}

	for name, dst := range map[string]*bool{"featured": &params.Featured, "trending": &params.Trending} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details[name] = "must be a boolean"
			continue
		}
		*dst = v
	}

	if len(details) > 0 {
		return service.ListParams{}, errorbank.BadRequest("invalid query", errorbank.WithDetails(details))
	}
	return params, nil
}
