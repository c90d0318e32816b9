package product

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/luxe/internal/cache"
	"github.com/Additional-Code/luxe/internal/entity"
	categoryrepo "github.com/Additional-Code/luxe/internal/repository/category"
	repo "github.com/Additional-Code/luxe/internal/repository/product"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

const (
	DefaultListLimit    = 20
	MaxListLimit        = 100
	DefaultRelatedLimit = 10

	slideshowSize = 5
	forYouSize    = 10

	storeName = "LuxeAccessories"
)

// ListParams filters the storefront listing.
type ListParams struct {
	Sort            string
	Limit           int
	CategoryID      *int64
	CategorySlug    string
	Featured        bool
	Trending        bool
	IncludeInactive bool
}

// ClampLimit applies the listing default and cap.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// List returns products for the storefront grid. A category slug is
// resolved to its id; an unknown slug yields an empty list.
func (s *Service) List(ctx context.Context, params ListParams) ([]entity.Product, error) {
	if params.CategoryID == nil && params.CategorySlug != "" {
		id, found, err := s.categoryID(ctx, params.CategorySlug)
		if err != nil {
			return nil, err
		}
		if !found {
			return []entity.Product{}, nil
		}
		params.CategoryID = &id
	}

	q := repo.Query{
		ActiveOnly: !params.IncludeInactive,
		CategoryID: params.CategoryID,
		Featured:   params.Featured,
		Trending:   params.Trending,
		Sort:       repo.ParseSort(params.Sort),
		Limit:      ClampLimit(params.Limit),
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.List", trace.WithAttributes(
		attribute.String("sort", string(q.Sort)),
		attribute.Int("limit", q.Limit),
	))
	defer span.End()

	products, err := s.repo.List(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}
	return products, nil
}

// GetBySlug returns a product with its category, cached by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errorbank.BadRequest("slug is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.GetBySlug", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	var cached entity.Product
	err := cache.GetJSON(ctx, s.cache, cache.ProductKey(slug), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("products cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	if err := cache.SetJSON(ctx, s.cache, cache.ProductKey(slug), p, s.cacheTTL); err != nil {
		s.logger.Warn("products cache write failed", zap.String("slug", slug), zap.Error(err))
	}
	return p, nil
}

// Related returns other active products of the same category.
func (s *Service) Related(ctx context.Context, categoryID, excludeID int64, limit int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	products, err := s.repo.Related(ctx, categoryID, excludeID, limit)
	if err != nil {
		return nil, errorbank.FromStore(err)
	}
	return products, nil
}

// Count returns the number of products.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errorbank.FromStore(err)
	}
	return n, nil
}

func (s *Service) categoryID(ctx context.Context, slug string) (int64, bool, error) {
	if s.categories == nil {
		return 0, false, nil
	}
	c, err := s.categories.GetBySlug(ctx, strings.TrimSpace(slug))
	switch {
	case errors.Is(err, categoryrepo.ErrNotFound):
		return 0, false, nil
	case err != nil:
		return 0, false, errorbank.FromStore(err)
	}
	return c.ID, true, nil
}

// Categories lists every category by name.
func (s *Service) Categories(ctx context.Context) ([]entity.Category, error) {
	if s.categories == nil {
		return []entity.Category{}, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, errorbank.FromStore(err)
	}
	return categories, nil
}

// Home holds the landing page rows.
type Home struct {
	Slideshow   []entity.Product `json:"slideshow"`
	ForYou      []entity.Product `json:"for_you"`
	Featured    []entity.Product `json:"featured"`
	Trending    []entity.Product `json:"trending"`
	NewArrivals []entity.Product `json:"new_arrivals"`
}

// Home loads every landing page row concurrently.
func (s *Service) Home(ctx context.Context) (*Home, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Home")
	defer span.End()

	home := &Home{}
	rows := []struct {
		dst *[]entity.Product
		q   repo.Query
	}{
		{&home.Slideshow, repo.Query{ActiveOnly: true, Sort: repo.SortNewest, Limit: slideshowSize}},
		{&home.ForYou, repo.Query{ActiveOnly: true, Sort: repo.SortName, Limit: forYouSize}},
		{&home.Featured, repo.Query{ActiveOnly: true, Featured: true, Sort: repo.SortNewest, Limit: MaxListLimit}},
		{&home.Trending, repo.Query{ActiveOnly: true, Trending: true, Sort: repo.SortNewest, Limit: MaxListLimit}},
		{&home.NewArrivals, repo.Query{ActiveOnly: true, Sort: repo.SortNewest, Limit: MaxListLimit}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			products, err := s.repo.List(gctx, row.q)
			if err != nil {
				return err
			}
			*row.dst = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}
	return home, nil
}

// Preview is the link preview metadata of a product page.
type Preview struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	ImageURL      string `json:"image_url"`
	FallbackImage string `json:"fallback_image"`
}

// Detail is a product page: the product with its category plus preview data.
type Detail struct {
	Product *entity.Product `json:"product"`
	Preview Preview         `json:"preview"`
}

// Detail loads the product by slug and builds its preview metadata.
func (s *Service) Detail(ctx context.Context, slug string) (*Detail, error) {
	p, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &Detail{Product: p, Preview: s.Preview(ctx, p)}, nil
}

// Preview builds the link preview for p.
func (s *Service) Preview(ctx context.Context, p *entity.Product) Preview {
	description := p.Description
	if description == "" {
		description = "Shop " + p.Name + " at " + storeName
	}
	out := Preview{
		Title:       p.Name + " | " + storeName,
		Description: description,
	}
	if s.previewer == nil {
		return out
	}

	raw := ""
	if p.ImageURL != nil {
		raw = *p.ImageURL
	}
	out.URL = s.previewer.PageURL(p.Slug)
	out.ImageURL = s.previewer.ImageURL(ctx, raw)
	out.FallbackImage = s.previewer.ImageURL(ctx, "")
	return out
}
