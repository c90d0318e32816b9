package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/cache"
	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/entity"
	"github.com/Additional-Code/luxe/internal/media"
	repo "github.com/Additional-Code/luxe/internal/repository/product"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/luxe/service/product")

// Repository is the product store used by the service.
type Repository interface {
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product, opts repo.UpdateOptions) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	List(ctx context.Context, q repo.Query) ([]entity.Product, error)
	Related(ctx context.Context, categoryID, excludeID int64, limit int) ([]entity.Product, error)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository reads product categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
}

// ImageSaver stores an uploaded image and returns its public URL.
type ImageSaver interface {
	Save(ctx context.Context, r io.Reader) (string, error)
}

// Previewer builds absolute link preview URLs.
type Previewer interface {
	PageURL(slug string) string
	ImageURL(ctx context.Context, raw string) string
}

// Upload is one image file from a multipart request.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Input is the normalized create/update payload shared by both boundary parsers.
// Nil highlight flags are false on create and left as stored on update.
type Input struct {
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	CategoryID     *int64
	Stock          int
	IsActive       bool
	IsFeatured     *bool
	IsTrending     *bool
	Uploads        []Upload
	ExistingImages []string
}

// Service implements product ingest and the storefront read paths.
type Service struct {
	repo       Repository
	categories CategoryRepository
	images     ImageSaver
	previewer  Previewer
	cache      cache.Store
	cacheTTL   time.Duration
	maxUploads int
	logger     *zap.Logger
	now        func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Categories CategoryRepository `optional:"true"`
	Images     ImageSaver
	Previewer  Previewer
	Cache      cache.Store `optional:"true"`
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       p.Repository,
		categories: p.Categories,
		images:     p.Images,
		previewer:  p.Previewer,
		cache:      p.Cache,
		cacheTTL:   p.Config.Cache.DefaultTTL,
		maxUploads: p.Config.Images.MaxUploads,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (in *Input) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	details := map[string]any{}
	if in.Name == "" {
		details["name"] = "is required"
	}
	if in.Slug == "" {
		details["slug"] = "is required"
	}
	if len(details) > 0 {
		return errorbank.BadRequest("name and slug are required", errorbank.WithDetails(details))
	}
	return nil
}

// Create stores a new product. Uploaded images are transcoded and stored
// before the row is written.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.Create", trace.WithAttributes(attribute.String("product.slug", in.Slug)))
	defer span.End()

	p := s.fromInput(in)
	p.CreatedAt = s.now()

	primary, secondary, touched, err := s.resolveImages(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image processing failed")
		return nil, err
	}
	if touched {
		p.ImageURL, p.AdditionalImages = primary, secondary
	}

	if err := s.repo.Create(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	s.logger.Info("product created", zap.Int64("id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// Update replaces the mutable fields of product id. Images change only when
// the request uploads files or lists existing images. Updating a product that
// does not exist matches no rows and succeeds.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	if id <= 0 {
		return errorbank.BadRequest("product id is required")
	}
	if err := in.validate(); err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Info("update of missing product ignored", zap.Int64("id", id))
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.FromStore(err)
	}

	p := s.fromInput(in)
	p.ID = id
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now()
	if in.IsFeatured == nil {
		p.IsFeatured = current.IsFeatured
	}
	if in.IsTrending == nil {
		p.IsTrending = current.IsTrending
	}

	primary, secondary, touched, err := s.resolveImages(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image processing failed")
		return err
	}
	if touched {
		p.ImageURL, p.AdditionalImages = primary, secondary
	}

	opts := repo.UpdateOptions{
		Images:   touched,
		Featured: in.IsFeatured != nil,
		Trending: in.IsTrending != nil,
	}
	if err := s.repo.Update(ctx, p, opts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.FromStore(err)
	}

	s.invalidate(ctx, current.Slug, p.Slug)
	s.logger.Info("product updated", zap.Int64("id", id), zap.Bool("images", touched))
	return nil
}

// Delete removes product id. A missing product is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errorbank.BadRequest("product id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	current, err := s.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.FromStore(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.FromStore(err)
	}

	s.invalidate(ctx, current.Slug)
	s.logger.Info("product deleted", zap.Int64("id", id), zap.String("slug", current.Slug))
	return nil
}

func (s *Service) fromInput(in Input) *entity.Product {
	return &entity.Product{
		Name:           in.Name,
		Slug:           in.Slug,
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		CategoryID:     in.CategoryID,
		Stock:          in.Stock,
		IsActive:       in.IsActive,
		IsFeatured:     in.IsFeatured != nil && *in.IsFeatured,
		IsTrending:     in.IsTrending != nil && *in.IsTrending,
	}
}

// resolveImages returns the primary and secondary images and whether the
// request changes images at all. Uploads win over existing images.
func (s *Service) resolveImages(ctx context.Context, in Input) (*string, []string, bool, error) {
	var urls []string
	switch {
	case len(in.Uploads) > 0:
		if s.maxUploads > 0 && len(in.Uploads) > s.maxUploads {
			return nil, nil, false, errorbank.BadRequest(fmt.Sprintf("at most %d images per request", s.maxUploads))
		}
		if s.images == nil {
			return nil, nil, false, errorbank.Internal("image storage is not configured")
		}
		for _, up := range in.Uploads {
			url, err := s.saveUpload(ctx, up)
			if err != nil {
				return nil, nil, false, err
			}
			urls = append(urls, url)
		}
	case len(in.ExistingImages) > 0:
		urls = in.ExistingImages
	default:
		return nil, nil, false, nil
	}

	primary := urls[0]
	var secondary []string
	if len(urls) > 1 {
		secondary = append([]string(nil), urls[1:]...)
	}
	return &primary, secondary, true, nil
}

func (s *Service) saveUpload(ctx context.Context, up Upload) (string, error) {
	rc, err := up.Open()
	if err != nil {
		return "", errorbank.BadRequest("unreadable upload", errorbank.WithCause(err), errorbank.WithDetail("file", up.Filename))
	}
	defer rc.Close()

	url, err := s.images.Save(ctx, rc)
	if errors.Is(err, media.ErrUnsupportedImage) {
		return "", errorbank.BadRequest("unsupported image", errorbank.WithCause(err), errorbank.WithDetail("file", up.Filename))
	}
	if err != nil {
		return "", errorbank.Internal("failed to store image", errorbank.WithCause(err))
	}
	return url, nil
}

func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	seen := map[string]struct{}{}
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok || slug == "" {
			continue
		}
		seen[slug] = struct{}{}
		if err := s.cache.Delete(ctx, cache.ProductKey(slug)); err != nil {
			s.logger.Warn("product cache invalidation failed", zap.String("slug", slug), zap.Error(err))
		}
	}
}
