package product

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/luxe/internal/database"
	"github.com/Additional-Code/luxe/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/luxe/repository/product")

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// Sort selects listing order.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	SortName      Sort = "name"
)

// ParseSort maps a query value to a Sort, defaulting to newest.
func ParseSort(v string) Sort {
	switch s := Sort(strings.ToLower(strings.TrimSpace(v))); s {
	case SortPriceAsc, SortPriceDesc, SortName:
		return s
	default:
		return SortNewest
	}
}

func (s Sort) orderBy() []string {
	switch s {
	case SortPriceAsc:
		return []string{"p.price ASC", "p.id ASC"}
	case SortPriceDesc:
		return []string{"p.price DESC", "p.id ASC"}
	case SortName:
		return []string{"p.name ASC", "p.id ASC"}
	default:
		return []string{"p.created_at DESC", "p.id DESC"}
	}
}

// Query filters a product listing.
type Query struct {
	ActiveOnly bool
	CategoryID *int64
	Featured   bool
	Trending   bool
	Sort       Sort
	Limit      int
}

// mutableColumns are overwritten on every update.
var mutableColumns = []string{
	"name",
	"slug",
	"description",
	"price",
	"compare_at_price",
	"category_id",
	"stock",
	"is_active",
	"updated_at",
}

var imageColumns = []string{"image_url", "additional_images"}

// Repository encapsulates read/write access for products.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, p *entity.Product) error {
	if p == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Create", trace.WithAttributes(attribute.String("product.slug", p.Slug)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateOptions selects the optional columns written by Update.
type UpdateOptions struct {
	Images   bool
	Featured bool
	Trending bool
}

func (o UpdateOptions) columns() []string {
	columns := append([]string(nil), mutableColumns...)
	if o.Images {
		columns = append(columns, imageColumns...)
	}
	if o.Featured {
		columns = append(columns, "is_featured")
	}
	if o.Trending {
		columns = append(columns, "is_trending")
	}
	return columns
}

// Update replaces the mutable fields of the product identified by p.ID.
// Image and highlight flag columns are written only when opts selects them.
func (r *Repository) Update(ctx context.Context, p *entity.Product, opts UpdateOptions) error {
	if p == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Update", trace.WithAttributes(
		attribute.Int64("product.id", p.ID),
		attribute.Bool("product.images", opts.Images),
	))
	defer span.End()

	columns := opts.columns()

	_, err := r.writer.NewUpdate().Model(p).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// Delete removes a product by id. Missing rows are not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Product)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

// GetByID fetches a product by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	p := new(entity.Product)
	err := r.reader.NewSelect().Model(p).Where("p.id = ?", id).Scan(ctx)
	return p, r.scanErr(span, err)
}

// GetBySlug fetches a product joined with its category.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetBySlug", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	p := new(entity.Product)
	err := r.reader.NewSelect().
		Model(p).
		Relation("Category").
		Where("p.slug = ?", slug).
		Scan(ctx)
	return p, r.scanErr(span, err)
}

// GetByIDs returns the products matching ids in unspecified order.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByIDs", trace.WithAttributes(attribute.Int("ids", len(ids))))
	defer span.End()

	var products []entity.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.reader.NewSelect().Model(&products).Where("p.id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// List returns products matching q.
func (r *Repository) List(ctx context.Context, q Query) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.List", trace.WithAttributes(
		attribute.String("sort", string(q.Sort)),
		attribute.Int("limit", q.Limit),
	))
	defer span.End()

	var products []entity.Product
	sel := r.reader.NewSelect().Model(&products)
	if q.ActiveOnly {
		sel = sel.Where("p.is_active = ?", true)
	}
	if q.CategoryID != nil {
		sel = sel.Where("p.category_id = ?", *q.CategoryID)
	}
	if q.Featured {
		sel = sel.Where("p.is_featured = ?", true)
	}
	if q.Trending {
		sel = sel.Where("p.is_trending = ?", true)
	}
	sel = sel.Order(q.Sort.orderBy()...)
	if q.Limit > 0 {
		sel = sel.Limit(q.Limit)
	}

	if err := sel.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// Related returns active products of a category other than excludeID.
func (r *Repository) Related(ctx context.Context, categoryID, excludeID int64, limit int) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Related", trace.WithAttributes(
		attribute.Int64("category.id", categoryID),
		attribute.Int64("product.exclude", excludeID),
	))
	defer span.End()

	var products []entity.Product
	sel := r.reader.NewSelect().
		Model(&products).
		Where("p.category_id = ?", categoryID).
		Where("p.id <> ?", excludeID).
		Where("p.is_active = ?", true).
		Order("p.id ASC")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	if err := sel.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// Count returns the total number of products.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Count")
	defer span.End()

	n, err := r.reader.NewSelect().Model((*entity.Product)(nil)).Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
	}
	return n, err
}

func (r *Repository) scanErr(span trace.Span, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
	}
	return err
}
