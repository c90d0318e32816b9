package category

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Additional-Code/luxe/internal/database"
	"github.com/Additional-Code/luxe/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/luxe/repository/category")

// ErrNotFound is returned when a category is missing.
var ErrNotFound = errors.New("category not found")

// Repository reads and writes product categories.
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

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, c *entity.Category) error {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(c).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// List returns every category ordered by name.
func (r *Repository) List(ctx context.Context) ([]entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	var categories []entity.Category
	if err := r.reader.NewSelect().Model(&categories).Order("c.name ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return categories, nil
}

// GetBySlug fetches a category by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.GetBySlug")
	defer span.End()
	span.SetAttributes(attribute.String("category.slug", slug))

	c := new(entity.Category)
	err := r.reader.NewSelect().Model(c).Where("c.slug = ?", slug).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return c, nil
}
