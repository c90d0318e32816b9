// Package seeder fills a development database with a browsable catalog and
// a handful of orders.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/entity"
	categoryrepo "github.com/Additional-Code/luxe/internal/repository/category"
	orderrepo "github.com/Additional-Code/luxe/internal/repository/order"
	productrepo "github.com/Additional-Code/luxe/internal/repository/product"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

var categoryNames = []string{"Rings", "Necklaces", "Bracelets", "Earrings", "Watches"}

const (
	productsPerCategory = 6
	orderCount          = 8
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	categories *categoryrepo.Repository
	products   *productrepo.Repository
	orders     *orderrepo.Repository
	faker      *gofakeit.Faker
	logger     *zap.Logger
	now        func() time.Time
}

// Params defines dependencies for constructing Seeder.
type Params struct {
	fx.In

	Categories *categoryrepo.Repository
	Products   *productrepo.Repository
	Orders     *orderrepo.Repository
	Logger     *zap.Logger
}

// New constructs a Seeder with a fixed faker seed so runs are reproducible.
func New(p Params) *Seeder {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		categories: p.Categories,
		products:   p.Products,
		orders:     p.Orders,
		faker:      gofakeit.New(20251015),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds categories, products and orders. Each step is skipped when its
// table already holds data.
func (s *Seeder) Run(ctx context.Context) error {
	categories, err := s.Categories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	products, err := s.Products(ctx, categories)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := s.Orders(ctx, products); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}

// Categories ensures the storefront categories exist.
func (s *Seeder) Categories(ctx context.Context) ([]entity.Category, error) {
	out := make([]entity.Category, 0, len(categoryNames))
	created := 0
	for _, name := range categoryNames {
		slug := Slugify(name)
		c, err := s.categories.GetBySlug(ctx, slug)
		if errors.Is(err, categoryrepo.ErrNotFound) {
			c = &entity.Category{Name: name, Slug: slug}
			err = s.categories.Create(ctx, c)
			created++
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	s.logger.Info("seeded categories", zap.Int("created", created))
	return out, nil
}

// Products creates fake products across categories when the catalog is empty.
func (s *Seeder) Products(ctx context.Context, categories []entity.Category) ([]entity.Product, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		s.logger.Info("products present; skipping", zap.Int("count", count))
		return s.products.List(ctx, productrepo.Query{ActiveOnly: true, Limit: 50})
	}

	var out []entity.Product
	for _, c := range categories {
		for i := 0; i < productsPerCategory; i++ {
			p := s.fakeProduct(c, i)
			if err := s.products.Create(ctx, &p); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	s.logger.Info("seeded products", zap.Int("count", len(out)))
	return out, nil
}

func (s *Seeder) fakeProduct(c entity.Category, i int) entity.Product {
	f := s.faker
	name := f.ProductName()
	price := decimal.NewFromFloat(f.Price(15, 900)).Round(2)
	categoryID := c.ID

	p := entity.Product{
		Name:        name,
		Slug:        fmt.Sprintf("%s-%s-%d", Slugify(name), c.Slug, i+1),
		Description: f.Sentence(12),
		Price:       price,
		CategoryID:  &categoryID,
		Stock:       f.Number(0, 40),
		IsActive:    f.Number(1, 10) > 1,
		IsFeatured:  i == 0,
		IsTrending:  f.Bool(),
		CreatedAt:   s.now().Add(-time.Duration(f.Number(1, 90*24)) * time.Hour),
	}
	if f.Bool() {
		compare := price.Mul(decimal.NewFromFloat(1.25)).Round(0)
		p.CompareAtPrice = &compare
	}
	return p
}

// Orders creates sample orders against seeded products when none exist.
func (s *Seeder) Orders(ctx context.Context, products []entity.Product) error {
	count, err := s.orders.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 || len(products) == 0 {
		s.logger.Info("orders present or no products; skipping", zap.Int("count", count))
		return nil
	}

	f := s.faker
	for i := 0; i < orderCount; i++ {
		at := s.now().Add(-time.Duration(orderCount-i) * 6 * time.Hour)
		order := &entity.Order{
			Number:       fmt.Sprintf("ORD-%s-SEED%02d", at.Format("20060102"), i+1),
			CustomerName: f.Name(),
			Status:       entity.Statuses[i%len(entity.Statuses)],
			CreatedAt:    at,
			UpdatedAt:    at,
		}
		if f.Bool() {
			order.CustomerTelegram = "@" + strings.ToLower(f.Username())
		} else {
			order.CustomerPhone = f.Phone()
			order.CustomerEmail = f.Email()
		}

		total := decimal.Zero
		for n := f.Number(1, 3); n > 0; n-- {
			p := products[f.Number(0, len(products)-1)]
			productID := p.ID
			item := &entity.OrderItem{
				ProductID:   &productID,
				ProductName: p.Name,
				Quantity:    f.Number(1, 3),
				Price:       p.Price,
				CreatedAt:   at,
			}
			if p.ImageURL != nil {
				item.ImageURL = *p.ImageURL
			}
			total = total.Add(item.Amount())
			order.Items = append(order.Items, item)
		}
		order.Total = total

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
	}
	s.logger.Info("seeded orders", zap.Int("count", orderCount))
	return nil
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
