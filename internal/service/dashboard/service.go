package dashboard

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/luxe/internal/entity"
	productsvc "github.com/Additional-Code/luxe/internal/service/product"
)

const recentSize = 10

var serviceTracer = otel.Tracer("github.com/Additional-Code/luxe/service/dashboard")

// Orders is the order read side used by the dashboard.
type Orders interface {
	ListRecent(ctx context.Context, limit int) ([]entity.Order, error)
	Count(ctx context.Context) (int, error)
}

// Products is the product read side used by the dashboard.
type Products interface {
	List(ctx context.Context, params productsvc.ListParams) ([]entity.Product, error)
	Count(ctx context.Context) (int, error)
}

// Summary is the admin dashboard payload.
type Summary struct {
	RecentOrders  []entity.Order   `json:"recent_orders"`
	Products      []entity.Product `json:"products"`
	OrdersCount   int              `json:"orders_count"`
	ProductsCount int              `json:"products_count"`
}

// Service aggregates the admin dashboard.
type Service struct {
	orders   Orders
	products Products
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders   Orders
	Products Products
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: p.Orders, products: p.Products, logger: logger}
}

// Summary runs the four dashboard reads concurrently. The first failure
// cancels the rest and is returned as-is.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := serviceTracer.Start(ctx, "DashboardService.Summary")
	defer span.End()

	out := &Summary{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.RecentOrders, err = s.orders.ListRecent(gctx, recentSize)
		return err
	})
	g.Go(func() (err error) {
		out.Products, err = s.products.List(gctx, productsvc.ListParams{Limit: recentSize, IncludeInactive: true})
		return err
	})
	g.Go(func() (err error) {
		out.OrdersCount, err = s.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ProductsCount, err = s.products.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard read failed")
		s.logger.Error("dashboard summary failed", zap.Error(err))
		return nil, err
	}

	if out.RecentOrders == nil {
		out.RecentOrders = []entity.Order{}
	}
	if out.Products == nil {
		out.Products = []entity.Product{}
	}
	return out, nil
}
