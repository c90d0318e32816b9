package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
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
	"github.com/Additional-Code/luxe/internal/messaging"
	repo "github.com/Additional-Code/luxe/internal/repository/order"
	"github.com/Additional-Code/luxe/pkg/errorbank"
	"github.com/Additional-Code/luxe/pkg/validation"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/luxe/service/order")

// Repository is the order store used by the service.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string, at time.Time) (*entity.Order, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Order, error)
	Count(ctx context.Context) (int, error)
}

// Catalog resolves current product data at checkout.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []int64) ([]entity.Product, error)
}

// Notifier delivers a status message for an order snapshot.
type Notifier interface {
	Notify(ctx context.Context, order *entity.Order, status string) error
}

// Service encapsulates business logic around orders.
type Service struct {
	repo          Repository
	catalog       Catalog
	notifier      Notifier
	cache         cache.Store
	cacheTTL      time.Duration
	logger        *zap.Logger
	publisher     messaging.Client
	notifyTimeout time.Duration

	now       func() time.Time
	newNumber func(time.Time) string
	inflight  sync.WaitGroup
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Catalog    Catalog
	Notifier   Notifier
	Cache      cache.Store      `optional:"true"`
	Publisher  messaging.Client `optional:"true"`
	Config     config.Config
	Logger     *zap.Logger
	Lifecycle  fx.Lifecycle `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := p.Config.Notification.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Service{
		repo:          p.Repository,
		catalog:       p.Catalog,
		notifier:      p.Notifier,
		cache:         p.Cache,
		cacheTTL:      p.Config.Cache.DefaultTTL,
		logger:        logger,
		publisher:     p.Publisher,
		notifyTimeout: timeout,
		now:           func() time.Time { return time.Now().UTC() },
		newNumber:     newOrderNumber,
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return s.Wait(ctx)
			},
		})
	}
	return s
}

// CustomerInput carries the checkout contact form.
type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message"`
}

// ItemInput is one cart line.
type ItemInput struct {
	ProductID int64 `json:"id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// CreateInput is the checkout request.
type CreateInput struct {
	Customer CustomerInput `json:"customer"`
	Items    []ItemInput   `json:"items" validate:"min=1,dive"`
}

func (in *CreateInput) normalize() {
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.Contact = strings.TrimSpace(in.Customer.Contact)
	in.Customer.Email = strings.TrimSpace(in.Customer.Email)
	in.Customer.Message = strings.TrimSpace(in.Customer.Message)
}

// ClassifyContact splits a contact value into telegram handle or phone.
func ClassifyContact(contact string) (telegram, phone string) {
	contact = strings.TrimSpace(contact)
	if strings.HasPrefix(contact, "@") {
		return contact, ""
	}
	return "", contact
}

func newOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + at.Format("20060102") + "-" + suffix
}

// Create validates the checkout, prices it from the catalog and stores the
// order in the requested state.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int("order.items", len(in.Items))))
	defer span.End()

	products, err := s.lookupProducts(ctx, in.Items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog lookup failed")
		return nil, err
	}

	now := s.now()
	telegram, phone := ClassifyContact(in.Customer.Contact)
	order := &entity.Order{
		Number:           s.newNumber(now),
		CustomerName:     in.Customer.Name,
		CustomerPhone:    phone,
		CustomerTelegram: telegram,
		CustomerEmail:    in.Customer.Email,
		Message:          in.Customer.Message,
		Status:           entity.StatusRequested,
		CreatedAt:        now,
		UpdatedAt:        now,
		Total:            decimal.Zero,
	}
	for _, line := range in.Items {
		p := products[line.ProductID]
		productID := p.ID
		item := &entity.OrderItem{
			ProductID:   &productID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
			CreatedAt:   now,
		}
		if p.ImageURL != nil {
			item.ImageURL = *p.ImageURL
		}
		order.Items = append(order.Items, item)
		order.Total = order.Total.Add(item.Amount())
	}
	span.SetAttributes(attribute.String("order.number", order.Number))

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	s.storeInCache(ctx, order)
	s.publish(ctx, messaging.OrderEvent{
		Type:       messaging.EventOrderCreated,
		OrderID:    order.ID,
		Number:     order.Number,
		Status:     order.Status,
		Total:      order.Total.StringFixed(2),
		Items:      len(order.Items),
		OccurredAt: now,
	})
	s.dispatch(ctx, order, order.Status)

	s.logger.Info("order created",
		zap.Int64("id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *Service) lookupProducts(ctx context.Context, lines []ItemInput) (map[int64]entity.Product, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}

	found, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errorbank.FromStore(err)
	}
	byID := make(map[int64]entity.Product, len(found))
	for _, p := range found {
		if p.IsActive {
			byID[p.ID] = p
		}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, errorbank.BadRequest("unknown or unavailable product", errorbank.WithDetail("product_ids", missing))
	}
	return byID, nil
}

// UpdateStatus overwrites the order status. Any non-empty status is accepted
// from any state. The notification carries the pre-update snapshot.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, errorbank.BadRequest("status is required")
	}
	if id <= 0 {
		return nil, errorbank.BadRequest("orderId is required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", status),
	))
	defer span.End()

	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	if !entity.IsKnownStatus(status) {
		s.logger.Warn("applying unrecognised order status", zap.Int64("id", id), zap.String("status", status))
	}

	now := s.now()
	updated, err := s.repo.UpdateStatus(ctx, id, status, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	s.storeInCache(ctx, updated)
	s.publish(ctx, messaging.OrderEvent{
		Type:           messaging.EventOrderStatusChanged,
		OrderID:        updated.ID,
		Number:         updated.Number,
		Status:         status,
		PreviousStatus: snapshot.Status,
		Total:          updated.Total.StringFixed(2),
		Items:          len(updated.Items),
		OccurredAt:     now,
	})
	s.dispatch(ctx, snapshot, status)

	s.logger.Info("order status updated",
		zap.Int64("id", id),
		zap.String("from", snapshot.Status),
		zap.String("to", status),
	)
	return updated, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var cached entity.Order
	err := cache.GetJSON(ctx, s.cache, cache.OrderKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.FromStore(err)
	}

	s.storeInCache(ctx, order)
	return order, nil
}

// ListRecent returns the newest orders without items.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	orders, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errorbank.FromStore(err)
	}
	return orders, nil
}

// Count returns the number of orders.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errorbank.FromStore(err)
	}
	return n, nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch notifies in the background. The request context's values (trace)
// are kept but its cancellation is not.
func (s *Service) dispatch(ctx context.Context, order *entity.Order, status string) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		if err := s.notifier.Notify(ctx, order, status); err != nil {
			s.logger.Error("status notification failed",
				zap.String("order_number", order.Number),
				zap.String("status", status),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) publish(ctx context.Context, event messaging.OrderEvent) {
	if err := messaging.PublishOrderEvent(ctx, s.publisher, event); err != nil {
		s.logger.Error("publish order event",
			zap.String("type", event.Type),
			zap.Int64("id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) {
	if order == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, cache.OrderKey(order.ID), order, s.cacheTTL); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}
}
