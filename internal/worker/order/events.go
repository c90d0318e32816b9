package order

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/messaging"
	"github.com/Additional-Code/luxe/internal/observability"
	"github.com/Additional-Code/luxe/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/luxe/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewEventsHandler consumes order lifecycle events into the audit log and
// the orders.events counter.
func NewEventsHandler(logger *zap.Logger, cfg config.Config, obs *observability.Manager) (worker.HandlerRegistration, error) {
	var meter metric.Meter
	if obs != nil {
		meter = obs.Meter("github.com/Additional-Code/luxe/worker/order")
	} else {
		meter = otel.Meter("github.com/Additional-Code/luxe/worker/order")
	}
	events, err := meter.Int64Counter("orders.events", metric.WithDescription("Order lifecycle events consumed by the worker"))
	if err != nil {
		return worker.HandlerRegistration{}, err
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: newHandler(logger, events),
	}, nil
}

func newHandler(logger *zap.Logger, events metric.Int64Counter) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		event, err := messaging.DecodeOrderEvent(msg)
		if err != nil {
			// Undecodable payloads are dropped; retrying cannot fix them.
			logger.Error("dropping undecodable order event", zap.Error(err), zap.Int64("offset", msg.Offset))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}

		fields := []zap.Field{
			zap.Int64("id", event.OrderID),
			zap.String("order_number", event.Number),
			zap.String("status", event.Status),
			zap.String("total", event.Total),
			zap.Int("items", event.Items),
			zap.Time("occurred_at", event.OccurredAt),
		}
		switch event.Type {
		case messaging.EventOrderCreated:
			logger.Info("order placed", fields...)
		case messaging.EventOrderStatusChanged:
			logger.Info("order status changed", append(fields, zap.String("previous_status", event.PreviousStatus))...)
		default:
			logger.Warn("unknown order event type", append(fields, zap.String("type", event.Type))...)
		}

		events.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", event.Type),
			attribute.String("status", event.Status),
		))
		return nil
	}
}
