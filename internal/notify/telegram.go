package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/entity"
	"github.com/Additional-Code/luxe/internal/observability"
)

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultSkipped = "skipped"

	maxErrorBody = 4 << 10
)

var notifyTracer = otel.Tracer("github.com/Additional-Code/luxe/notify")

// Module provides the Telegram notifier to Fx.
var Module = fx.Provide(func(cfg config.Config, logger *zap.Logger, obs *observability.Manager) (*Telegram, error) {
	return NewTelegram(cfg.Notification, logger, obs.Meter("github.com/Additional-Code/luxe/notify"))
})

// DeliveryError reports a non-2xx answer from the Bot API.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("telegram api error: status %d: %s", e.StatusCode, e.Body)
}

// Telegram sends status messages through the Bot API sendMessage method.
type Telegram struct {
	client     *http.Client
	endpoint   string
	chatID     string
	enabled    bool
	logger     *zap.Logger
	dispatched metric.Int64Counter
}

// NewTelegram builds a notifier. Without a bot token or chat id it is a no-op.
func NewTelegram(cfg config.Notification, logger *zap.Logger, meter metric.Meter) (*Telegram, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meter == nil {
		meter = otel.Meter("github.com/Additional-Code/luxe/notify")
	}
	counter, err := meter.Int64Counter(
		"notifications.dispatched",
		metric.WithDescription("Order status notifications by outcome"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create notification counter: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	return &Telegram{
		client:     &http.Client{Timeout: timeout},
		endpoint:   apiURL + "/bot" + cfg.BotToken + "/sendMessage",
		chatID:     cfg.ChatID,
		enabled:    cfg.Enabled(),
		logger:     logger,
		dispatched: counter,
	}, nil
}

// Enabled reports whether messages are actually sent.
func (t *Telegram) Enabled() bool { return t.enabled }

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Notify renders the message for order moving to status and sends it once.
func (t *Telegram) Notify(ctx context.Context, order *entity.Order, status string) error {
	ctx, span := notifyTracer.Start(ctx, "Telegram.Notify", trace.WithAttributes(
		attribute.String("order.number", order.Number),
		attribute.String("order.status", status),
	))
	defer span.End()

	if !t.enabled {
		t.logger.Debug("telegram not configured; skipping notification", zap.String("order_number", order.Number))
		t.record(ctx, resultSkipped)
		return nil
	}

	err := t.send(ctx, Render(order, status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		t.record(ctx, resultFailed)
		return err
	}
	t.record(ctx, resultSent)
	t.logger.Info("status notification sent",
		zap.String("order_number", order.Number),
		zap.String("status", status),
	)
	return nil
}

// NotifyContact sends a customer message once.
func (t *Telegram) NotifyContact(ctx context.Context, msg ContactMessage) error {
	ctx, span := notifyTracer.Start(ctx, "Telegram.NotifyContact")
	defer span.End()

	if !t.enabled {
		t.logger.Debug("telegram not configured; skipping contact message")
		t.record(ctx, resultSkipped)
		return nil
	}

	if err := t.send(ctx, RenderContact(msg)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		t.record(ctx, resultFailed)
		return err
	}
	t.record(ctx, resultSent)
	t.logger.Info("contact message sent", zap.String("contact", msg.Contact))
	return nil
}

func (t *Telegram) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (t *Telegram) record(ctx context.Context, result string) {
	t.dispatched.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
