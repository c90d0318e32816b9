package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		Number:        "ORD-20250101-ABC123",
		CustomerName:  "Jane Doe",
		CustomerPhone: "+15550100",
		Total:         decimal.NewFromInt(130),
		Items: []*entity.OrderItem{
			{ProductName: "Silver Ring", Quantity: 2, Price: decimal.NewFromInt(50)},
			{ProductName: "Leather Band", Quantity: 1, Price: decimal.NewFromInt(30)},
		},
	}
}

func TestRender_DeliveryMessage(t *testing.T) {
	want := "🚚 ORDER STATUS UPDATE\n" +
		"\n" +
		"📋 Order: ORD-20250101-ABC123\n" +
		"👤 Name: Jane Doe\n" +
		"📞 Contact: +15550100\n" +
		"\n" +
		"Your order is out for delivery\n" +
		"\n" +
		"📦 Products:\n" +
		"1. Silver Ring x2 – $100\n" +
		"2. Leather Band x1 – $30\n" +
		"\n" +
		"💰 Total: $130\n" +
		"\n" +
		"Current Status: DELIVERY"

	assert.Equal(t, want, Render(sampleOrder(), entity.StatusDelivery))
}

func TestRender_AllStatuses(t *testing.T) {
	order := sampleOrder()
	for _, status := range entity.Statuses {
		t.Run(status, func(t *testing.T) {
			msg := Render(order, status)
			info := Info(status)
			assert.True(t, strings.HasPrefix(msg, info.Emoji+" ORDER STATUS UPDATE"))
			assert.Contains(t, msg, order.Number)
			assert.Contains(t, msg, info.Description)
			assert.Contains(t, msg, "Current Status: "+strings.ToUpper(status))
		})
	}
}

func TestRender_UnknownStatusAndTelegramContact(t *testing.T) {
	order := sampleOrder()
	order.CustomerTelegram = "@jane"

	msg := Render(order, "on_hold")
	assert.True(t, strings.HasPrefix(msg, "ℹ️ ORDER STATUS UPDATE"))
	assert.Contains(t, msg, "Status updated to: on_hold")
	assert.Contains(t, msg, "📞 Contact: @jane\n")
	assert.Contains(t, msg, "Current Status: ON_HOLD")
}

func TestRender_RoundsToWholeDollars(t *testing.T) {
	order := sampleOrder()
	order.Items = []*entity.OrderItem{{ProductName: "Pin", Quantity: 3, Price: decimal.RequireFromString("10.50")}}
	order.Total = decimal.RequireFromString("31.50")

	msg := Render(order, entity.StatusApproved)
	assert.Contains(t, msg, "1. Pin x3 – $32")
	assert.Contains(t, msg, "💰 Total: $32")
}

func TestRenderContact(t *testing.T) {
	msg := ContactMessage{Name: "Jane Doe", Contact: "@jane", Email: "jane@example.com", Message: "Is the ring silver?"}
	assert.Equal(t, "💬 NEW MESSAGE\n\n"+
		"👤 Name: Jane Doe\n"+
		"📞 Contact: @jane\n"+
		"📧 Email: jane@example.com\n"+
		"\nIs the ring silver?", RenderContact(msg))

	msg.Email = ""
	assert.NotContains(t, RenderContact(msg), "Email")
}

type counts map[string]int64

func collect(t *testing.T, reader *sdkmetric.ManualReader) counts {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := counts{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "notifications.dispatched" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("result"))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func newTestTelegram(t *testing.T, cfg config.Notification) (*Telegram, *sdkmetric.ManualReader, *observer.ObservedLogs) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	core, logs := observer.New(zap.DebugLevel)

	tg, err := NewTelegram(cfg, zap.New(core), provider.Meter("test"))
	require.NoError(t, err)
	return tg, reader, logs
}

func TestTelegram_SendsMessage(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg, reader, logs := newTestTelegram(t, config.Notification{BotToken: "T0K", ChatID: "42", APIURL: srv.URL + "/", Timeout: time.Second})

	require.NoError(t, tg.Notify(context.Background(), sampleOrder(), entity.StatusDelivery))

	assert.Equal(t, "/botT0K/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, Render(sampleOrder(), entity.StatusDelivery), got.Text)
	assert.Equal(t, counts{"sent": 1}, collect(t, reader))
	assert.Equal(t, 1, logs.FilterMessage("status notification sent").Len())
}

func TestTelegram_NonSuccessIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg, reader, _ := newTestTelegram(t, config.Notification{BotToken: "T", ChatID: "1", APIURL: srv.URL})

	err := tg.Notify(context.Background(), sampleOrder(), entity.StatusApproved)
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, http.StatusBadRequest, delivery.StatusCode)
	assert.Contains(t, delivery.Body, "chat not found")
	assert.Equal(t, counts{"failed": 1}, collect(t, reader))
}

func TestTelegram_DisabledIsNoop(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	for _, cfg := range []config.Notification{
		{ChatID: "1", APIURL: srv.URL},
		{BotToken: "T", APIURL: srv.URL},
	} {
		tg, reader, _ := newTestTelegram(t, cfg)
		assert.False(t, tg.Enabled())
		require.NoError(t, tg.Notify(context.Background(), sampleOrder(), entity.StatusRequested))
		assert.Equal(t, counts{"skipped": 1}, collect(t, reader))
	}
	assert.Zero(t, calls.Load())
}

func TestTelegram_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tg, _, _ := newTestTelegram(t, config.Notification{BotToken: "T", ChatID: "1", APIURL: srv.URL, Timeout: 50 * time.Millisecond})

	err := tg.Notify(context.Background(), sampleOrder(), entity.StatusRequested)
	require.Error(t, err)
	var delivery *DeliveryError
	assert.False(t, errors.As(err, &delivery))
}

func TestTelegram_NotifyContact(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg, reader, logs := newTestTelegram(t, config.Notification{BotToken: "T", ChatID: "42", APIURL: srv.URL, Timeout: time.Second})
	msg := ContactMessage{Name: "Jane", Contact: "+998901234567", Message: "Call me back"}

	require.NoError(t, tg.NotifyContact(context.Background(), msg))
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, RenderContact(msg), got.Text)
	assert.Equal(t, counts{"sent": 1}, collect(t, reader))
	assert.Equal(t, 1, logs.FilterMessage("contact message sent").Len())
}

func TestTelegram_NotifyContactFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tg, reader, _ := newTestTelegram(t, config.Notification{BotToken: "T", ChatID: "1", APIURL: srv.URL})

	err := tg.NotifyContact(context.Background(), ContactMessage{Name: "Jane", Contact: "@jane", Message: "hi"})
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, http.StatusForbidden, delivery.StatusCode)
	assert.Equal(t, counts{"failed": 1}, collect(t, reader))

	disabled, _, _ := newTestTelegram(t, config.Notification{ChatID: "1", APIURL: srv.URL})
	assert.NoError(t, disabled.NotifyContact(context.Background(), ContactMessage{Message: "hi"}))
}
