package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/messaging"
)

func enabled(concurrency int) config.Config {
	return config.Config{Messaging: config.Messaging{
		Enabled: true,
		Workers: config.Worker{Enabled: true, Concurrency: concurrency},
	}}
}

func TestEngine_DispatchesToAllTopicHandlers(t *testing.T) {
	bus := messaging.NewMemoryClient("orders", 8)
	var first, second atomic.Int32
	engine := NewEngine(Params{
		Client: bus,
		Config: enabled(2),
		Registrations: []HandlerRegistration{
			{Topic: "orders", Handler: func(context.Context, messaging.Message) error { first.Add(1); return nil }},
			{Topic: "orders", Handler: func(context.Context, messaging.Message) error { second.Add(1); return nil }},
			{Topic: "", Handler: func(context.Context, messaging.Message) error { return errors.New("never registered") }},
		},
	})

	require.NoError(t, engine.start(context.Background()))
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), nil, []byte("{}")))
	}

	assert.Eventually(t, func() bool { return first.Load() == 3 && second.Load() == 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, engine.stop(context.Background()))
}

func TestEngine_DisabledDoesNotConsume(t *testing.T) {
	bus := messaging.NewMemoryClient("orders", 1)
	require.NoError(t, bus.Publish(context.Background(), nil, []byte("{}")))

	cfg := enabled(1)
	cfg.Messaging.Workers.Enabled = false
	engine := NewEngine(Params{
		Client:        bus,
		Config:        cfg,
		Logger:        zap.NewNop(),
		Registrations: []HandlerRegistration{{Topic: "orders", Handler: func(context.Context, messaging.Message) error { return nil }}},
	})

	require.NoError(t, engine.start(context.Background()))
	require.NoError(t, engine.stop(context.Background()))
	assert.Equal(t, 1, bus.Pending())
}

func TestEngine_UnknownTopicIsSkipped(t *testing.T) {
	engine := NewEngine(Params{Config: enabled(1)})
	assert.NoError(t, engine.dispatch(context.Background(), 0, messaging.Message{Topic: "other"}))
}

func TestEngine_HandlerPanicFailsMessage(t *testing.T) {
	var after atomic.Int32
	engine := NewEngine(Params{
		Config: enabled(1),
		Registrations: []HandlerRegistration{
			{Topic: "orders", Handler: func(context.Context, messaging.Message) error { panic("boom") }},
			{Topic: "orders", Handler: func(context.Context, messaging.Message) error { after.Add(1); return nil }},
		},
	})

	err := engine.dispatch(context.Background(), 0, messaging.Message{Topic: "orders"})
	assert.ErrorContains(t, err, "handler panic: boom")
	assert.Zero(t, after.Load())
}
