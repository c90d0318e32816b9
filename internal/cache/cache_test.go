package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "orders:42", OrderKey(42))
	assert.Equal(t, "products:slug:silver-ring", ProductKey("silver-ring"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, store.Set(ctx, "", []byte("v"), 0))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, store, "p", payload{Name: "ring"}, 0))

	var got payload
	require.NoError(t, GetJSON(ctx, store, "p", &got))
	assert.Equal(t, "ring", got.Name)

	assert.ErrorIs(t, GetJSON(ctx, store, "missing", &got), ErrCacheMiss)
	assert.ErrorIs(t, GetJSON(ctx, nil, "p", &got), ErrCacheMiss)
}

func TestNewStore_Drivers(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	store, err := NewStore(lc, config.Config{Cache: config.Cache{Driver: "noop"}}, zap.NewNop())
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	store, err = NewStore(lc, config.Config{Cache: config.Cache{Driver: "memory", DefaultTTL: time.Minute}}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore(lc, config.Config{Cache: config.Cache{Driver: "memcached"}}, zap.NewNop())
	assert.Error(t, err)
}
