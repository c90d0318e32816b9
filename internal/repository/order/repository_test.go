package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/luxe/internal/database/dbtest"
	"github.com/Additional-Code/luxe/internal/entity"
)

func newTestOrder(number string) *entity.Order {
	now := time.Now().UTC().Truncate(time.Second)
	productID := int64(7)
	return &entity.Order{
		Number:        number,
		CustomerName:  "Jane Doe",
		CustomerPhone: "+15550100",
		Total:         decimal.NewFromInt(130),
		Status:        entity.StatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items: []*entity.OrderItem{
			{ProductID: &productID, ProductName: "Silver Ring", Quantity: 2, Price: decimal.NewFromInt(50)},
			{ProductName: "Leather Band", Quantity: 1, Price: decimal.NewFromInt(30)},
		},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	order := newTestOrder("ORD-1")
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", got.Number)
	assert.Equal(t, entity.StatusRequested, got.Status)
	assert.True(t, decimal.NewFromInt(130).Equal(got.Total))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Silver Ring", got.Items[0].ProductName)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Items[0].Price))
	require.NotNil(t, got.Items[0].ProductID)
	assert.Equal(t, int64(7), *got.Items[0].ProductID)
	assert.Equal(t, "Leather Band", got.Items[1].ProductName)
	assert.Nil(t, got.Items[1].ProductID)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	order := newTestOrder("ORD-2")
	require.NoError(t, repo.Create(ctx, order))

	at := order.CreatedAt.Add(time.Hour)
	updated, err := repo.UpdateStatus(ctx, order.ID, entity.StatusDelivery, at)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDelivery, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(at), "updated_at %s != %s", updated.UpdatedAt, at)
	assert.Len(t, updated.Items, 2)

	// Any label is accepted, including leaving a terminal state.
	_, err = repo.UpdateStatus(ctx, order.ID, entity.StatusCompleted, at)
	require.NoError(t, err)
	updated, err = repo.UpdateStatus(ctx, order.ID, entity.StatusRequested, at)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRequested, updated.Status)
}

func TestRepository_UpdateStatusMissing(t *testing.T) {
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	_, err := repo.UpdateStatus(context.Background(), 99, entity.StatusApproved, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateStatusWithNoChangedRows(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewRepository(dbtest.Connections(db))

	order := newTestOrder("ORD-4")
	require.NoError(t, repo.Create(ctx, order))

	// The trigger leaves the row untouched, so the driver reports zero
	// affected rows for an order that exists.
	_, err := db.ExecContext(ctx, `CREATE TRIGGER orders_unchanged BEFORE UPDATE ON orders BEGIN SELECT RAISE(IGNORE); END`)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, order.ID, order.Status, order.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, order.ID, updated.ID)
	assert.Equal(t, order.Status, updated.Status)
}

func TestRepository_DuplicateNumberRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-3")))
	require.Error(t, repo.Create(ctx, newTestOrder("ORD-3")))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Connections(dbtest.New(t)))

	for i, number := range []string{"ORD-A", "ORD-B", "ORD-C"} {
		o := newTestOrder(number)
		o.CreatedAt = o.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-C", orders[0].Number)
	assert.Equal(t, "ORD-B", orders[1].Number)
}
