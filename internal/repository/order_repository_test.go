package repository

import (
	"context"
	"testing"
	"time"

	"simpleshop/internal/model"
	"simpleshop/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertOrder writes an order with one item per price through the repository
// and commits it.
func insertOrder(t *testing.T, repo OrderRepository, userID string, number int, createdAt time.Time, prices ...string) *model.Order {
	t.Helper()
	ctx := context.Background()

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CreatedAt:       createdAt,
		UserOrderNumber: number,
	}

	total := decimal.Zero
	for i, price := range prices {
		item := model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   "P00" + string(rune('1'+i)),
			ProductName: "Item " + string(rune('A'+i)),
			Quantity:    i + 1,
			Price:       decimal.RequireFromString(price),
		}
		total = total.Add(item.Subtotal())
		order.Items = append(order.Items, item)
	}
	order.TotalPrice = total

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, order.Items))
	require.NoError(t, tx.Commit(ctx))

	return order
}

func setupOrderRepo(t *testing.T) (*pgxpool.Pool, OrderRepository) {
	pool, _ := testutil.StartPostgres(t)
	testutil.SeedUsers(t, pool, "alice", "bob")
	return pool, NewOrderRepository(pool, zerolog.Nop())
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	_, repo := setupOrderRepo(t)
	ctx := context.Background()

	created := insertOrder(t, repo, "alice", 1, time.Now().UTC().Truncate(time.Microsecond), "10.50", "3.25")

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, 1, got.UserOrderNumber)
	assert.False(t, got.IsPaid)
	assert.Nil(t, got.AddressID)
	assert.Nil(t, got.GatewayOrderID)
	assert.True(t, decimal.RequireFromString("17.00").Equal(got.TotalPrice))
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Item A", got.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("10.50").Equal(got.Items[0].Price))
	assert.Equal(t, 2, got.Items[1].Quantity)
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	_, repo := setupOrderRepo(t)

	order, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestOrderRepository_DuplicateNumberIsConflict(t *testing.T) {
	_, repo := setupOrderRepo(t)
	ctx := context.Background()

	insertOrder(t, repo, "alice", 1, time.Now(), "1.00")

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = repo.CreateOrder(ctx, tx, &model.Order{
		ID:              uuid.New(),
		UserID:          "alice",
		TotalPrice:      decimal.NewFromInt(1),
		CreatedAt:       time.Now(),
		UserOrderNumber: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSequenceConflict)
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestOrderRepository_CreateOrder_ForeignKeys(t *testing.T) {
	pool, repo := setupOrderRepo(t)
	ctx := context.Background()

	addresses := NewAddressRepository(pool, zerolog.Nop())
	removed := newAddress("alice", "Old")
	require.NoError(t, addresses.Create(ctx, removed))
	require.NoError(t, addresses.Delete(ctx, "alice", removed.ID))

	tests := []struct {
		name      string
		userID    string
		addressID *uuid.UUID
		want      error
	}{
		{name: "Address removed before insert", userID: "alice", addressID: &removed.ID, want: model.ErrInvalidAddress},
		{name: "Unknown user", userID: "ghost", want: model.ErrUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := repo.BeginTx(ctx)
			require.NoError(t, err)
			defer tx.Rollback(ctx)

			err = repo.CreateOrder(ctx, tx, &model.Order{
				ID:              uuid.New(),
				UserID:          tt.userID,
				AddressID:       tt.addressID,
				TotalPrice:      decimal.NewFromInt(1),
				CreatedAt:       time.Now(),
				UserOrderNumber: 1,
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOrderRepository_TransactionRollback(t *testing.T) {
	_, repo := setupOrderRepo(t)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          "alice",
		TotalPrice:      decimal.NewFromInt(5),
		CreatedAt:       time.Now(),
		UserOrderNumber: 1,
	}
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_ListByUser(t *testing.T) {
	_, repo := setupOrderRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	first := insertOrder(t, repo, "alice", 1, base, "1.00")
	second := insertOrder(t, repo, "alice", 2, base.Add(time.Minute), "2.00", "3.00")
	insertOrder(t, repo, "bob", 1, base, "9.99")

	orders, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 2)
	assert.Len(t, orders[1].Items, 1)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_PaymentUpdates(t *testing.T) {
	_, repo := setupOrderRepo(t)
	ctx := context.Background()

	order := insertOrder(t, repo, "alice", 1, time.Now(), "100.00")

	t.Run("Other user cannot attach a gateway reference", func(t *testing.T) {
		ok, err := repo.SetGatewayOrderID(ctx, order.ID, "bob", "order_x")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Mark paid needs the current reference", func(t *testing.T) {
		ok, err := repo.SetGatewayOrderID(ctx, order.ID, "alice", "order_1")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.SetGatewayOrderID(ctx, order.ID, "alice", "order_2")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.MarkPaid(ctx, order.ID, "order_1", "pay_1", "sig")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Mark paid happens once", func(t *testing.T) {
		ok, err := repo.MarkPaid(ctx, order.ID, "order_2", "pay_2", "sig_2")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.MarkPaid(ctx, order.ID, "order_2", "pay_3", "sig_3")
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		require.NotNil(t, got.GatewayPaymentID)
		assert.Equal(t, "pay_2", *got.GatewayPaymentID)
	})

	t.Run("Paid order keeps its reference", func(t *testing.T) {
		ok, err := repo.SetGatewayOrderID(ctx, order.ID, "alice", "order_3")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOrderRepository_ErrorPaths(t *testing.T) {
	pool, repo := setupOrderRepo(t)
	ctx := context.Background()

	// Close the pool to simulate database errors
	pool.Close()

	t.Run("BeginTx with closed pool", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.Error(t, err)
		assert.Nil(t, tx)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		order, err := repo.GetByID(ctx, uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrOrderNotFound)
		assert.Nil(t, order)
	})
}
