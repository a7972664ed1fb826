package repository

import (
	"context"
	"math"
	"sync"
	"testing"

	"simpleshop/internal/config"
	"simpleshop/internal/model"
	"simpleshop/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCart runs the behaviour every cart backend must share.
func exerciseCart(t *testing.T, repo CartRepository) {
	ctx := context.Background()

	t.Run("Double add accumulates quantity", func(t *testing.T) {
		item, err := repo.Add(ctx, "alice", "P001", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)

		item, err = repo.Add(ctx, "alice", "P001", 1)
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)

		items, err := repo.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "P001", items[0].ProductID)
		assert.Equal(t, 2, items[0].Quantity)
	})

	t.Run("Concurrent adds keep one entry", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Add(ctx, "bob", "P002", 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		items, err := repo.List(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 10, items[0].Quantity)
	})

	t.Run("List is oldest first and scoped to the user", func(t *testing.T) {
		_, err := repo.Add(ctx, "alice", "P003", 4)
		require.NoError(t, err)

		items, err := repo.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "P001", items[0].ProductID)
		assert.Equal(t, "P003", items[1].ProductID)
		assert.Equal(t, 4, items[1].Quantity)
	})

	t.Run("Remove absent entry is a no-op", func(t *testing.T) {
		require.NoError(t, repo.Remove(ctx, "alice", "P999"))
		require.NoError(t, repo.Remove(ctx, "alice", "P003"))
		require.NoError(t, repo.Remove(ctx, "alice", "P003"))

		items, err := repo.List(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Clear empties only that cart", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx, "alice"))

		items, err := repo.List(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = repo.List(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestCartRepository_Postgres(t *testing.T) {
	pool, _ := testutil.StartPostgres(t)
	testutil.SeedUsers(t, pool, "alice", "bob")
	testutil.SeedProducts(t, pool, testProducts()...)

	repo := NewCartRepository(pool, zerolog.Nop())
	exerciseCart(t, repo)

	t.Run("Unknown product is rejected", func(t *testing.T) {
		item, err := repo.Add(context.Background(), "alice", "MISSING", 1)
		assert.ErrorIs(t, err, model.ErrUnknownProduct)
		assert.Nil(t, item)
	})

	t.Run("Unknown user is rejected", func(t *testing.T) {
		item, err := repo.Add(context.Background(), "ghost", "P001", 1)
		assert.ErrorIs(t, err, model.ErrUnknownUser)
		assert.Nil(t, item)
	})

	t.Run("Accumulated quantity past the column range is rejected", func(t *testing.T) {
		ctx := context.Background()
		_, err := repo.Add(ctx, "bob", "P004", math.MaxInt32)
		require.NoError(t, err)

		item, err := repo.Add(ctx, "bob", "P004", 1)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
		assert.Nil(t, item)

		items, err := repo.List(ctx, "bob")
		require.NoError(t, err)
		for _, it := range items {
			if it.ProductID == "P004" {
				assert.Equal(t, math.MaxInt32, it.Quantity)
			}
		}
	})
}

func TestCartRepository_Redis(t *testing.T) {
	addr := testutil.StartRedis(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr, PoolSize: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseCart(t, NewRedisCartRepository(client, zerolog.Nop()))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
	assert.Nil(t, client)
}
