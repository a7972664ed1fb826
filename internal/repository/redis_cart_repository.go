package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"simpleshop/internal/config"
	"simpleshop/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// redisCartRepository keeps each cart in two hashes: product id to quantity,
// and product id to the unix-nano time it was first added.
type redisCartRepository struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisClient opens a client for the Redis cart backend and verifies it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewRedisCartRepository creates a Redis-backed cart repository.
func NewRedisCartRepository(client *redis.Client, logger zerolog.Logger) CartRepository {
	return &redisCartRepository{
		client: client,
		logger: logger.With().Str("repository", "redis_cart").Logger(),
	}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func cartAddedKey(userID string) string {
	return fmt.Sprintf("cart:%s:added", userID)
}

// Add increments the quantity atomically with HINCRBY.
func (r *redisCartRepository) Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	now := time.Now().UTC()

	var incr *redis.IntCmd
	var added *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, cartKey(userID), productID, int64(quantity))
		pipe.HSetNX(ctx, cartAddedKey(userID), productID, now.UnixNano())
		added = pipe.HGet(ctx, cartAddedKey(userID), productID)
		return nil
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  int(incr.Val()),
		AddedAt:   parseAddedAt(added.Val(), now),
	}, nil
}

// Remove deletes the entry if present.
func (r *redisCartRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, cartKey(userID), productID)
		pipe.HDel(ctx, cartAddedKey(userID), productID)
		return nil
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// List returns the user's entries, oldest first.
func (r *redisCartRepository) List(ctx context.Context, userID string) ([]model.CartItem, error) {
	var quantities, addedAt *redis.StringStringMapCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		quantities = pipe.HGetAll(ctx, cartKey(userID))
		addedAt = pipe.HGetAll(ctx, cartAddedKey(userID))
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items := make([]model.CartItem, 0, len(quantities.Val()))
	for productID, raw := range quantities.Val() {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			r.logger.Error().Err(err).Str("product_id", productID).Msg("corrupt cart quantity")
			return nil, fmt.Errorf("failed to parse cart quantity for %s: %w", productID, err)
		}
		if qty <= 0 {
			continue
		}
		items = append(items, model.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   parseAddedAt(addedAt.Val()[productID], time.Time{}),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})

	return items, nil
}

// Clear removes every entry for the user.
func (r *redisCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID), cartAddedKey(userID)).Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func parseAddedAt(raw string, fallback time.Time) time.Time {
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(0, nanos).UTC()
}
