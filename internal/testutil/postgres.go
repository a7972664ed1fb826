// Package testutil starts throwaway infrastructure containers for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"simpleshop/internal/database"
	"simpleshop/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres launches a PostgreSQL container, applies the embedded
// migrations and returns a pool plus the connection string. Teardown is
// registered with t.Cleanup.
func StartPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zerolog.Nop()
	require.NoError(t, database.RunMigrations(connStr, logger))

	pool, err := database.Connect(ctx, connStr, database.DefaultPoolOptions(), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool, connStr
}

// SeedUsers inserts users with a derived email address.
func SeedUsers(t *testing.T, pool *pgxpool.Pool, ids ...string) {
	t.Helper()

	for _, id := range ids {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)`,
			id, id+"@example.com", "User "+id,
		)
		require.NoError(t, err)
	}
}

// SeedProducts inserts catalogue rows.
func SeedProducts(t *testing.T, pool *pgxpool.Pool, products ...model.Product) {
	t.Helper()

	query := `
		INSERT INTO products (id, name, description, price, category, brand, stock, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, p := range products {
		_, err := pool.Exec(context.Background(), query,
			p.ID, p.Name, p.Description, p.Price, string(p.Category), string(p.Brand), p.Stock, p.Rating,
		)
		require.NoError(t, err)
	}
}

// CleanupDB removes all rows from every application table.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE order_items, orders, user_order_sequences, cart_items, addresses, products, users
	`)
	require.NoError(t, err)
}
