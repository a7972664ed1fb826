package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"simpleshop/internal/model"
	"simpleshop/internal/testutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSequencer_Next_ErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{name: "Lock timeout", err: &pgconn.PgError{Code: "55P03"}, wantConflict: true},
		{name: "Serialization failure", err: &pgconn.PgError{Code: "40001"}, wantConflict: true},
		{name: "Deadlock", err: &pgconn.PgError{Code: "40P01"}, wantConflict: true},
		{name: "Unique violation", err: &pgconn.PgError{Code: "23505"}, wantConflict: true},
		{name: "Check violation", err: &pgconn.PgError{Code: "23514"}, wantConflict: false},
		{name: "Connection lost", err: errors.New("conn closed"), wantConflict: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			ctx := context.Background()
			mock.ExpectBegin()
			mock.ExpectExec("SELECT set_config").
				WithArgs("1500ms").
				WillReturnResult(pgxmock.NewResult("SELECT", 1))
			mock.ExpectQuery("INSERT INTO user_order_sequences").
				WithArgs("alice").
				WillReturnError(tt.err)

			tx, err := mock.Begin(ctx)
			require.NoError(t, err)

			seq := NewOrderSequencer(1500*time.Millisecond, zerolog.Nop())
			n, err := seq.Next(ctx, tx, "alice")

			require.Error(t, err)
			assert.Zero(t, n)
			assert.Equal(t, tt.wantConflict, errors.Is(err, model.ErrSequenceConflict))
			assert.ErrorIs(t, err, tt.err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderSequencer_Next_UnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO user_order_sequences").
		WithArgs("ghost").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "user_order_sequences_user_id_fkey"})

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	n, err := NewOrderSequencer(0, zerolog.Nop()).Next(ctx, tx, "ghost")
	assert.Zero(t, n)
	assert.ErrorIs(t, err, model.ErrUnknownUser)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderSequencer_Next_ReturnsNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO user_order_sequences").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(7))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	// A zero lock timeout leaves the session default in place.
	n, err := NewOrderSequencer(0, zerolog.Nop()).Next(ctx, tx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderSequencer_Postgres(t *testing.T) {
	pool, _ := testutil.StartPostgres(t)
	testutil.SeedUsers(t, pool, "alice", "bob", "carol")

	seq := NewOrderSequencer(2*time.Second, zerolog.Nop())
	ctx := context.Background()

	next := func(t *testing.T, userID string, commit bool) int {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		n, err := seq.Next(ctx, tx, userID)
		require.NoError(t, err)
		if commit {
			require.NoError(t, tx.Commit(ctx))
		} else {
			require.NoError(t, tx.Rollback(ctx))
		}
		return n
	}

	t.Run("Numbers start at one per user", func(t *testing.T) {
		assert.Equal(t, 1, next(t, "alice", true))
		assert.Equal(t, 2, next(t, "alice", true))
		assert.Equal(t, 1, next(t, "bob", true))
	})

	t.Run("Rolled back number is reused", func(t *testing.T) {
		assert.Equal(t, 2, next(t, "bob", false))
		assert.Equal(t, 2, next(t, "bob", true))
	})

	t.Run("Unknown user is not found", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = seq.Next(ctx, tx, "ghost")
		assert.ErrorIs(t, err, model.ErrUnknownUser)
	})

	t.Run("Concurrent callers get distinct numbers", func(t *testing.T) {
		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			numbers []int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tx, err := pool.Begin(ctx)
				if !assert.NoError(t, err) {
					return
				}
				n, err := seq.Next(ctx, tx, "carol")
				if err != nil {
					_ = tx.Rollback(ctx)
					return
				}
				if assert.NoError(t, tx.Commit(ctx)) {
					mu.Lock()
					numbers = append(numbers, n)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Len(t, numbers, workers)
		sort.Ints(numbers)
		for i, n := range numbers {
			assert.Equal(t, i+1, n)
		}
	})

	t.Run("Lock wait past timeout is a conflict", func(t *testing.T) {
		short := NewOrderSequencer(100*time.Millisecond, zerolog.Nop())

		holder, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer holder.Rollback(ctx)
		_, err = short.Next(ctx, holder, "alice")
		require.NoError(t, err)

		waiter, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer waiter.Rollback(ctx)
		_, err = short.Next(ctx, waiter, "alice")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrSequenceConflict)
	})
}
