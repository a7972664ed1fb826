package repository

import (
	"context"
	"fmt"
	"time"

	"simpleshop/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderSequencer implements OrderSequencer on the user_order_sequences table.
// The upsert row lock serialises checkouts of the same user until the
// surrounding transaction ends, so numbers are gapless for committed orders.
type orderSequencer struct {
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// NewOrderSequencer creates a sequencer that waits at most lockTimeout for a
// concurrent checkout of the same user.
func NewOrderSequencer(lockTimeout time.Duration, logger zerolog.Logger) OrderSequencer {
	return &orderSequencer{
		lockTimeout: lockTimeout,
		logger:      logger.With().Str("repository", "order_sequence").Logger(),
	}
}

// Next increments and returns the user's order number inside tx.
func (s *orderSequencer) Next(ctx context.Context, tx pgx.Tx, userID string) (int, error) {
	if s.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to set lock timeout")
			return 0, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	query := `
		INSERT INTO user_order_sequences (user_id, last_number, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET last_number = user_order_sequences.last_number + 1, updated_at = NOW()
		RETURNING last_number
	`

	var next int
	if err := tx.QueryRow(ctx, query, userID).Scan(&next); err != nil {
		if isContention(err) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("order number contention")
			return 0, conflictError("failed to assign order number", err)
		}
		if isUnknownUser(err) {
			s.logger.Warn().Str("user_id", userID).Msg("order number requested for unknown user")
			return 0, model.ErrUnknownUser
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to assign order number")
		return 0, fmt.Errorf("failed to assign order number: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("user_order_number", next).Msg("order number assigned")

	return next, nil
}
