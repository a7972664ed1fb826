package repository

import (
	"context"
	"errors"
	"fmt"

	"simpleshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const addressColumns = `id, user_id, name, mobile_number, alternate_mobile_number, address,
	locality, city, state, pincode, landmark, country`

type addressRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(db DB, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		db:     db,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func scanAddress(row pgx.Row) (model.Address, error) {
	var a model.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.MobileNumber,
		&a.AlternateMobileNumber,
		&a.Address,
		&a.Locality,
		&a.City,
		&a.State,
		&a.Pincode,
		&a.Landmark,
		&a.Country,
	)
	return a, err
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	query := `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		address.ID,
		address.UserID,
		address.Name,
		address.MobileNumber,
		address.AlternateMobileNumber,
		address.Address,
		address.Locality,
		address.City,
		address.State,
		address.Pincode,
		address.Landmark,
		address.Country,
	)
	if err != nil {
		if isUnknownUser(err) {
			r.logger.Debug().Str("user_id", address.UserID).Msg("address for unknown user")
			return model.ErrUnknownUser
		}
		r.logger.Error().
			Err(err).
			Str("address_id", address.ID.String()).
			Str("user_id", address.UserID).
			Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	a, err := scanAddress(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAddressNotFound
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY name, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	query := `
		UPDATE addresses
		SET name = $3, mobile_number = $4, alternate_mobile_number = $5, address = $6,
			locality = $7, city = $8, state = $9, pincode = $10, landmark = $11, country = $12
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		address.ID,
		address.UserID,
		address.Name,
		address.MobileNumber,
		address.AlternateMobileNumber,
		address.Address,
		address.Locality,
		address.City,
		address.State,
		address.Pincode,
		address.Landmark,
		address.Country,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrAddressNotFound
	}

	return nil
}

// Delete removes the address when it belongs to userID. Orders that used it
// keep their row with address_id set to NULL.
func (r *addressRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrAddressNotFound
	}

	return nil
}
