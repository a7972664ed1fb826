package service

import (
	"context"
	"fmt"

	"simpleshop/internal/model"
	"simpleshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultCountry = "India"

// addressService implements AddressService.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

func (s *addressService) Create(ctx context.Context, userID string, address *model.Address) (*model.Address, error) {
	if address == nil {
		address = &model.Address{}
	}
	if fields := address.Validate(); fields != nil {
		return nil, model.ErrInvalidField.WithFields(fields)
	}

	a := *address
	a.ID = uuid.New()
	a.UserID = userID
	if a.Country == "" {
		a.Country = defaultCountry
	}

	if err := s.addressRepo.Create(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}

	s.logger.Debug().
		Str("address_id", a.ID.String()).
		Str("user_id", userID).
		Msg("address created")

	return &a, nil
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *addressService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address.UserID != userID {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

// Update validates the new fields and writes them over the stored address.
// The id and owner cannot be changed.
func (s *addressService) Update(ctx context.Context, userID string, id uuid.UUID, address *model.Address) (*model.Address, error) {
	if address == nil {
		address = &model.Address{}
	}
	if fields := address.Validate(); fields != nil {
		return nil, model.ErrInvalidField.WithFields(fields)
	}

	a := *address
	a.ID = id
	a.UserID = userID
	if a.Country == "" {
		a.Country = defaultCountry
	}

	if err := s.addressRepo.Update(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	s.logger.Debug().
		Str("address_id", a.ID.String()).
		Str("user_id", userID).
		Msg("address updated")

	return &a, nil
}

// Delete removes one of the user's addresses. Orders that used it keep their
// history with no address attached.
func (s *addressService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
