// internal/services/address_service.go
package services

import (
	"context"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

type AddressService struct {
	addresses repository.AddressRepository
}

type CreateAddressRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	Phone       string `json:"phone" validate:"required,max=50"`
	City        string `json:"city" validate:"required,max=100"`
	District    string `json:"district,omitempty" validate:"omitempty,max=100"`
	FullAddress string `json:"full_address" validate:"required"`
	IsDefault   bool   `json:"is_default"`
}

func NewAddressService(addresses repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) ListAddresses(ctx context.Context, buyer BuyerContext) ([]models.Address, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	addresses, err := s.addresses.ListAddresses(ctx, buyer.UserID)
	if err != nil {
		return nil, remoteFailure("list addresses", err)
	}
	return addresses, nil
}

// CreateAddress stores a new address. A buyer's first address is always
// the default.
func (s *AddressService) CreateAddress(ctx context.Context, buyer BuyerContext, req *CreateAddressRequest) (*models.Address, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	existing, err := s.addresses.ListAddresses(ctx, buyer.UserID)
	if err != nil {
		return nil, remoteFailure("list addresses", err)
	}

	address := &models.Address{
		UserID:      buyer.UserID,
		Title:       req.Title,
		FullName:    req.FullName,
		Phone:       req.Phone,
		City:        req.City,
		District:    req.District,
		FullAddress: req.FullAddress,
		IsDefault:   req.IsDefault || len(existing) == 0,
	}
	if err := s.addresses.CreateAddress(ctx, address); err != nil {
		return nil, remoteFailure("create address", err)
	}
	return address, nil
}
