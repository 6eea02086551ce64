// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

// UserService serves the signed-in user's own profile.
type UserService struct {
	identity repository.IdentityRepository
}

// Me is the profile view returned to its owner. Dealer is only set for
// dealers with a dealer record.
type Me struct {
	Profile *models.Profile `json:"profile"`
	Buyer   BuyerContext    `json:"buyer"`
	Dealer  *models.Dealer  `json:"dealer,omitempty"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

func NewUserService(identity repository.IdentityRepository) *UserService {
	return &UserService{identity: identity}
}

func (s *UserService) GetMe(ctx context.Context, buyer BuyerContext) (*Me, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.loadProfile(ctx, buyer)
	if err != nil {
		return nil, err
	}

	me := &Me{Profile: profile, Buyer: buyer}
	if profile.Role == models.RoleDealer {
		dealer, err := s.identity.GetDealerByUserID(ctx, buyer.UserID)
		switch {
		case err == nil:
			me.Dealer = dealer
		case !errors.Is(err, repository.ErrNotFound):
			return nil, remoteFailure("load dealer", err)
		}
	}
	return me, nil
}

// UpdateProfile changes the caller's name and phone. Role is admin-only and
// not accepted here.
func (s *UserService) UpdateProfile(ctx context.Context, buyer BuyerContext, req *UpdateProfileRequest) (*models.Profile, error) {
	if !buyer.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.loadProfile(ctx, buyer)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		profile.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.identity.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, remoteFailure("update profile", err)
	}
	return profile, nil
}

func (s *UserService) loadProfile(ctx context.Context, buyer BuyerContext) (*models.Profile, error) {
	profile, err := s.identity.GetProfile(ctx, buyer.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, remoteFailure("load profile", err)
	}
	return profile, nil
}
