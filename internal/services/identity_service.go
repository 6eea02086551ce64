// internal/services/identity_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

// IdentityService turns a verified auth subject into a BuyerContext.
type IdentityService struct {
	repo repository.IdentityRepository
}

func NewIdentityService(repo repository.IdentityRepository) *IdentityService {
	return &IdentityService{repo: repo}
}

// ResolveBuyer loads the buyer's role and dealer tier. A subject without a
// profile row is treated as an end user; a dealer without a dealer record
// gets tier 0 and therefore base prices.
func (s *IdentityService) ResolveBuyer(ctx context.Context, userID uuid.UUID) (BuyerContext, error) {
	if userID == uuid.Nil {
		return BuyerContext{}, ErrNotAuthenticated
	}

	buyer := BuyerContext{UserID: userID, Role: models.RoleEndUser}

	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return buyer, nil
	case err != nil:
		return BuyerContext{}, remoteFailure("load profile", err)
	}
	buyer.Role = profile.Role

	if buyer.Role != models.RoleDealer {
		return buyer, nil
	}

	dealer, err := s.repo.GetDealerByUserID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logrus.WithField("user_id", userID).Warn("dealer profile without dealer record")
		return buyer, nil
	case err != nil:
		return BuyerContext{}, remoteFailure("load dealer", err)
	}
	buyer.DealerTier = dealer.Tier

	return buyer, nil
}

// UpdateDealerTier is the admin operation that moves a dealer between price lists.
func (s *IdentityService) UpdateDealerTier(ctx context.Context, dealerID uuid.UUID, tier int) (*models.Dealer, error) {
	if tier < 1 || tier > 3 {
		return nil, ErrInvalidTier
	}

	if err := s.repo.UpdateDealerTier(ctx, dealerID, tier); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealerNotFound
		}
		return nil, remoteFailure("update dealer tier", err)
	}

	dealer, err := s.repo.GetDealer(ctx, dealerID)
	if err != nil {
		return nil, remoteFailure("reload dealer", err)
	}

	logrus.WithFields(logrus.Fields{
		"dealer_id": dealerID,
		"tier":      tier,
	}).Info("Dealer tier updated")

	return dealer, nil
}
