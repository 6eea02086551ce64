// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

// LowStockThreshold is the stock level at or below which an active product
// is flagged on the dashboard.
const LowStockThreshold = 5

type AdminService struct {
	stats    repository.StatsRepository
	identity repository.IdentityRepository
	now      func() time.Time
}

type AdminDashboardStats struct {
	models.DashboardStats
	RevenueGrowth float64 `json:"revenue_growth"`
}

type UpdateProfileRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required"`
}

func NewAdminService(stats repository.StatsRepository, identity repository.IdentityRepository) *AdminService {
	return &AdminService{
		stats:    stats,
		identity: identity,
		now:      time.Now,
	}
}

// GetDashboardStats returns the store-wide counters. RevenueGrowth compares
// this calendar month with the previous one and stays 0 when last month had
// no paid orders.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	raw, err := s.stats.DashboardStats(ctx, monthStart, lastMonthStart, LowStockThreshold)
	if err != nil {
		return nil, remoteFailure("load dashboard stats", err)
	}

	stats := &AdminDashboardStats{DashboardStats: *raw}
	if raw.LastMonthRevenue.IsPositive() {
		stats.RevenueGrowth = raw.MonthlyRevenue.Sub(raw.LastMonthRevenue).
			Div(raw.LastMonthRevenue).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
	return stats, nil
}

// UpdateProfileRole changes a user's role. Dealer tiers live on the dealer
// record, so promoting a user to dealer does not create one.
func (s *AdminService) UpdateProfileRole(ctx context.Context, profileID uuid.UUID, role models.UserRole) (*models.Profile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	profile, err := s.identity.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, remoteFailure("load profile", err)
	}

	previous := profile.Role
	profile.Role = role
	if err := s.identity.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, remoteFailure("update profile", err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id": profileID,
		"from":       previous,
		"to":         role,
	}).Info("Profile role updated")

	return profile, nil
}
