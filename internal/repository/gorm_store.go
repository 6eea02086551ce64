// internal/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ultrulas16/sinekapar/internal/models"
)

// GormStore implements every repository interface on one *gorm.DB, so a
// transaction handle can stand in for the whole store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(orders OrderRepository, carts CartRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &GormStore{db: tx}
		return fn(txStore, txStore)
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func imagesByDisplayOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC")
}

// Catalog

func (s *GormStore) ListActiveProducts(ctx context.Context, category string, offset, limit int) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := query.Preload("Images", imagesByDisplayOrder).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Images", imagesByDisplayOrder).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *GormStore) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.db.WithContext(ctx).Omit("Images").Create(p).Error
}

func (s *GormStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	return s.db.WithContext(ctx).Omit("Images", "CreatedAt").Save(p).Error
}

func (s *GormStore) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return s.db.WithContext(ctx).Create(img).Error
}

// Cart

func (s *GormStore) ListCartLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *GormStore) GetCartLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error; err != nil {
		return nil, notFound(err)
	}
	return &line, nil
}

func (s *GormStore) UpsertCartLine(ctx context.Context, userID, productID uuid.UUID, delta int) (*models.CartLine, error) {
	line := models.CartLine{UserID: userID, ProductID: productID, Quantity: delta}

	// Single statement so two sessions adding the same product cannot create
	// a second row; the unique index backs this up.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Omit("Product").Create(&line).Error
	if err != nil {
		return nil, err
	}

	var stored models.CartLine
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (s *GormStore) SetCartLineQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error {
	result := s.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteCartLine(ctx context.Context, userID, lineID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{}).Error
}

func (s *GormStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
}

// Orders

func (s *GormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (s *GormStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return errors.New("no order items to insert")
	}
	return s.db.WithContext(ctx).Create(&items).Error
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, total, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference string) error {
	updates := map[string]interface{}{"payment_status": status}
	if reference != "" {
		updates["payment_reference"] = reference
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Identity

func (s *GormStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	result := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"role":      p.Role,
			"full_name": p.FullName,
			"phone":     p.Phone,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetDealerByUserID(ctx context.Context, userID uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&dealer).Error; err != nil {
		return nil, notFound(err)
	}
	return &dealer, nil
}

func (s *GormStore) GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := s.db.WithContext(ctx).First(&dealer, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &dealer, nil
}

func (s *GormStore) UpdateDealerTier(ctx context.Context, id uuid.UUID, tier int) error {
	result := s.db.WithContext(ctx).Model(&models.Dealer{}).Where("id = ?", id).Update("tier", tier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Addresses

func (s *GormStore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *GormStore) CreateAddress(ctx context.Context, a *models.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND is_default = ?", a.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

// Audit

func (s *GormStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// Stats

func (s *GormStore) DashboardStats(ctx context.Context, monthStart, lastMonthStart time.Time, lowStock int) (*models.DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{OrdersByStatus: make(map[models.OrderStatus]int64)}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.Product{}), &stats.TotalProducts},
		{db.Model(&models.Product{}).Where("is_active = ?", true), &stats.ActiveProducts},
		{db.Model(&models.Product{}).Where("is_active = ? AND stock_quantity <= ?", true, lowStock), &stats.LowStockProducts},
		{db.Model(&models.Dealer{}), &stats.TotalDealers},
		{db.Model(&models.Dealer{}).Where("status = ?", models.DealerStatusPending), &stats.PendingDealers},
		{db.Model(&models.Profile{}), &stats.TotalProfiles},
		{db.Model(&models.Order{}), &stats.TotalOrders},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard stats: %w", err)
		}
	}

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	paid := func() *gorm.DB {
		return db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentStatusPaid).
			Select("COALESCE(SUM(total_amount), 0)")
	}
	revenue := []struct {
		query *gorm.DB
		dest  *decimal.Decimal
	}{
		{paid(), &stats.TotalRevenue},
		{paid().Where("created_at >= ?", monthStart), &stats.MonthlyRevenue},
		{paid().Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart), &stats.LastMonthRevenue},
	}
	for _, r := range revenue {
		if err := r.query.Row().Scan(r.dest); err != nil {
			return nil, fmt.Errorf("failed to sum revenue: %w", err)
		}
	}

	return stats, nil
}
