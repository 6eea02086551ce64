// internal/repository/memory_store.go
package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ultrulas16/sinekapar/internal/models"
)

// MemoryStore is a process-local store used with DB_DRIVER=memory and in
// tests. It has no transactions, so checkout falls back to compensating
// cleanup when running on it.
type MemoryStore struct {
	mu        sync.RWMutex
	seq       int64
	products  map[uuid.UUID]models.Product
	images    map[uuid.UUID][]models.ProductImage
	cartLines map[uuid.UUID]memCartLine
	orders    map[uuid.UUID]models.Order
	items     map[uuid.UUID][]models.OrderItem
	profiles  map[uuid.UUID]models.Profile
	dealers   map[uuid.UUID]models.Dealer
	addresses map[uuid.UUID]models.Address
	audit     []models.AuditLog
	now       func() time.Time
}

type memCartLine struct {
	line models.CartLine
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[uuid.UUID]models.Product),
		images:    make(map[uuid.UUID][]models.ProductImage),
		cartLines: make(map[uuid.UUID]memCartLine),
		orders:    make(map[uuid.UUID]models.Order),
		items:     make(map[uuid.UUID][]models.OrderItem),
		profiles:  make(map[uuid.UUID]models.Profile),
		dealers:   make(map[uuid.UUID]models.Dealer),
		addresses: make(map[uuid.UUID]models.Address),
		now:       time.Now,
	}
}

func (s *MemoryStore) stamp(base *models.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := s.now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// Catalog

func (s *MemoryStore) withImages(p models.Product) models.Product {
	imgs := append([]models.ProductImage(nil), s.images[p.ID]...)
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].DisplayOrder < imgs[j].DisplayOrder })
	p.Images = imgs
	return p
}

func (s *MemoryStore) ListActiveProducts(ctx context.Context, category string, offset, limit int) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Product
	for _, p := range s.products {
		if !p.IsActive || (category != "" && p.Category != category) {
			continue
		}
		matched = append(matched, s.withImages(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = s.withImages(p)
	return &p, nil
}

func (s *MemoryStore) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp(&p.BaseModel)
	stored := *p
	stored.Images = nil
	s.products[p.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	stored := *p
	stored.Images = nil
	s.products[p.ID] = stored
	return nil
}

func (s *MemoryStore) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[img.ProductID]; !ok {
		return ErrNotFound
	}
	s.stamp(&img.BaseModel)
	s.images[img.ProductID] = append(s.images[img.ProductID], *img)
	return nil
}

// Cart

func (s *MemoryStore) hydrate(l memCartLine) models.CartLine {
	line := l.line
	line.Product = s.products[line.ProductID]
	return line
}

func (s *MemoryStore) ListCartLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []memCartLine
	for _, l := range s.cartLines {
		if l.line.UserID == userID {
			owned = append(owned, l)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })

	lines := make([]models.CartLine, 0, len(owned))
	for _, l := range owned {
		lines = append(lines, s.hydrate(l))
	}
	return lines, nil
}

func (s *MemoryStore) GetCartLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.cartLines[lineID]
	if !ok || l.line.UserID != userID {
		return nil, ErrNotFound
	}
	line := s.hydrate(l)
	return &line, nil
}

func (s *MemoryStore) UpsertCartLine(ctx context.Context, userID, productID uuid.UUID, delta int) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.cartLines {
		if l.line.UserID == userID && l.line.ProductID == productID {
			l.line.Quantity += delta
			l.line.UpdatedAt = s.now()
			s.cartLines[id] = l
			line := s.hydrate(l)
			return &line, nil
		}
	}

	s.seq++
	l := memCartLine{
		line: models.CartLine{UserID: userID, ProductID: productID, Quantity: delta},
		seq:  s.seq,
	}
	s.stamp(&l.line.BaseModel)
	s.cartLines[l.line.ID] = l
	line := s.hydrate(l)
	return &line, nil
}

func (s *MemoryStore) SetCartLineQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.cartLines[lineID]
	if !ok || l.line.UserID != userID {
		return ErrNotFound
	}
	l.line.Quantity = quantity
	l.line.UpdatedAt = s.now()
	s.cartLines[lineID] = l
	return nil
}

func (s *MemoryStore) DeleteCartLine(ctx context.Context, userID, lineID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.cartLines[lineID]; ok && l.line.UserID == userID {
		delete(s.cartLines, lineID)
	}
	return nil
}

func (s *MemoryStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.cartLines {
		if l.line.UserID == userID {
			delete(s.cartLines, id)
		}
	}
	return nil
}

// Orders

func (s *MemoryStore) CreateOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp(&o.BaseModel)
	stored := *o
	stored.Items = nil
	s.orders[o.ID] = stored
	return nil
}

func (s *MemoryStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		return errors.New("no order items to insert")
	}
	for i := range items {
		if _, ok := s.orders[items[i].OrderID]; !ok {
			return errors.New("order item references unknown order")
		}
	}
	for i := range items {
		s.stamp(&items[i].BaseModel)
		s.items[items[i].OrderID] = append(s.items[items[i].OrderID], items[i])
	}
	return nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, id)
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = append([]models.OrderItem(nil), s.items[id]...)
	return &o, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Order
	for _, o := range s.orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		o.Items = append([]models.OrderItem(nil), s.items[o.ID]...)
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return nil
}

func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = status
	if reference != "" {
		o.PaymentReference = reference
	}
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return nil
}

// Identity

// PutProfile and PutDealer seed identity data; profiles come from the auth
// provider, so there is no create path in the service layer.
func (s *MemoryStore) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *MemoryStore) PutDealer(d models.Dealer) models.Dealer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&d.BaseModel)
	s.dealers[d.ID] = d
	return d
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[p.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Role = p.Role
	existing.FullName = p.FullName
	existing.Phone = p.Phone
	existing.UpdatedAt = s.now()
	s.profiles[p.ID] = existing
	*p = existing
	return nil
}

func (s *MemoryStore) GetDealerByUserID(ctx context.Context, userID uuid.UUID) (*models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.dealers {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetDealer(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dealers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) UpdateDealerTier(ctx context.Context, id uuid.UUID, tier int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dealers[id]
	if !ok {
		return ErrNotFound
	}
	d.Tier = tier
	d.UpdatedAt = s.now()
	s.dealers[id] = d
	return nil
}

// Addresses

func (s *MemoryStore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var addresses []models.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			addresses = append(addresses, a)
		}
	}
	sort.Slice(addresses, func(i, j int) bool {
		if addresses[i].IsDefault != addresses[j].IsDefault {
			return addresses[i].IsDefault
		}
		return addresses[i].CreatedAt.Before(addresses[j].CreatedAt)
	})
	return addresses, nil
}

func (s *MemoryStore) CreateAddress(ctx context.Context, a *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.IsDefault {
		for id, existing := range s.addresses {
			if existing.UserID == a.UserID && existing.IsDefault {
				existing.IsDefault = false
				s.addresses[id] = existing
			}
		}
	}
	s.stamp(&a.BaseModel)
	s.addresses[a.ID] = *a
	return nil
}

// Audit

func (s *MemoryStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp(&entry.BaseModel)
	s.audit = append(s.audit, *entry)
	return nil
}

// AuditEntries returns a copy of the recorded audit rows.
func (s *MemoryStore) AuditEntries() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}

// Stats

func (s *MemoryStore) DashboardStats(ctx context.Context, monthStart, lastMonthStart time.Time, lowStock int) (*models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.DashboardStats{
		TotalProducts:  int64(len(s.products)),
		TotalDealers:   int64(len(s.dealers)),
		TotalProfiles:  int64(len(s.profiles)),
		TotalOrders:    int64(len(s.orders)),
		OrdersByStatus: make(map[models.OrderStatus]int64),
	}
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		stats.ActiveProducts++
		if p.StockQuantity <= lowStock {
			stats.LowStockProducts++
		}
	}
	for _, d := range s.dealers {
		if d.Status == models.DealerStatusPending {
			stats.PendingDealers++
		}
	}
	for _, o := range s.orders {
		stats.OrdersByStatus[o.Status]++
		if o.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		switch {
		case !o.CreatedAt.Before(monthStart):
			stats.MonthlyRevenue = stats.MonthlyRevenue.Add(o.TotalAmount)
		case !o.CreatedAt.Before(lastMonthStart):
			stats.LastMonthRevenue = stats.LastMonthRevenue.Add(o.TotalAmount)
		}
	}
	return stats, nil
}
