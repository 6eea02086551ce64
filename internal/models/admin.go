// internal/models/admin.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	Status       int        `json:"status"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}

// DashboardStats are the raw counters behind the admin dashboard. Revenue
// only counts orders whose payment status is paid.
type DashboardStats struct {
	TotalProducts    int64                 `json:"total_products"`
	ActiveProducts   int64                 `json:"active_products"`
	LowStockProducts int64                 `json:"low_stock_products"`
	TotalDealers     int64                 `json:"total_dealers"`
	PendingDealers   int64                 `json:"pending_dealers"`
	TotalProfiles    int64                 `json:"total_profiles"`
	TotalOrders      int64                 `json:"total_orders"`
	OrdersByStatus   map[OrderStatus]int64 `json:"orders_by_status"`
	TotalRevenue     decimal.Decimal       `json:"total_revenue"`
	MonthlyRevenue   decimal.Decimal       `json:"monthly_revenue"`
	LastMonthRevenue decimal.Decimal       `json:"last_month_revenue"`
}
