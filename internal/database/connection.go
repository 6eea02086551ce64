// internal/database/connection.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
)

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
		return
	}
	logrus.Info("Database connection closed")
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations")

	// gen_random_uuid() lives in pgcrypto before PostgreSQL 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Profile{},
		&models.Dealer{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartLine{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_active_created ON products(is_active, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_order ON product_images(product_id, display_order)",

		// Cart lines are always read per buyer in insertion order
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_created ON cart_items(user_id, created_at)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_payment ON orders(status, payment_status)",

		// Stored values must respect the domain bounds even if written elsewhere
		"ALTER TABLE cart_items ADD CONSTRAINT chk_cart_items_quantity CHECK (quantity >= 1)",
		"ALTER TABLE products ADD CONSTRAINT chk_products_stock CHECK (stock_quantity >= 0)",
		"ALTER TABLE dealers ADD CONSTRAINT chk_dealers_tier CHECK (tier BETWEEN 1 AND 3)",

		// Audit
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// constraints already present on restart land here too
			logrus.WithError(err).WithField("statement", index).Debug("Skipped index or constraint")
		}
	}
}

// SeedCatalog inserts a starter catalog when the products table is empty.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range StarterProducts() {
		product := p
		if err := db.Omit("Images").Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.SKU, err)
		}
	}

	logrus.WithField("products", len(StarterProducts())).Info("Seeded starter catalog")
	return nil
}

// SeedMemory loads the starter catalog into an in-memory store.
func SeedMemory(ctx context.Context, store *repository.MemoryStore) error {
	for _, p := range StarterProducts() {
		product := p
		if err := store.CreateProduct(ctx, &product); err != nil {
			return err
		}
	}
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tierPrice(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func StarterProducts() []models.Product {
	return []models.Product{
		{
			Name:             "Sinekapar UV Pro 40W",
			Description:      "Ceiling or wall mounted UV insect trap with glue board for kitchens and food production.",
			SKU:              "SNK-UV-40",
			Category:         "uv-traps",
			BasePrice:        price("2450.00"),
			DealerTier1Price: tierPrice("1700.00"),
			DealerTier2Price: tierPrice("1850.00"),
			DealerTier3Price: tierPrice("2000.00"),
			StockQuantity:    40,
			VATRate:          20,
			VATIncluded:      true,
			IsActive:         true,
			ShippingOption:   models.ShippingStandard,
		},
		{
			Name:             "Sinekapar Mini 15W",
			Description:      "Compact UV trap for cafes and small retail areas.",
			SKU:              "SNK-UV-15",
			Category:         "uv-traps",
			BasePrice:        price("1150.00"),
			DealerTier1Price: tierPrice("800.00"),
			DealerTier2Price: tierPrice("870.00"),
			DealerTier3Price: tierPrice("940.00"),
			StockQuantity:    75,
			VATRate:          20,
			VATIncluded:      true,
			IsActive:         true,
			ShippingOption:   models.ShippingStandard,
		},
		{
			Name:             "Replacement Glue Board (10 pack)",
			Description:      "Non-toxic glue boards compatible with all Sinekapar UV traps.",
			SKU:              "SNK-GB-10",
			Category:         "consumables",
			BasePrice:        price("250.00"),
			DealerTier1Price: tierPrice("160.00"),
			DealerTier2Price: tierPrice("180.00"),
			DealerTier3Price: tierPrice("200.00"),
			StockQuantity:    500,
			VATRate:          20,
			VATIncluded:      false,
			IsActive:         true,
			ShippingOption:   models.ShippingFree,
		},
	}
}
