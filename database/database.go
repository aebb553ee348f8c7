package database

import (
	"fmt"

	"grabbi-engine/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=grabbi_engine port=5432 sslmode=disable"

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.Location{},
		&models.OperatingHours{},
		&models.Category{},
		&models.Product{},
		&models.StandardDiscount{},
		&models.DiscountCode{},
		&models.ComboMenu{},
		&models.Upsell{},
	)
}

// CreateSQLiteSchema creates the rule and catalog tables with SQLite-compatible DDL.
// Tests use it instead of AutoMigrate, which emits PostgreSQL defaults like gen_random_uuid().
func CreateSQLiteSchema(db *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

const ruleColumns = `"brand_id" TEXT NOT NULL, "location_ids" TEXT, "is_active" INTEGER DEFAULT 0,
	"order_types" TEXT, "active_days" TEXT, "active_time_slots" TEXT,
	"start_date" DATETIME, "end_date" DATETIME, "allow_stacking" INTEGER DEFAULT 0`

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS "locations" (
		"id" TEXT PRIMARY KEY, "brand_id" TEXT NOT NULL, "name" TEXT NOT NULL,
		"delivery_types" TEXT, "prep_time_minutes" INTEGER NOT NULL DEFAULT 0,
		"delivery_time_minutes" INTEGER NOT NULL DEFAULT 0, "busyness_factor" TEXT DEFAULT 'normal',
		"manual_override_minutes" INTEGER DEFAULT 0, "allow_pre_order" INTEGER DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "operating_hours" (
		"id" TEXT PRIMARY KEY, "location_id" TEXT NOT NULL, "day_of_week" INTEGER NOT NULL,
		"open_time" TEXT NOT NULL DEFAULT '09:00', "close_time" TEXT NOT NULL DEFAULT '21:00',
		"is_closed" INTEGER DEFAULT 0, "created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "categories" (
		"id" TEXT PRIMARY KEY, "brand_id" TEXT NOT NULL, "name" TEXT NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "products" (
		"id" TEXT PRIMARY KEY, "brand_id" TEXT NOT NULL, "name" TEXT NOT NULL,
		"price" TEXT NOT NULL, "delivery_price" TEXT, "category_id" TEXT NOT NULL, "tags" TEXT,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "standard_discounts" (
		"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, ` + ruleColumns + `,
		"discount_type" TEXT NOT NULL, "reference_ids" TEXT, "discount_method" TEXT NOT NULL,
		"discount_value" TEXT, "min_order_value" TEXT,
		"time_slot_validation_type" TEXT DEFAULT 'orderTime',
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "discount_codes" (
		"id" TEXT PRIMARY KEY, "code" TEXT NOT NULL, "brand_id" TEXT NOT NULL,
		"location_ids" TEXT, "order_types" TEXT, "is_active" INTEGER DEFAULT 0,
		"usage_limit" INTEGER DEFAULT 0, "used_count" INTEGER DEFAULT 0,
		"start_date" DATETIME, "end_date" DATETIME, "min_order_value" TEXT,
		"discount_type" TEXT DEFAULT 'cart', "discount_method" TEXT NOT NULL, "discount_value" TEXT,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME,
		UNIQUE ("brand_id", "code")
	)`,
	`CREATE TABLE IF NOT EXISTS "combo_menus" (
		"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, ` + ruleColumns + `,
		"product_groups" TEXT, "pickup_price" TEXT, "delivery_price" TEXT,
		"calculated_normal_price_pickup" TEXT, "calculated_normal_price_delivery" TEXT,
		"price_difference_pickup" TEXT, "price_difference_delivery" TEXT,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "upsells" (
		"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, ` + ruleColumns + `,
		"trigger_conditions" TEXT, "offer_type" TEXT NOT NULL,
		"offer_product_ids" TEXT, "offer_category_ids" TEXT,
		"discount_type" TEXT DEFAULT 'none', "discount_value" TEXT,
		"views" INTEGER NOT NULL DEFAULT 0, "conversions" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
}
