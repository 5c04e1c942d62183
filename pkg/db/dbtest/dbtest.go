// Package dbtest opens throwaway SQLite databases carrying the AgroMart schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Schema mirrors the Postgres migrations using SQLite column types.
var Schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'customer',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE addresses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address_line1 TEXT NOT NULL,
		address_line2 TEXT,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT 'Bangladesh',
		is_default BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_addresses_user_default ON addresses(user_id) WHERE is_default`,
	`CREATE TABLE shops (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL UNIQUE REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT,
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		rating NUMERIC NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL REFERENCES users(id),
		shop_id TEXT REFERENCES shops(id),
		name TEXT NOT NULL,
		description TEXT,
		unit TEXT NOT NULL DEFAULT 'kg',
		price NUMERIC NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		min_order_quantity INTEGER NOT NULL DEFAULT 1,
		max_order_quantity INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE cart_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		data TEXT,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		read_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE notification_preferences (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		order_placed BOOLEAN NOT NULL DEFAULT 1,
		order_status BOOLEAN NOT NULL DEFAULT 1,
		new_product BOOLEAN NOT NULL DEFAULT 1,
		low_stock BOOLEAN NOT NULL DEFAULT 1,
		welcome BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL REFERENCES users(id),
		shipping_address_id TEXT REFERENCES addresses(id),
		status TEXT NOT NULL DEFAULT 'pending',
		total NUMERIC NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products(id),
		seller_id TEXT NOT NULL REFERENCES users(id),
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price NUMERIC NOT NULL,
		subtotal NUMERIC NOT NULL
	)`,
	`CREATE TABLE reviews (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES users(id),
		order_id TEXT NOT NULL REFERENCES orders(id),
		product_id TEXT REFERENCES products(id),
		shop_id TEXT REFERENCES shops(id),
		rider_id TEXT REFERENCES users(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// Open returns an isolated in-memory database with foreign keys enforced and
// the full schema applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
