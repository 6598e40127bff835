// Package dbtest opens per-test in-memory SQLite databases carrying the application schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// schema mirrors the goose init migration in SQLite syntax. Postgres-only features
// (partial indexes on lower(), array defaults, CHECKs) are left to the real migration.
var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE platform_admins (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		name TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE dealers (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		user_id TEXT,
		subscription_plan TEXT NOT NULL DEFAULT 'starter',
		languages TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE team_members (
		id TEXT PRIMARY KEY,
		dealer_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		invited_by TEXT,
		invited_at DATETIME,
		accepted_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT team_members_dealer_user_key UNIQUE (dealer_id, user_id)
	)`,
	`CREATE TABLE team_invitations (
		id TEXT PRIMARY KEY,
		dealer_id TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		invited_by TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		accepted_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE vehicles (
		id TEXT PRIMARY KEY,
		dealer_id TEXT NOT NULL,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		variant TEXT,
		first_registration DATETIME,
		mileage INTEGER,
		fuel_type TEXT,
		transmission TEXT,
		power_kw INTEGER,
		color TEXT,
		vin TEXT,
		purchase_price TEXT,
		asking_price TEXT,
		ai_suggested_price TEXT,
		description TEXT,
		internal_notes TEXT,
		status TEXT NOT NULL DEFAULT 'in_stock',
		acquired_at DATETIME,
		sold_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE vehicle_images (
		id TEXT PRIMARY KEY,
		vehicle_id TEXT NOT NULL,
		url TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		is_main BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE leads (
		id TEXT PRIMARY KEY,
		dealer_id TEXT NOT NULL,
		vehicle_id TEXT,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		phone TEXT,
		message TEXT,
		source TEXT NOT NULL DEFAULT 'website',
		status TEXT NOT NULL DEFAULT 'new',
		notes TEXT,
		last_contact_at DATETIME,
		next_followup_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE lead_activities (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		type TEXT NOT NULL,
		direction TEXT NOT NULL,
		body TEXT,
		created_by TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE impersonation_events (
		id TEXT PRIMARY KEY,
		admin_user_id TEXT NOT NULL,
		dealer_id TEXT NOT NULL,
		action TEXT NOT NULL,
		created_at DATETIME
	)`,
}

// Open returns a fresh database private to t with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
