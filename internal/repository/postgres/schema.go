package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// schema is kept to types both PostgreSQL and SQLite accept so repositories can be tested in memory.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL UNIQUE,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		provider VARCHAR(50),
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		last_login_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_organization_id ON users(organization_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_agent TEXT,
		ip_address VARCHAR(45),
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS auth_audit_events (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('LOGIN', 'LOGOUT')),
		ip_address VARCHAR(45),
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_audit_events_user_created ON auth_audit_events(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS utility_accounts (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		property_id UUID,
		utility_type VARCHAR(20) NOT NULL,
		account_number VARCHAR(100) NOT NULL,
		meter_number VARCHAR(100),
		billing_id VARCHAR(100),
		remarks TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_utility_accounts_organization_id ON utility_accounts(organization_id)`,
}

// EnsureSchema creates missing tables. It never alters existing ones.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlite reports constraint failures only through the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
