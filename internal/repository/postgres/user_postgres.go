package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, organization_id, email, password_hash, first_name, last_name,
	role, status, two_factor_enabled, provider, failed_logins, locked_until,
	created_at, updated_at, last_login_at`

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `) VALUES (
			:id, :organization_id, :email, :password_hash, :first_name, :last_name,
			:role, :status, :two_factor_enabled, :provider, :failed_logins, :locked_until,
			:created_at, :updated_at, :last_login_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = :email,
			first_name = :first_name,
			last_name = :last_name,
			role = :role,
			status = :status,
			two_factor_enabled = :two_factor_enabled,
			failed_logins = :failed_logins,
			locked_until = :locked_until,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectRows(result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := r.db.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectRows(result)
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, now, now, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

func (r *userRepository) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`
		UPDATE users
		SET failed_logins = 0, locked_until = NULL, status = ?, updated_at = ?
		WHERE id = ? AND status <> ?`)

	_, err := r.db.ExecContext(ctx, query, domain.UserStatusActive, time.Now().UTC(), id, domain.UserStatusInactive)
	if err != nil {
		return fmt.Errorf("failed to reset failed logins: %w", err)
	}

	return nil
}

func (r *userRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, maxFailed int, lockUntil time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET failed_logins = failed_logins + 1, updated_at = ? WHERE id = ?`), now, id); err != nil {
		return 0, fmt.Errorf("failed to increment failed logins: %w", err)
	}

	var failed int
	if err := tx.GetContext(ctx, &failed, tx.Rebind(`SELECT failed_logins FROM users WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("failed to read failed logins: %w", err)
	}

	if maxFailed > 0 && failed >= maxFailed {
		query := tx.Rebind(`UPDATE users SET status = ?, locked_until = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, query, domain.UserStatusLocked, lockUntil.UTC(), id); err != nil {
			return 0, fmt.Errorf("failed to lock user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit failed login: %w", err)
	}

	return failed, nil
}

// ListByOrganization returns one page of users and the total matching count
func (r *userRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int, search string) ([]*domain.User, int, error) {
	where := "organization_id = ?"
	args := []interface{}{orgID}

	if search = strings.TrimSpace(strings.ToLower(search)); search != "" {
		pattern := "%" + search + "%"
		where += " AND (LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE `+where), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY last_name, first_name, email LIMIT ? OFFSET ?`)

	users := []*domain.User{}
	if err := r.db.SelectContext(ctx, &users, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func expectRows(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
