package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new session into the database
func (r *sessionRepository) Create(ctx context.Context, session *domain.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at, created_at)
		VALUES (:id, :user_id, :user_agent, :ip_address, :expires_at, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its ID
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionRecord, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE id = ?`)

	var session domain.SessionRecord
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return &session, nil
}

// GetByUserID retrieves the unexpired sessions of a user, newest first
func (r *sessionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.SessionRecord, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC`)

	sessions := []*domain.SessionRecord{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to get sessions by user id: %w", err)
	}

	return sessions, nil
}

// Delete removes a session from the database by ID
func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return expectRows(result)
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

// DeleteExpired removes all expired sessions from the database
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return result.RowsAffected()
}
