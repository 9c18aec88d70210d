package postgres

import (
	"context"
	"fmt"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new PostgreSQL audit repository.
// Audit events are append-only.
func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO auth_audit_events (id, user_id, kind, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :kind, :ip_address, :user_agent, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	return nil
}

func (r *auditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditEvent, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, kind, ip_address, user_agent, created_at
		FROM auth_audit_events
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`)

	events := []*domain.AuditEvent{}
	if err := r.db.SelectContext(ctx, &events, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return events, nil
}

func (r *auditRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]*domain.AuditActivity, error) {
	query := r.db.Rebind(`
		SELECT e.id, e.user_id, e.kind, e.ip_address, e.user_agent, e.created_at,
			   u.email, u.first_name, u.last_name
		FROM auth_audit_events e
		JOIN users u ON u.id = e.user_id
		WHERE u.organization_id = ?
		ORDER BY e.created_at DESC, e.id
		LIMIT ?`)

	activity := []*domain.AuditActivity{}
	if err := r.db.SelectContext(ctx, &activity, query, orgID, limit); err != nil {
		return nil, fmt.Errorf("failed to list organization audit events: %w", err)
	}

	return activity, nil
}
