package repository

import (
	"context"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

// AuditRepository is append-only: events can be created and read, never changed.
type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditEvent, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]*domain.AuditActivity, error)
}
