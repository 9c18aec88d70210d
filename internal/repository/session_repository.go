package repository

import (
	"context"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.SessionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SessionRecord, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.SessionRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
