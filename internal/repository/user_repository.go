package repository

import (
	"context"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	ResetFailedLogins(ctx context.Context, id uuid.UUID) error
	// RecordFailedLogin increments the counter and locks the account until lockUntil once it reaches maxFailed.
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxFailed int, lockUntil time.Time) (int, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int, search string) ([]*domain.User, int, error)
	Count(ctx context.Context) (int, error)
}
