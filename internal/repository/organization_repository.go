package repository

import (
	"context"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
}
