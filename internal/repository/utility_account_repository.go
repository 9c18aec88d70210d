package repository

import (
	"context"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

type UtilityAccountRepository interface {
	Create(ctx context.Context, account *domain.UtilityAccount) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.UtilityAccount, error)
}
