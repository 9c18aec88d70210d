package postgres

import (
	"context"
	"fmt"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type utilityAccountRepository struct {
	db *sqlx.DB
}

func NewUtilityAccountRepository(db *sqlx.DB) repository.UtilityAccountRepository {
	return &utilityAccountRepository{db: db}
}

func (r *utilityAccountRepository) Create(ctx context.Context, account *domain.UtilityAccount) error {
	query := `
		INSERT INTO utility_accounts (
			id, organization_id, property_id, utility_type, account_number,
			meter_number, billing_id, remarks, created_at
		) VALUES (
			:id, :organization_id, :property_id, :utility_type, :account_number,
			:meter_number, :billing_id, :remarks, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("failed to create utility account: %w", err)
	}

	return nil
}

func (r *utilityAccountRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.UtilityAccount, error) {
	query := r.db.Rebind(`
		SELECT id, organization_id, property_id, utility_type, account_number,
			   meter_number, billing_id, remarks, created_at
		FROM utility_accounts
		WHERE organization_id = ?
		ORDER BY utility_type, account_number, id`)

	accounts := []*domain.UtilityAccount{}
	if err := r.db.SelectContext(ctx, &accounts, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list utility accounts: %w", err)
	}

	return accounts, nil
}
