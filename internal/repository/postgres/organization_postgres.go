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

type organizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new PostgreSQL organization repository
func NewOrganizationRepository(db *sqlx.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

func (r *organizationRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.Organization, error) {
	query := r.db.Rebind(`
		SELECT id, name, slug, status, timezone, created_at, updated_at
		FROM organizations
		WHERE ` + where)

	var org domain.Organization
	if err := r.db.GetContext(ctx, &org, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, status, timezone, created_at, updated_at)
		VALUES (:id, :name, :slug, :status, :timezone, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, org); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("organization %s: %w", org.Slug, repository.ErrConflict)
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	org.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE organizations
		SET name = :name, slug = :slug, status = :status, timezone = :timezone, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, org)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("organization %s: %w", org.Slug, repository.ErrConflict)
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return expectRows(result)
}
