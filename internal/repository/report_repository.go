package repository

import (
	"context"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
)

// ReportRepository loads the property tree used by reports.
// A nil orgID loads every organization.
type ReportRepository interface {
	PropertiesWithOccupancy(ctx context.Context, orgID *uuid.UUID) ([]domain.Property, error)
}
