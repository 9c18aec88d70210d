package orm

import (
	"context"
	"fmt"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *DbDao
}

func NewReportRepository(db *DbDao) repository.ReportRepository {
	return &reportRepository{db: db}
}

// PropertiesWithOccupancy loads properties with units, leases and vacancies preloaded
func (r *reportRepository) PropertiesWithOccupancy(ctx context.Context, orgID *uuid.UUID) ([]domain.Property, error) {
	q := r.db.WithContext(ctx).
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("unit_number").Order("id")
		}).
		Preload("Units.Leases", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date").Order("id")
		}).
		Preload("Units.Vacancies", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date").Order("id")
		}).
		Order("name").
		Order("id")

	if orgID != nil {
		q = q.Where("organization_id = ?", *orgID)
	}

	var properties []domain.Property
	if err := q.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load report properties: %w", err)
	}

	return properties, nil
}
