package orm

import (
	"fmt"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbDao wraps the gorm connection used for reporting reads
type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// Open connects gorm to PostgreSQL and routes its log output through zerolog.
func Open(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	gl := logger.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(&gl, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return db, nil
}

// InitMigrate creates the reporting tables. Safe to run on every start.
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&domain.Property{},
		&domain.Unit{},
		&domain.Lease{},
		&domain.Vacancy{},
	)
}
