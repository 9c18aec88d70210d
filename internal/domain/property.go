package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property, Unit, Lease and Vacancy are read through gorm for reporting.
// Date ranges are half-open: StartDate is included, EndDate is not; a nil EndDate is ongoing.

type Property struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name           string    `gorm:"size:200;not null"`
	Address        string    `gorm:"size:300"`
	Units          []Unit    `gorm:"foreignKey:PropertyID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Unit struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UnitNumber string          `gorm:"size:50;not null"`
	MarketRent decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Leases     []Lease         `gorm:"foreignKey:UnitID"`
	Vacancies  []Vacancy       `gorm:"foreignKey:UnitID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Lease struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UnitID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	TenantName  string          `gorm:"size:200"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     *time.Time
}

type Vacancy struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID    uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	Reason    string `gorm:"size:200"`
}
