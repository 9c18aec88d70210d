package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationStatus represents the status of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

// Organization is the property-management company that owns users, properties and reports
type Organization struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	Name      string             `json:"name" db:"name"`
	Slug      string             `json:"slug" db:"slug"`
	Status    OrganizationStatus `json:"status" db:"status"`
	Timezone  string             `json:"timezone" db:"timezone"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}
