package domain

import (
	"time"

	"github.com/google/uuid"
)

type UtilityType string

const (
	UtilityElectricity UtilityType = "electricity"
	UtilityWater       UtilityType = "water"
	UtilityGas         UtilityType = "gas"
	UtilitySewer       UtilityType = "sewer"
	UtilityTrash       UtilityType = "trash"
	UtilityInternet    UtilityType = "internet"
)

// UtilityTypes lists the accepted utility types in display order.
var UtilityTypes = []UtilityType{
	UtilityElectricity, UtilityWater, UtilityGas, UtilitySewer, UtilityTrash, UtilityInternet,
}

type UtilityAccount struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	OrganizationID uuid.UUID   `json:"organization_id" db:"organization_id"`
	PropertyID     *uuid.UUID  `json:"property_id,omitempty" db:"property_id"`
	UtilityType    UtilityType `json:"utility_type" db:"utility_type"`
	AccountNumber  string      `json:"account_number" db:"account_number"`
	MeterNumber    *string     `json:"meter_number,omitempty" db:"meter_number"`
	BillingID      *string     `json:"billing_id,omitempty" db:"billing_id"`
	Remarks        *string     `json:"remarks,omitempty" db:"remarks"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
