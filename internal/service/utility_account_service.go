package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/google/uuid"
)

// UtilityAccountRequest is the form or JSON body of a new utility account.
type UtilityAccountRequest struct {
	PropertyID    string `json:"property_id" form:"property_id" validate:"omitempty,uuid"`
	UtilityType   string `json:"utility_type" form:"utility_type" validate:"required,oneof=electricity water gas sewer trash internet"`
	AccountNumber string `json:"account_number" form:"account_number" validate:"required,notblank,max=64"`
	MeterNumber   string `json:"meter_number" form:"meter_number" validate:"max=64"`
	BillingID     string `json:"billing_id" form:"billing_id" validate:"max=64"`
	Remarks       string `json:"remarks" form:"remarks" validate:"max=500"`
}

type UtilityAccountService struct {
	accountRepo repository.UtilityAccountRepository
	validator   *validator.Validator
}

func NewUtilityAccountService(accountRepo repository.UtilityAccountRepository, v *validator.Validator) *UtilityAccountService {
	return &UtilityAccountService{
		accountRepo: accountRepo,
		validator:   v,
	}
}

// Validate returns the failing fields of req, or nil when it is acceptable.
func (s *UtilityAccountService) Validate(req UtilityAccountRequest) []validator.FieldError {
	return validator.FieldErrors(s.validator.Validate(req))
}

// Create validates and stores the account. Invalid input yields a *validator.ValidationError.
func (s *UtilityAccountService) Create(ctx context.Context, orgID uuid.UUID, req UtilityAccountRequest) (*domain.UtilityAccount, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account := &domain.UtilityAccount{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UtilityType:    domain.UtilityType(req.UtilityType),
		AccountNumber:  strings.TrimSpace(req.AccountNumber),
		MeterNumber:    optional(req.MeterNumber),
		BillingID:      optional(req.BillingID),
		Remarks:        optional(req.Remarks),
		CreatedAt:      time.Now().UTC(),
	}
	if req.PropertyID != "" {
		propertyID := uuid.MustParse(req.PropertyID)
		account.PropertyID = &propertyID
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create utility account: %w", err)
	}
	return account, nil
}

func (s *UtilityAccountService) List(ctx context.Context, orgID uuid.UUID) ([]*domain.UtilityAccount, error) {
	return s.accountRepo.ListByOrganization(ctx, orgID)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
