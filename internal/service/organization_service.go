package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidSlug          = errors.New("invalid slug format: must be lowercase alphanumeric with hyphens, 3-100 characters")
	ErrSlugTaken            = errors.New("slug is already in use")

	slugReplacer = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
)

type OrganizationSettingsRequest struct {
	Name     string `json:"name" form:"name" validate:"required,notblank,max=200"`
	Timezone string `json:"timezone" form:"timezone" validate:"omitempty,timezone"`
}

type OrganizationService struct {
	orgRepo repository.OrganizationRepository
}

func NewOrganizationService(orgRepo repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
	}
}

func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	return org, err
}

// Create derives the slug from the name when none is given.
func (s *OrganizationService) Create(ctx context.Context, name, slug string) (*domain.Organization, error) {
	if slug == "" {
		slug = generateSlugFromName(name)
	}
	if !isValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		Status:    domain.OrganizationStatusActive,
		Timezone:  "UTC",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// UpdateSettings renames the organization; the slug stays stable.
func (s *OrganizationService) UpdateSettings(ctx context.Context, id uuid.UUID, req OrganizationSettingsRequest) (*domain.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	org.Name = strings.TrimSpace(req.Name)
	if req.Timezone != "" {
		org.Timezone = req.Timezone
	}
	org.UpdatedAt = time.Now().UTC()

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func generateSlugFromName(name string) string {
	slug := strings.ToLower(name)
	slug = slugReplacer.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

func isValidSlug(slug string) bool {
	if len(slug) < 3 || len(slug) > 100 {
		return false
	}
	return slugPattern.MatchString(slug)
}
