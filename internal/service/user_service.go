package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/hash"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrSetupComplete = errors.New("setup has already been completed")
)

type UserService struct {
	userRepo   repository.UserRepository
	orgService *OrganizationService
	hasher     *hash.Hasher
}

type CreateUserRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email,max=255"`
	Password  string `json:"password" form:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,notblank,max=100"`
	Role      string `json:"role" form:"role" validate:"required,oneof=admin manager staff"`
}

// SetupRequest creates the first organization and its administrator.
type SetupRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,notblank,max=200"`
	Email            string `json:"email" validate:"required,email,max=255"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
	FirstName        string `json:"first_name" validate:"required,notblank,max=100"`
	LastName         string `json:"last_name" validate:"required,notblank,max=100"`
}

type UserListResult struct {
	Users    []*domain.User `json:"users"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func NewUserService(userRepo repository.UserRepository, orgService *OrganizationService, hasher *hash.Hasher) *UserService {
	return &UserService{
		userRepo:   userRepo,
		orgService: orgService,
		hasher:     hasher,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// List pages through the organization's users. page starts at 1.
func (s *UserService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, search string) (*UserListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}

	users, total, err := s.userRepo.ListByOrganization(ctx, orgID, pageSize, (page-1)*pageSize, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResult{
		Users:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *UserService) Create(ctx context.Context, orgID uuid.UUID, req CreateUserRequest) (*domain.User, error) {
	role := domain.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          normalizeEmail(req.Email),
		PasswordHash:   passwordHash,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Role:           role,
		Status:         domain.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// AnyUserExists reports whether setup has already run.
func (s *UserService) AnyUserExists(ctx context.Context) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Bootstrap creates the first organization and an admin inside it. It refuses once any user exists.
func (s *UserService) Bootstrap(ctx context.Context, req SetupRequest) (*domain.Organization, *domain.User, error) {
	exists, err := s.AnyUserExists(ctx)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrSetupComplete
	}

	org, err := s.orgService.Create(ctx, req.OrganizationName, "")
	if err != nil {
		return nil, nil, err
	}

	admin, err := s.Create(ctx, org.ID, CreateUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      string(domain.RoleAdmin),
	})
	if err != nil {
		return nil, nil, err
	}

	return org, admin, nil
}
