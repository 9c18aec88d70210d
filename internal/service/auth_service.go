package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andressep95/propertyhub/internal/config"
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/andressep95/propertyhub/pkg/email"
	"github.com/andressep95/propertyhub/pkg/hash"
	"github.com/andressep95/propertyhub/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Custom errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is not active")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordNotSet     = errors.New("account signs in through an external provider")
)

const notifyTimeout = 15 * time.Second

type AuthService struct {
	userRepo repository.UserRepository
	sessions *SessionService
	hasher   *hash.Hasher
	notifier email.Notifier
	cfg      config.AuthConfig
	logger   zerolog.Logger
	now      func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type LoginResult struct {
	Token     string          `json:"-"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"-"`
	User      *UserDTO        `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

type UserDTO struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Role           domain.Role `json:"role"`
	OrganizationID uuid.UUID   `json:"organization_id"`
}

func NewUserDTO(user *domain.User) *UserDTO {
	return &UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions *SessionService,
	hasher *hash.Hasher,
	notifier email.Notifier,
	cfg config.AuthConfig,
	logger zerolog.Logger,
) *AuthService {
	if notifier == nil {
		notifier = email.NoopNotifier{}
	}
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		hasher:   hasher,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest, client clientinfo.Info) (*LoginResult, error) {
	result, err := s.login(ctx, req, client)
	metrics.LoginAttemptsTotal.WithLabelValues(loginOutcome(err)).Inc()
	return result, err
}

func (s *AuthService) login(ctx context.Context, req LoginRequest, client clientinfo.Info) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.IsOAuth() || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if user.Status == domain.UserStatusInactive {
		return nil, ErrAccountInactive
	}

	now := s.now()

	// Check if account is locked
	if user.Status == domain.UserStatusLocked || user.LockedUntil != nil {
		if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
			return nil, ErrAccountLocked
		}
		// lock period is over
		if err := s.userRepo.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
		user.Status = domain.UserStatusActive
		user.FailedLogins = 0
		user.LockedUntil = nil
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !valid {
		count, err := s.userRepo.RecordFailedLogin(ctx, user.ID, s.cfg.MaxFailedLogins, now.Add(s.cfg.LockDuration).UTC())
		if err != nil {
			return nil, err
		}
		if count >= s.cfg.MaxFailedLogins {
			s.logger.Warn().Str("user_id", user.ID.String()).Int("failed_logins", count).Msg("account locked")
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLogins > 0 {
		if err := s.userRepo.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	token, session, err := s.sessions.Issue(ctx, user, client)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, req.Password)
	}

	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.SendSignInNotice(ctx, user.Email, email.SignInNotice{
			Name:      user.FullName(),
			IPAddress: client.IP,
			UserAgent: client.UserAgent,
			At:        now,
		})
	})

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Session:   session,
		User:      NewUserDTO(user),
	}, nil
}

// ChangePassword changes user password and invalidates all sessions
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.IsOAuth() || user.PasswordHash == "" {
		return ErrPasswordNotSet
	}

	valid, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.SendPasswordChangedEmail(ctx, user.Email, user.FullName())
	})

	return nil
}

func (s *AuthService) rehash(ctx context.Context, userID uuid.UUID, password string) {
	newHash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, userID, newHash)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to upgrade password hash")
	}
}

// notifyAsync sends outside the request; delivery failures are only logged.
func (s *AuthService) notifyAsync(send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send account notice")
		}
	}()
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountLocked):
		return "locked"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	}
	return "error"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
