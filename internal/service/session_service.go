package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/blacklist"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/andressep95/propertyhub/pkg/jwt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService issues, resolves and revokes cookie sessions.
// The signed token is the source of truth; Redis holds revocations and the
// sessions table is bookkeeping for the "active sessions" list.
type SessionService struct {
	tokenService *jwt.TokenService
	blacklist    *blacklist.SessionBlacklist
	sessionRepo  repository.SessionRepository
	logger       zerolog.Logger
}

func NewSessionService(
	tokenService *jwt.TokenService,
	sessionBlacklist *blacklist.SessionBlacklist,
	sessionRepo repository.SessionRepository,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		tokenService: tokenService,
		blacklist:    sessionBlacklist,
		sessionRepo:  sessionRepo,
		logger:       logger.With().Str("component", "session").Logger(),
	}
}

// Issue signs a new session token for the user and records it.
func (s *SessionService) Issue(ctx context.Context, user *domain.User, client clientinfo.Info) (string, *domain.Session, error) {
	sessionID := uuid.New()

	token, expiresAt, err := s.tokenService.GenerateSessionToken(user, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	record := &domain.SessionRecord{
		ID:        sessionID,
		UserID:    user.ID,
		UserAgent: client.UserAgentPtr(),
		IPAddress: client.IPPtr(),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, record); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	return token, &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		Role:             user.Role,
		OrganizationID:   user.OrganizationID,
		TwoFactorEnabled: user.TwoFactorEnabled,
		OAuth:            user.IsOAuth(),
		ExpiresAt:        expiresAt,
	}, nil
}

// Resolve returns the session carried by token, or nil when there is none.
// Missing, malformed, expired and revoked tokens all resolve to (nil, nil);
// an error means the revocation store could not be consulted.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokenService.ValidateToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected session token")
		return nil, nil
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil || claims.UserID == uuid.Nil || claims.ExpiresAt == nil {
		return nil, nil
	}

	revoked, err := s.blacklist.IsSessionRevoked(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}

	if claims.IssuedAt != nil {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, nil
		}
	}

	return &domain.Session{
		ID:               sessionID,
		UserID:           claims.UserID,
		Role:             claims.Role,
		OrganizationID:   claims.OrganizationID,
		TwoFactorEnabled: claims.TwoFactorEnabled,
		OAuth:            claims.OAuth,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, nil
}

// Revoke ends a session. The Redis entry is what makes the token unusable, so only
// its failure is returned; a leftover bookkeeping row is logged and ignored.
func (s *SessionService) Revoke(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}

	if err := s.blacklist.RevokeSession(ctx, session.ID, session.ExpiresAt); err != nil {
		return err
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to delete session record")
	}

	return nil
}

// ListForUser returns the user's unexpired sessions, newest first.
func (s *SessionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionRecord, error) {
	records, err := s.sessionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]*domain.SessionRecord, 0, len(records))
	for _, r := range records {
		if r.ExpiresAt.After(now) {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	return active, nil
}

// RevokeByID revokes one of the user's own sessions.
func (s *SessionService) RevokeByID(ctx context.Context, userID, sessionID uuid.UUID) error {
	record, err := s.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return ErrSessionNotFound
	}

	return s.Revoke(ctx, &domain.Session{ID: record.ID, UserID: record.UserID, ExpiresAt: record.ExpiresAt})
}

// RevokeAllForUser invalidates every token issued to the user so far.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.blacklist.RevokeUser(ctx, userID, s.tokenService.Expiry()); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to delete session records")
	}

	return nil
}

// CleanupExpired removes bookkeeping rows of sessions past their expiry.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}
