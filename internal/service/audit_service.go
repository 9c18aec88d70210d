package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/andressep95/propertyhub/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrAuditUserRequired = errors.New("audit event requires a user id")
	ErrAuditKindInvalid  = errors.New("unknown audit event kind")
)

// AuditService appends sign-in and sign-out events. It does not retry and does not
// check the session behind the user id; callers decide what a failure means.
type AuditService struct {
	auditRepo repository.AuditRepository
	now       func() time.Time
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// Record writes exactly one event. An unknown ip or empty user agent is stored as NULL.
func (s *AuditService) Record(ctx context.Context, kind domain.AuditEventKind, userID uuid.UUID, ip, userAgent string) error {
	err := s.record(ctx, kind, userID, ip, userAgent)
	metrics.RecordAudit(string(kind), err)
	return err
}

func (s *AuditService) record(ctx context.Context, kind domain.AuditEventKind, userID uuid.UUID, ip, userAgent string) error {
	if userID == uuid.Nil {
		return ErrAuditUserRequired
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrAuditKindInvalid, kind)
	}

	info := clientinfo.Info{IP: ip, UserAgent: userAgent}
	event := &domain.AuditEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		IPAddress: info.IPPtr(),
		UserAgent: info.UserAgentPtr(),
		CreatedAt: s.now().UTC(),
	}

	return s.auditRepo.Create(ctx, event)
}

// Recent lists the latest events of an organization's users, newest first.
func (s *AuditService) Recent(ctx context.Context, orgID uuid.UUID, limit int) ([]*domain.AuditActivity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.ListByOrganization(ctx, orgID, limit)
}

// History lists the latest events of one user.
func (s *AuditService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.auditRepo.ListByUser(ctx, userID, limit)
}
