package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/google/uuid"
)

var errStorage = errors.New("storage unavailable")

type fakeAuditRepo struct {
	mu        sync.Mutex
	events    []*domain.AuditEvent
	err       error
	lastLimit int
}

func (r *fakeAuditRepo) Create(_ context.Context, e *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.AuditEvent, error) {
	var out []*domain.AuditEvent
	for _, e := range r.events {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, r.err
}

func (r *fakeAuditRepo) ListByOrganization(_ context.Context, _ uuid.UUID, limit int) ([]*domain.AuditActivity, error) {
	r.lastLimit = limit
	return nil, r.err
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	err   error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) ResetFailedLogins(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.FailedLogins = 0
		u.LockedUntil = nil
		if u.Status == domain.UserStatusLocked {
			u.Status = domain.UserStatusActive
		}
	}
	return nil
}

func (r *fakeUserRepo) RecordFailedLogin(_ context.Context, id uuid.UUID, maxFailed int, lockUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.FailedLogins++
	if u.FailedLogins >= maxFailed {
		u.Status = domain.UserStatusLocked
		u.LockedUntil = &lockUntil
	}
	return u.FailedLogins, nil
}

func (r *fakeUserRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, limit, offset int, search string) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.OrganizationID == orgID && strings.Contains(u.Email, search) {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Count(context.Context) (int, error) {
	return len(r.users), r.err
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.SessionRecord
	err      error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*domain.SessionRecord{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SessionRecord
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

type fakeOrgRepo struct {
	orgs map[uuid.UUID]*domain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[uuid.UUID]*domain.Organization{}}
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrgRepo) GetBySlug(_ context.Context, slug string) (*domain.Organization, error) {
	for _, o := range r.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrgRepo) Create(_ context.Context, o *domain.Organization) error {
	for _, existing := range r.orgs {
		if existing.Slug == o.Slug {
			return repository.ErrConflict
		}
	}
	r.orgs[o.ID] = o
	return nil
}

func (r *fakeOrgRepo) Update(_ context.Context, o *domain.Organization) error {
	if _, ok := r.orgs[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	r.orgs[o.ID] = &cp
	return nil
}

type fakeReportRepo struct {
	properties []domain.Property
	err        error
	calls      int
}

func (r *fakeReportRepo) PropertiesWithOccupancy(_ context.Context, orgID *uuid.UUID) ([]domain.Property, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if orgID == nil {
		return r.properties, nil
	}
	var out []domain.Property
	for _, p := range r.properties {
		if p.OrganizationID == *orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUtilityRepo struct {
	accounts []*domain.UtilityAccount
	err      error
}

func (r *fakeUtilityRepo) Create(_ context.Context, a *domain.UtilityAccount) error {
	if r.err != nil {
		return r.err
	}
	r.accounts = append(r.accounts, a)
	return nil
}

func (r *fakeUtilityRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*domain.UtilityAccount, error) {
	var out []*domain.UtilityAccount
	for _, a := range r.accounts {
		if a.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	return out, r.err
}
