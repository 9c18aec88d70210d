package service

import (
	"context"
	"testing"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_Record(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)
	fixed := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	userID := uuid.New()

	err := svc.Record(context.Background(), domain.AuditEventLogout, userID, "203.0.113.9", "Safari")
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	e := repo.events[0]
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, domain.AuditEventLogout, e.Kind)
	require.NotNil(t, e.IPAddress)
	assert.Equal(t, "203.0.113.9", *e.IPAddress)
	require.NotNil(t, e.UserAgent)
	assert.Equal(t, "Safari", *e.UserAgent)
	assert.Equal(t, fixed, e.CreatedAt)
	assert.NotEqual(t, uuid.Nil, e.ID)
}

func TestAuditService_Record_UnknownClientStoredAsNull(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	require.NoError(t, svc.Record(context.Background(), domain.AuditEventLogin, uuid.New(), clientinfo.Unknown, ""))
	require.Len(t, repo.events, 1)
	assert.Nil(t, repo.events[0].IPAddress)
	assert.Nil(t, repo.events[0].UserAgent)
}

func TestAuditService_Record_RejectsInvalidInput(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	err := svc.Record(context.Background(), domain.AuditEventLogin, uuid.Nil, "1.2.3.4", "")
	assert.ErrorIs(t, err, ErrAuditUserRequired)

	err = svc.Record(context.Background(), "PASSWORD_RESET", uuid.New(), "1.2.3.4", "")
	assert.ErrorIs(t, err, ErrAuditKindInvalid)

	assert.Empty(t, repo.events)
}

func TestAuditService_Record_SingleAttemptOnFailure(t *testing.T) {
	repo := &fakeAuditRepo{err: errStorage}
	svc := NewAuditService(repo)

	err := svc.Record(context.Background(), domain.AuditEventLogout, uuid.New(), "1.2.3.4", "")
	assert.ErrorIs(t, err, errStorage)
	assert.Empty(t, repo.events)
}

func TestAuditService_History(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(context.Background(), domain.AuditEventLogin, userID, "", ""))
	}
	require.NoError(t, svc.Record(context.Background(), domain.AuditEventLogin, uuid.New(), "", ""))

	events, err := svc.History(context.Background(), userID, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestAuditService_Recent_ClampsLimit(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	for _, tt := range []struct{ in, want int }{{0, 50}, {10, 10}, {500, 50}} {
		_, err := svc.Recent(context.Background(), uuid.New(), tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, repo.lastLimit, tt.in)
	}

	repo.err = errStorage
	_, err := svc.Recent(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, errStorage)
}
