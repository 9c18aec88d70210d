package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/pkg/blacklist"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/andressep95/propertyhub/pkg/jwt"
	"github.com/andressep95/propertyhub/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *jwt.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	ts, err := jwt.NewTokenService(privPEM, pubPEM, time.Hour, "propertyhub-test")
	require.NoError(t, err)
	return ts
}

type sessionFixture struct {
	svc   *SessionService
	repo  *fakeSessionRepo
	redis *miniredis.Miniredis
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeSessionRepo()
	svc := NewSessionService(newTestTokenService(t), blacklist.NewSessionBlacklist(client), repo, logger.Nop())
	return &sessionFixture{svc: svc, repo: repo, redis: mr}
}

func testUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Email:          "maria@example.com",
		FirstName:      "Maria",
		LastName:       "Lopez",
		Role:           domain.RoleManager,
		Status:         domain.UserStatusActive,
	}
}

func TestSessionService_IssueAndResolve(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	user := testUser()

	token, issued, err := f.svc.Issue(ctx, user, clientinfo.Info{IP: "10.0.0.1", UserAgent: "curl/8"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	record, ok := f.repo.sessions[issued.ID]
	require.True(t, ok)
	assert.Equal(t, user.ID, record.UserID)
	require.NotNil(t, record.IPAddress)
	assert.Equal(t, "10.0.0.1", *record.IPAddress)

	session, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, issued.ID, session.ID)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, user.OrganizationID, session.OrganizationID)
	assert.Equal(t, domain.RoleManager, session.Role)
	assert.False(t, session.OAuth)
}

func TestSessionService_ResolveAbsent(t *testing.T) {
	f := newSessionFixture(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		session, err := f.svc.Resolve(context.Background(), token)
		assert.NoError(t, err, token)
		assert.Nil(t, session, token)
	}
}

func TestSessionService_Revoke(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, issued, err := f.svc.Issue(ctx, testUser(), clientinfo.Info{IP: clientinfo.Unknown})
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(ctx, issued))
	assert.NotContains(t, f.repo.sessions, issued.ID)

	session, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, session)

	// revoking twice is harmless
	require.NoError(t, f.svc.Revoke(ctx, issued))
}

func TestSessionService_RevokeIgnoresBookkeepingFailure(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, issued, err := f.svc.Issue(ctx, testUser(), clientinfo.Info{})
	require.NoError(t, err)

	f.repo.err = errStorage
	require.NoError(t, f.svc.Revoke(ctx, issued))

	session, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionService_RedisDown(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, issued, err := f.svc.Issue(ctx, testUser(), clientinfo.Info{})
	require.NoError(t, err)

	f.redis.Close()

	_, err = f.svc.Resolve(ctx, token)
	assert.Error(t, err)
	assert.Error(t, f.svc.Revoke(ctx, issued))
}

func TestSessionService_RevokeByID(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	user := testUser()

	_, issued, err := f.svc.Issue(ctx, user, clientinfo.Info{})
	require.NoError(t, err)

	err = f.svc.RevokeByID(ctx, uuid.New(), issued.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = f.svc.RevokeByID(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, f.svc.RevokeByID(ctx, user.ID, issued.ID))
	assert.Empty(t, f.repo.sessions)
}

func TestSessionService_RevokeAllForUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	user := testUser()

	first, _, err := f.svc.Issue(ctx, user, clientinfo.Info{})
	require.NoError(t, err)
	second, _, err := f.svc.Issue(ctx, user, clientinfo.Info{})
	require.NoError(t, err)

	sessions, err := f.svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, f.svc.RevokeAllForUser(ctx, user.ID))

	for _, token := range []string{first, second} {
		session, err := f.svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, session)
	}

	sessions, err = f.svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
