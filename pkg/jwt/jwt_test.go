package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return priv, pub
}

func TestTokenService_RoundTrip(t *testing.T) {
	priv, pub := testKeys(t)
	svc, err := NewTokenService(priv, pub, time.Hour, "propertyhub-test")
	require.NoError(t, err)

	provider := "google"
	user := &domain.User{
		ID:               uuid.New(),
		OrganizationID:   uuid.New(),
		Role:             domain.RoleManager,
		TwoFactorEnabled: true,
		Provider:         &provider,
	}
	sid := uuid.New()

	token, exp, err := svc.GenerateSessionToken(user, sid)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sid.String(), claims.ID)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.OrganizationID, claims.OrganizationID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.True(t, claims.TwoFactorEnabled)
	assert.True(t, claims.OAuth)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	priv, pub := testKeys(t)
	svc, err := NewTokenService(priv, pub, time.Minute, "propertyhub-test")
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateSessionToken(&domain.User{ID: uuid.New()}, uuid.New())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	privA, pubA := testKeys(t)
	privB, pubB := testKeys(t)

	a, err := NewTokenService(privA, pubA, time.Hour, "propertyhub-test")
	require.NoError(t, err)
	b, err := NewTokenService(privB, pubB, time.Hour, "propertyhub-test")
	require.NoError(t, err)

	token, _, err := a.GenerateSessionToken(&domain.User{ID: uuid.New()}, uuid.New())
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.Error(t, err)

	_, err = a.ValidateToken("not.a.token")
	assert.Error(t, err)
}
