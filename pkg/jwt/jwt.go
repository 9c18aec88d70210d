package jwt

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token")
)

// TokenService signs and verifies RS256 session tokens.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenService(privateKeyPEM, publicKeyPEM []byte, expiry time.Duration, issuer string) (*TokenService, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		expiry:     expiry,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Expiry is the lifetime of every issued token.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// GenerateSessionToken signs a token whose jti is sessionID.
func (s *TokenService) GenerateSessionToken(user *domain.User, sessionID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.expiry)

	claims := domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        sessionID.String(),
		},
		UserID:           user.ID,
		OrganizationID:   user.OrganizationID,
		Role:             user.Role,
		TwoFactorEnabled: user.TwoFactorEnabled,
		OAuth:            user.IsOAuth(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

func (s *TokenService) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.publicKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
