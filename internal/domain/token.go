package domain

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of the session cookie token. RegisteredClaims.ID carries the session id.
type Claims struct {
	jwt.RegisteredClaims
	UserID           uuid.UUID `json:"uid"`
	OrganizationID   uuid.UUID `json:"org"`
	Role             Role      `json:"role"`
	TwoFactorEnabled bool      `json:"tfa,omitempty"`
	OAuth            bool      `json:"oauth,omitempty"`
}
