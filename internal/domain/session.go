package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated identity resolved for a single request.
// It is derived from the signed session token and never written by the resolver.
type Session struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Role             Role      `json:"role"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	OAuth            bool      `json:"oauth"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func (s *Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// SessionRecord is the bookkeeping row kept for every issued session token.
type SessionRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	UserAgent *string   `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress *string   `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
