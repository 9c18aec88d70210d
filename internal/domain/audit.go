package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditEventKind string

const (
	AuditEventLogin  AuditEventKind = "LOGIN"
	AuditEventLogout AuditEventKind = "LOGOUT"
)

func (k AuditEventKind) Valid() bool {
	return k == AuditEventLogin || k == AuditEventLogout
}

// AuditEvent records one sign-in or sign-out. Rows are append-only.
type AuditEvent struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Kind      AuditEventKind `json:"kind" db:"kind"`
	IPAddress *string        `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string        `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// AuditActivity is an audit event joined with the user it belongs to.
type AuditActivity struct {
	AuditEvent
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}
