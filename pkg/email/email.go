package email

import (
	"context"
	"time"
)

// Notifier sends account notices. Callers treat delivery as best effort.
type Notifier interface {
	// SendSignInNotice tells the user about a new sign-in to their account
	SendSignInNotice(ctx context.Context, to string, notice SignInNotice) error

	// SendPasswordChangedEmail sends a notification when password is changed
	SendPasswordChangedEmail(ctx context.Context, to, name string) error
}

// SignInNotice is the data rendered into the sign-in email.
type SignInNotice struct {
	Name      string
	IPAddress string
	UserAgent string
	At        time.Time
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NoopNotifier drops every message. Used when email is disabled.
type NoopNotifier struct{}

func (NoopNotifier) SendSignInNotice(context.Context, string, SignInNotice) error { return nil }

func (NoopNotifier) SendPasswordChangedEmail(context.Context, string, string) error { return nil }
