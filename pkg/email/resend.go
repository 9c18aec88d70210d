package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendNotifier implements Notifier using Resend
type ResendNotifier struct {
	client *resend.Client
	config *EmailConfig
	logger zerolog.Logger
}

// NewResendNotifier creates a new Resend notifier
func NewResendNotifier(config *EmailConfig, logger zerolog.Logger) (*ResendNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendNotifier{
		client: resend.NewClient(config.APIKey),
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}, nil
}

func (s *ResendNotifier) SendSignInNotice(ctx context.Context, to string, notice SignInNotice) error {
	html, err := SignInNoticeTemplate(notice)
	if err != nil {
		return fmt.Errorf("failed to render sign-in notice: %w", err)
	}
	return s.send(ctx, to, "New sign-in to your PropertyHub account", html)
}

func (s *ResendNotifier) SendPasswordChangedEmail(ctx context.Context, to, name string) error {
	html, err := PasswordChangedEmailTemplate(name)
	if err != nil {
		return fmt.Errorf("failed to render password changed email: %w", err)
	}
	return s.send(ctx, to, "Your PropertyHub password was changed", html)
}

func (s *ResendNotifier) send(ctx context.Context, to, subject, html string) error {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}

	s.logger.Debug().Str("email_id", sent.Id).Str("subject", subject).Msg("email sent")
	return nil
}
