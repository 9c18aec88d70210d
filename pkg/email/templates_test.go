package email

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInNoticeTemplate(t *testing.T) {
	html, err := SignInNoticeTemplate(SignInNotice{
		Name:      "Ana <script>",
		IPAddress: "203.0.113.4",
		UserAgent: "Firefox",
		At:        time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "New sign-in")
	assert.Contains(t, html, "203.0.113.4")
	assert.Contains(t, html, "2024-03-07 09:30 UTC")
	assert.Contains(t, html, "Ana &lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestSignInNoticeTemplate_UnknownDevice(t *testing.T) {
	html, err := SignInNoticeTemplate(SignInNotice{Name: "Ana", IPAddress: "unknown", At: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, html, "Device: unknown")
}

func TestPasswordChangedEmailTemplate(t *testing.T) {
	html, err := PasswordChangedEmailTemplate("Ana")
	require.NoError(t, err)
	assert.Contains(t, html, "Password changed")
	assert.Contains(t, html, "Hi Ana,")
}

func TestNewResendNotifier_RequiresConfig(t *testing.T) {
	_, err := NewResendNotifier(&EmailConfig{FromEmail: "a@b.c"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewResendNotifier(&EmailConfig{APIKey: "re_test"}, zerolog.Nop())
	assert.Error(t, err)

	n, err := NewResendNotifier(&EmailConfig{APIKey: "re_test", FromEmail: "a@b.c"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, n)
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.SendSignInNotice(context.Background(), "a@b.c", SignInNotice{}))
	assert.NoError(t, n.SendPasswordChangedEmail(context.Background(), "a@b.c", "Ana"))
}
