package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/dajohi/goemail"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speaksfer/internal/observability"
)

func TestNewClient_DisabledWithoutCredentials(t *testing.T) {
	m, err := NewClient(Config{Host: "smtp.example.com", User: "mailer"})
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.SendVerification(context.Background(), "a@example.com", "a", "http://x"))
}

func TestNewClient_RejectsBadFromAddress(t *testing.T) {
	_, err := NewClient(Config{Host: "smtp.example.com:465", User: "u", Password: "p", From: "not an address"})
	assert.Error(t, err)
}

func TestClient_SendTemplates(t *testing.T) {
	var sent []*goemail.Message
	c := &client{
		mailName:    "Speaksfer",
		mailAddress: "noreply@speaksfer.dev",
		deliver: func(m *goemail.Message) error {
			sent = append(sent, m)
			return nil
		},
	}
	ctx := context.Background()

	require.NoError(t, c.SendVerification(ctx, "neo@example.com", "neo", "https://app/email-verify/MQ/tok"))
	require.NoError(t, c.SendPasswordReset(ctx, "neo@example.com", "neo", "https://app/verify-password-reset/MQ/tok"))
	require.Len(t, sent, 2)
	assert.True(t, c.IsEnabled())
}

func TestClient_DeliveryFailurePropagates(t *testing.T) {
	smtpDown := errors.New("dial tcp: connection refused")
	c := &client{
		mailAddress: "noreply@speaksfer.dev",
		deliver:     func(*goemail.Message) error { return smtpDown },
	}
	before := testutil.ToFloat64(observability.MailsSent.WithLabelValues("verify_email", observability.ResultError))

	err := c.SendVerification(context.Background(), "neo@example.com", "neo", "https://app/x")
	assert.ErrorIs(t, err, smtpDown)

	after := testutil.ToFloat64(observability.MailsSent.WithLabelValues("verify_email", observability.ResultError))
	assert.Equal(t, before+1, after)
}

func TestTemplatesRender(t *testing.T) {
	tests := []struct {
		name string
		tpl  template
	}{
		{"verify", verifyEmail},
		{"reset", resetPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.tpl.render("trinity", "https://app/link/abc")
			require.NoError(t, err)
			assert.Contains(t, body, "trinity")
			assert.Contains(t, body, "https://app/link/abc")
			assert.NotEmpty(t, tt.tpl.subject)
		})
	}
}
