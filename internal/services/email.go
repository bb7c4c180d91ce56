package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ErrEmailNotConfigured is returned by a nil Mailer
var ErrEmailNotConfigured = errors.New("email delivery not configured")

// Mailer sends transactional email through Resend
type Mailer struct {
	client *resend.Client
	from   string
}

// NewMailer returns nil when apiKey is empty
func NewMailer(apiKey, from string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{client: resend.NewClient(apiKey), from: from}
}

// Send delivers one HTML message and returns the provider message id
func (m *Mailer) Send(ctx context.Context, to []string, subject, html string) (string, error) {
	if m == nil {
		return "", ErrEmailNotConfigured
	}
	if len(to) == 0 {
		return "", fmt.Errorf("no recipients")
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("email sent: id=%s to=%v subject=%q", sent.Id, to, subject)
	return sent.Id, nil
}
