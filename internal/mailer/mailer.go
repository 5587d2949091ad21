// Package mailer delivers password-reset tokens out of band. The transport
// is a collaborator: production wires a real email provider, development and
// tests use the log-backed sender.
package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers a raw reset token to the account's email address.
type Sender interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogSender writes the reset token to the log instead of sending email.
type LogSender struct{}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendPasswordReset logs the token for manual delivery during development.
func (s *LogSender) SendPasswordReset(_ context.Context, email, token string) error {
	slog.Info("password reset requested", "email", email, "token", token)
	return nil
}
