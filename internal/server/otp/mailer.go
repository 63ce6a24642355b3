package otp

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/dmitrijs2005/consultbook/internal/logging"
)

// Sender delivers a code to an email address.
type Sender interface {
	Send(ctx context.Context, email, code string) error
}

// LogSender writes codes to the log. It is used when no mail provider is
// configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email, code string) error {
	s.log.Info(ctx, "otp issued", "email", email, "code", code)
	return nil
}

// ResendSender sends codes through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    logging.Logger
}

func NewResendSender(apiKey, from string, log logging.Logger) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, log: log}
}

func (s *ResendSender) Send(ctx context.Context, email, code string) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Your ConsultBook sign-in code",
		Text:    fmt.Sprintf("Your code is %s. It expires soon, do not share it.", code),
		Html:    fmt.Sprintf("<p>Your code is <strong>%s</strong>.</p><p>It expires soon, do not share it.</p>", code),
	})
	if err != nil {
		s.log.Error(ctx, "resend send failed", "error", err, "email", email)
		return fmt.Errorf("resend send failed: %w", err)
	}
	s.log.Info(ctx, "otp mailed", "message_id", sent.Id, "email", email)
	return nil
}

// NewSender returns a ResendSender when apiKey is set and a LogSender
// otherwise.
func NewSender(apiKey, from string, log logging.Logger) Sender {
	if apiKey == "" {
		return NewLogSender(log)
	}
	return NewResendSender(apiKey, from, log)
}
