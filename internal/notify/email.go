// Package notify sends transactional email to clients, currently just the
// booking confirmation after a submission.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, plainText, htmlBody string) error
}

// SendGridSender sends email through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *logging.Logger
}

// NewSendGridSender creates a SendGrid-backed sender.
func NewSendGridSender(apiKey, fromName, fromEmail string, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		panic("notify: sendgrid api key required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// Send delivers one email. SendGrid returns 202 on acceptance.
func (s *SendGridSender) Send(ctx context.Context, to, subject, plainText, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), plainText, htmlBody)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// LogSender logs instead of sending, for development and tests.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, plainText, _ string) error {
	s.logger.Info("email suppressed", "to", to, "subject", subject, "body", plainText)
	return nil
}

// ConfirmationLine is one booked service in the confirmation email.
type ConfirmationLine struct {
	ServiceName string
	MasterName  string
	Date        string
	Time        string
}

// BuildConfirmation renders the booking confirmation email.
func BuildConfirmation(clientName string, lines []ConfirmationLine) (subject, plainText, htmlBody string) {
	subject = "Your booking is confirmed"

	var text strings.Builder
	var html strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nYour booking is confirmed:\n\n", clientName)
	fmt.Fprintf(&html, "<p>Hi %s,</p><p>Your booking is confirmed:</p><ul>", clientName)
	for _, line := range lines {
		master := line.MasterName
		if master == "" {
			master = "any available professional"
		}
		fmt.Fprintf(&text, "- %s with %s on %s at %s\n", line.ServiceName, master, line.Date, line.Time)
		fmt.Fprintf(&html, "<li>%s with %s on %s at %s</li>", line.ServiceName, master, line.Date, line.Time)
	}
	text.WriteString("\nSee you soon!\n")
	html.WriteString("</ul><p>See you soon!</p>")

	return subject, text.String(), html.String()
}
