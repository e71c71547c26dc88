package notifications

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"vereinsportal/internal/shared/config"
)

// EmailSender delivers a rendered message to its recipient
type EmailSender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPEmailSender is the real SMTP implementation of EmailSender
type SMTPEmailSender struct {
	config config.EmailConfig
}

// NewSMTPEmailSender creates an SMTP sender after validating the configuration
func NewSMTPEmailSender(cfg config.EmailConfig) (*SMTPEmailSender, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailSender{config: cfg}, nil
}

func validateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if cfg.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// Send delivers the message over SMTP
func (s *SMTPEmailSender) Send(ctx context.Context, msg *Message) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{msg.Recipient}, s.buildMessage(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 [SMTP] %s email sent to %s", msg.Kind, msg.Recipient)
	return nil
}

// buildMessage assembles the raw RFC 5322 message with headers
func (s *SMTPEmailSender) buildMessage(msg *Message) []byte {
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.Recipient))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogEmailSender writes messages to the log instead of sending them.
// Used when no SMTP server is configured, typically in development.
type LogEmailSender struct{}

// Send logs the message
func (s *LogEmailSender) Send(ctx context.Context, msg *Message) error {
	log.Printf("📧 [DRY-RUN] %s to %s: %s", msg.Kind, msg.Recipient, msg.Subject)
	return nil
}
